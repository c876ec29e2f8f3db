// Package mutagens provides the instruction-level mutation operators.
package mutagens

import (
	"errors"
	"fmt"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// ErrUnsupportedWidth is returned when an operator is asked to shuffle a stack
// value whose width it has no instruction sequence for.
var ErrUnsupportedWidth = errors.New("unsupported operand width")

// Operator is a named mutation rule. Operators are immutable and safe to share
// between concurrent scans; per-scan state lives in the Rule they create.
type Operator interface {
	// ID is globally unique and orders operators deterministically.
	ID() string
	// Name is the human readable name used in reports.
	Name() string
	// NewRule returns the rule to run for one scan.
	NewRule() Rule
}

// Rule is the match-and-emit part of an operator.
type Rule interface {
	// Apply is offered every instruction of the original stream in order. When
	// the rule registers a candidate that the context selects, it returns the
	// replacement sequence and true. Otherwise the instruction is kept.
	Apply(ctx *Context, insn m.Instruction) ([]m.Instruction, bool, error)
}

func popFor(category m.Category) (m.Instruction, error) {
	switch category.Width() {
	case 1:
		return m.Insn(m.OpPop), nil
	case 2:
		return m.Insn(m.OpPop2), nil
	}

	return m.Instruction{}, fmt.Errorf("%w: pop %s", ErrUnsupportedWidth, category)
}

func zeroFor(category m.Category) (m.Instruction, error) {
	op, ok := m.ZeroOpcode(category)
	if !ok {
		return m.Instruction{}, fmt.Errorf("%w: zero value of %s", ErrUnsupportedWidth, category)
	}

	return m.Insn(op), nil
}

// keepLine copies the source line of the matched instruction onto the emitted
// replacement so reports stay attributable.
func keepLine(line int, insns ...m.Instruction) []m.Instruction {
	out := make([]m.Instruction, len(insns))
	for i, insn := range insns {
		out[i] = insn.WithLine(line)
	}

	return out
}
