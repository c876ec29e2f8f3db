package mutagens

import (
	"fmt"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// Operand selects which operand of a binary arithmetic instruction is dropped.
type Operand uint8

// Operands.
const (
	// FirstOperand drops the value pushed first and keeps the one on top.
	FirstOperand Operand = iota
	// LastOperand drops the value on top and keeps the one below it.
	LastOperand
)

func (o Operand) String() string {
	if o == FirstOperand {
		return "FIRST"
	}

	return "LAST"
}

// ArithmeticDeletion replaces a binary arithmetic instruction with a stack
// shuffle that leaves one operand as the result.
type ArithmeticDeletion struct {
	operand Operand
}

// NewArithmeticDeletion returns the operator dropping the given operand.
func NewArithmeticDeletion(operand Operand) ArithmeticDeletion {
	return ArithmeticDeletion{operand: operand}
}

// ID implements Operator.
func (o ArithmeticDeletion) ID() string {
	if o.operand == FirstOperand {
		return "arithmetic_deletion_first"
	}

	return "arithmetic_deletion_last"
}

// Name implements Operator.
func (o ArithmeticDeletion) Name() string { return "ARITHMETIC_DELETE_" + o.operand.String() }

// NewRule implements Operator.
func (o ArithmeticDeletion) NewRule() Rule { return o }

func (o ArithmeticDeletion) description() string {
	if o.operand == FirstOperand {
		return "delete arithmetic operator (first operand)"
	}

	return "delete arithmetic operator (last operand)"
}

// Apply implements Rule.
func (o ArithmeticDeletion) Apply(ctx *Context, insn m.Instruction) ([]m.Instruction, bool, error) {
	if insn.Op.Kind() != m.KindArith {
		return nil, false, nil
	}

	id := ctx.RegisterCandidate(o, o.description())
	if !ctx.ShouldMutate(id) {
		return nil, false, nil
	}

	shuffle, err := o.shuffle(insn.Op.Category())
	if err != nil {
		return nil, false, fmt.Errorf("%s at %s: %w", o.Name(), id.Location, err)
	}

	return keepLine(insn.Line, shuffle...), true, nil
}

// shuffle returns the sequence that turns [a b] into the kept operand.
func (o ArithmeticDeletion) shuffle(category m.Category) ([]m.Instruction, error) {
	switch category.Width() {
	case 1:
		if o.operand == FirstOperand {
			return []m.Instruction{m.Insn(m.OpSwap), m.Insn(m.OpPop)}, nil
		}

		return []m.Instruction{m.Insn(m.OpPop)}, nil
	case 2:
		// There is no two-word swap; copy b beneath a, then drop both words of b and a.
		if o.operand == FirstOperand {
			return []m.Instruction{m.Insn(m.OpDup2X2), m.Insn(m.OpPop2), m.Insn(m.OpPop2)}, nil
		}

		return []m.Instruction{m.Insn(m.OpPop2)}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedWidth, category)
}
