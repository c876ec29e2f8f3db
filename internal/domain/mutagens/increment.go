package mutagens

import (
	"fmt"
	"strings"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// IncrementVariant selects how a local-variable increment is changed.
type IncrementVariant uint8

// Increment variants.
const (
	// Increment adds one to the constant.
	Increment IncrementVariant = iota
	// Decrement subtracts one from the constant.
	Decrement
	// Remove sets the constant to zero.
	Remove
	// Reverse negates the constant.
	Reverse
)

var incrementVariantNames = [...]string{"INCREMENT", "DECREMENT", "REMOVE", "REVERSE"}
var incrementCatalogNames = [...]string{"INC_ADD", "INC_SUB", "INC_RMV", "INC_RVS"}

func (v IncrementVariant) String() string {
	if int(v) >= len(incrementVariantNames) {
		return fmt.Sprintf("IncrementVariant(%d)", v)
	}

	return incrementVariantNames[v]
}

// IncrementMutation rewrites the constant of an IINC. Only local variables are
// affected; field updates compile to other instructions.
type IncrementMutation struct {
	variant IncrementVariant
}

// NewIncrementMutation returns the operator for variant.
func NewIncrementMutation(variant IncrementVariant) IncrementMutation {
	return IncrementMutation{variant: variant}
}

// ID implements Operator.
func (o IncrementMutation) ID() string { return "increment_" + strings.ToLower(o.variant.String()) }

// Name implements Operator.
func (o IncrementMutation) Name() string {
	if int(o.variant) >= len(incrementCatalogNames) {
		return o.variant.String()
	}

	return incrementCatalogNames[o.variant]
}

// NewRule implements Operator.
func (o IncrementMutation) NewRule() Rule { return o }

// Apply implements Rule.
func (o IncrementMutation) Apply(ctx *Context, insn m.Instruction) ([]m.Instruction, bool, error) {
	if insn.Op != m.OpIInc {
		return nil, false, nil
	}

	incr, description := o.mutate(insn.Incr)
	if incr == insn.Incr {
		return nil, false, nil
	}

	id := ctx.RegisterCandidate(o, description)
	if !ctx.ShouldMutate(id) {
		return nil, false, nil
	}

	mutated := insn
	mutated.Incr = incr

	return []m.Instruction{mutated}, true, nil
}

func (o IncrementMutation) mutate(incr int) (int, string) {
	switch o.variant {
	case Increment:
		return incr + 1, fmt.Sprintf("Added unary increment %d -> %d to local variable", incr, incr+1)
	case Decrement:
		return incr - 1, fmt.Sprintf("Added unary decrement %d -> %d to local variable", incr, incr-1)
	case Remove:
		return 0, "Removed unary increment of local variable"
	case Reverse:
		return -incr, "Reversed increment of local variable"
	}

	return incr, "Unchanged increment of local variable"
}
