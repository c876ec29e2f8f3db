package mutagens

import (
	m "gooze.dev/pkg/stackmut/internal/model"
)

const negationDescription = "removed negation"

// InvertNegs removes a numeric negation, leaving the operand as it was.
type InvertNegs struct{}

// NewInvertNegs returns the operator.
func NewInvertNegs() InvertNegs { return InvertNegs{} }

// ID implements Operator.
func (InvertNegs) ID() string { return "invert_negs" }

// Name implements Operator.
func (InvertNegs) Name() string { return "INVERT_NEGS" }

// NewRule implements Operator.
func (o InvertNegs) NewRule() Rule { return o }

// Apply implements Rule.
func (o InvertNegs) Apply(ctx *Context, insn m.Instruction) ([]m.Instruction, bool, error) {
	if insn.Op.Kind() != m.KindNeg {
		return nil, false, nil
	}

	id := ctx.RegisterCandidate(o, negationDescription)
	if !ctx.ShouldMutate(id) {
		return nil, false, nil
	}

	return []m.Instruction{}, true, nil
}
