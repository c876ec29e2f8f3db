package mutagens

import (
	m "gooze.dev/pkg/stackmut/internal/model"
)

const absoluteDescription = "Changes a value to the absolute value"

// AbsoluteValue negates the value of a numeric local right after it is loaded.
type AbsoluteValue struct{}

// NewAbsoluteValue returns the operator.
func NewAbsoluteValue() AbsoluteValue { return AbsoluteValue{} }

// ID implements Operator.
func (AbsoluteValue) ID() string { return "absolute_value" }

// Name implements Operator.
func (AbsoluteValue) Name() string { return "ABSOLUTE" }

// NewRule implements Operator.
func (o AbsoluteValue) NewRule() Rule { return o }

// Apply implements Rule.
func (o AbsoluteValue) Apply(ctx *Context, insn m.Instruction) ([]m.Instruction, bool, error) {
	if insn.Op.Kind() != m.KindLoad {
		return nil, false, nil
	}

	neg, ok := m.NegOpcode(insn.Op.Category())
	if !ok {
		return nil, false, nil
	}

	id := ctx.RegisterCandidate(o, absoluteDescription)
	if !ctx.ShouldMutate(id) {
		return nil, false, nil
	}

	return []m.Instruction{insn, m.Insn(neg).WithLine(insn.Line)}, true, nil
}
