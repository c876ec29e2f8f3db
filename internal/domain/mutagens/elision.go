package mutagens

import (
	"fmt"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// CallElision skips a virtual call. The arguments are discarded from the last
// declared one to the first, then the receiver, and a non-void call leaves the
// zero value of its return type in place of the result.
//
// The enclosing code must tolerate the call not happening and, for non-void
// calls, a default result. The operator does not check this; callers that
// enable it accept mutants that may be equivalent or fail to verify.
type CallElision struct{}

// NewCallElision returns the operator.
func NewCallElision() CallElision { return CallElision{} }

// ID implements Operator.
func (CallElision) ID() string { return "call_elision" }

// Name implements Operator.
func (CallElision) Name() string { return "CALL_ELISION" }

// NewRule implements Operator.
func (o CallElision) NewRule() Rule { return o }

// Apply implements Rule.
func (o CallElision) Apply(ctx *Context, insn m.Instruction) ([]m.Instruction, bool, error) {
	if insn.Op != m.OpInvokeVirtual {
		return nil, false, nil
	}

	id := ctx.RegisterCandidate(o, fmt.Sprintf("removed call to %s.%s", insn.Owner, insn.Name))
	if !ctx.ShouldMutate(id) {
		return nil, false, nil
	}

	t, err := m.ParseMethodDescriptor(insn.Desc)
	if err != nil {
		return nil, false, fmt.Errorf("%s at %s: %w", o.Name(), id.Location, err)
	}

	out := make([]m.Instruction, 0, len(t.Args)+2)

	for i := len(t.Args) - 1; i >= 0; i-- {
		pop, err := popFor(t.Args[i])
		if err != nil {
			return nil, false, fmt.Errorf("%s at %s: %w", o.Name(), id.Location, err)
		}

		out = append(out, pop)
	}

	out = append(out, m.Insn(m.OpPop))

	if t.Return != m.CategoryNone {
		zero, err := zeroFor(t.Return)
		if err != nil {
			return nil, false, fmt.Errorf("%s at %s: %w", o.Name(), id.Location, err)
		}

		out = append(out, zero)
	}

	return keepLine(insn.Line, out...), true, nil
}

// FieldElision replaces an instance field read with the zero value of the
// field type, discarding the object reference.
type FieldElision struct{}

// NewFieldElision returns the operator.
func NewFieldElision() FieldElision { return FieldElision{} }

// ID implements Operator.
func (FieldElision) ID() string { return "field_elision" }

// Name implements Operator.
func (FieldElision) Name() string { return "FIELD_ELISION" }

// NewRule implements Operator.
func (o FieldElision) NewRule() Rule { return o }

// Apply implements Rule.
func (o FieldElision) Apply(ctx *Context, insn m.Instruction) ([]m.Instruction, bool, error) {
	if insn.Op != m.OpGetField {
		return nil, false, nil
	}

	id := ctx.RegisterCandidate(o, fmt.Sprintf("removed read of field %s.%s", insn.Owner, insn.Name))
	if !ctx.ShouldMutate(id) {
		return nil, false, nil
	}

	field, err := m.ParseFieldDescriptor(insn.Desc)
	if err != nil {
		return nil, false, fmt.Errorf("%s at %s: %w", o.Name(), id.Location, err)
	}

	zero, err := zeroFor(field)
	if err != nil {
		return nil, false, fmt.Errorf("%s at %s: %w", o.Name(), id.Location, err)
	}

	return keepLine(insn.Line, m.Insn(m.OpPop), zero), true, nil
}
