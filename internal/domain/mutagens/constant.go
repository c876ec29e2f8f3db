package mutagens

import (
	"fmt"
	"strings"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// ConstantVariant selects how an integer constant is replaced.
type ConstantVariant uint8

// Constant variants.
const (
	Negate ConstantVariant = iota
	ReplaceZero
	AddOne
	SubOne
)

var constantVariantNames = [...]string{"NEGATE", "REPLACE_ZERO", "ADD_ONE", "SUB_ONE"}

func (v ConstantVariant) String() string {
	if int(v) >= len(constantVariantNames) {
		return fmt.Sprintf("ConstantVariant(%d)", v)
	}

	return constantVariantNames[v]
}

// ConstantReplacement rewrites an integer constant push.
type ConstantReplacement struct {
	variant ConstantVariant
}

// NewConstantReplacement returns the operator for variant.
func NewConstantReplacement(variant ConstantVariant) ConstantReplacement {
	return ConstantReplacement{variant: variant}
}

// ID implements Operator.
func (o ConstantReplacement) ID() string { return "constant_" + strings.ToLower(o.variant.String()) }

// Name implements Operator.
func (o ConstantReplacement) Name() string { return "CRCR_" + o.variant.String() }

// NewRule implements Operator.
func (o ConstantReplacement) NewRule() Rule { return o }

// Apply implements Rule.
func (o ConstantReplacement) Apply(ctx *Context, insn m.Instruction) ([]m.Instruction, bool, error) {
	var value int64

	switch insn.Op {
	case m.OpPush:
		value = int64(int32(insn.Value))
	case m.OpIConst0:
	default:
		return nil, false, nil
	}

	replaced, ok := o.replace(value)
	if !ok {
		return nil, false, nil
	}

	id := ctx.RegisterCandidate(o, fmt.Sprintf("replaced constant %d with %d", value, replaced))
	if !ctx.ShouldMutate(id) {
		return nil, false, nil
	}

	return keepLine(insn.Line, m.PushInsn(replaced)), true, nil
}

// replace reports false when the variant would leave value unchanged. PUSH
// is an int constant, so results wrap at 32 bits.
func (o ConstantReplacement) replace(value int64) (int64, bool) {
	v := int32(value)

	var r int32

	switch o.variant {
	case Negate:
		r = -v
	case ReplaceZero:
		r = 0
	case AddOne:
		r = v + 1
	case SubOne:
		r = v - 1
	default:
		return value, false
	}

	return int64(r), r != v
}
