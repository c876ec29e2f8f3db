package model

import (
	"errors"
	"fmt"
)

// ErrStackImbalance is returned when a rewritten region does not leave the
// operand stack in the same shape as the region it replaced.
var ErrStackImbalance = errors.New("stack effect mismatch")

// StackEffect is the number of stack words an instruction, or a contiguous
// region of instructions, consumes from and leaves on the operand stack.
type StackEffect struct {
	Pop  int
	Push int
}

// Net returns the change in stack height.
func (e StackEffect) Net() int { return e.Push - e.Pop }

func (e StackEffect) String() string {
	return fmt.Sprintf("-%d+%d", e.Pop, e.Push)
}

// StackEffect returns the words consumed and produced by i.
func (i Instruction) StackEffect() (StackEffect, error) {
	if !i.Op.Valid() {
		return StackEffect{}, fmt.Errorf("%w: %d", ErrUnknownOpcode, i.Op)
	}

	info := i.Op.info()

	switch info.kind {
	case KindGetField, KindPutField, KindGetStatic, KindPutStatic:
		field, err := ParseFieldDescriptor(i.Desc)
		if err != nil {
			return StackEffect{}, fmt.Errorf("%s: %w", i.Op, err)
		}

		return fieldEffect(info.kind, field.Width()), nil
	case KindInvoke:
		t, err := ParseMethodDescriptor(i.Desc)
		if err != nil {
			return StackEffect{}, fmt.Errorf("%s: %w", i.Op, err)
		}

		pop := t.ArgWords()
		if i.Op != OpInvokeStatic {
			pop++
		}

		return StackEffect{Pop: pop, Push: t.Return.Width()}, nil
	}

	return StackEffect{Pop: info.pop, Push: info.push}, nil
}

func fieldEffect(kind Kind, width int) StackEffect {
	switch kind {
	case KindGetField:
		return StackEffect{Pop: 1, Push: width}
	case KindPutField:
		return StackEffect{Pop: 1 + width}
	case KindGetStatic:
		return StackEffect{Push: width}
	case KindPutStatic:
		return StackEffect{Pop: width}
	}

	return StackEffect{}
}

// SequenceEffect folds the effects of a contiguous region. Pop is the deepest
// point reached below the entry height; Push is what remains above that point
// when the region ends.
func SequenceEffect(insns []Instruction) (StackEffect, error) {
	height := 0
	lowest := 0

	for _, insn := range insns {
		effect, err := insn.StackEffect()
		if err != nil {
			return StackEffect{}, err
		}

		height -= effect.Pop
		if height < lowest {
			lowest = height
		}

		height += effect.Push
	}

	return StackEffect{Pop: -lowest, Push: height - lowest}, nil
}

// CheckBalanced verifies that replacement has the same net stack effect as
// original and never reaches deeper into the stack than original does.
func CheckBalanced(original, replacement []Instruction) error {
	before, err := SequenceEffect(original)
	if err != nil {
		return err
	}

	after, err := SequenceEffect(replacement)
	if err != nil {
		return err
	}

	if before.Net() != after.Net() || after.Pop > before.Pop {
		return fmt.Errorf("%w: original %s, replacement %s", ErrStackImbalance, before, after)
	}

	return nil
}
