package mutagens

import (
	"testing"

	"github.com/stretchr/testify/require"
	m "gooze.dev/pkg/stackmut/internal/model"
)

var testMethod = m.MethodRef{Class: "com/example/Calc", Method: "apply", Descriptor: "(II)I"}

type scanned struct {
	out        []m.Instruction
	selected   *m.MutationIdentifier
	candidates []m.MutationIdentifier
	// replacement is what the selected rule emitted, original what it replaced.
	replacement []m.Instruction
	original    []m.Instruction
}

// scan runs a single operator over insns the way the rewriter does.
func scan(t *testing.T, op Operator, insns []m.Instruction, target int) scanned {
	t.Helper()

	ctx := NewContext(testMethod, target, 1)
	rule := op.NewRule()

	var result scanned

	for i, insn := range insns {
		ctx.At(i, insn)

		replacement, ok, err := rule.Apply(ctx, insn)
		require.NoError(t, err)

		if ok {
			result.out = append(result.out, replacement...)
			result.replacement = replacement
			result.original = []m.Instruction{insn}

			continue
		}

		result.out = append(result.out, insn)
	}

	result.selected = ctx.Selected()
	result.candidates = ctx.Candidates()

	return result
}

func requireBalanced(t *testing.T, s scanned) {
	t.Helper()

	require.NotNil(t, s.selected)
	require.NoError(t, m.CheckBalanced(s.original, s.replacement))
}

func ops(insns []m.Instruction) []m.Opcode {
	out := make([]m.Opcode, len(insns))
	for i, insn := range insns {
		out[i] = insn.Op
	}

	return out
}
