package domain_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/stackmut/internal/domain"
	"gooze.dev/pkg/stackmut/internal/domain/mutagens"
	m "gooze.dev/pkg/stackmut/internal/model"
)

func addMethod() m.Method {
	return m.Method{
		Class:      "com/example/Calc",
		Name:       "add",
		Descriptor: "(II)I",
		Instructions: []m.Instruction{
			m.VarInsn(m.OpILoad, 1).WithLine(3),
			m.VarInsn(m.OpILoad, 2).WithLine(3),
			m.Insn(m.OpIAdd).WithLine(3),
			m.Insn(m.OpIReturn).WithLine(3),
		},
	}
}

// mixedMethod exercises every operator family at least once.
func mixedMethod() m.Method {
	return m.Method{
		Class:      "com/example/Calc",
		Name:       "mixed",
		Descriptor: "(IJLcom/example/Calc;)I",
		Instructions: []m.Instruction{
			m.VarInsn(m.OpILoad, 1).WithLine(10),
			m.PushInsn(5).WithLine(10),
			m.JumpInsn(m.OpIfICmpLe, "L0").WithLine(10),
			m.IncInsn(1, 1).WithLine(11),
			m.LabelInsn("L0"),
			m.VarInsn(m.OpLLoad, 2).WithLine(12),
			m.Insn(m.OpLNeg).WithLine(12),
			m.VarInsn(m.OpLStore, 2).WithLine(12),
			m.VarInsn(m.OpALoad, 4).WithLine(13),
			m.FieldInsn(m.OpGetField, "com/example/Calc", "base", "I").WithLine(13),
			m.VarInsn(m.OpALoad, 4).WithLine(14),
			m.VarInsn(m.OpILoad, 1).WithLine(14),
			m.MethodInsn(m.OpInvokeVirtual, "com/example/Calc", "scale", "(I)I").WithLine(14),
			m.Insn(m.OpIMul).WithLine(14),
			m.VarInsn(m.OpIStore, 5).WithLine(14),
			m.VarInsn(m.OpILoad, 5).WithLine(15),
			m.Insn(m.OpIReturn).WithLine(15),
		},
	}
}

func resolve(t *testing.T, names ...string) []mutagens.Operator {
	t.Helper()

	ops, err := domain.MustBuildCatalog().ResolveAll(names)
	require.NoError(t, err)

	return ops
}

func TestRewrite_IntAddReplacement(t *testing.T) {
	method := addMethod()
	ops := resolve(t, "ARITHMETIC_REPLACE")

	expected := []m.Opcode{m.OpISub, m.OpIMul, m.OpIDiv, m.OpIRem}

	for ordinal, want := range expected {
		result, err := domain.Rewrite(method, ops, domain.ScanOptions{Target: ordinal, Seed: 1})
		require.NoError(t, err)

		require.True(t, result.Mutated())
		assert.Equal(t, ordinal, result.Mutation.Ordinal)
		assert.Equal(t, 4, result.Candidates)
		assert.Equal(t, 2, result.Mutation.Location.Index)
		assert.Equal(t, 3, result.Mutation.Location.Line)
		assert.Equal(t, m.Region{Start: 2, Original: 1, Replacement: 1}, result.Region)

		require.Len(t, result.Instructions, 4)
		assert.Equal(t, want, result.Instructions[2].Op)
		assert.Equal(t, 3, result.Instructions[2].Line)
		assert.Equal(t, method.Instructions[3], result.Instructions[3])
	}
}

func TestRewrite_OrdinalPastLastCandidateLeavesStreamUnchanged(t *testing.T) {
	method := addMethod()

	result, err := domain.Rewrite(method, resolve(t, "ARITHMETIC_REPLACE"), domain.ScanOptions{Target: 4})
	require.NoError(t, err)

	assert.False(t, result.Mutated())
	assert.Nil(t, result.Mutation)
	assert.Equal(t, 4, result.Candidates)
	assert.Equal(t, method.Instructions, result.Instructions)
}

func TestRewrite_DoesNotModifyInput(t *testing.T) {
	method := addMethod()
	before := append([]m.Instruction(nil), method.Instructions...)

	_, err := domain.Rewrite(method, resolve(t, "ALL"), domain.ScanOptions{Target: 0})
	require.NoError(t, err)

	assert.Equal(t, before, method.Instructions)
}

func TestRewrite_LaterCandidatesKeepTheirOrdinals(t *testing.T) {
	method := m.Method{
		Class: "com/example/Calc", Name: "twice", Descriptor: "(II)I",
		Instructions: []m.Instruction{
			m.VarInsn(m.OpILoad, 1),
			m.VarInsn(m.OpILoad, 2),
			m.Insn(m.OpIAdd),
			m.VarInsn(m.OpILoad, 2),
			m.Insn(m.OpIAdd),
			m.Insn(m.OpIReturn),
		},
	}
	ops := resolve(t, "ARITHMETIC_REPLACE")

	result, err := domain.Rewrite(method, ops, domain.ScanOptions{Target: 4})
	require.NoError(t, err)

	require.True(t, result.Mutated())
	assert.Equal(t, 8, result.Candidates)
	assert.Equal(t, 4, result.Mutation.Location.Index)
	assert.Equal(t, m.OpIAdd, result.Instructions[2].Op)
	assert.Equal(t, m.OpISub, result.Instructions[4].Op)
}

func TestRewrite_EveryOrdinalIsDistinctAndBalanced(t *testing.T) {
	method := mixedMethod()
	ops := resolve(t, "ALL")

	candidates, err := domain.Candidates(method, ops, 7)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	seen := make(map[string]bool, len(candidates))

	for ordinal, candidate := range candidates {
		assert.Equal(t, ordinal, candidate.Ordinal)

		result, err := domain.Rewrite(method, ops, domain.ScanOptions{Target: ordinal, Seed: 7})
		require.NoError(t, err, "ordinal %d", ordinal)
		require.True(t, result.Mutated(), "ordinal %d", ordinal)

		assert.Equal(t, candidate, *result.Mutation)
		assert.Equal(t, len(candidates), result.Candidates)

		key := candidate.String()
		assert.False(t, seen[key], "duplicate candidate %s", key)
		seen[key] = true

		before, err := m.SequenceEffect(method.Instructions)
		require.NoError(t, err)

		after, err := m.SequenceEffect(result.Instructions)
		require.NoError(t, err)

		assert.Equal(t, before.Net(), after.Net(), "ordinal %d", ordinal)
		assert.LessOrEqual(t, after.Pop, before.Pop, "ordinal %d", ordinal)
	}

	result, err := domain.Rewrite(method, ops, domain.ScanOptions{Target: len(candidates), Seed: 7})
	require.NoError(t, err)
	assert.False(t, result.Mutated())
	assert.Equal(t, method.Instructions, result.Instructions)
}

func TestRewrite_IsDeterministic(t *testing.T) {
	method := mixedMethod()
	ops := resolve(t, "ALL")

	first, err := domain.Candidates(method, ops, 42)
	require.NoError(t, err)

	second, err := domain.Candidates(method, ops, 42)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	for ordinal := range first {
		a, err := domain.Rewrite(method, ops, domain.ScanOptions{Target: ordinal, Seed: 42})
		require.NoError(t, err)

		b, err := domain.Rewrite(method, ops, domain.ScanOptions{Target: ordinal, Seed: 42})
		require.NoError(t, err)

		assert.Equal(t, a, b)
	}
}

func TestRewrite_TypeConfusionNeverCrossesCategories(t *testing.T) {
	method := m.Method{
		Class: "com/example/Calc", Name: "slots", Descriptor: "()J",
		Instructions: []m.Instruction{
			m.PushInsn(1),
			m.VarInsn(m.OpIStore, 1),
			m.Insn(m.OpLConst0),
			m.VarInsn(m.OpLStore, 2),
			m.VarInsn(m.OpLLoad, 2),
			m.Insn(m.OpLReturn),
		},
	}

	candidates, err := domain.Candidates(method, resolve(t, "TYPE_CONFUSION"), 3)
	require.NoError(t, err)

	assert.Empty(t, candidates)
}

func TestRewrite_MalformedDescriptorFailsTheScan(t *testing.T) {
	method := m.Method{
		Class: "com/example/Calc", Name: "call", Descriptor: "()V",
		Instructions: []m.Instruction{
			m.VarInsn(m.OpALoad, 0),
			m.MethodInsn(m.OpInvokeVirtual, "com/example/Calc", "broken", "(I"),
			m.Insn(m.OpReturn),
		},
	}

	_, err := domain.Rewrite(method, resolve(t, "CALL_ELISION"), domain.ScanOptions{Target: 0})
	require.Error(t, err)
}

func TestCandidates_CountOnlyScanSelectsNothing(t *testing.T) {
	method := addMethod()

	result, err := domain.Rewrite(method, resolve(t, "DEFAULTS"), domain.ScanOptions{Target: mutagens.NoTarget})
	require.NoError(t, err)

	candidates, err := domain.Candidates(method, resolve(t, "DEFAULTS"), 0)
	require.NoError(t, err)

	assert.False(t, result.Mutated())
	assert.Equal(t, len(candidates), result.Candidates)
	assert.Equal(t, method.Instructions, result.Instructions)
}

func TestRewrite_AllYieldsNoDuplicateArithmeticMutants(t *testing.T) {
	method := addMethod()
	ops := resolve(t, "ALL")

	candidates, err := domain.Candidates(method, ops, 1)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	streams := make(map[string]string, len(candidates))

	for ordinal := range candidates {
		result, err := domain.Rewrite(method, ops, domain.ScanOptions{Target: ordinal, Seed: 1})
		require.NoError(t, err)

		key := fmt.Sprint(result.Instructions)
		if previous, ok := streams[key]; ok {
			t.Errorf("%s duplicates %s", result.Mutation, previous)
		}

		streams[key] = result.Mutation.String()
	}
}
