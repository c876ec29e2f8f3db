package mutagens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "gooze.dev/pkg/stackmut/internal/model"
)

func TestRelationalReplacement_KeepsForm(t *testing.T) {
	tests := []struct {
		name   string
		source m.Opcode
		target m.Relation
		want   m.Opcode
		label  string
	}{
		{"zero form", m.OpIfLe, m.RelEQ, m.OpIfEq, "<= replaced by =="},
		{"compare form", m.OpIfICmpLe, m.RelEQ, m.OpIfICmpEq, "<= (branch) replaced by =="},
		{"boundary", m.OpIfICmpLt, m.RelLE, m.OpIfICmpLe, "< (branch) replaced by <="},
		{"negated", m.OpIfNe, m.RelGT, m.OpIfGt, "!= replaced by >"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []m.Instruction{m.JumpInsn(tt.source, "L1")}
			s := scan(t, NewRelationalReplacement(tt.target), body, 0)

			require.NotNil(t, s.selected)
			assert.Equal(t, tt.label, s.selected.Description)
			assert.Equal(t, tt.want, s.out[0].Op)
			assert.Equal(t, "L1", s.out[0].Target)
			assert.Equal(t, tt.source.Form(), s.out[0].Op.Form())
			requireBalanced(t, s)
		})
	}
}

func TestRelationalReplacement_Skips(t *testing.T) {
	body := []m.Instruction{
		m.JumpInsn(m.OpIfEq, "L1"),
		m.JumpInsn(m.OpIfACmpNe, "L1"),
		m.JumpInsn(m.OpIfNull, "L1"),
		m.JumpInsn(m.OpGoto, "L1"),
	}

	s := scan(t, NewRelationalReplacement(m.RelEQ), body, 0)

	assert.Empty(t, s.candidates)
	assert.Equal(t, body, s.out)
}

func TestRelationalReplacement_Names(t *testing.T) {
	op := NewRelationalReplacement(m.RelGE)

	assert.Equal(t, "relational_replacement_ge", op.ID())
	assert.Equal(t, "RELATION_REPLACE_GE", op.Name())
}

func TestIncrementMutation(t *testing.T) {
	tests := []struct {
		variant IncrementVariant
		name    string
		incr    int
		want    int
		desc    string
	}{
		{Increment, "INC_ADD", 1, 2, "Added unary increment 1 -> 2 to local variable"},
		{Decrement, "INC_SUB", 1, 0, "Added unary decrement 1 -> 0 to local variable"},
		{Remove, "INC_RMV", 3, 0, "Removed unary increment of local variable"},
		{Reverse, "INC_RVS", 3, -3, "Reversed increment of local variable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewIncrementMutation(tt.variant)
			assert.Equal(t, tt.name, op.Name())

			body := []m.Instruction{m.IncInsn(4, tt.incr)}
			s := scan(t, op, body, 0)

			require.NotNil(t, s.selected)
			assert.Equal(t, tt.desc, s.selected.Description)
			assert.Equal(t, tt.want, s.out[0].Incr)
			assert.Equal(t, 4, s.out[0].Var)
			requireBalanced(t, s)
		})
	}
}

func TestIncrementMutation_ZeroIncrementSkipped(t *testing.T) {
	body := []m.Instruction{m.IncInsn(1, 0)}

	for _, variant := range []IncrementVariant{Remove, Reverse} {
		s := scan(t, NewIncrementMutation(variant), body, 0)

		assert.Empty(t, s.candidates, variant.String())
		assert.Equal(t, body, s.out)
	}

	s := scan(t, NewIncrementMutation(Increment), body, 0)
	require.NotNil(t, s.selected)
	assert.Equal(t, 1, s.out[0].Incr)
}

func TestIncrementMutation_OnlyLocals(t *testing.T) {
	body := []m.Instruction{
		m.Insn(m.OpIAdd),
		m.FieldInsn(m.OpPutField, "com/example/Calc", "count", "I"),
	}

	s := scan(t, NewIncrementMutation(Increment), body, 0)

	assert.Empty(t, s.candidates)
}
