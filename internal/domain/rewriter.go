package domain

import (
	"fmt"

	"gooze.dev/pkg/stackmut/internal/domain/mutagens"
	m "gooze.dev/pkg/stackmut/internal/model"
)

// ScanOptions selects the candidate materialized by a scan.
type ScanOptions struct {
	// Target is the ordinal of the candidate to materialize. mutagens.NoTarget
	// only counts candidates.
	Target int
	// Seed drives the random choices operators make during the scan.
	Seed int64
}

// Rewrite runs one pass of method through ops. Every operator is offered every
// instruction of the original stream, so materializing a candidate never moves
// the ordinals of the candidates after it. When Target has no candidate the
// result carries an unchanged copy of the stream and a nil Mutation.
func Rewrite(method m.Method, ops []mutagens.Operator, opts ScanOptions) (m.ScanResult, error) {
	ctx := mutagens.NewContext(method.Ref(), opts.Target, opts.Seed)

	rules := make([]mutagens.Rule, len(ops))
	for i, op := range ops {
		rules[i] = op.NewRule()
	}

	result := m.ScanResult{
		Instructions: make([]m.Instruction, 0, len(method.Instructions)),
	}

	for index, insn := range method.Instructions {
		ctx.At(index, insn)

		var (
			replacement []m.Instruction
			selected    bool
		)

		for _, rule := range rules {
			emitted, ok, err := rule.Apply(ctx, insn)
			if err != nil {
				return m.ScanResult{}, fmt.Errorf("rewrite %s at %d: %w", method.Ref(), index, err)
			}

			if ok {
				replacement = emitted
				selected = true
			}
		}

		if !selected {
			result.Instructions = append(result.Instructions, insn)
			continue
		}

		if err := m.CheckBalanced([]m.Instruction{insn}, replacement); err != nil {
			return m.ScanResult{}, fmt.Errorf("rewrite %s at %d (%s): %w", method.Ref(), index, insn, err)
		}

		result.Region = m.Region{Start: index, Original: 1, Replacement: len(replacement)}
		result.Instructions = append(result.Instructions, replacement...)
	}

	result.Mutation = ctx.Selected()
	result.Candidates = ctx.Count()

	return result, nil
}

// Candidates lists every candidate ops find in method, in ordinal order.
func Candidates(method m.Method, ops []mutagens.Operator, seed int64) ([]m.MutationIdentifier, error) {
	ctx := mutagens.NewContext(method.Ref(), mutagens.NoTarget, seed)

	rules := make([]mutagens.Rule, len(ops))
	for i, op := range ops {
		rules[i] = op.NewRule()
	}

	for index, insn := range method.Instructions {
		ctx.At(index, insn)

		for _, rule := range rules {
			if _, _, err := rule.Apply(ctx, insn); err != nil {
				return nil, fmt.Errorf("scan %s at %d: %w", method.Ref(), index, err)
			}
		}
	}

	return ctx.Candidates(), nil
}
