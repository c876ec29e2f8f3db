package mutagens

import (
	"fmt"
	"strings"

	m "gooze.dev/pkg/stackmut/internal/model"
)

type relationalKey struct {
	form   m.BranchForm
	source m.Relation
	target m.Relation
}

// relationalTable holds the report label for every (form, source, target)
// substitution. Only integer branches take part: reference comparisons have no
// ordering to swap in.
var relationalTable = buildRelationalTable()

func buildRelationalTable() map[relationalKey]string {
	table := make(map[relationalKey]string)

	for _, form := range []m.BranchForm{m.FormZero, m.FormCompare} {
		for _, target := range m.Relations {
			for _, source := range m.Relations {
				if source == target {
					continue
				}

				label := source.Symbol()
				if form == m.FormCompare {
					label += " (branch)"
				}

				table[relationalKey{form, source, target}] = fmt.Sprintf("%s replaced by %s", label, target.Symbol())
			}
		}
	}

	return table
}

// RelationalReplacement replaces the test of an integer conditional branch with
// target, keeping the branch form and destination.
type RelationalReplacement struct {
	target m.Relation
}

// NewRelationalReplacement returns the operator replacing relations with target.
func NewRelationalReplacement(target m.Relation) RelationalReplacement {
	return RelationalReplacement{target: target}
}

// ID implements Operator.
func (o RelationalReplacement) ID() string {
	return "relational_replacement_" + strings.ToLower(o.target.String())
}

// Name implements Operator.
func (o RelationalReplacement) Name() string { return "RELATION_REPLACE_" + o.target.String() }

// NewRule implements Operator.
func (o RelationalReplacement) NewRule() Rule { return o }

// Apply implements Rule.
func (o RelationalReplacement) Apply(ctx *Context, insn m.Instruction) ([]m.Instruction, bool, error) {
	kind := insn.Op.Kind()
	if kind != m.KindBranchZero && kind != m.KindBranchCompare {
		return nil, false, nil
	}

	if insn.Op.Category() != m.CategoryInt {
		return nil, false, nil
	}

	label, ok := relationalTable[relationalKey{insn.Op.Form(), insn.Op.Relation(), o.target}]
	if !ok {
		return nil, false, nil
	}

	replacement, ok := m.BranchOpcode(insn.Op.Form(), m.CategoryInt, o.target)
	if !ok {
		return nil, false, fmt.Errorf("%s: no %s branch for %s", o.Name(), o.target, insn.Op)
	}

	id := ctx.RegisterCandidate(o, label)
	if !ctx.ShouldMutate(id) {
		return nil, false, nil
	}

	mutated := insn
	mutated.Op = replacement

	return []m.Instruction{mutated}, true, nil
}
