package mutagens

import (
	"fmt"
	"sort"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// TypeConfusion substitutes a local-variable load with a load of another slot
// last stored with the same category. Slot categories are learned from stores
// as the scan proceeds, so a slot is only a substitute once it has been
// written earlier in the stream.
type TypeConfusion struct{}

// NewTypeConfusion returns the operator.
func NewTypeConfusion() TypeConfusion { return TypeConfusion{} }

// ID implements Operator.
func (TypeConfusion) ID() string { return "type_confusion" }

// Name implements Operator.
func (TypeConfusion) Name() string { return "TYPE_CONFUSION" }

// NewRule implements Operator.
func (TypeConfusion) NewRule() Rule {
	return &confusionRule{slots: make(map[int]m.Category)}
}

type confusionRule struct {
	op    TypeConfusion
	slots map[int]m.Category
}

// Apply implements Rule.
func (r *confusionRule) Apply(ctx *Context, insn m.Instruction) ([]m.Instruction, bool, error) {
	switch insn.Op.Kind() {
	case m.KindStore:
		r.store(insn.Var, insn.Op.Category())
		return nil, false, nil
	case m.KindLoad:
	default:
		return nil, false, nil
	}

	category := insn.Op.Category()

	others := r.sameCategory(category, insn.Var)
	if len(others) == 0 {
		return nil, false, nil
	}

	// Drawn before selection so the random stream does not depend on the target.
	slot := others[ctx.Rand().Intn(len(others))]

	id := ctx.RegisterCandidate(r.op, fmt.Sprintf("replaced load of %s slot %d with slot %d", category, insn.Var, slot))
	if !ctx.ShouldMutate(id) {
		return nil, false, nil
	}

	mutated := insn
	mutated.Var = slot

	return []m.Instruction{mutated}, true, nil
}

// store records category in slot. Long and double values take two slots, so
// a write also invalidates any value it partly overwrites.
func (r *confusionRule) store(slot int, category m.Category) {
	if prev, ok := r.slots[slot-1]; ok && prev.Width() == 2 {
		delete(r.slots, slot-1)
	}

	if category.Width() == 2 {
		delete(r.slots, slot+1)
	}

	r.slots[slot] = category
}

func (r *confusionRule) sameCategory(category m.Category, exclude int) []int {
	var out []int

	for slot, c := range r.slots {
		if c == category && slot != exclude {
			out = append(out, slot)
		}
	}

	sort.Ints(out)

	return out
}
