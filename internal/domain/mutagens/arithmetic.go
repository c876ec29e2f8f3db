package mutagens

import (
	"strings"

	m "gooze.dev/pkg/stackmut/internal/model"
)

const arithmeticDescription = "replaced arithmetic operator"

var arithmeticCategories = []m.Category{m.CategoryInt, m.CategoryLong, m.CategoryFloat, m.CategoryDouble}

type arithmeticKey struct {
	category m.Category
	op       m.ArithOp
}

// arithmeticTable maps a source operation to the same-category operations that
// may replace it, in table order.
var arithmeticTable = buildArithmeticTable()

func buildArithmeticTable() map[arithmeticKey][]m.Opcode {
	table := make(map[arithmeticKey][]m.Opcode)

	for _, category := range arithmeticCategories {
		for _, source := range m.ArithOps {
			for _, target := range m.ArithOps {
				if target == source {
					continue
				}

				op, ok := m.ArithOpcode(category, target)
				if !ok {
					continue
				}

				key := arithmeticKey{category, source}
				table[key] = append(table[key], op)
			}
		}
	}

	return table
}

// ArithmeticReplacement swaps a binary arithmetic instruction for another one
// of the same category. With no target it offers every alternative as its own
// candidate; with a target it only ever emits the target.
type ArithmeticReplacement struct {
	category m.Category
	target   m.ArithOp
}

// NewArithmeticReplacement returns the operator offering every alternative.
func NewArithmeticReplacement() ArithmeticReplacement {
	return ArithmeticReplacement{}
}

// NewArithmeticReplacementTo returns the operator that replaces any other
// arithmetic instruction of category with target.
func NewArithmeticReplacementTo(category m.Category, target m.ArithOp) ArithmeticReplacement {
	return ArithmeticReplacement{category: category, target: target}
}

// ID implements Operator.
func (o ArithmeticReplacement) ID() string {
	if o.target == m.ArithNone {
		return "arithmetic_replacement"
	}

	return "arithmetic_replacement_" + strings.ToLower(o.targetOpcode().String())
}

// Name implements Operator.
func (o ArithmeticReplacement) Name() string {
	if o.target == m.ArithNone {
		return "ARITHMETIC_REPLACE"
	}

	return "ARITHMETIC_REPLACE_" + o.targetOpcode().String()
}

// NewRule implements Operator.
func (o ArithmeticReplacement) NewRule() Rule { return o }

func (o ArithmeticReplacement) targetOpcode() m.Opcode {
	op, _ := m.ArithOpcode(o.category, o.target)
	return op
}

// Apply implements Rule.
func (o ArithmeticReplacement) Apply(ctx *Context, insn m.Instruction) ([]m.Instruction, bool, error) {
	if insn.Op.Kind() != m.KindArith {
		return nil, false, nil
	}

	category := insn.Op.Category()
	if o.target != m.ArithNone && category != o.category {
		return nil, false, nil
	}

	var (
		replacement []m.Instruction
		selected    bool
	)

	for _, alternative := range arithmeticTable[arithmeticKey{category, insn.Op.ArithOp()}] {
		if o.target != m.ArithNone && alternative.ArithOp() != o.target {
			continue
		}

		id := ctx.RegisterCandidate(o, arithmeticDescription)
		if ctx.ShouldMutate(id) {
			replacement = keepLine(insn.Line, m.Insn(alternative))
			selected = true
		}
	}

	return replacement, selected, nil
}
