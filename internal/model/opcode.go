package model

import (
	"errors"
	"fmt"
)

// ErrUnknownOpcode is returned when an opcode name cannot be resolved.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Opcode identifies a single low-level operation.
type Opcode uint8

// Opcodes understood by the engine. Names follow the mnemonics produced by the
// decoder; anything the decoder emits that the engine does not mutate is still
// representable so streams round-trip unchanged.
const (
	OpNop Opcode = iota
	OpLabel
	OpAConstNull
	OpIConst0
	OpLConst0
	OpFConst0
	OpDConst0
	OpPush

	OpILoad
	OpLLoad
	OpFLoad
	OpDLoad
	OpALoad

	OpIStore
	OpLStore
	OpFStore
	OpDStore
	OpAStore

	OpPop
	OpPop2
	OpDup
	OpDupX1
	OpDupX2
	OpDup2
	OpDup2X1
	OpDup2X2
	OpSwap

	OpIAdd
	OpLAdd
	OpFAdd
	OpDAdd
	OpISub
	OpLSub
	OpFSub
	OpDSub
	OpIMul
	OpLMul
	OpFMul
	OpDMul
	OpIDiv
	OpLDiv
	OpFDiv
	OpDDiv
	OpIRem
	OpLRem
	OpFRem
	OpDRem

	OpINeg
	OpLNeg
	OpFNeg
	OpDNeg

	OpIInc

	OpIfEq
	OpIfNe
	OpIfLt
	OpIfGe
	OpIfGt
	OpIfLe
	OpIfICmpEq
	OpIfICmpNe
	OpIfICmpLt
	OpIfICmpGe
	OpIfICmpGt
	OpIfICmpLe
	OpIfACmpEq
	OpIfACmpNe
	OpIfNull
	OpIfNonNull
	OpGoto

	OpReturn
	OpIReturn
	OpLReturn
	OpFReturn
	OpDReturn
	OpAReturn

	OpGetField
	OpPutField
	OpGetStatic
	OpPutStatic

	OpInvokeVirtual
	OpInvokeSpecial
	OpInvokeStatic
	OpInvokeInterface

	opcodeCount
)

// Kind groups opcodes by the shape of operation they perform.
type Kind uint8

// Opcode kinds.
const (
	KindOther Kind = iota
	KindLabel
	KindConst
	KindLoad
	KindStore
	KindStack
	KindArith
	KindNeg
	KindIncrement
	KindBranchZero
	KindBranchCompare
	KindJump
	KindReturn
	KindGetField
	KindPutField
	KindGetStatic
	KindPutStatic
	KindInvoke
)

// ArithOp is a binary arithmetic operation independent of its category.
type ArithOp uint8

// Arithmetic operations, in substitution-table order.
const (
	ArithNone ArithOp = iota
	ArithAdd
	ArithSub
	ArithMul
	ArithDiv
	ArithRem
)

// ArithOps lists every arithmetic operation in table order.
var ArithOps = []ArithOp{ArithAdd, ArithSub, ArithMul, ArithDiv, ArithRem}

var arithSymbols = [...]string{"", "+", "-", "*", "/", "%"}
var arithNames = [...]string{"", "ADD", "SUB", "MUL", "DIV", "REM"}

// Symbol returns the source-level operator text.
func (op ArithOp) Symbol() string {
	if int(op) >= len(arithSymbols) {
		return "?"
	}

	return arithSymbols[op]
}

func (op ArithOp) String() string {
	if int(op) >= len(arithNames) {
		return fmt.Sprintf("ArithOp(%d)", op)
	}

	return arithNames[op]
}

// Relation is the test performed by a conditional branch.
type Relation uint8

// Relations, in substitution-table order.
const (
	RelNone Relation = iota
	RelEQ
	RelNE
	RelLT
	RelGE
	RelGT
	RelLE
)

// Relations lists every relation in table order.
var Relations = []Relation{RelEQ, RelNE, RelLT, RelGE, RelGT, RelLE}

var relationSymbols = [...]string{"", "==", "!=", "<", ">=", ">", "<="}
var relationNames = [...]string{"", "EQ", "NE", "LT", "GE", "GT", "LE"}

// Symbol returns the source-level operator text.
func (r Relation) Symbol() string {
	if int(r) >= len(relationSymbols) {
		return "?"
	}

	return relationSymbols[r]
}

func (r Relation) String() string {
	if int(r) >= len(relationNames) {
		return fmt.Sprintf("Relation(%d)", r)
	}

	return relationNames[r]
}

// BranchForm distinguishes single-operand branches from two-operand ones.
type BranchForm uint8

// Branch forms.
const (
	FormNone BranchForm = iota
	// FormZero compares the top of stack against zero.
	FormZero
	// FormCompare compares the two topmost values.
	FormCompare
)

type opcodeInfo struct {
	name     string
	kind     Kind
	category Category
	arith    ArithOp
	relation Relation
	form     BranchForm
	// pop and push are fixed word counts. They are ignored for kinds whose
	// effect depends on a descriptor.
	pop  int
	push int
}

var opcodeTable = [opcodeCount]opcodeInfo{
	OpNop:        {name: "NOP", kind: KindOther},
	OpLabel:      {name: "LABEL", kind: KindLabel},
	OpAConstNull: {name: "ACONST_NULL", kind: KindConst, category: CategoryReference, push: 1},
	OpIConst0:    {name: "ICONST_0", kind: KindConst, category: CategoryInt, push: 1},
	OpLConst0:    {name: "LCONST_0", kind: KindConst, category: CategoryLong, push: 2},
	OpFConst0:    {name: "FCONST_0", kind: KindConst, category: CategoryFloat, push: 1},
	OpDConst0:    {name: "DCONST_0", kind: KindConst, category: CategoryDouble, push: 2},
	OpPush:       {name: "PUSH", kind: KindConst, category: CategoryInt, push: 1},

	OpILoad: {name: "ILOAD", kind: KindLoad, category: CategoryInt, push: 1},
	OpLLoad: {name: "LLOAD", kind: KindLoad, category: CategoryLong, push: 2},
	OpFLoad: {name: "FLOAD", kind: KindLoad, category: CategoryFloat, push: 1},
	OpDLoad: {name: "DLOAD", kind: KindLoad, category: CategoryDouble, push: 2},
	OpALoad: {name: "ALOAD", kind: KindLoad, category: CategoryReference, push: 1},

	OpIStore: {name: "ISTORE", kind: KindStore, category: CategoryInt, pop: 1},
	OpLStore: {name: "LSTORE", kind: KindStore, category: CategoryLong, pop: 2},
	OpFStore: {name: "FSTORE", kind: KindStore, category: CategoryFloat, pop: 1},
	OpDStore: {name: "DSTORE", kind: KindStore, category: CategoryDouble, pop: 2},
	OpAStore: {name: "ASTORE", kind: KindStore, category: CategoryReference, pop: 1},

	OpPop:    {name: "POP", kind: KindStack, pop: 1},
	OpPop2:   {name: "POP2", kind: KindStack, pop: 2},
	OpDup:    {name: "DUP", kind: KindStack, pop: 1, push: 2},
	OpDupX1:  {name: "DUP_X1", kind: KindStack, pop: 2, push: 3},
	OpDupX2:  {name: "DUP_X2", kind: KindStack, pop: 3, push: 4},
	OpDup2:   {name: "DUP2", kind: KindStack, pop: 2, push: 4},
	OpDup2X1: {name: "DUP2_X1", kind: KindStack, pop: 3, push: 5},
	OpDup2X2: {name: "DUP2_X2", kind: KindStack, pop: 4, push: 6},
	OpSwap:   {name: "SWAP", kind: KindStack, pop: 2, push: 2},

	OpIAdd: arith("IADD", CategoryInt, ArithAdd),
	OpLAdd: arith("LADD", CategoryLong, ArithAdd),
	OpFAdd: arith("FADD", CategoryFloat, ArithAdd),
	OpDAdd: arith("DADD", CategoryDouble, ArithAdd),
	OpISub: arith("ISUB", CategoryInt, ArithSub),
	OpLSub: arith("LSUB", CategoryLong, ArithSub),
	OpFSub: arith("FSUB", CategoryFloat, ArithSub),
	OpDSub: arith("DSUB", CategoryDouble, ArithSub),
	OpIMul: arith("IMUL", CategoryInt, ArithMul),
	OpLMul: arith("LMUL", CategoryLong, ArithMul),
	OpFMul: arith("FMUL", CategoryFloat, ArithMul),
	OpDMul: arith("DMUL", CategoryDouble, ArithMul),
	OpIDiv: arith("IDIV", CategoryInt, ArithDiv),
	OpLDiv: arith("LDIV", CategoryLong, ArithDiv),
	OpFDiv: arith("FDIV", CategoryFloat, ArithDiv),
	OpDDiv: arith("DDIV", CategoryDouble, ArithDiv),
	OpIRem: arith("IREM", CategoryInt, ArithRem),
	OpLRem: arith("LREM", CategoryLong, ArithRem),
	OpFRem: arith("FREM", CategoryFloat, ArithRem),
	OpDRem: arith("DREM", CategoryDouble, ArithRem),

	OpINeg: {name: "INEG", kind: KindNeg, category: CategoryInt, pop: 1, push: 1},
	OpLNeg: {name: "LNEG", kind: KindNeg, category: CategoryLong, pop: 2, push: 2},
	OpFNeg: {name: "FNEG", kind: KindNeg, category: CategoryFloat, pop: 1, push: 1},
	OpDNeg: {name: "DNEG", kind: KindNeg, category: CategoryDouble, pop: 2, push: 2},

	OpIInc: {name: "IINC", kind: KindIncrement, category: CategoryInt},

	OpIfEq:      branch("IFEQ", FormZero, CategoryInt, RelEQ),
	OpIfNe:      branch("IFNE", FormZero, CategoryInt, RelNE),
	OpIfLt:      branch("IFLT", FormZero, CategoryInt, RelLT),
	OpIfGe:      branch("IFGE", FormZero, CategoryInt, RelGE),
	OpIfGt:      branch("IFGT", FormZero, CategoryInt, RelGT),
	OpIfLe:      branch("IFLE", FormZero, CategoryInt, RelLE),
	OpIfICmpEq:  branch("IF_ICMPEQ", FormCompare, CategoryInt, RelEQ),
	OpIfICmpNe:  branch("IF_ICMPNE", FormCompare, CategoryInt, RelNE),
	OpIfICmpLt:  branch("IF_ICMPLT", FormCompare, CategoryInt, RelLT),
	OpIfICmpGe:  branch("IF_ICMPGE", FormCompare, CategoryInt, RelGE),
	OpIfICmpGt:  branch("IF_ICMPGT", FormCompare, CategoryInt, RelGT),
	OpIfICmpLe:  branch("IF_ICMPLE", FormCompare, CategoryInt, RelLE),
	OpIfACmpEq:  branch("IF_ACMPEQ", FormCompare, CategoryReference, RelEQ),
	OpIfACmpNe:  branch("IF_ACMPNE", FormCompare, CategoryReference, RelNE),
	OpIfNull:    branch("IFNULL", FormZero, CategoryReference, RelEQ),
	OpIfNonNull: branch("IFNONNULL", FormZero, CategoryReference, RelNE),
	OpGoto:      {name: "GOTO", kind: KindJump},

	OpReturn:  {name: "RETURN", kind: KindReturn},
	OpIReturn: {name: "IRETURN", kind: KindReturn, category: CategoryInt, pop: 1},
	OpLReturn: {name: "LRETURN", kind: KindReturn, category: CategoryLong, pop: 2},
	OpFReturn: {name: "FRETURN", kind: KindReturn, category: CategoryFloat, pop: 1},
	OpDReturn: {name: "DRETURN", kind: KindReturn, category: CategoryDouble, pop: 2},
	OpAReturn: {name: "ARETURN", kind: KindReturn, category: CategoryReference, pop: 1},

	OpGetField:  {name: "GETFIELD", kind: KindGetField},
	OpPutField:  {name: "PUTFIELD", kind: KindPutField},
	OpGetStatic: {name: "GETSTATIC", kind: KindGetStatic},
	OpPutStatic: {name: "PUTSTATIC", kind: KindPutStatic},

	OpInvokeVirtual:   {name: "INVOKEVIRTUAL", kind: KindInvoke},
	OpInvokeSpecial:   {name: "INVOKESPECIAL", kind: KindInvoke},
	OpInvokeStatic:    {name: "INVOKESTATIC", kind: KindInvoke},
	OpInvokeInterface: {name: "INVOKEINTERFACE", kind: KindInvoke},
}

func arith(name string, category Category, op ArithOp) opcodeInfo {
	w := category.Width()

	return opcodeInfo{name: name, kind: KindArith, category: category, arith: op, pop: 2 * w, push: w}
}

func branch(name string, form BranchForm, category Category, relation Relation) opcodeInfo {
	pop := 1
	if form == FormCompare {
		pop = 2
	}

	return opcodeInfo{name: name, kind: KindBranchZero + Kind(form-FormZero), category: category, relation: relation, form: form, pop: pop}
}

type arithKey struct {
	category Category
	op       ArithOp
}

type branchKey struct {
	form     BranchForm
	category Category
	relation Relation
}

var (
	opcodeByName   = map[string]Opcode{}
	arithOpcodes   = map[arithKey]Opcode{}
	branchOpcodes  = map[branchKey]Opcode{}
	kindCategoryOp = map[Kind]map[Category]Opcode{}
)

func init() {
	for i := Opcode(0); i < opcodeCount; i++ {
		info := opcodeTable[i]
		opcodeByName[info.name] = i

		switch info.kind {
		case KindArith:
			arithOpcodes[arithKey{info.category, info.arith}] = i
		case KindBranchZero, KindBranchCompare:
			branchOpcodes[branchKey{info.form, info.category, info.relation}] = i
		case KindLoad, KindStore, KindNeg, KindReturn:
			if kindCategoryOp[info.kind] == nil {
				kindCategoryOp[info.kind] = map[Category]Opcode{}
			}

			kindCategoryOp[info.kind][info.category] = i
		case KindConst:
			if i == OpPush {
				continue
			}

			if kindCategoryOp[info.kind] == nil {
				kindCategoryOp[info.kind] = map[Category]Opcode{}
			}

			kindCategoryOp[info.kind][info.category] = i
		}
	}
}

func (op Opcode) info() opcodeInfo {
	if op >= opcodeCount {
		return opcodeInfo{name: fmt.Sprintf("Opcode(%d)", op)}
	}

	return opcodeTable[op]
}

func (op Opcode) String() string { return op.info().name }

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool { return op < opcodeCount }

// Kind returns the operation kind.
func (op Opcode) Kind() Kind { return op.info().kind }

// Category returns the operand category, or CategoryNone when the opcode is
// category-agnostic or descriptor-driven.
func (op Opcode) Category() Category { return op.info().category }

// ArithOp returns the arithmetic operation for arithmetic opcodes.
func (op Opcode) ArithOp() ArithOp { return op.info().arith }

// Relation returns the branch relation for conditional branches.
func (op Opcode) Relation() Relation { return op.info().relation }

// Form returns the branch form for conditional branches.
func (op Opcode) Form() BranchForm { return op.info().form }

// MarshalText encodes the opcode as its mnemonic.
func (op Opcode) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOpcode, op)
	}

	return []byte(op.String()), nil
}

// UnmarshalText decodes a mnemonic.
func (op *Opcode) UnmarshalText(text []byte) error {
	parsed, err := ParseOpcode(string(text))
	if err != nil {
		return err
	}

	*op = parsed

	return nil
}

// ParseOpcode resolves a mnemonic such as "IADD".
func ParseOpcode(name string) (Opcode, error) {
	op, ok := opcodeByName[name]
	if !ok {
		return OpNop, fmt.Errorf("%w: %q", ErrUnknownOpcode, name)
	}

	return op, nil
}

// ArithOpcode returns the arithmetic opcode for a category and operation.
func ArithOpcode(category Category, op ArithOp) (Opcode, bool) {
	code, ok := arithOpcodes[arithKey{category, op}]
	return code, ok
}

// BranchOpcode returns the conditional branch for a form, category and relation.
func BranchOpcode(form BranchForm, category Category, relation Relation) (Opcode, bool) {
	code, ok := branchOpcodes[branchKey{form, category, relation}]
	return code, ok
}

// LoadOpcode returns the local-variable load for a category.
func LoadOpcode(category Category) (Opcode, bool) { return lookupKind(KindLoad, category) }

// NegOpcode returns the negation for a numeric category.
func NegOpcode(category Category) (Opcode, bool) { return lookupKind(KindNeg, category) }

// ZeroOpcode returns the instruction pushing the zero value of a category
// (null for references).
func ZeroOpcode(category Category) (Opcode, bool) { return lookupKind(KindConst, category) }

func lookupKind(kind Kind, category Category) (Opcode, bool) {
	code, ok := kindCategoryOp[kind][category]
	return code, ok
}
