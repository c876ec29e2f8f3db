// Package model defines the data structures for instruction-level mutation testing.
package model

import (
	"fmt"
	"strings"
)

// Instruction is one operation of a method body. Only the operand fields
// relevant to Op are meaningful; the rest stay zero.
type Instruction struct {
	Op Opcode `yaml:"op"`
	// Var is the local-variable slot for loads, stores and IINC.
	Var int `yaml:"var,omitempty"`
	// Incr is the IINC constant.
	Incr int `yaml:"incr,omitempty"`
	// Value is the PUSH constant.
	Value int64 `yaml:"value,omitempty"`
	// Target is the branch label; for LABEL it names the label itself.
	Target string `yaml:"target,omitempty"`
	// Owner, Name and Desc describe field and method references.
	Owner string `yaml:"owner,omitempty"`
	Name  string `yaml:"name,omitempty"`
	Desc  string `yaml:"desc,omitempty"`
	// Line is the source line the instruction was compiled from, if known.
	Line int `yaml:"line,omitempty"`
}

// Insn builds an operand-less instruction.
func Insn(op Opcode) Instruction { return Instruction{Op: op} }

// VarInsn builds a load or store of a local slot.
func VarInsn(op Opcode, slot int) Instruction { return Instruction{Op: op, Var: slot} }

// IncInsn builds an IINC of slot by incr.
func IncInsn(slot, incr int) Instruction { return Instruction{Op: OpIInc, Var: slot, Incr: incr} }

// PushInsn builds an integer constant push.
func PushInsn(value int64) Instruction { return Instruction{Op: OpPush, Value: value} }

// JumpInsn builds a branch to label.
func JumpInsn(op Opcode, label string) Instruction { return Instruction{Op: op, Target: label} }

// LabelInsn builds a label pseudo-instruction.
func LabelInsn(label string) Instruction { return Instruction{Op: OpLabel, Target: label} }

// FieldInsn builds a field access.
func FieldInsn(op Opcode, owner, name, desc string) Instruction {
	return Instruction{Op: op, Owner: owner, Name: name, Desc: desc}
}

// MethodInsn builds a method invocation.
func MethodInsn(op Opcode, owner, name, desc string) Instruction {
	return Instruction{Op: op, Owner: owner, Name: name, Desc: desc}
}

// WithLine returns a copy of i carrying the given source line.
func (i Instruction) WithLine(line int) Instruction {
	i.Line = line
	return i
}

// Category returns the operand category. For field and method instructions it is
// derived from the descriptor (field type, or return type for invocations).
func (i Instruction) Category() (Category, error) {
	switch i.Op.Kind() {
	case KindGetField, KindPutField, KindGetStatic, KindPutStatic:
		return ParseFieldDescriptor(i.Desc)
	case KindInvoke:
		t, err := ParseMethodDescriptor(i.Desc)
		if err != nil {
			return CategoryNone, err
		}

		return t.Return, nil
	}

	return i.Op.Category(), nil
}

func (i Instruction) String() string {
	var b strings.Builder

	b.WriteString(i.Op.String())

	switch i.Op.Kind() {
	case KindLoad, KindStore:
		fmt.Fprintf(&b, " %d", i.Var)
	case KindIncrement:
		fmt.Fprintf(&b, " %d %d", i.Var, i.Incr)
	case KindBranchZero, KindBranchCompare, KindJump, KindLabel:
		fmt.Fprintf(&b, " %s", i.Target)
	case KindGetField, KindPutField, KindGetStatic, KindPutStatic, KindInvoke:
		fmt.Fprintf(&b, " %s.%s %s", i.Owner, i.Name, i.Desc)
	case KindConst:
		if i.Op == OpPush {
			fmt.Fprintf(&b, " %d", i.Value)
		}
	}

	return b.String()
}

// Method is a method body together with its coordinates.
type Method struct {
	Class        string        `yaml:"-"`
	Name         string        `yaml:"name"`
	Descriptor   string        `yaml:"descriptor"`
	Instructions []Instruction `yaml:"instructions"`
}

// Ref returns the method coordinates without the body.
func (m Method) Ref() MethodRef {
	return MethodRef{Class: m.Class, Method: m.Name, Descriptor: m.Descriptor}
}

// MethodRef identifies a method.
type MethodRef struct {
	Class      string `yaml:"class"`
	Method     string `yaml:"method"`
	Descriptor string `yaml:"descriptor"`
}

func (r MethodRef) String() string {
	return r.Class + "." + r.Method + r.Descriptor
}

// Class is a decoded compilation unit.
type Class struct {
	Name    string   `yaml:"class"`
	Source  string   `yaml:"source,omitempty"`
	Methods []Method `yaml:"methods"`
}

// Method looks up a method by name, optionally narrowed by descriptor.
func (c Class) Method(name, descriptor string) (Method, bool) {
	for _, method := range c.Methods {
		if method.Name != name {
			continue
		}

		if descriptor != "" && method.Descriptor != descriptor {
			continue
		}

		method.Class = c.Name

		return method, true
	}

	return Method{}, false
}

// WithMethod returns a copy of c where the method matching replacement's name and
// descriptor has its body replaced.
func (c Class) WithMethod(replacement Method) Class {
	methods := make([]Method, len(c.Methods))
	copy(methods, c.Methods)

	for i := range methods {
		if methods[i].Name == replacement.Name && methods[i].Descriptor == replacement.Descriptor {
			methods[i].Instructions = replacement.Instructions
		}
	}

	c.Methods = methods

	return c
}
