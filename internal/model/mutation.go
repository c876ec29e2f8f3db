package model

import "fmt"

// Location pins a candidate to an instruction of a method.
type Location struct {
	MethodRef `yaml:",inline"`
	// Index is the position of the matched instruction in the original stream.
	Index int `yaml:"index"`
	Line  int `yaml:"line,omitempty"`
}

func (l Location) String() string {
	if l.Line > 0 {
		return fmt.Sprintf("%s@%d (line %d)", l.MethodRef, l.Index, l.Line)
	}

	return fmt.Sprintf("%s@%d", l.MethodRef, l.Index)
}

// MutationIdentifier identifies one candidate mutation found during a scan.
type MutationIdentifier struct {
	// Operator is the globally unique id of the operator that matched.
	Operator    string   `yaml:"operator"`
	Location    Location `yaml:"location"`
	Ordinal     int      `yaml:"ordinal"`
	Description string   `yaml:"description"`
}

func (id MutationIdentifier) String() string {
	return fmt.Sprintf("#%d %s %s: %s", id.Ordinal, id.Operator, id.Location, id.Description)
}

// Region is the contiguous part of a stream replaced by a mutation.
type Region struct {
	// Start is the index of the first replaced instruction in the original stream.
	Start int
	// Original is the number of original instructions replaced.
	Original int
	// Replacement is the number of instructions emitted in their place.
	Replacement int
}

// ScanResult is the outcome of one pass of a method through an operator set.
type ScanResult struct {
	Instructions []Instruction
	// Mutation is the materialized candidate, or nil when the target ordinal
	// had no candidate in this method.
	Mutation   *MutationIdentifier
	Region     Region
	Candidates int
}

// Mutated reports whether the scan materialized a mutation.
func (r ScanResult) Mutated() bool { return r.Mutation != nil }

// Mutant is one materialized mutation of a method, ready to be encoded and tested.
type Mutant struct {
	ID         string
	Source     Source
	Method     MethodRef
	Identifier MutationIdentifier
	Mutated    []Instruction
	// Diff is a unified diff between the original and mutated listing of the method.
	Diff string
}
