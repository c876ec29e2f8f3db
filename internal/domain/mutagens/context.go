package mutagens

import (
	"math/rand"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// NoTarget selects no candidate; scans with it only count.
const NoTarget = -1

// Context is the state of one scan of one method. It hands out candidate
// ordinals and decides which single candidate is materialized. A Context must
// not be shared between scans.
type Context struct {
	method     m.MethodRef
	target     int
	next       int
	rng        *rand.Rand
	location   m.Location
	selected   *m.MutationIdentifier
	candidates []m.MutationIdentifier
}

// NewContext creates the context for a scan of method that materializes the
// candidate numbered target. The seed drives every random choice made by
// operators during the scan.
func NewContext(method m.MethodRef, target int, seed int64) *Context {
	return &Context{
		method:   method,
		target:   target,
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // reproducibility, not security
		location: m.Location{MethodRef: method},
	}
}

// At moves the context to the instruction at index of the original stream.
func (c *Context) At(index int, insn m.Instruction) {
	c.location = m.Location{MethodRef: c.method, Index: index, Line: insn.Line}
}

// RegisterCandidate records a pattern match by op at the current instruction
// and returns its identifier carrying the next ordinal.
func (c *Context) RegisterCandidate(op Operator, description string) m.MutationIdentifier {
	id := m.MutationIdentifier{
		Operator:    op.ID(),
		Location:    c.location,
		Ordinal:     c.next,
		Description: description,
	}

	c.next++
	c.candidates = append(c.candidates, id)

	return id
}

// ShouldMutate reports whether id is the candidate selected for this scan.
func (c *Context) ShouldMutate(id m.MutationIdentifier) bool {
	if c.target < 0 || id.Ordinal != c.target {
		return false
	}

	if c.selected == nil {
		selected := id
		c.selected = &selected
	}

	return true
}

// Rand returns the scan's seeded random source.
func (c *Context) Rand() *rand.Rand { return c.rng }

// Selected returns the materialized candidate, if any.
func (c *Context) Selected() *m.MutationIdentifier { return c.selected }

// Count returns the number of candidates registered so far.
func (c *Context) Count() int { return c.next }

// Candidates returns every candidate registered so far, in ordinal order.
func (c *Context) Candidates() []m.MutationIdentifier {
	out := make([]m.MutationIdentifier, len(c.candidates))
	copy(out, c.candidates)

	return out
}
