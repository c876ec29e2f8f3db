package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gooze.dev/pkg/stackmut/internal/domain/mutagens"
	m "gooze.dev/pkg/stackmut/internal/model"
)

// ErrUnknownOperator is matched by every UnknownOperatorError.
var ErrUnknownOperator = errors.New("unknown mutator")

// ErrDuplicateOperator is returned when a catalog name is registered twice.
var ErrDuplicateOperator = errors.New("duplicate mutator name")

// UnknownOperatorError reports a catalog name that is neither an operator nor a group.
type UnknownOperatorError struct {
	Name string
}

func (e *UnknownOperatorError) Error() string {
	return "unknown mutator: " + e.Name
}

// Is lets errors.Is match ErrUnknownOperator.
func (e *UnknownOperatorError) Is(target error) bool {
	return target == ErrUnknownOperator
}

// CatalogBuilder assembles a Catalog. It is not safe for concurrent use.
type CatalogBuilder struct {
	entries map[string][]mutagens.Operator
	order   []string
}

// NewCatalogBuilder returns an empty builder.
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{entries: make(map[string][]mutagens.Operator)}
}

// Register maps name to ops. A name maps to a single operator or to a group.
func (b *CatalogBuilder) Register(name string, ops ...mutagens.Operator) error {
	if name == "" {
		return fmt.Errorf("register mutator: empty name")
	}

	if _, ok := b.entries[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOperator, name)
	}

	if len(ops) == 0 {
		return fmt.Errorf("register mutator %s: no operators", name)
	}

	entry := make([]mutagens.Operator, len(ops))
	copy(entry, ops)

	b.entries[name] = entry
	b.order = append(b.order, name)

	return nil
}

// Lookup returns the operators already registered under name.
func (b *CatalogBuilder) Lookup(name string) ([]mutagens.Operator, error) {
	ops, ok := b.entries[name]
	if !ok {
		return nil, &UnknownOperatorError{Name: name}
	}

	return ops, nil
}

// Build freezes the builder into a Catalog. The builder must not be used afterwards.
func (b *CatalogBuilder) Build() *Catalog {
	catalog := &Catalog{
		entries: b.entries,
		names:   append([]string(nil), b.order...),
	}

	b.entries = nil
	b.order = nil

	return catalog
}

// Catalog maps operator and group names to operators. It is read-only and safe
// for concurrent use.
type Catalog struct {
	entries map[string][]mutagens.Operator
	names   []string
}

// Names returns every registered name in registration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Resolve returns the operators registered under name.
func (c *Catalog) Resolve(name string) ([]mutagens.Operator, error) {
	ops, ok := c.entries[name]
	if !ok {
		return nil, &UnknownOperatorError{Name: name}
	}

	return append([]mutagens.Operator(nil), ops...), nil
}

// ResolveAll resolves every name and returns the union, de-duplicated by id and
// ordered by id. An unknown name fails the whole call.
func (c *Catalog) ResolveAll(names []string) ([]mutagens.Operator, error) {
	byID := make(map[string]mutagens.Operator)

	for _, name := range names {
		ops, err := c.Resolve(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}

		for _, op := range ops {
			byID[op.ID()] = op
		}
	}

	out := make([]mutagens.Operator, 0, len(byID))
	for _, op := range byID {
		out = append(out, op)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })

	return out, nil
}

// DefaultOperators are the names resolved when no mutators are configured.
var DefaultOperators = []string{"DEFAULTS"}

// BuildCatalog returns the catalog of every built-in operator and group.
func BuildCatalog() (*Catalog, error) {
	b := NewCatalogBuilder()

	for _, step := range []func(*CatalogBuilder) error{
		registerArithmetic,
		registerRelational,
		registerIncrements,
		registerSingles,
		registerConstants,
		registerGroups,
	} {
		if err := step(b); err != nil {
			return nil, fmt.Errorf("build catalog: %w", err)
		}
	}

	return b.Build(), nil
}

// MustBuildCatalog is BuildCatalog for callers that treat a broken built-in
// catalog as a programming error.
func MustBuildCatalog() *Catalog {
	catalog, err := BuildCatalog()
	if err != nil {
		panic(err)
	}

	return catalog
}

var categoryPrefixes = map[m.Category]string{
	m.CategoryInt:    "I",
	m.CategoryLong:   "L",
	m.CategoryFloat:  "F",
	m.CategoryDouble: "D",
}

var numericCategories = []m.Category{m.CategoryInt, m.CategoryLong, m.CategoryFloat, m.CategoryDouble}

func registerArithmetic(b *CatalogBuilder) error {
	if err := b.Register("ARITHMETIC_REPLACE", mutagens.NewArithmeticReplacement()); err != nil {
		return err
	}

	var all []mutagens.Operator

	for _, category := range numericCategories {
		var group []mutagens.Operator

		for _, op := range m.ArithOps {
			operator := mutagens.NewArithmeticReplacementTo(category, op)
			if err := b.Register(operator.Name(), operator); err != nil {
				return err
			}

			group = append(group, operator)
		}

		if err := b.Register("AOR_"+categoryPrefixes[category], group...); err != nil {
			return err
		}

		all = append(all, group...)
	}

	if err := b.Register("AOR", all...); err != nil {
		return err
	}

	first := mutagens.NewArithmeticDeletion(mutagens.FirstOperand)
	last := mutagens.NewArithmeticDeletion(mutagens.LastOperand)

	for _, op := range []mutagens.Operator{first, last} {
		if err := b.Register(op.Name(), op); err != nil {
			return err
		}
	}

	return b.Register("AOD", first, last)
}

func registerRelational(b *CatalogBuilder) error {
	var group []mutagens.Operator

	for _, relation := range m.Relations {
		op := mutagens.NewRelationalReplacement(relation)
		if err := b.Register(op.Name(), op); err != nil {
			return err
		}

		group = append(group, op)
	}

	return b.Register("ROR", group...)
}

func registerIncrements(b *CatalogBuilder) error {
	for _, variant := range []mutagens.IncrementVariant{mutagens.Increment, mutagens.Decrement, mutagens.Remove, mutagens.Reverse} {
		op := mutagens.NewIncrementMutation(variant)
		if err := b.Register(op.Name(), op); err != nil {
			return err
		}
	}

	return nil
}

func registerSingles(b *CatalogBuilder) error {
	abs := mutagens.NewAbsoluteValue()
	calls := mutagens.NewCallElision()
	fields := mutagens.NewFieldElision()
	confusion := mutagens.NewTypeConfusion()
	negs := mutagens.NewInvertNegs()

	entries := []struct {
		name string
		op   mutagens.Operator
	}{
		{abs.Name(), abs},
		{calls.Name(), calls},
		{"M1", calls},
		{fields.Name(), fields},
		{"M1FIELD", fields},
		{confusion.Name(), confusion},
		{"M4", confusion},
		{negs.Name(), negs},
	}

	for _, entry := range entries {
		if err := b.Register(entry.name, entry.op); err != nil {
			return err
		}
	}

	if err := b.Register("UOI", abs); err != nil {
		return err
	}

	return b.Register("ELISION", calls, fields)
}

func registerConstants(b *CatalogBuilder) error {
	var group []mutagens.Operator

	for _, variant := range []mutagens.ConstantVariant{mutagens.Negate, mutagens.ReplaceZero, mutagens.AddOne, mutagens.SubOne} {
		op := mutagens.NewConstantReplacement(variant)
		if err := b.Register(op.Name(), op); err != nil {
			return err
		}

		group = append(group, op)
	}

	return b.Register("CRCR", group...)
}

var umbrellaArithmeticID = mutagens.NewArithmeticReplacement().ID()

func registerGroups(b *CatalogBuilder) error {
	defaults, err := collect(b, "ARITHMETIC_REPLACE", "ROR", "INC_ADD", "INC_SUB", "ABSOLUTE")
	if err != nil {
		return err
	}

	if err := b.Register("DEFAULTS", defaults...); err != nil {
		return err
	}

	stronger, err := collect(b, "DEFAULTS", "AOD", "INC_RMV", "INC_RVS", "INVERT_NEGS")
	if err != nil {
		return err
	}

	if err := b.Register("STRONGER", stronger...); err != nil {
		return err
	}

	everything, err := collect(b, b.order...)
	if err != nil {
		return err
	}

	// The per-target ARITHMETIC_REPLACE_* operators emit the same mutants as
	// the umbrella operator.
	all := everything[:0]
	for _, op := range everything {
		if op.ID() != umbrellaArithmeticID {
			all = append(all, op)
		}
	}

	return b.Register("ALL", all...)
}

// collect resolves names against the builder, de-duplicating by id in first-seen order.
func collect(b *CatalogBuilder, names ...string) ([]mutagens.Operator, error) {
	seen := make(map[string]bool)

	var out []mutagens.Operator

	for _, name := range names {
		ops, err := b.Lookup(name)
		if err != nil {
			return nil, err
		}

		for _, op := range ops {
			if seen[op.ID()] {
				continue
			}

			seen[op.ID()] = true

			out = append(out, op)
		}
	}

	return out, nil
}
