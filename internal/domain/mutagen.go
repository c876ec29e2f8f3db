// Package domain contains the core mutation testing workflow and logic.
package domain

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"gooze.dev/pkg/stackmut/internal/adapter"
	"gooze.dev/pkg/stackmut/internal/domain/mutagens"
	m "gooze.dev/pkg/stackmut/internal/model"
)

// MutationOptions configures mutant generation.
type MutationOptions struct {
	Operators []mutagens.Operator
	Seed      int64
}

// Mutagen defines the interface for mutant generation.
type Mutagen interface {
	// GenerateMutants materializes every candidate of every method in source.
	GenerateMutants(ctx context.Context, source m.Source, opts MutationOptions) ([]m.Mutant, error)
	// StreamMutants generates mutants for sources received from a channel
	// using up to threads workers.
	StreamMutants(ctx context.Context, sources <-chan m.Source, threads int, opts MutationOptions) (<-chan m.Mutant, <-chan error)
	// Mutate materializes a single candidate. It reports false when the
	// method has no candidate with that ordinal.
	Mutate(ctx context.Context, source m.Source, method, descriptor string, ordinal int, opts MutationOptions) (m.Mutant, bool, error)
}

// mutagen handles pure mutant generation logic.
type mutagen struct {
	adapter.ListingAdapter
}

// NewMutagen creates a new Mutagen instance.
func NewMutagen(listingAdapter adapter.ListingAdapter) Mutagen {
	return &mutagen{
		ListingAdapter: listingAdapter,
	}
}

func (mg *mutagen) GenerateMutants(ctx context.Context, source m.Source, opts MutationOptions) ([]m.Mutant, error) {
	class, err := mg.loadSource(ctx, source)
	if err != nil {
		return nil, err
	}

	source.Class = class.Name

	mutants := make([]m.Mutant, 0)

	for _, method := range class.Methods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		method.Class = class.Name

		methodMutants, err := mg.mutateMethod(source, method, opts)
		if err != nil {
			return nil, err
		}

		mutants = append(mutants, methodMutants...)
	}

	return mutants, nil
}

func (mg *mutagen) Mutate(ctx context.Context, source m.Source, name, descriptor string, ordinal int, opts MutationOptions) (m.Mutant, bool, error) {
	class, err := mg.loadSource(ctx, source)
	if err != nil {
		return m.Mutant{}, false, err
	}

	source.Class = class.Name

	method, ok := class.Method(name, descriptor)
	if !ok {
		return m.Mutant{}, false, fmt.Errorf("method %s%s not found in %s", name, descriptor, class.Name)
	}

	if ordinal < 0 {
		return m.Mutant{}, false, nil
	}

	result, err := Rewrite(method, opts.Operators, ScanOptions{Target: ordinal, Seed: opts.Seed})
	if err != nil {
		return m.Mutant{}, false, err
	}

	if !result.Mutated() {
		return m.Mutant{}, false, nil
	}

	return mg.newMutant(source, method, result), true, nil
}

func (mg *mutagen) loadSource(ctx context.Context, source m.Source) (m.Class, error) {
	if err := validateSource(source); err != nil {
		return m.Class{}, err
	}

	if mg.ListingAdapter == nil {
		return m.Class{}, fmt.Errorf("missing listing adapter")
	}

	class, err := mg.Load(ctx, source.Origin.FullPath)
	if err != nil {
		return m.Class{}, fmt.Errorf("failed to load %s: %w", source.Origin.FullPath, err)
	}

	return class, nil
}

func validateSource(source m.Source) error {
	if source.Origin == nil || source.Origin.FullPath == "" {
		return fmt.Errorf("missing source origin")
	}

	return nil
}

// mutateMethod counts the candidates of method once, then materializes each
// ordinal with its own scan.
func (mg *mutagen) mutateMethod(source m.Source, method m.Method, opts MutationOptions) ([]m.Mutant, error) {
	candidates, err := Candidates(method, opts.Operators, opts.Seed)
	if err != nil {
		return nil, err
	}

	mutants := make([]m.Mutant, 0, len(candidates))

	for ordinal := range candidates {
		result, err := Rewrite(method, opts.Operators, ScanOptions{Target: ordinal, Seed: opts.Seed})
		if err != nil {
			return nil, err
		}

		if !result.Mutated() {
			// Counting and materializing scans disagree only if an operator is
			// not deterministic.
			return nil, fmt.Errorf("candidate %d of %s vanished on rescan", ordinal, method.Ref())
		}

		mutants = append(mutants, mg.newMutant(source, method, result))
	}

	slog.Debug("Generated mutants for method", "method", method.Ref().String(), "count", len(mutants))

	return mutants, nil
}

func (mg *mutagen) newMutant(source m.Source, method m.Method, result m.ScanResult) m.Mutant {
	mutated := method
	mutated.Instructions = result.Instructions

	return m.Mutant{
		ID:         mutantID(source, *result.Mutation),
		Source:     source,
		Method:     method.Ref(),
		Identifier: *result.Mutation,
		Mutated:    result.Instructions,
		Diff:       mg.diff(method, mutated),
	}
}

// mutantID is stable across runs for an unchanged listing and operator set.
func mutantID(source m.Source, id m.MutationIdentifier) string {
	origin := ""
	if source.Origin != nil {
		origin = string(source.Origin.ShortPath)
	}

	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%d|%s|%s", origin, id.Location.MethodRef, id.Ordinal, id.Operator, id.Description))

	return fmt.Sprintf("%x", sum[:8])
}

func (mg *mutagen) diff(original, mutated m.Method) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(mg.Render(original)),
		B:        difflib.SplitLines(mg.Render(mutated)),
		FromFile: "original",
		ToFile:   "mutant",
		Context:  2,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		slog.Error("Failed to render mutant diff", "method", original.Ref().String(), "error", err)
		return ""
	}

	return text
}

// StreamMutants streams mutants for sources received from a channel.
// It returns a channel of mutants and a channel for errors.
func (mg *mutagen) StreamMutants(ctx context.Context, sources <-chan m.Source, threads int, opts MutationOptions) (<-chan m.Mutant, <-chan error) {
	if threads <= 0 {
		threads = 1
	}

	mutantCh := make(chan m.Mutant, threads)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(mutantCh)

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(threads)

		for source := range sources {
			if groupCtx.Err() != nil {
				// Drain so the producer is not blocked.
				continue
			}

			current := source

			group.Go(func() error {
				mutants, err := mg.GenerateMutants(groupCtx, current, opts)
				if err != nil {
					return err
				}

				for _, mutant := range mutants {
					select {
					case <-groupCtx.Done():
						return groupCtx.Err()
					case mutantCh <- mutant:
					}
				}

				return nil
			})
		}

		if err := group.Wait(); err != nil {
			errCh <- err
		}
	}()

	return mutantCh, errCh
}
