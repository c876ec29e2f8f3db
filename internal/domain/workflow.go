package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"gooze.dev/pkg/stackmut/internal/adapter"
	"gooze.dev/pkg/stackmut/internal/controller"
	m "gooze.dev/pkg/stackmut/internal/model"
	pkg "gooze.dev/pkg/stackmut/pkg"
)

// EstimateArgs selects the listings to mutate and the operators to apply.
type EstimateArgs struct {
	Paths    []m.Path
	Exclude  []string
	UseCache bool
	Reports  m.Path
	// Mutators are catalog names. Empty means DefaultOperators.
	Mutators []string
	Seed     int64
}

// TestArgs contains the arguments for running mutation tests.
type TestArgs struct {
	EstimateArgs
	Reports         m.Path
	Threads         int
	ShardIndex      int
	TotalShardCount int
	MutationTimeout time.Duration
	Harness         Harness
}

// ViewArgs points at a reports directory.
type ViewArgs struct {
	Reports m.Path
}

// MergeArgs points at a reports directory holding shard_* subdirectories.
type MergeArgs struct {
	Reports m.Path
}

// MutateArgs selects one candidate of one method.
type MutateArgs struct {
	Listing    m.Path
	Method     string
	Descriptor string
	Ordinal    int
	Mutators   []string
	Seed       int64
}

// Workflow defines the interface for the mutation testing workflow.
type Workflow interface {
	Estimate(ctx context.Context, args EstimateArgs) error
	Test(ctx context.Context, args TestArgs) error
	View(ctx context.Context, args ViewArgs) error
	Merge(ctx context.Context, args MergeArgs) error
	Mutate(ctx context.Context, args MutateArgs) (m.Mutant, error)
}

type workflow struct {
	fs           adapter.SourceFSAdapter
	reportStore  adapter.ReportStore
	ui           controller.UI
	orchestrator Orchestrator
	mutagen      Mutagen
	streamer     MutationStreamer
	catalog      *Catalog
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	orchestrator Orchestrator,
	mutagen Mutagen,
	catalog *Catalog,
) Workflow {
	return &workflow{
		fs:           fsAdapter,
		reportStore:  reportStore,
		ui:           ui,
		orchestrator: orchestrator,
		mutagen:      mutagen,
		streamer:     NewMutationStreamer(mutagen),
		catalog:      catalog,
	}
}

// options resolves mutator names before any listing is read, so an unknown
// name fails the whole run.
func (w *workflow) options(names []string, seed int64) (MutationOptions, error) {
	if len(names) == 0 {
		names = DefaultOperators
	}

	ops, err := w.catalog.ResolveAll(names)
	if err != nil {
		return MutationOptions{}, err
	}

	return MutationOptions{Operators: ops, Seed: seed}, nil
}

// Estimate lists the mutants the selected operators would produce without
// running any test.
func (w *workflow) Estimate(ctx context.Context, args EstimateArgs) error {
	opts, err := w.options(args.Mutators, args.Seed)
	if err != nil {
		return err
	}

	if err := w.ui.Start(ctx, controller.WithEstimateMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	mutants, err := w.collectMutants(ctx, args, 1, opts)
	if err != nil {
		_ = w.ui.DisplayEstimation(ctx, nil, err)
		w.ui.Close(ctx)

		return fmt.Errorf("generate mutants: %w", err)
	}

	if err := w.ui.DisplayEstimation(ctx, mutants, nil); err != nil {
		w.ui.Close(ctx)
		return fmt.Errorf("display: %w", err)
	}

	w.ui.Wait(ctx)
	w.ui.Close(ctx)

	return nil
}

func (w *workflow) collectMutants(ctx context.Context, args EstimateArgs, threads int, opts MutationOptions) ([]m.Mutant, error) {
	sources, err := w.fs.Get(ctx, args.Paths, args.Exclude...)
	if err != nil {
		return nil, fmt.Errorf("get sources: %w", err)
	}

	if args.UseCache {
		sources, _, err = w.changedSources(ctx, args.Reports, sources)
		if err != nil {
			return nil, err
		}
	}

	return w.streamer.Get(ctx, sources, threads, opts)
}

// changedSources keeps the sources whose listing changed since reports were
// last written. It also returns every outdated index entry, including
// listings that no longer exist.
func (w *workflow) changedSources(ctx context.Context, reports m.Path, sources []m.Source) ([]m.Source, []m.Source, error) {
	changed, err := w.reportStore.CheckUpdates(ctx, reports, sources)
	if err != nil {
		return nil, nil, fmt.Errorf("check updates: %w", err)
	}

	current := make(map[m.Path]bool, len(sources))
	for _, source := range sources {
		current[source.Origin.FullPath] = true
	}

	kept := make([]m.Source, 0, len(changed))

	for _, source := range changed {
		if current[source.Origin.FullPath] {
			kept = append(kept, source)
		}
	}

	slog.Debug("Cache check", "sources", len(sources), "changed", len(kept), "removed", len(changed)-len(kept))

	return kept, changed, nil
}

// Test runs the harness against every mutant of this shard and stores the
// results under the reports directory.
//
//nolint:cyclop,funlen // Sequential pipeline steps.
func (w *workflow) Test(ctx context.Context, args TestArgs) error {
	if len(args.Harness.Command) == 0 {
		return adapter.ErrNoHarness
	}

	opts, err := w.options(args.Mutators, args.Seed)
	if err != nil {
		return err
	}

	threads := max(args.Threads, 1)

	reportsDir := args.Reports
	if args.TotalShardCount > 1 {
		reportsDir = adapter.ShardDir(args.Reports, args.ShardIndex)
	}

	sources, err := w.fs.Get(ctx, args.Paths, args.Exclude...)
	if err != nil {
		return fmt.Errorf("get sources: %w", err)
	}

	if args.UseCache {
		var changed []m.Source

		sources, changed, err = w.changedSources(ctx, reportsDir, sources)
		if err != nil {
			return err
		}

		if err := w.reportStore.CleanReports(ctx, reportsDir, changed); err != nil {
			return fmt.Errorf("clean reports: %w", err)
		}
	}

	if err := w.ui.Start(ctx, controller.WithTestMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.ui.Close(ctx)

	mutants, err := w.streamer.Get(ctx, sources, threads, opts)
	if err != nil {
		return fmt.Errorf("generate mutants: %w", err)
	}

	shard := w.streamer.ShardMutants(mutants, args.ShardIndex, args.TotalShardCount)

	w.ui.DisplayConcurrencyInfo(ctx, threads, args.ShardIndex, args.TotalShardCount)
	w.ui.DisplayUpcomingTestsInfo(ctx, len(shard))

	reports, err := pkg.NewFileSpill[m.Report]()
	if err != nil {
		return fmt.Errorf("create report spill: %w", err)
	}

	defer func() {
		if err := reports.Remove(); err != nil {
			slog.Warn("Failed to remove report spill", "path", reports.Path(), "error", err)
		}
	}()

	// Every tested listing gets a report, even without mutants, so the cache
	// records its hash.
	for _, source := range sources {
		if err := reports.Append(m.Report{Source: source.Origin.FullPath, Hash: source.Origin.Hash}); err != nil {
			return fmt.Errorf("spill report: %w", err)
		}
	}

	if err := w.testMutants(ctx, shard, threads, args, reports); err != nil {
		return err
	}

	if err := w.reportStore.SaveReports(ctx, reportsDir, reports); err != nil {
		return fmt.Errorf("save reports: %w", err)
	}

	score, err := mutationScoreFromReports(reports)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}

	w.ui.DisplayMutationScore(ctx, score)
	w.ui.Wait(ctx)

	return nil
}

func (w *workflow) testMutants(ctx context.Context, mutants []m.Mutant, threads int, args TestArgs, reports pkg.FileSpill[m.Report]) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	var worker atomic.Int64

	for _, mutant := range mutants {
		current := mutant

		group.Go(func() error {
			threadID := int(worker.Add(1)-1) % threads
			w.ui.DisplayStartingTestInfo(groupCtx, current, threadID)

			result, err := w.testMutant(groupCtx, current, args)
			if err != nil {
				slog.Error("Failed to test mutant", "mutant", current.ID, "error", err)
				return fmt.Errorf("test mutant %s: %w", current.ID, err)
			}

			w.ui.DisplayCompletedTestInfo(groupCtx, current, result)

			return reports.Append(m.Report{
				Source:  current.Source.Origin.FullPath,
				Hash:    current.Source.Origin.Hash,
				Class:   current.Source.Class,
				Results: []m.Result{result},
			})
		})
	}

	return group.Wait()
}

func (w *workflow) testMutant(ctx context.Context, mutant m.Mutant, args TestArgs) (m.Result, error) {
	if args.MutationTimeout <= 0 {
		return w.orchestrator.TestMutant(ctx, mutant, args.Harness)
	}

	mutantCtx, cancel := context.WithTimeout(ctx, args.MutationTimeout)
	defer cancel()

	result, err := w.orchestrator.TestMutant(mutantCtx, mutant, args.Harness)
	if err != nil {
		return result, err
	}

	// The outer context ending is a cancellation, not a timeout of this mutant.
	if result.Status == m.Timeout && ctx.Err() != nil {
		return result, ctx.Err()
	}

	return result, nil
}

// View displays the reports stored under args.Reports.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	reports, err := w.reportStore.LoadReports(ctx, args.Reports)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}

	return w.ui.DisplayReports(ctx, reports)
}

// Merge combines the reports of every shard_* directory into args.Reports.
func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	dirs, err := w.reportStore.ShardDirs(ctx, args.Reports)
	if err != nil {
		return fmt.Errorf("list shards: %w", err)
	}

	if len(dirs) == 0 {
		return fmt.Errorf("no shard reports found in %s", args.Reports)
	}

	reports, err := pkg.NewFileSpill[m.Report]()
	if err != nil {
		return fmt.Errorf("create report spill: %w", err)
	}

	defer func() {
		if err := reports.Remove(); err != nil {
			slog.Warn("Failed to remove report spill", "path", reports.Path(), "error", err)
		}
	}()

	for _, dir := range dirs {
		shardReports, err := w.reportStore.LoadReports(ctx, dir)
		if err != nil {
			return fmt.Errorf("load reports from %s: %w", dir, err)
		}

		if err := reports.AppendBatch(shardReports); err != nil {
			return fmt.Errorf("spill reports: %w", err)
		}
	}

	slog.Info("Merging shard reports", "shards", len(dirs), "reports", reports.Len())

	if err := w.reportStore.SaveReports(ctx, args.Reports, reports); err != nil {
		return fmt.Errorf("save reports: %w", err)
	}

	score, err := mutationScoreFromReports(reports)
	if err != nil {
		return err
	}

	w.ui.DisplayMutationScore(ctx, score)

	return nil
}

// Mutate materializes one candidate and displays it.
func (w *workflow) Mutate(ctx context.Context, args MutateArgs) (m.Mutant, error) {
	opts, err := w.options(args.Mutators, args.Seed)
	if err != nil {
		return m.Mutant{}, err
	}

	sources, err := w.fs.Get(ctx, []m.Path{args.Listing})
	if err != nil {
		return m.Mutant{}, fmt.Errorf("get listing: %w", err)
	}

	if len(sources) != 1 {
		return m.Mutant{}, fmt.Errorf("expected one listing at %s, found %d", args.Listing, len(sources))
	}

	mutant, ok, err := w.mutagen.Mutate(ctx, sources[0], args.Method, args.Descriptor, args.Ordinal, opts)
	if err != nil {
		return m.Mutant{}, err
	}

	if !ok {
		return m.Mutant{}, fmt.Errorf("%s has no candidate %d", args.Method, args.Ordinal)
	}

	if err := w.ui.DisplayMutant(ctx, mutant); err != nil {
		return m.Mutant{}, err
	}

	return mutant, nil
}
