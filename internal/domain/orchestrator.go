package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"gooze.dev/pkg/stackmut/internal/adapter"
	m "gooze.dev/pkg/stackmut/internal/model"
)

// Environment variables handed to the harness.
const (
	EnvMutant   = "STACKMUT_MUTANT"
	EnvClass    = "STACKMUT_CLASS"
	EnvMutantID = "STACKMUT_MUTANT_ID"
	EnvOriginal = "STACKMUT_ORIGINAL"
)

// Harness describes the external command that runs the test suite.
type Harness struct {
	Command []string
	// WorkDir is where the command runs. Empty means the current directory.
	WorkDir string
}

// Orchestrator coordinates encoding a mutant into a temporary listing and
// running the harness against it to determine whether the mutant is killed or
// survives.
type Orchestrator interface {
	TestMutant(ctx context.Context, mutant m.Mutant, harness Harness) (m.Result, error)
}

type orchestrator struct {
	fsAdapter      adapter.SourceFSAdapter
	listingAdapter adapter.ListingAdapter
	testAdapter    adapter.TestRunnerAdapter
}

// NewOrchestrator constructs an Orchestrator backed by the provided adapters.
func NewOrchestrator(
	fsAdapter adapter.SourceFSAdapter,
	listingAdapter adapter.ListingAdapter,
	testAdapter adapter.TestRunnerAdapter,
) Orchestrator {
	return &orchestrator{
		fsAdapter:      fsAdapter,
		listingAdapter: listingAdapter,
		testAdapter:    testAdapter,
	}
}

func (to *orchestrator) TestMutant(ctx context.Context, mutant m.Mutant, harness Harness) (m.Result, error) {
	if err := ctx.Err(); err != nil {
		return to.resultForStatus(mutant, m.Timeout, "", nil), nil
	}

	if err := validateSource(mutant.Source); err != nil {
		return m.Result{}, err
	}

	content, err := to.encodeMutant(ctx, mutant)
	if err != nil {
		return m.Result{}, err
	}

	tmpDir, err := to.fsAdapter.CreateTempDir(ctx, "stackmut-mutant-*")
	if err != nil {
		slog.Error("Failed to create temp dir", "error", err)
		return m.Result{}, fmt.Errorf("failed to create temp dir: %w", err)
	}

	defer to.cleanupTempDir(ctx, tmpDir)

	listingPath := to.fsAdapter.JoinPath(ctx, string(tmpDir), filepath.Base(string(mutant.Source.Origin.FullPath)))
	if err := to.fsAdapter.WriteFile(ctx, listingPath, content, 0o600); err != nil {
		slog.Error("Failed to write mutated listing", "path", listingPath, "error", err)
		return m.Result{}, fmt.Errorf("failed to write mutated listing: %w", err)
	}

	env := map[string]string{
		EnvMutant:   string(listingPath),
		EnvClass:    mutant.Source.Class,
		EnvMutantID: mutant.ID,
		EnvOriginal: string(mutant.Source.Origin.FullPath),
	}

	output, runErr := to.testAdapter.RunHarness(ctx, harness.WorkDir, harness.Command, env)

	return to.resultForStatus(mutant, to.statusFor(ctx, runErr), output, runErr), nil
}

// encodeMutant reloads the listing and swaps in the mutated method body.
func (to *orchestrator) encodeMutant(ctx context.Context, mutant m.Mutant) ([]byte, error) {
	class, err := to.listingAdapter.Load(ctx, mutant.Source.Origin.FullPath)
	if err != nil {
		return nil, err
	}

	method, ok := class.Method(mutant.Method.Method, mutant.Method.Descriptor)
	if !ok {
		return nil, fmt.Errorf("method %s not found in %s", mutant.Method, mutant.Source.Origin.FullPath)
	}

	method.Instructions = mutant.Mutated

	return to.listingAdapter.Encode(ctx, class.WithMethod(method))
}

func (to *orchestrator) statusFor(ctx context.Context, runErr error) m.TestStatus {
	switch {
	case runErr == nil:
		return m.Survived
	case errors.Is(runErr, adapter.ErrNoHarness), errors.Is(runErr, adapter.ErrHarnessStart):
		return m.Error
	case ctx.Err() != nil, errors.Is(runErr, context.DeadlineExceeded):
		return m.Timeout
	}

	return m.Killed
}

func (to *orchestrator) resultForStatus(mutant m.Mutant, status m.TestStatus, output string, runErr error) m.Result {
	result := m.Result{
		MutantID:   mutant.ID,
		Identifier: mutant.Identifier,
		Status:     status,
		Diff:       mutant.Diff,
	}

	// Output only matters for mutants the suite did not catch.
	if status != m.Killed {
		result.Output = output
	}

	if status == m.Error && runErr != nil {
		result.Err = runErr.Error()
	}

	return result
}

// cleanupTempDir removes the temporary directory, logging errors if cleanup fails.
func (to *orchestrator) cleanupTempDir(ctx context.Context, tmpDir m.Path) {
	if err := to.fsAdapter.RemoveAll(ctx, tmpDir); err != nil {
		slog.Error("Failed to cleanup temp dir", "tmpDir", tmpDir, "error", err)
	}
}
