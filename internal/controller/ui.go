// Package controller provides output adapters for displaying mutation testing results.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeEstimate StartMode = iota
	ModeTest
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithEstimateMode sets the UI to estimation mode.
func WithEstimateMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeEstimate
	}
}

// WithTestMode sets the UI to test execution mode.
func WithTestMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeTest
	}
}

func newStartConfig(options ...StartOption) StartConfig {
	cfg := StartConfig{mode: ModeEstimate}
	for _, option := range options {
		option(&cfg)
	}

	return cfg
}

// CatalogEntry is one registered mutator name and the operators it expands to.
type CatalogEntry struct {
	Name      string
	Operators []string
}

// UI defines the interface for displaying mutation testing progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayEstimation(ctx context.Context, mutants []m.Mutant, err error) error
	DisplayConcurrencyInfo(ctx context.Context, threads int, shardIndex int, shardCount int)
	DisplayUpcomingTestsInfo(ctx context.Context, count int)
	DisplayStartingTestInfo(ctx context.Context, mutant m.Mutant, threadID int)
	DisplayCompletedTestInfo(ctx context.Context, mutant m.Mutant, result m.Result)
	DisplayMutationScore(ctx context.Context, score float64)
	DisplayReports(ctx context.Context, reports []m.Report) error
	DisplayMutant(ctx context.Context, mutant m.Mutant) error
	DisplayCatalog(ctx context.Context, entries []CatalogEntry) error
}

// NewUI picks the interactive TUI when stdout is a terminal and plain text otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	fd := f.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
