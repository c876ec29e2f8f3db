package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"
)

var (
	// ErrNoHarness is returned when no harness command is configured.
	ErrNoHarness = errors.New("no test harness command configured (set run.command)")
	// ErrHarnessStart wraps failures to launch the harness process.
	ErrHarnessStart = errors.New("harness did not start")
)

// TestRunnerAdapter abstracts running the external test harness against a mutant.
type TestRunnerAdapter interface {
	// RunHarness runs command in workDir with env added to the process
	// environment. An *exec.ExitError means a test detected the mutant. A
	// deadline wraps context.DeadlineExceeded; a harness that could not run
	// wraps ErrNoHarness or ErrHarnessStart.
	RunHarness(ctx context.Context, workDir string, command []string, env map[string]string) (output string, err error)
}

// LocalTestRunnerAdapter runs the harness with os/exec.
type LocalTestRunnerAdapter struct {
	timeout time.Duration
}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter. A zero timeout
// leaves the deadline to ctx.
func NewLocalTestRunnerAdapter(timeout time.Duration) *LocalTestRunnerAdapter {
	return &LocalTestRunnerAdapter{
		timeout: timeout,
	}
}

// RunHarness runs command in workDir.
func (a *LocalTestRunnerAdapter) RunHarness(ctx context.Context, workDir string, command []string, env map[string]string) (string, error) {
	if len(command) == 0 || command[0] == "" {
		return "", ErrNoHarness
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	// #nosec G204 - the harness command is user configuration
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), envList(env)...)
	// Children that outlive the harness keep the output pipes open.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := stdout.String() + stderr.String()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if err == nil {
			return output, ctxErr
		}

		return output, fmt.Errorf("%w: %w", ctxErr, err)
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return output, fmt.Errorf("%w: %w", ErrHarnessStart, err)
	}

	return output, err
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, key+"="+env[key])
	}

	return out
}
