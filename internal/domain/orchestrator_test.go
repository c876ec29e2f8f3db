package domain_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/stackmut/internal/adapter"
	adaptermocks "gooze.dev/pkg/stackmut/internal/adapter/mocks"
	"gooze.dev/pkg/stackmut/internal/domain"
	m "gooze.dev/pkg/stackmut/internal/model"
)

var harness = domain.Harness{Command: []string{"./run-tests.sh"}, WorkDir: "/project"}

func orchestratorMutant() m.Mutant {
	return m.Mutant{
		ID: "0123456789abcdef",
		Source: m.Source{
			Origin: &m.File{ShortPath: "Calc.listing.yaml", FullPath: "/project/Calc.listing.yaml", Hash: "h"},
			Class:  "com/example/Calc",
		},
		Method: m.MethodRef{Class: "com/example/Calc", Method: "add", Descriptor: "(II)I"},
		Identifier: m.MutationIdentifier{
			Operator:    "arithmetic_replacement",
			Ordinal:     0,
			Description: "Replaced integer addition with subtraction",
		},
		Mutated: []m.Instruction{
			m.VarInsn(m.OpILoad, 1),
			m.VarInsn(m.OpILoad, 2),
			m.Insn(m.OpISub),
			m.Insn(m.OpIReturn),
		},
		Diff: "-IADD\n+ISUB\n",
	}
}

type orchestratorMocks struct {
	fs      *adaptermocks.MockSourceFSAdapter
	listing *adaptermocks.MockListingAdapter
	runner  *adaptermocks.MockTestRunnerAdapter
}

func newOrchestratorMocks(t *testing.T) orchestratorMocks {
	return orchestratorMocks{
		fs:      adaptermocks.NewMockSourceFSAdapter(t),
		listing: adaptermocks.NewMockListingAdapter(t),
		runner:  adaptermocks.NewMockTestRunnerAdapter(t),
	}
}

// expectPrepared sets up loading, encoding and writing the mutated listing.
func (om orchestratorMocks) expectPrepared() {
	class := m.Class{
		Name: "com/example/Calc",
		Methods: []m.Method{
			{Name: "add", Descriptor: "(II)I", Instructions: []m.Instruction{
				m.VarInsn(m.OpILoad, 1),
				m.VarInsn(m.OpILoad, 2),
				m.Insn(m.OpIAdd),
				m.Insn(m.OpIReturn),
			}},
		},
	}

	om.listing.On("Load", mock.Anything, m.Path("/project/Calc.listing.yaml")).Return(class, nil).Once()
	om.listing.On("Encode", mock.Anything, mock.MatchedBy(func(c m.Class) bool {
		return len(c.Methods) == 1 && c.Methods[0].Instructions[2].Op == m.OpISub
	})).Return([]byte("encoded"), nil).Once()

	om.fs.On("CreateTempDir", mock.Anything, "stackmut-mutant-*").Return(m.Path("/tmp/mutant"), nil).Once()
	om.fs.On("JoinPath", mock.Anything, []string{"/tmp/mutant", "Calc.listing.yaml"}).Return(m.Path("/tmp/mutant/Calc.listing.yaml")).Once()
	om.fs.On("WriteFile", mock.Anything, m.Path("/tmp/mutant/Calc.listing.yaml"), []byte("encoded"), os.FileMode(0o600)).Return(nil).Once()
	om.fs.On("RemoveAll", mock.Anything, m.Path("/tmp/mutant")).Return(nil).Once()
}

func (om orchestratorMocks) orchestrator() domain.Orchestrator {
	return domain.NewOrchestrator(om.fs, om.listing, om.runner)
}

func TestOrchestrator_TestMutant(t *testing.T) {
	expectedEnv := map[string]string{
		domain.EnvMutant:   "/tmp/mutant/Calc.listing.yaml",
		domain.EnvClass:    "com/example/Calc",
		domain.EnvMutantID: "0123456789abcdef",
		domain.EnvOriginal: "/project/Calc.listing.yaml",
	}

	tests := []struct {
		name       string
		output     string
		runErr     error
		wantStatus m.TestStatus
		wantOutput string
		wantErr    string
	}{
		{name: "passing suite means survived", output: "all green", wantStatus: m.Survived, wantOutput: "all green"},
		{name: "failing suite means killed", output: "1 failure", runErr: errors.New("exit status 1"), wantStatus: m.Killed},
		{name: "deadline means timeout", output: "partial", runErr: context.DeadlineExceeded, wantStatus: m.Timeout, wantOutput: "partial"},
		{
			name: "missing harness means error", runErr: adapter.ErrNoHarness,
			wantStatus: m.Error, wantErr: adapter.ErrNoHarness.Error(),
		},
		{
			name: "harness that cannot start means error", output: "",
			runErr:     fmt.Errorf("%w: %w", adapter.ErrHarnessStart, errors.New("exec: \"./run-tests.sh\": no such file")),
			wantStatus: m.Error,
			wantErr:    "harness did not start: exec: \"./run-tests.sh\": no such file",
		},
		{
			name: "harness timeout means timeout", output: "slow",
			runErr:     fmt.Errorf("%w: %w", context.DeadlineExceeded, errors.New("signal: killed")),
			wantStatus: m.Timeout, wantOutput: "slow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := newOrchestratorMocks(t)
			mocks.expectPrepared()
			mocks.runner.On("RunHarness", mock.Anything, "/project", []string{"./run-tests.sh"}, expectedEnv).
				Return(tt.output, tt.runErr).Once()

			result, err := mocks.orchestrator().TestMutant(context.Background(), orchestratorMutant(), harness)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, "0123456789abcdef", result.MutantID)
			assert.Equal(t, "arithmetic_replacement", result.Identifier.Operator)
			assert.Equal(t, "-IADD\n+ISUB\n", result.Diff)
			assert.Equal(t, tt.wantOutput, result.Output)
			assert.Equal(t, tt.wantErr, result.Err)
		})
	}
}

func TestOrchestrator_TestMutant_CancelledContext(t *testing.T) {
	mocks := newOrchestratorMocks(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := mocks.orchestrator().TestMutant(ctx, orchestratorMutant(), harness)
	require.NoError(t, err)

	assert.Equal(t, m.Timeout, result.Status)
}

func TestOrchestrator_TestMutant_MissingMethod(t *testing.T) {
	mocks := newOrchestratorMocks(t)
	mocks.listing.On("Load", mock.Anything, mock.Anything).Return(m.Class{Name: "com/example/Calc"}, nil).Once()

	_, err := mocks.orchestrator().TestMutant(context.Background(), orchestratorMutant(), harness)
	require.Error(t, err)
}

func TestOrchestrator_TestMutant_MissingOrigin(t *testing.T) {
	mocks := newOrchestratorMocks(t)

	mutant := orchestratorMutant()
	mutant.Source.Origin = nil

	_, err := mocks.orchestrator().TestMutant(context.Background(), mutant, harness)
	require.Error(t, err)
}

func TestOrchestrator_TestMutant_TempDirError(t *testing.T) {
	mocks := newOrchestratorMocks(t)
	mocks.listing.On("Load", mock.Anything, mock.Anything).Return(m.Class{
		Name:    "com/example/Calc",
		Methods: []m.Method{{Name: "add", Descriptor: "(II)I"}},
	}, nil).Once()
	mocks.listing.On("Encode", mock.Anything, mock.Anything).Return([]byte("encoded"), nil).Once()
	mocks.fs.On("CreateTempDir", mock.Anything, mock.Anything).Return(m.Path(""), errors.New("disk full")).Once()

	_, err := mocks.orchestrator().TestMutant(context.Background(), orchestratorMutant(), harness)
	require.ErrorContains(t, err, "disk full")
}

func TestOrchestrator_TestMutant_UnknownHarnessCommand(t *testing.T) {
	mocks := newOrchestratorMocks(t)
	mocks.expectPrepared()

	orchestrator := domain.NewOrchestrator(mocks.fs, mocks.listing, adapter.NewLocalTestRunnerAdapter(0))
	missing := domain.Harness{Command: []string{"/nonexistent/stackmut-harness"}, WorkDir: t.TempDir()}

	result, err := orchestrator.TestMutant(context.Background(), orchestratorMutant(), missing)
	require.NoError(t, err)

	assert.Equal(t, m.Error, result.Status)
	assert.Contains(t, result.Err, "harness did not start")
}
