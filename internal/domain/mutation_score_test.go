package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/stackmut/internal/model"
	pkg "gooze.dev/pkg/stackmut/pkg"
)

type errSpill[T any] struct {
	err error
}

func (e errSpill[T]) Len() uint64                                    { return 0 }
func (e errSpill[T]) Path() string                                   { return "" }
func (e errSpill[T]) Append(_ T) error                               { return nil }
func (e errSpill[T]) AppendBatch(_ []T) error                        { return nil }
func (e errSpill[T]) Get(_ uint64) (T, error)                        { var zero T; return zero, errors.New("not implemented") }
func (e errSpill[T]) Range(_ func(index uint64, item T) error) error { return e.err }
func (e errSpill[T]) Close() error                                   { return nil }
func (e errSpill[T]) Remove() error                                  { return nil }

func TestMutationScoreFromReports(t *testing.T) {
	spill, err := pkg.NewFileSpillIn[m.Report](t.TempDir())
	require.NoError(t, err)
	defer spill.Remove()

	require.NoError(t, spill.Append(m.Report{
		Source: "Calc.listing.yaml",
		Results: []m.Result{
			{MutantID: "m1", Status: m.Killed},
			{MutantID: "m2", Status: m.Survived},
			{MutantID: "m3", Status: m.Skipped},
			{MutantID: "m4", Status: m.Error},
		},
	}))
	require.NoError(t, spill.Append(m.Report{
		Source: "Counter.listing.yaml",
		Results: []m.Result{
			{MutantID: "m5", Status: m.Timeout},
			{MutantID: "m6", Status: m.Survived},
		},
	}))

	score, err := mutationScoreFromReports(spill)
	require.NoError(t, err)

	require.Equal(t, 0.5, score)
}

func TestMutationScoreFromReports_EmptySpillIsPerfect(t *testing.T) {
	spill, err := pkg.NewFileSpillIn[m.Report](t.TempDir())
	require.NoError(t, err)
	defer spill.Remove()

	score, err := mutationScoreFromReports(spill)
	require.NoError(t, err)

	require.Equal(t, 1.0, score)
}

func TestMutationScoreFromReports_RangeError(t *testing.T) {
	rangeErr := errors.New("range failed")

	_, err := mutationScoreFromReports(errSpill[m.Report]{err: rangeErr})
	require.ErrorIs(t, err, rangeErr)
}

func TestScore(t *testing.T) {
	score := scoreFromResults([]m.Result{
		{Status: m.Killed},
		{Status: m.Killed},
		{Status: m.Survived},
		{Status: m.Error},
		{Status: m.Skipped},
	})

	require.Equal(t, Score{Killed: 2, Survived: 1, Errors: 1, Skipped: 1}, score)
	require.InDelta(t, 2.0/3.0, score.Ratio(), 1e-9)
}
