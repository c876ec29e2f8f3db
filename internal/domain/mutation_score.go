package domain

import (
	m "gooze.dev/pkg/stackmut/internal/model"
	pkg "gooze.dev/pkg/stackmut/pkg"
)

// Score summarizes test outcomes.
type Score struct {
	Killed   int
	Survived int
	Timeout  int
	Skipped  int
	Errors   int
}

// Add counts one result.
func (s *Score) Add(status m.TestStatus) {
	switch status {
	case m.Killed:
		s.Killed++
	case m.Survived:
		s.Survived++
	case m.Timeout:
		s.Timeout++
	case m.Skipped:
		s.Skipped++
	case m.Error:
		s.Errors++
	}
}

// Ratio is the share of detected mutants. Timeouts count as detected; skipped
// and errored mutants are left out. With nothing to count the ratio is 1.
func (s Score) Ratio() float64 {
	detected := s.Killed + s.Timeout
	total := detected + s.Survived

	if total == 0 {
		return 1.0
	}

	return float64(detected) / float64(total)
}

func scoreFromResults(results []m.Result) Score {
	var score Score
	for _, result := range results {
		score.Add(result.Status)
	}

	return score
}

func mutationScoreFromReports(reports pkg.FileSpill[m.Report]) (float64, error) {
	var score Score

	err := reports.Range(func(_ uint64, report m.Report) error {
		for _, result := range report.Results {
			score.Add(result.Status)
		}

		return nil
	})
	if err != nil {
		return 0.0, err
	}

	return score.Ratio(), nil
}
