package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayEstimation prints the estimation results or error.
func (s *SimpleUI) DisplayEstimation(ctx context.Context, mutants []m.Mutant, err error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err != nil {
		s.printf("estimation error: %v\n", err)
		return err
	}

	statsList := buildFileStats(mutants)
	tableStr := renderEstimationTable(statsList, len(mutants))
	s.printf("\n%s", tableStr)

	return nil
}

type fileStat struct {
	path    string
	class   string
	methods map[string]struct{}
	count   int
}

func buildFileStats(mutants []m.Mutant) []fileStat {
	info := make(map[string]fileStat)

	for _, mutant := range mutants {
		path := mutantPath(mutant)
		if path == "" {
			continue
		}

		stat := info[path]
		if stat.methods == nil {
			stat.methods = make(map[string]struct{})
		}

		stat.path = path
		stat.class = mutant.Source.Class
		stat.methods[mutant.Method.String()] = struct{}{}
		stat.count++
		info[path] = stat
	}

	statsList := make([]fileStat, 0, len(info))
	for _, stat := range info {
		statsList = append(statsList, stat)
	}

	sort.Slice(statsList, func(i, j int) bool {
		return statsList[i].path < statsList[j].path
	})

	return statsList
}

func renderEstimationTable(statsList []fileStat, totalMutants int) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Class", "Methods", "Mutants"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	for _, stat := range statsList {
		table.Append([]string{stat.path, stat.class, fmt.Sprintf("%d", len(stat.methods)), fmt.Sprintf("%d", stat.count)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(statsList)),
		"",
		"",
		fmt.Sprintf("%d", totalMutants),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayConcurrencyInfo shows concurrency settings.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, threads int, shardIndex int, shardCount int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Running with %d worker(s) (Shard %d/%d)\n", threads, shardIndex, shardCount)
}

// DisplayUpcomingTestsInfo shows the number of upcoming mutants to be tested.
func (s *SimpleUI) DisplayUpcomingTestsInfo(ctx context.Context, count int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Upcoming mutants: %d\n", count)
}

// DisplayStartingTestInfo shows info about the mutant test starting.
func (s *SimpleUI) DisplayStartingTestInfo(ctx context.Context, mutant m.Mutant, _ int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Starting mutant %s (%s) %s\n", shortID(mutant.ID), mutant.Identifier.Operator, mutant.Identifier.Location)
}

// DisplayCompletedTestInfo shows info about the mutant test completion.
func (s *SimpleUI) DisplayCompletedTestInfo(ctx context.Context, mutant m.Mutant, result m.Result) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Completed mutant %s (%s) -> %s\n", shortID(mutant.ID), mutant.Identifier.Operator, result.Status)

	if result.Status != m.Killed && mutant.Diff != "" {
		if path := mutantPath(mutant); path != "" {
			s.printf("File: %s\n", path)
		}

		s.printf("%s\n", mutant.Diff)
	}
}

// DisplayMutationScore prints the final mutation score.
func (s *SimpleUI) DisplayMutationScore(ctx context.Context, score float64) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Mutation score: %.2f%%\n", score*100)
}

// DisplayReports prints a per-listing summary of stored reports followed by
// the surviving mutants.
func (s *SimpleUI) DisplayReports(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(reports) == 0 {
		s.printf("No reports found\n")
		return nil
	}

	s.printf("\n%s", renderReportTable(reports))

	for _, report := range reports {
		for _, result := range report.Results {
			if result.Status != m.Survived {
				continue
			}

			s.printf("\nSurvived %s in %s\n  %s\n", shortID(result.MutantID), report.Source, result.Identifier)

			if result.Diff != "" {
				s.printf("%s\n", result.Diff)
			}
		}
	}

	return nil
}

func renderReportTable(reports []m.Report) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Killed", "Survived", "Timeout", "Error", "Score"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	var total statusCounts

	for _, report := range reports {
		counts := countStatuses(report.Results)
		total.add(counts)
		table.Append(counts.row(string(report.Source)))
	}

	table.SetFooter(total.row(fmt.Sprintf("Total Files %d", len(reports))))
	table.Render()

	return tableBuffer.String()
}

type statusCounts struct {
	killed, survived, timeout, errors, skipped int
}

func countStatuses(results []m.Result) statusCounts {
	var counts statusCounts

	for _, result := range results {
		switch result.Status {
		case m.Killed:
			counts.killed++
		case m.Survived:
			counts.survived++
		case m.Timeout:
			counts.timeout++
		case m.Error:
			counts.errors++
		case m.Skipped:
			counts.skipped++
		}
	}

	return counts
}

func (c *statusCounts) add(other statusCounts) {
	c.killed += other.killed
	c.survived += other.survived
	c.timeout += other.timeout
	c.errors += other.errors
	c.skipped += other.skipped
}

func (c statusCounts) score() float64 {
	detected := c.killed + c.timeout
	if detected+c.survived == 0 {
		return 1.0
	}

	return float64(detected) / float64(detected+c.survived)
}

func (c statusCounts) row(label string) []string {
	return []string{
		label,
		fmt.Sprintf("%d", c.killed),
		fmt.Sprintf("%d", c.survived),
		fmt.Sprintf("%d", c.timeout),
		fmt.Sprintf("%d", c.errors),
		fmt.Sprintf("%.2f%%", c.score()*100),
	}
}

// DisplayMutant prints one mutant with its diff.
func (s *SimpleUI) DisplayMutant(ctx context.Context, mutant m.Mutant) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("Mutant %s\n", mutant.ID)
	s.printf("  %s\n", mutant.Identifier)

	if mutant.Diff != "" {
		s.printf("\n%s", mutant.Diff)
	}

	return nil
}

// DisplayCatalog prints every registered mutator name and what it expands to.
func (s *SimpleUI) DisplayCatalog(ctx context.Context, entries []CatalogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Name", "Operators"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, entry := range entries {
		table.Append([]string{entry.Name, strings.Join(entry.Operators, ", ")})
	}

	table.Render()
	s.printf("%s", tableBuffer.String())

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func mutantPath(mutant m.Mutant) string {
	if mutant.Source.Origin == nil {
		return ""
	}

	return string(mutant.Source.Origin.ShortPath)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
