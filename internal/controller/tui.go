package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "gooze.dev/pkg/stackmut/internal/model"
)

const recentResultsLimit = 8

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	faintStyle    = lipgloss.NewStyle().Faint(true)
	killedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	survivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	otherStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options...)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return nil
	}

	t.program = tea.NewProgram(newProgressModel(cfg.mode), tea.WithOutput(t.output), tea.WithContext(ctx))
	t.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		if _, err := program.Run(); err != nil {
			slog.Debug("TUI stopped", "error", err)
		}
	}(t.program, t.done)

	return nil
}

// Close stops the program and waits for it to release the terminal.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program, t.done = nil, nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait blocks until the user quits the program.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-ctx.Done():
	case <-done:
	}
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

// DisplayEstimation hands the per-listing mutant counts to the program.
func (t *TUI) DisplayEstimation(ctx context.Context, mutants []m.Mutant, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	t.send(estimationMsg{stats: buildFileStats(mutants), total: len(mutants), err: err})

	return err
}

// DisplayConcurrencyInfo shows concurrency settings.
func (t *TUI) DisplayConcurrencyInfo(ctx context.Context, threads int, shardIndex int, shardCount int) {
	if ctx.Err() != nil {
		return
	}

	t.send(concurrencyMsg{threads: threads, shardIndex: shardIndex, shardCount: shardCount})
}

// DisplayUpcomingTestsInfo sets the progress bar total.
func (t *TUI) DisplayUpcomingTestsInfo(ctx context.Context, count int) {
	if ctx.Err() != nil {
		return
	}

	t.send(upcomingMsg{count: count})
}

// DisplayStartingTestInfo marks a worker busy with mutant.
func (t *TUI) DisplayStartingTestInfo(ctx context.Context, mutant m.Mutant, threadID int) {
	if ctx.Err() != nil {
		return
	}

	t.send(startedMsg{threadID: threadID, label: mutantLabel(mutant)})
}

// DisplayCompletedTestInfo advances the progress bar.
func (t *TUI) DisplayCompletedTestInfo(ctx context.Context, mutant m.Mutant, result m.Result) {
	if ctx.Err() != nil {
		return
	}

	t.send(completedMsg{label: mutantLabel(mutant), status: result.Status})
}

// DisplayMutationScore shows the final score.
func (t *TUI) DisplayMutationScore(ctx context.Context, score float64) {
	if ctx.Err() != nil {
		return
	}

	t.send(scoreMsg{score: score})
}

// DisplayReports renders stored reports as a static styled summary.
func (t *TUI) DisplayReports(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("stackmut reports"))
	b.WriteString("\n")

	if len(reports) == 0 {
		b.WriteString(faintStyle.Render("  No reports found"))
		b.WriteString("\n")

		return t.print(b.String())
	}

	b.WriteString(boxStyle.Render(strings.TrimRight(renderReportTable(reports), "\n")))
	b.WriteString("\n")

	for _, report := range reports {
		for _, result := range report.Results {
			if result.Status != m.Survived {
				continue
			}

			fmt.Fprintf(&b, "\n%s %s\n", survivedStyle.Render("survived"), result.Identifier)

			if result.Diff != "" {
				b.WriteString(faintStyle.Render(strings.TrimRight(result.Diff, "\n")))
				b.WriteString("\n")
			}
		}
	}

	return t.print(b.String())
}

// DisplayMutant renders one mutant with its diff.
func (t *TUI) DisplayMutant(ctx context.Context, mutant m.Mutant) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("mutant " + mutant.ID))
	b.WriteString("\n")
	b.WriteString(mutant.Identifier.String())
	b.WriteString("\n\n")

	if mutant.Diff != "" {
		b.WriteString(boxStyle.Render(strings.TrimRight(mutant.Diff, "\n")))
		b.WriteString("\n")
	}

	return t.print(b.String())
}

// DisplayCatalog renders the registered mutator names.
func (t *TUI) DisplayCatalog(ctx context.Context, entries []CatalogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("mutators"))
	b.WriteString("\n")

	for _, entry := range entries {
		fmt.Fprintf(&b, "  %s %s\n", killedStyle.Render(entry.Name), faintStyle.Render(strings.Join(entry.Operators, ", ")))
	}

	return t.print(b.String())
}

func (t *TUI) print(s string) error {
	_, err := io.WriteString(t.output, s)
	return err
}

func mutantLabel(mutant m.Mutant) string {
	return fmt.Sprintf("%s %s %s", shortID(mutant.ID), mutant.Identifier.Operator, mutant.Identifier.Location)
}

type estimationMsg struct {
	stats []fileStat
	total int
	err   error
}

type concurrencyMsg struct {
	threads, shardIndex, shardCount int
}

type upcomingMsg struct {
	count int
}

type startedMsg struct {
	threadID int
	label    string
}

type completedMsg struct {
	label  string
	status m.TestStatus
}

type scoreMsg struct {
	score float64
}

// progressModel is the Bubble Tea model shared by estimate and test modes.
type progressModel struct {
	mode     StartMode
	spinner  spinner.Model
	progress progress.Model

	estimation    []fileStat
	estimateTotal int
	estimateErr   error
	estimated     bool

	threads, shardIndex, shardCount int

	total     int
	completed int
	counts    statusCounts
	running   map[int]string
	recent    []completedMsg

	score    float64
	finished bool
	quitting bool
}

func newProgressModel(mode StartMode) progressModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return progressModel{
		mode:     mode,
		spinner:  spin,
		progress: progress.New(progress.WithDefaultGradient()),
		running:  make(map[int]string),
	}
}

func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

//nolint:cyclop // One case per message type.
func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		}

	case tea.WindowSizeMsg:
		pm.progress.Width = max(msg.Width-8, 10)

	case spinner.TickMsg:
		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd

	case estimationMsg:
		pm.estimation, pm.estimateTotal, pm.estimateErr = msg.stats, msg.total, msg.err
		pm.estimated = true

	case concurrencyMsg:
		pm.threads, pm.shardIndex, pm.shardCount = msg.threads, msg.shardIndex, msg.shardCount

	case upcomingMsg:
		pm.total = msg.count

	case startedMsg:
		pm.running[msg.threadID] = msg.label

	case completedMsg:
		pm.completed++
		pm.counts.add(countStatuses([]m.Result{{Status: msg.status}}))

		for id, label := range pm.running {
			if label == msg.label {
				delete(pm.running, id)
			}
		}

		pm.recent = append(pm.recent, msg)
		if len(pm.recent) > recentResultsLimit {
			pm.recent = pm.recent[len(pm.recent)-recentResultsLimit:]
		}

	case scoreMsg:
		pm.score = msg.score
		pm.finished = true
	}

	return pm, nil
}

func (pm progressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("stackmut - mutation testing"))
	b.WriteString("\n\n")

	if pm.mode == ModeEstimate {
		pm.renderEstimation(&b)
	} else {
		pm.renderProgress(&b)
	}

	if !pm.quitting {
		b.WriteString(faintStyle.Render("\n  press q to quit"))
		b.WriteString("\n")
	}

	return b.String()
}

func (pm progressModel) renderEstimation(b *strings.Builder) {
	switch {
	case !pm.estimated:
		fmt.Fprintf(b, "  %s scanning listings...\n", pm.spinner.View())
	case pm.estimateErr != nil:
		fmt.Fprintf(b, "  %s %v\n", survivedStyle.Render("error:"), pm.estimateErr)
	case len(pm.estimation) == 0:
		b.WriteString("  No listings found\n")
	default:
		b.WriteString(boxStyle.Render(strings.TrimRight(renderEstimationTable(pm.estimation, pm.estimateTotal), "\n")))
		b.WriteString("\n")
	}
}

func (pm progressModel) renderProgress(b *strings.Builder) {
	if pm.shardCount > 0 {
		fmt.Fprintf(b, "  %d worker(s), shard %d/%d\n\n", pm.threads, pm.shardIndex, pm.shardCount)
	}

	percent := 0.0
	if pm.total > 0 {
		percent = float64(pm.completed) / float64(pm.total)
	}

	fmt.Fprintf(b, "  %s %d/%d\n\n", pm.progress.ViewAs(percent), pm.completed, pm.total)

	fmt.Fprintf(b, "  %s  %s  %s\n\n",
		killedStyle.Render(fmt.Sprintf("killed %d", pm.counts.killed)),
		survivedStyle.Render(fmt.Sprintf("survived %d", pm.counts.survived)),
		otherStyle.Render(fmt.Sprintf("other %d", pm.counts.timeout+pm.counts.errors+pm.counts.skipped)),
	)

	ids := make([]int, 0, len(pm.running))
	for id := range pm.running {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	for _, id := range ids {
		fmt.Fprintf(b, "  %s [%d] %s\n", pm.spinner.View(), id, pm.running[id])
	}

	for _, result := range pm.recent {
		fmt.Fprintf(b, "  %s %s\n", styleStatus(result.status), faintStyle.Render(result.label))
	}

	if pm.finished {
		fmt.Fprintf(b, "\n  Mutation score: %.2f%%\n", pm.score*100)
	}
}

func styleStatus(status m.TestStatus) string {
	label := fmt.Sprintf("%-8s", status)

	switch status {
	case m.Killed:
		return killedStyle.Render(label)
	case m.Survived:
		return survivedStyle.Render(label)
	default:
		return otherStyle.Render(label)
	}
}
