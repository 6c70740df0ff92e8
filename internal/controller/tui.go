package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

// maxRecentProblems bounds the problem list shown while scanning.
const maxRecentProblems = 5

// filterCycle is the order the filter key walks through.
var filterCycle = [][]m.Verdict{
	{m.Corrupt, m.Timeout, m.Unreadable},
	{m.Corrupt},
	{m.Timeout},
	{m.Unreadable},
	{m.Healthy},
	nil,
}

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	input  io.Reader
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
	replies chan tuiReply
	runErr  error
	final   string
}

// NewTUI creates a new TUI.
func NewTUI(input io.Reader, output io.Writer) *TUI {
	return &TUI{input: input, output: output}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return nil
	}

	cfg := newStartConfig(options)
	t.replies = make(chan tuiReply)
	t.done = make(chan struct{})

	model := newTUIModel(cfg, t.replies)

	if f, ok := t.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.width = width
			model.height = height
		}
	}

	t.program = tea.NewProgram(model, tea.WithInput(t.input), tea.WithOutput(t.output), tea.WithAltScreen())

	go func() {
		final, err := t.program.Run()

		t.mu.Lock()
		t.runErr = err
		if fm, ok := final.(tuiModel); ok {
			t.final = fm.summaryLine()
		}
		t.mu.Unlock()

		close(t.done)
	}()

	return nil
}

// Close stops the program and prints a one-line summary once the alternate
// screen is gone.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runErr != nil {
		slog.Error("TUI program failed", "error", t.runErr)
	}

	if t.final != "" {
		_, _ = fmt.Fprintln(t.output, t.final)
	}

	t.program = nil
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

// DisplayScanStarted implements UI.
func (t *TUI) DisplayScanStarted(_ context.Context, root m.Path, workers int) {
	t.send(scanStartedMsg{root: root, workers: workers})
}

// DisplayProgress implements UI.
func (t *TUI) DisplayProgress(_ context.Context, event m.ProgressEvent) {
	t.send(progressMsg{event: event})
}

// DisplayScanReport implements UI.
func (t *TUI) DisplayScanReport(_ context.Context, report m.ScanReport) {
	t.send(reportMsg{report: report})
}

// DisplayWarning implements UI.
func (t *TUI) DisplayWarning(_ context.Context, message string) {
	t.send(warningMsg{text: message})
}

// DisplayCommitReport implements UI.
func (t *TUI) DisplayCommitReport(_ context.Context, report m.CommitReport) {
	t.send(commitReportMsg{report: report})
}

// NextCommand shows table and waits for the operator's next key command.
func (t *TUI) NextCommand(ctx context.Context, table m.TriageTable) (m.Command, error) {
	t.send(tableMsg{table: table})

	reply, err := t.await(ctx)
	if err != nil {
		return m.Command{}, err
	}

	return reply.command, nil
}

// Confirm shows a y/n overlay.
func (t *TUI) Confirm(ctx context.Context, question string) (bool, error) {
	t.send(confirmMsg{question: question})

	reply, err := t.await(ctx)
	if err != nil {
		return false, err
	}

	return reply.confirmed, nil
}

func (t *TUI) await(ctx context.Context) (tuiReply, error) {
	t.mu.Lock()
	replies, done := t.replies, t.done
	t.mu.Unlock()

	if done == nil {
		return tuiReply{}, ErrInputClosed
	}

	select {
	case reply := <-replies:
		return reply, nil
	case <-done:
		return tuiReply{}, ErrInputClosed
	case <-ctx.Done():
		return tuiReply{}, ctx.Err()
	}
}

type (
	scanStartedMsg struct {
		root    m.Path
		workers int
	}
	progressMsg     struct{ event m.ProgressEvent }
	reportMsg       struct{ report m.ScanReport }
	warningMsg      struct{ text string }
	tableMsg        struct{ table m.TriageTable }
	confirmMsg      struct{ question string }
	commitReportMsg struct{ report m.CommitReport }
)

// tuiReply carries an operator decision back to the waiting workflow.
type tuiReply struct {
	command   m.Command
	confirmed bool
}

type tuiKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Corrupt key.Binding
	Invert  key.Binding
	Clear   key.Binding
	Filter  key.Binding
	Commit  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

func defaultTUIKeyMap() tuiKeyMap {
	return tuiKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		Corrupt: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select corrupt")),
		Invert:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invert")),
		Clear:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Commit:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "move to trash")),
		Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type tuiStyles struct {
	header   lipgloss.Style
	muted    lipgloss.Style
	warn     lipgloss.Style
	cursor   lipgloss.Style
	selected lipgloss.Style
	overlay  lipgloss.Style
	verdict  map[m.Verdict]lipgloss.Style
}

func defaultTUIStyles() tuiStyles {
	return tuiStyles{
		header:   lipgloss.NewStyle().Bold(true),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		warn:     lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
		cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		overlay:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		verdict: map[m.Verdict]lipgloss.Style{
			m.Healthy:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			m.Corrupt:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			m.Timeout:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			m.Unreadable: lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
		},
	}
}

// tuiModel is the Bubble Tea model shared by the scan and triage views.
type tuiModel struct {
	mode    StartMode
	keys    tuiKeyMap
	styles  tuiStyles
	spinner spinner.Model
	bar     progress.Model
	cancel  context.CancelFunc
	replies chan<- tuiReply

	root       m.Path
	workers    int
	counts     m.VerdictCounts
	completed  int
	inFlight   int
	current    m.Path
	recent     []m.ScanEntry
	cancelling bool
	scanDone   bool
	report     *m.ScanReport
	warnings   []string

	table    m.TriageTable
	awaiting bool
	cursor   int
	offset   int
	question string
	commit   *m.CommitReport
	lastRun  *m.CommitReport

	width  int
	height int
}

func newTUIModel(cfg StartConfig, replies chan<- tuiReply) tuiModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return tuiModel{
		mode:    cfg.mode,
		keys:    defaultTUIKeyMap(),
		styles:  defaultTUIStyles(),
		spinner: spin,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cancel:  cfg.cancel,
		replies: replies,
		width:   100,
		height:  30,
	}
}

func (tm tuiModel) Init() tea.Cmd {
	return tm.spinner.Tick
}

func (tm tuiModel) reply(r tuiReply) tea.Cmd {
	replies := tm.replies

	return func() tea.Msg {
		replies <- r
		return nil
	}
}

//nolint:cyclop // one case per message type
func (tm tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		tm.width = msg.Width
		tm.height = msg.Height
		tm.ensureCursorVisible()

		return tm, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		tm.spinner, cmd = tm.spinner.Update(msg)

		return tm, cmd
	case scanStartedMsg:
		tm.root = msg.root
		tm.workers = msg.workers

		return tm, nil
	case progressMsg:
		tm.counts = msg.event.Counts
		tm.completed = msg.event.Completed
		tm.inFlight = msg.event.InFlight
		tm.current = msg.event.Entry.Candidate.Path

		if msg.event.Entry.Verdict != m.Healthy {
			tm.recent = append(tm.recent, msg.event.Entry)
			if len(tm.recent) > maxRecentProblems {
				tm.recent = tm.recent[len(tm.recent)-maxRecentProblems:]
			}
		}

		return tm, nil
	case reportMsg:
		report := msg.report
		tm.report = &report
		tm.scanDone = true
		tm.counts = report.Counts
		tm.warnings = append(tm.warnings, report.Warnings...)

		return tm, nil
	case warningMsg:
		tm.warnings = append(tm.warnings, msg.text)
		return tm, nil
	case tableMsg:
		tm.table = msg.table
		tm.awaiting = true
		tm.question = ""
		tm.ensureCursorVisible()

		return tm, nil
	case confirmMsg:
		tm.question = msg.question
		return tm, nil
	case commitReportMsg:
		report := msg.report
		tm.commit = &report
		tm.lastRun = &report

		return tm, nil
	case tea.KeyMsg:
		return tm.handleKeyPress(msg)
	}

	return tm, nil
}

//nolint:cyclop // Key handling requires multiple cases for UI navigation
func (tm tuiModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if tm.question != "" {
		switch {
		case key.Matches(msg, tm.keys.Confirm):
			tm.question = ""
			return tm, tm.reply(tuiReply{confirmed: true})
		case key.Matches(msg, tm.keys.Cancel), key.Matches(msg, tm.keys.Quit):
			tm.question = ""
			return tm, tm.reply(tuiReply{confirmed: false})
		}

		return tm, nil
	}

	if !tm.awaiting {
		if key.Matches(msg, tm.keys.Quit) && !tm.scanDone && tm.cancel != nil {
			tm.cancelling = true
			tm.cancel()
		}

		return tm, nil
	}

	switch {
	case key.Matches(msg, tm.keys.Up):
		tm.cursor = max(tm.cursor-1, 0)
		tm.ensureCursorVisible()

		return tm, nil
	case key.Matches(msg, tm.keys.Down):
		tm.cursor = min(tm.cursor+1, max(len(tm.table.Rows)-1, 0))
		tm.ensureCursorVisible()

		return tm, nil
	case key.Matches(msg, tm.keys.Toggle):
		if len(tm.table.Rows) == 0 {
			return tm, nil
		}

		return tm.send(m.Command{Type: m.CommandToggle, Index: tm.cursor})
	case key.Matches(msg, tm.keys.Corrupt):
		return tm.send(m.Command{Type: m.CommandSelectCorrupt})
	case key.Matches(msg, tm.keys.Invert):
		return tm.send(m.Command{Type: m.CommandInvert})
	case key.Matches(msg, tm.keys.Clear):
		return tm.send(m.Command{Type: m.CommandClear})
	case key.Matches(msg, tm.keys.Filter):
		return tm.send(m.Command{Type: m.CommandFilter, Verdicts: nextFilter(tm.table.Filter)})
	case key.Matches(msg, tm.keys.Commit):
		return tm.send(m.Command{Type: m.CommandCommit})
	case key.Matches(msg, tm.keys.Quit):
		return tm.send(m.Command{Type: m.CommandQuit})
	}

	return tm, nil
}

func (tm tuiModel) send(command m.Command) (tea.Model, tea.Cmd) {
	tm.awaiting = false
	tm.commit = nil

	return tm, tm.reply(tuiReply{command: command})
}

func nextFilter(current []m.Verdict) []m.Verdict {
	for i, filter := range filterCycle {
		if slices.Equal(filter, current) {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}

	return filterCycle[0]
}

func (tm tuiModel) rowsPerPage() int {
	// header, summary, blank, footer, help, overlay
	return max(tm.height-12, 3)
}

func (tm *tuiModel) ensureCursorVisible() {
	tm.cursor = max(min(tm.cursor, len(tm.table.Rows)-1), 0)

	page := tm.rowsPerPage()
	if tm.cursor < tm.offset {
		tm.offset = tm.cursor
	}

	if tm.cursor >= tm.offset+page {
		tm.offset = tm.cursor - page + 1
	}
}

func (tm tuiModel) View() string {
	var b strings.Builder

	b.WriteString(tm.styles.header.Render("vidcheck"))

	if tm.root != "" {
		b.WriteString(tm.styles.muted.Render("  " + string(tm.root)))
	}

	b.WriteString("\n\n")

	if tm.awaiting || tm.table.Total > 0 {
		b.WriteString(tm.triageView())
	} else {
		b.WriteString(tm.scanView())
	}

	for _, warning := range lastN(tm.warnings, 3) {
		b.WriteString(tm.styles.warn.Render("! "+warning) + "\n")
	}

	if tm.question != "" {
		b.WriteString("\n" + tm.styles.overlay.Render(tm.question+"  (y/n)") + "\n")
	}

	return b.String()
}

func (tm tuiModel) countsLine(counts m.VerdictCounts) string {
	parts := make([]string, 0, len(m.Verdicts))
	for _, verdict := range m.Verdicts {
		parts = append(parts, tm.styles.verdict[verdict].Render(fmt.Sprintf("%s %d", verdict, counts.Get(verdict))))
	}

	return strings.Join(parts, "  ")
}

func (tm tuiModel) scanView() string {
	if tm.mode == ModeReview {
		return tm.spinner.View() + " Loading report\n"
	}

	var b strings.Builder

	status := "Scanning"
	if tm.cancelling {
		status = "Cancelling"
	}

	fmt.Fprintf(&b, "%s %s %d file(s) probed, %d in flight, %d worker(s)\n",
		tm.spinner.View(), status, tm.completed, tm.inFlight, tm.workers)
	b.WriteString(tm.countsLine(tm.counts) + "\n")

	healthyShare := 0.0
	if tm.completed > 0 {
		healthyShare = float64(tm.counts.Healthy) / float64(tm.completed)
	}

	b.WriteString(tm.bar.ViewAs(healthyShare) + tm.styles.muted.Render(" healthy") + "\n")

	if tm.current != "" {
		b.WriteString(tm.styles.muted.Render(truncateLeft(string(tm.current), tm.width)) + "\n")
	}

	for _, entry := range tm.recent {
		fmt.Fprintf(&b, "%s %s\n", tm.styles.verdict[entry.Verdict].Render(entry.Verdict.String()), entry.Candidate.Path)
	}

	b.WriteString("\n" + tm.styles.muted.Render(helpLine(tm.keys.Quit)) + "\n")

	return b.String()
}

func (tm tuiModel) triageView() string {
	var b strings.Builder

	table := tm.table
	fmt.Fprintf(&b, "%s   showing %d of %d (%s), %d selected\n",
		tm.countsLine(table.Counts), len(table.Rows), table.Total, FilterLabel(table.Filter), table.Selected)

	if table.Partial {
		b.WriteString(tm.styles.warn.Render("Report is partial: the scan was cancelled.") + "\n")
	}

	b.WriteString("\n")

	end := min(tm.offset+tm.rowsPerPage(), len(table.Rows))
	for i := tm.offset; i < end; i++ {
		b.WriteString(tm.renderRow(i, table.Rows[i]) + "\n")
	}

	if len(table.Rows) == 0 {
		b.WriteString(tm.styles.muted.Render("No entries match the filter.") + "\n")
	}

	if tm.commit != nil {
		fmt.Fprintf(&b, "\nMoved %d, failed %d, skipped %d\n", tm.commit.Moved, tm.commit.Failed, tm.commit.Skipped)
	}

	if table.Committed {
		b.WriteString(tm.styles.muted.Render("Committed. Start a new scan to triage again.") + "\n")
	}

	b.WriteString("\n" + tm.styles.muted.Render(helpLine(
		tm.keys.Up, tm.keys.Down, tm.keys.Toggle, tm.keys.Corrupt, tm.keys.Invert,
		tm.keys.Clear, tm.keys.Filter, tm.keys.Commit, tm.keys.Quit,
	)) + "\n")

	return b.String()
}

func (tm tuiModel) renderRow(i int, row m.TriageRow) string {
	pointer := "  "
	if i == tm.cursor {
		pointer = tm.styles.cursor.Render("> ")
	}

	mark := "[ ]"
	if row.Selected {
		mark = tm.styles.selected.Render("[x]")
	}

	detail := row.Entry.Reason
	if row.Outcome != nil {
		detail = outcomeLabel(*row.Outcome)
	}

	verdict := tm.styles.verdict[row.Entry.Verdict].Render(fmt.Sprintf("%-10s", row.Entry.Verdict))
	size := fmt.Sprintf("%8s", humanize.Bytes(uint64(max(row.Entry.Candidate.Size, 0))))
	line := fmt.Sprintf("%s%s %s %s %s", pointer, mark, verdict, size, row.Entry.Candidate.Path)

	if detail != "" {
		line += tm.styles.muted.Render("  " + detail)
	}

	return line
}

func (tm tuiModel) summaryLine() string {
	if tm.lastRun != nil {
		return fmt.Sprintf("vidcheck: moved %d, failed %d, skipped %d", tm.lastRun.Moved, tm.lastRun.Failed, tm.lastRun.Skipped)
	}

	if tm.report != nil {
		return fmt.Sprintf("vidcheck: %d healthy, %d corrupt, %d timeout, %d unreadable",
			tm.counts.Healthy, tm.counts.Corrupt, tm.counts.Timeout, tm.counts.Unreadable)
	}

	return ""
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}

	return strings.Join(parts, "  ")
}

func lastN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}

	return items[len(items)-n:]
}

func truncateLeft(s string, width int) string {
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return s
	}

	return "…" + string(runes[len(runes)-width+1:])
}
