package controller

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

const simpleHelp = "commands: <ids> select (1,3-5,8 | all) · t <id> toggle · a select corrupt · " +
	"s <verdict> select verdict · i invert · none clear · f [verdicts|all] filter · c commit · q quit"

// errUnknownCommand marks input that could not be parsed.
var errUnknownCommand = errors.New("unknown command")

// SimpleUI implements UI with plain lines on cobra's input and output streams.
type SimpleUI struct {
	cmd   *cobra.Command
	once  sync.Once
	lines chan inputLine
}

// inputLine is one line read from the input stream, or the error that ended it.
type inputLine struct {
	text string
	err  error
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayScanStarted prints the scan header.
func (s *SimpleUI) DisplayScanStarted(ctx context.Context, root m.Path, workers int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Scanning %s with %d worker(s)\n", root, workers)
}

// DisplayProgress prints one line per completed probe.
func (s *SimpleUI) DisplayProgress(ctx context.Context, event m.ProgressEvent) {
	if err := ctx.Err(); err != nil {
		return
	}

	line := fmt.Sprintf("[%d] %-10s %s %s", event.Completed, event.Entry.Verdict,
		event.Entry.Candidate.Path, formatElapsed(event.Entry.Elapsed))
	if event.Entry.Reason != "" {
		line += " (" + event.Entry.Reason + ")"
	}

	s.printf("%s\n", line)
}

// DisplayScanReport prints the verdict summary.
func (s *SimpleUI) DisplayScanReport(ctx context.Context, report m.ScanReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%s", renderSummaryTable(report))

	if report.Partial {
		s.printf("Scan cancelled: %d of %d file(s) probed, report is partial\n", len(report.Entries), report.Enumerated)
	}

	for _, warning := range report.Warnings {
		s.printf("warning: %s\n", warning)
	}
}

// DisplayWarning prints a warning line.
func (s *SimpleUI) DisplayWarning(ctx context.Context, message string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("warning: %s\n", message)
}

// NextCommand prints the triage table and reads commands until one parses.
func (s *SimpleUI) NextCommand(ctx context.Context, table m.TriageTable) (m.Command, error) {
	if err := ctx.Err(); err != nil {
		return m.Command{}, err
	}

	s.printf("\n%s%s\n", renderTriageTable(table), simpleHelp)

	for {
		s.printf("> ")

		line, err := s.readLine(ctx)
		if err != nil {
			return m.Command{}, err
		}

		command, err := ParseCommand(line, len(table.Rows))
		if err != nil {
			s.printf("%v\n", err)
			continue
		}

		return command, nil
	}
}

// Confirm asks a yes/no question; anything but y or yes is a no.
func (s *SimpleUI) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.printf("%s [y/N]: ", question)

	line, err := s.readLine(ctx)
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))

	return answer == "y" || answer == "yes", nil
}

// DisplayCommitReport prints one row per commit record.
func (s *SimpleUI) DisplayCommitReport(ctx context.Context, report m.CommitReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%s", renderCommitTable(report))
}

// readLine waits for the next input line or for ctx to end, whichever
// comes first. Lines are read by one goroutine so a pending read never
// holds up cancellation.
func (s *SimpleUI) readLine(ctx context.Context) (string, error) {
	s.once.Do(s.startReader)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return "", ErrInputClosed
		}

		return line.text, line.err
	}
}

func (s *SimpleUI) startReader() {
	s.lines = make(chan inputLine)
	scanner := bufio.NewScanner(s.cmd.InOrStdin())

	go func() {
		defer close(s.lines)

		for scanner.Scan() {
			s.lines <- inputLine{text: scanner.Text()}
		}

		err := scanner.Err()
		if err == nil {
			err = ErrInputClosed
		}

		s.lines <- inputLine{err: err}
	}()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderSummaryTable(report m.ScanReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Verdict", "Files"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, verdict := range m.Verdicts {
		table.Append([]string{verdict.String(), strconv.Itoa(report.Counts.Get(verdict))})
	}

	table.SetFooter([]string{"Total", strconv.Itoa(report.Counts.Total())})
	table.Render()

	return tableBuffer.String()
}

func renderTriageTable(triage m.TriageTable) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"#", "Sel", "Verdict", "Size", "Path", "Reason"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
	})

	for i, row := range triage.Rows {
		mark := ""
		if row.Selected {
			mark = "x"
		}

		reason := row.Entry.Reason
		if row.Outcome != nil {
			reason = outcomeLabel(*row.Outcome)
		}

		table.Append([]string{
			strconv.Itoa(i + 1),
			mark,
			row.Entry.Verdict.String(),
			humanize.Bytes(uint64(max(row.Entry.Candidate.Size, 0))),
			string(row.Entry.Candidate.Path),
			reason,
		})
	}

	table.SetFooter([]string{
		"", "", "", "",
		fmt.Sprintf("Showing %d of %d (%s)", len(triage.Rows), triage.Total, FilterLabel(triage.Filter)),
		fmt.Sprintf("%d selected", triage.Selected),
	})

	table.Render()

	var b strings.Builder

	b.WriteString(tableBuffer.String())

	if triage.Partial {
		b.WriteString("Report is partial: the scan was cancelled.\n")
	}

	if triage.Committed {
		b.WriteString("Committed. Start a new scan to triage again.\n")
	}

	return b.String()
}

func renderCommitTable(report m.CommitReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Outcome", "Detail"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, record := range report.Records {
		detail := record.Reason
		if record.Outcome == m.Moved {
			detail = record.TrashRef
		}

		table.Append([]string{string(record.Path), record.Outcome.String(), detail})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Moved %d", report.Moved),
		fmt.Sprintf("Failed %d", report.Failed),
		fmt.Sprintf("Skipped %d", report.Skipped),
	})

	table.Render()

	return tableBuffer.String()
}

func outcomeLabel(record m.CommitRecord) string {
	if record.Reason == "" {
		return record.Outcome.String()
	}

	return record.Outcome.String() + ": " + record.Reason
}

// FilterLabel describes a verdict filter for display.
func FilterLabel(filter []m.Verdict) string {
	if len(filter) == 0 {
		return "all"
	}

	names := make([]string, 0, len(filter))
	for _, verdict := range filter {
		names = append(names, verdict.String())
	}

	return strings.Join(names, ",")
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}

	return d.Round(100 * time.Millisecond).String()
}

// ParseCommand parses one line of SimpleUI input. rows is the number of rows
// in the table the ids refer to; ids are 1-based.
//
//nolint:cyclop // one case per command word
func ParseCommand(line string, rows int) (m.Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return m.Command{Type: m.CommandNone}, nil
	}

	word, rest := fields[0], fields[1:]

	switch word {
	case "q", "quit", "exit":
		return m.Command{Type: m.CommandQuit}, nil
	case "c", "commit":
		return m.Command{Type: m.CommandCommit}, nil
	case "a", "corrupt":
		return m.Command{Type: m.CommandSelectCorrupt}, nil
	case "i", "invert":
		return m.Command{Type: m.CommandInvert}, nil
	case "none", "clear":
		return m.Command{Type: m.CommandClear}, nil
	case "all":
		indexes := make([]int, rows)
		for i := range indexes {
			indexes[i] = i
		}

		return m.Command{Type: m.CommandSelectRows, Indexes: indexes}, nil
	case "s", "select":
		if len(rest) != 1 {
			return m.Command{}, fmt.Errorf("%w: usage: s <verdict>", errUnknownCommand)
		}

		verdict, ok := m.ParseVerdict(rest[0])
		if !ok {
			return m.Command{}, fmt.Errorf("%w: unknown verdict %q", errUnknownCommand, rest[0])
		}

		return m.Command{Type: m.CommandSelectVerdict, Verdict: verdict}, nil
	case "f", "filter":
		verdicts, err := parseFilter(rest)
		if err != nil {
			return m.Command{}, err
		}

		return m.Command{Type: m.CommandFilter, Verdicts: verdicts}, nil
	case "t", "toggle":
		if len(rest) != 1 {
			return m.Command{}, fmt.Errorf("%w: usage: t <id>", errUnknownCommand)
		}

		index, err := parseID(rest[0], rows)
		if err != nil {
			return m.Command{}, err
		}

		return m.Command{Type: m.CommandToggle, Index: index}, nil
	}

	indexes, err := ParseIDList(strings.Join(fields, ","), rows)
	if err != nil {
		return m.Command{}, err
	}

	return m.Command{Type: m.CommandSelectRows, Indexes: indexes}, nil
}

// parseFilter maps "f" to the problems-only filter, "f all" to no filter and
// "f corrupt,timeout" to those verdicts.
func parseFilter(args []string) ([]m.Verdict, error) {
	if len(args) == 0 {
		return []m.Verdict{m.Corrupt, m.Timeout, m.Unreadable}, nil
	}

	joined := strings.Join(args, ",")
	if joined == "all" {
		return nil, nil
	}

	var verdicts []m.Verdict

	for _, name := range strings.Split(joined, ",") {
		if name == "" {
			continue
		}

		verdict, ok := m.ParseVerdict(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown verdict %q", errUnknownCommand, name)
		}

		verdicts = append(verdicts, verdict)
	}

	return verdicts, nil
}

// ParseIDList parses "1,3-5,8" into zero-based row indexes, in order and
// without duplicates.
func ParseIDList(list string, rows int) ([]int, error) {
	seen := make(map[int]bool)

	var indexes []int

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		first, last := part, part
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			first, last = lo, hi
		}

		start, err := parseID(first, rows)
		if err != nil {
			return nil, err
		}

		end, err := parseID(last, rows)
		if err != nil {
			return nil, err
		}

		if end < start {
			return nil, fmt.Errorf("%w: invalid range %q", errUnknownCommand, part)
		}

		for i := start; i <= end; i++ {
			if !seen[i] {
				seen[i] = true
				indexes = append(indexes, i)
			}
		}
	}

	if len(indexes) == 0 {
		return nil, fmt.Errorf("%w: %q", errUnknownCommand, list)
	}

	return indexes, nil
}

func parseID(raw string, rows int) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errUnknownCommand, raw)
	}

	if id < 1 || id > rows {
		return 0, fmt.Errorf("%w: id %d out of range 1-%d", errUnknownCommand, id, rows)
	}

	return id - 1, nil
}
