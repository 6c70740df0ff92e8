package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"vidcheck.dev/pkg/vidcheck/internal/adapter"
	"vidcheck.dev/pkg/vidcheck/internal/controller"
	m "vidcheck.dev/pkg/vidcheck/internal/model"
	"vidcheck.dev/pkg/vidcheck/pkg"
)

// journalPattern names commit journal files inside the journal directory.
const journalPattern = "commit-*.gob"

// ScanArgs contains the arguments for scanning a directory.
type ScanArgs struct {
	Root       m.Path
	SaveReport m.Path
}

// ViewArgs contains the arguments for triaging a saved report.
type ViewArgs struct {
	Report m.Path
}

// DiffArgs names two saved reports to compare.
type DiffArgs struct {
	Old m.Path
	New m.Path
}

// Workflow defines the operations exposed to the command line.
type Workflow interface {
	Check(ctx context.Context) (adapter.DecoderInfo, error)
	Scan(ctx context.Context, args ScanArgs) error
	View(ctx context.Context, args ViewArgs) error
	Diff(ctx context.Context, args DiffArgs) (string, error)
	History(ctx context.Context) ([]m.JournalRecord, error)
}

type workflow struct {
	adapter.DecoderAdapter
	adapter.SourceFSAdapter
	adapter.ReportStore
	adapter.TrashAdapter
	controller.UI
	Scanner

	cfg        *m.ScanConfig
	journalDir string
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
// An empty journalDir disables the commit journal.
func NewWorkflow(
	cfg *m.ScanConfig,
	decoder adapter.DecoderAdapter,
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	trash adapter.TrashAdapter,
	ui controller.UI,
	scanner Scanner,
	journalDir string,
) Workflow {
	return &workflow{
		DecoderAdapter:  decoder,
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		TrashAdapter:    trash,
		UI:              ui,
		Scanner:         scanner,
		cfg:             cfg,
		journalDir:      journalDir,
	}
}

func (w *workflow) Check(ctx context.Context) (adapter.DecoderInfo, error) {
	return w.DecoderAdapter.Check(ctx)
}

// Scan verifies the decoder, scans args.Root and hands the report to triage.
// An interrupt (cancelled ctx) still saves the partial report but skips
// triage.
func (w *workflow) Scan(ctx context.Context, args ScanArgs) error {
	info, err := w.DecoderAdapter.Check(ctx)
	if err != nil {
		slog.Error("Decoder check failed", "error", err)
		return err
	}

	slog.Info("Using decoder", "path", info.Path, "version", info.Version)

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := w.Start(ctx, controller.WithScanMode(), controller.WithScanCancel(cancel)); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	w.DisplayScanStarted(ctx, args.Root, EffectiveWorkers(w.cfg.Workers))

	report, err := w.Scanner.Scan(scanCtx, ScanOptions{
		Root: args.Root,
		Progress: func(event m.ProgressEvent) {
			w.DisplayProgress(ctx, event)
		},
	})
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if args.SaveReport != "" {
		if err := w.SaveReport(args.SaveReport, report); err != nil {
			slog.Error("Failed to save report", "path", args.SaveReport, "error", err)
			w.DisplayWarning(ctx, fmt.Sprintf("could not save report: %v", err))
		} else {
			slog.Info("Saved report", "path", args.SaveReport)
		}
	}

	if ctx.Err() != nil {
		return nil
	}

	w.DisplayScanReport(ctx, report)

	return w.triage(ctx, report)
}

// View loads a saved report and starts triage on it. Entries whose file is
// gone are dropped.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.LoadReport(args.Report)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	if err := w.Start(ctx, controller.WithReviewMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	report = w.refreshReport(ctx, report)

	w.DisplayScanReport(ctx, report)

	return w.triage(ctx, report)
}

func (w *workflow) refreshReport(ctx context.Context, report m.ScanReport) m.ScanReport {
	kept := make([]m.ScanEntry, 0, len(report.Entries))
	counts := m.VerdictCounts{}

	for _, entry := range report.Entries {
		current, err := w.Stat(ctx, entry.Candidate.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				w.DisplayWarning(ctx, fmt.Sprintf("%s no longer exists; dropped", entry.Candidate.Path))
				continue
			}

			w.DisplayWarning(ctx, fmt.Sprintf("%s: %v", entry.Candidate.Path, err))
		} else if current.Size != entry.Candidate.Size || !current.ModTime.Equal(entry.Candidate.ModTime) {
			w.DisplayWarning(ctx, fmt.Sprintf("%s changed since it was scanned", entry.Candidate.Path))
		}

		kept = append(kept, entry)
		counts.Add(entry.Verdict)
	}

	report.Entries = kept
	report.Counts = counts

	return report
}

func (w *workflow) Diff(ctx context.Context, args DiffArgs) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	oldReport, err := w.LoadReport(args.Old)
	if err != nil {
		return "", fmt.Errorf("load report: %w", err)
	}

	newReport, err := w.LoadReport(args.New)
	if err != nil {
		return "", fmt.Errorf("load report: %w", err)
	}

	return DiffReports(oldReport, newReport, string(args.Old), string(args.New))
}

// History reads every commit journal in the journal directory and returns
// the records oldest first.
func (w *workflow) History(ctx context.Context) ([]m.JournalRecord, error) {
	if w.journalDir == "" {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(w.journalDir, journalPattern))
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}

	var records []m.JournalRecord

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := pkg.ReadJournal(file, func(_ uint64, record m.JournalRecord) error {
			records = append(records, record)
			return nil
		})
		if err != nil {
			slog.Error("Failed to read commit journal", "path", file, "error", err)
			return nil, fmt.Errorf("read journal %s: %w", file, err)
		}
	}

	slices.SortStableFunc(records, func(a, b m.JournalRecord) int {
		return a.At.Compare(b.At)
	})

	return records, nil
}

func (w *workflow) openJournal() pkg.Journal[m.JournalRecord] {
	if w.journalDir == "" {
		return nil
	}

	journal, err := pkg.NewJournal[m.JournalRecord](w.journalDir, journalPattern)
	if err != nil {
		slog.Error("Failed to open commit journal", "dir", w.journalDir, "error", err)
		return nil
	}

	return journal
}

func closeJournal(journal pkg.Journal[m.JournalRecord]) {
	if journal == nil {
		return
	}

	if err := journal.Close(); err != nil {
		slog.Error("Failed to close commit journal", "path", journal.Path(), "error", err)
	}

	if journal.Len() == 0 {
		_ = os.Remove(journal.Path())
	}
}

// triage runs the command loop until the operator quits or input ends.
func (w *workflow) triage(ctx context.Context, report m.ScanReport) error {
	journal := w.openJournal()
	defer closeJournal(journal)

	session := NewTriageSession(report, w.TrashAdapter, journal)

	for {
		table := session.Table()

		command, err := w.NextCommand(ctx, table)
		if err == nil {
			if command.Type == m.CommandQuit {
				return nil
			}

			err = w.apply(ctx, session, table, command)
		}

		switch {
		case err == nil:
		case errors.Is(err, controller.ErrInputClosed), errors.Is(err, context.Canceled):
			return nil
		case errors.Is(err, ErrSessionCommitted), errors.Is(err, ErrCommitInProgress):
			w.DisplayWarning(ctx, err.Error())
		default:
			return err
		}
	}
}

func rowID(table m.TriageTable, index int) (m.Path, bool) {
	if index < 0 || index >= len(table.Rows) {
		return "", false
	}

	return table.Rows[index].Entry.ID(), true
}

//nolint:cyclop // one case per command type
func (w *workflow) apply(ctx context.Context, session TriageSession, table m.TriageTable, command m.Command) error {
	switch command.Type {
	case m.CommandToggle:
		id, ok := rowID(table, command.Index)
		if !ok {
			w.DisplayWarning(ctx, fmt.Sprintf("no row %d", command.Index+1))
			return nil
		}

		return session.Toggle(id)
	case m.CommandSelectRows:
		ids := make([]m.Path, 0, len(command.Indexes))

		for _, index := range command.Indexes {
			id, ok := rowID(table, index)
			if !ok {
				w.DisplayWarning(ctx, fmt.Sprintf("no row %d", index+1))
				continue
			}

			ids = append(ids, id)
		}

		return session.Select(ids...)
	case m.CommandSelectCorrupt:
		return session.SelectAllWithVerdict(m.Corrupt)
	case m.CommandSelectVerdict:
		return session.SelectAllWithVerdict(command.Verdict)
	case m.CommandClear:
		return session.ClearSelection()
	case m.CommandInvert:
		return session.Invert()
	case m.CommandFilter:
		session.SetFilter(command.Verdicts...)
		return nil
	case m.CommandCommit:
		return w.commit(ctx, session)
	case m.CommandNone, m.CommandQuit:
	}

	return nil
}

// commit asks for confirmation, and for a second one when Healthy files are
// selected, before moving the selection to the trash.
func (w *workflow) commit(ctx context.Context, session TriageSession) error {
	if session.State() == Committed {
		report, err := session.Commit(ctx)
		if err != nil {
			return err
		}

		w.DisplayCommitReport(ctx, report)

		return nil
	}

	selected := session.Selected()
	if len(selected) == 0 {
		w.DisplayWarning(ctx, "nothing selected")
		return nil
	}

	healthy := 0
	report := session.Report()

	for _, id := range selected {
		if entry, ok := report.Entry(id); ok && entry.Verdict == m.Healthy {
			healthy++
		}
	}

	ok, err := w.Confirm(ctx, fmt.Sprintf("Move %d file(s) to the trash at %s?", len(selected), w.Location()))
	if err != nil {
		return err
	}

	if !ok {
		w.DisplayWarning(ctx, "commit cancelled")
		return nil
	}

	var opts []CommitOption

	if healthy > 0 {
		ok, err := w.Confirm(ctx, fmt.Sprintf("%d selected file(s) decoded without errors. Move them too?", healthy))
		if err != nil {
			return err
		}

		if ok {
			opts = append(opts, WithHealthyConfirmed())
		}
	}

	result, err := session.Commit(ctx, opts...)
	if err != nil {
		return err
	}

	w.DisplayCommitReport(ctx, result)

	return nil
}
