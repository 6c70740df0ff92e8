package domain_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vidcheck.dev/pkg/vidcheck/internal/adapter"
	adaptermocks "vidcheck.dev/pkg/vidcheck/internal/adapter/mocks"
	"vidcheck.dev/pkg/vidcheck/internal/controller"
	controllermocks "vidcheck.dev/pkg/vidcheck/internal/controller/mocks"
	domain "vidcheck.dev/pkg/vidcheck/internal/domain"
	domainmocks "vidcheck.dev/pkg/vidcheck/internal/domain/mocks"
	m "vidcheck.dev/pkg/vidcheck/internal/model"
	"vidcheck.dev/pkg/vidcheck/pkg"
)

type workflowMocks struct {
	decoder *adaptermocks.MockDecoderAdapter
	fs      *adaptermocks.MockSourceFSAdapter
	store   *adaptermocks.MockReportStore
	trash   *adaptermocks.MockTrashAdapter
	ui      *controllermocks.MockUI
	scanner *domainmocks.MockScanner
}

func newWorkflowMocks(t *testing.T) *workflowMocks {
	t.Helper()

	mocks := &workflowMocks{
		decoder: adaptermocks.NewMockDecoderAdapter(t),
		fs:      adaptermocks.NewMockSourceFSAdapter(t),
		store:   adaptermocks.NewMockReportStore(t),
		trash:   adaptermocks.NewMockTrashAdapter(t),
		ui:      controllermocks.NewMockUI(t),
		scanner: domainmocks.NewMockScanner(t),
	}

	mocks.trash.On("Location").Return("/trash").Maybe()
	mocks.ui.On("DisplayProgress", mock.Anything, mock.Anything).Return().Maybe()

	return mocks
}

func (w *workflowMocks) workflow(journalDir string) domain.Workflow {
	return domain.NewWorkflow(&m.ScanConfig{Workers: 2}, w.decoder, w.fs, w.store, w.trash, w.ui, w.scanner, journalDir)
}

func (w *workflowMocks) expectDecoder() {
	w.decoder.On("Check", mock.Anything).Return(adapter.DecoderInfo{Path: "/usr/bin/ffmpeg", Version: "6.1"}, nil).Once()
}

func (w *workflowMocks) expectScanUI() {
	w.ui.On("Start", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	w.ui.On("Close", mock.Anything).Return().Once()
	w.ui.On("DisplayScanStarted", mock.Anything, m.Path("/videos"), 2).Return().Once()
}

func (w *workflowMocks) commands(commands ...m.Command) {
	for _, command := range commands {
		w.ui.On("NextCommand", mock.Anything, mock.Anything).Return(command, nil).Once()
	}
}

func sampleReport() m.ScanReport {
	entries := []m.ScanEntry{
		{Candidate: m.FileCandidate{Path: "/videos/a.mp4", Size: 10}, Verdict: m.Corrupt, Reason: "moov atom not found"},
		{Candidate: m.FileCandidate{Path: "/videos/b.mp4", Size: 20}, Verdict: m.Healthy},
		{Candidate: m.FileCandidate{Path: "/videos/c.mp4", Size: 30}, Verdict: m.Timeout, Reason: "timed out after 1m0s"},
	}

	report := m.ScanReport{
		ID:         "11111111-2222-3333-4444-555555555555",
		Root:       "/videos",
		StartedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC),
		Entries:    entries,
		Enumerated: len(entries),
	}

	for _, entry := range entries {
		report.Counts.Add(entry.Verdict)
	}

	return report
}

func quit() m.Command { return m.Command{Type: m.CommandQuit} }

func TestWorkflow_Scan_SelectCorruptAndCommit(t *testing.T) {
	mocks := newWorkflowMocks(t)
	mocks.expectDecoder()
	mocks.expectScanUI()

	report := sampleReport()

	mocks.scanner.On("Scan", mock.Anything, mock.MatchedBy(func(opts domain.ScanOptions) bool {
		return opts.Root == "/videos" && opts.Progress != nil
	})).Run(func(args mock.Arguments) {
		opts := args.Get(1).(domain.ScanOptions)
		opts.Progress(m.ProgressEvent{Seq: 1, Entry: report.Entries[0], Completed: 1})
	}).Return(report, nil).Once()

	mocks.store.On("SaveReport", m.Path("/tmp/report.yaml"), report).Return(nil).Once()
	mocks.ui.On("DisplayScanReport", mock.Anything, report).Return().Once()

	mocks.commands(m.Command{Type: m.CommandSelectCorrupt}, m.Command{Type: m.CommandCommit}, quit())

	mocks.ui.On("Confirm", mock.Anything, "Move 1 file(s) to the trash at /trash?").Return(true, nil).Once()
	mocks.trash.On("MoveToTrash", mock.Anything, m.Path("/videos/a.mp4")).Return(m.Path("/trash/files/a.mp4"), nil).Once()
	mocks.ui.On("DisplayCommitReport", mock.Anything, mock.MatchedBy(func(r m.CommitReport) bool {
		return r.Moved == 1 && r.Failed == 0 && r.Skipped == 0
	})).Return().Once()

	err := mocks.workflow("").Scan(context.Background(), domain.ScanArgs{Root: "/videos", SaveReport: "/tmp/report.yaml"})

	require.NoError(t, err)
	mocks.ui.AssertCalled(t, "DisplayProgress", mock.Anything, mock.Anything)
}

func TestWorkflow_Scan_DecoderMissing(t *testing.T) {
	mocks := newWorkflowMocks(t)
	mocks.decoder.On("Check", mock.Anything).Return(adapter.DecoderInfo{}, adapter.ErrDecoderNotFound).Once()

	err := mocks.workflow("").Scan(context.Background(), domain.ScanArgs{Root: "/videos"})

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrDecoderNotFound)
	mocks.ui.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
	mocks.scanner.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
}

func TestWorkflow_Scan_FatalScanError(t *testing.T) {
	mocks := newWorkflowMocks(t)
	mocks.expectDecoder()
	mocks.expectScanUI()

	rootErr := errors.New("root /videos is not a directory")
	mocks.scanner.On("Scan", mock.Anything, mock.Anything).Return(m.ScanReport{}, rootErr).Once()

	err := mocks.workflow("").Scan(context.Background(), domain.ScanArgs{Root: "/videos"})

	require.Error(t, err)
	assert.ErrorIs(t, err, rootErr)
	mocks.ui.AssertNotCalled(t, "NextCommand", mock.Anything, mock.Anything)
}

func TestWorkflow_Scan_InterruptSavesPartialReportAndSkipsTriage(t *testing.T) {
	mocks := newWorkflowMocks(t)
	mocks.expectDecoder()
	mocks.expectScanUI()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	report := sampleReport()
	report.Partial = true

	mocks.scanner.On("Scan", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		cancel()
	}).Return(report, nil).Once()
	mocks.store.On("SaveReport", m.Path("partial.yaml"), report).Return(nil).Once()

	err := mocks.workflow("").Scan(ctx, domain.ScanArgs{Root: "/videos", SaveReport: "partial.yaml"})

	require.NoError(t, err)
	mocks.ui.AssertNotCalled(t, "DisplayScanReport", mock.Anything, mock.Anything)
	mocks.ui.AssertNotCalled(t, "NextCommand", mock.Anything, mock.Anything)
}

func TestWorkflow_Scan_SaveFailureIsAWarning(t *testing.T) {
	mocks := newWorkflowMocks(t)
	mocks.expectDecoder()
	mocks.expectScanUI()

	report := sampleReport()
	mocks.scanner.On("Scan", mock.Anything, mock.Anything).Return(report, nil).Once()
	mocks.store.On("SaveReport", m.Path("/ro/report.yaml"), report).Return(errors.New("read-only file system")).Once()
	mocks.ui.On("DisplayWarning", mock.Anything, "could not save report: read-only file system").Return().Once()
	mocks.ui.On("DisplayScanReport", mock.Anything, report).Return().Once()
	mocks.commands(quit())

	err := mocks.workflow("").Scan(context.Background(), domain.ScanArgs{Root: "/videos", SaveReport: "/ro/report.yaml"})

	require.NoError(t, err)
}

func startedReview(t *testing.T, mocks *workflowMocks) {
	t.Helper()

	report := sampleReport()

	mocks.store.On("LoadReport", m.Path("report.yaml")).Return(report, nil).Once()
	mocks.ui.On("Start", mock.Anything, mock.Anything).Return(nil).Once()
	mocks.ui.On("Close", mock.Anything).Return().Once()

	for _, entry := range report.Entries {
		mocks.fs.On("Stat", mock.Anything, entry.Candidate.Path).Return(entry.Candidate, nil).Maybe()
	}

	mocks.ui.On("DisplayScanReport", mock.Anything, mock.Anything).Return().Once()
}

func TestWorkflow_Triage(t *testing.T) {
	t.Run("input closed ends triage", func(t *testing.T) {
		mocks := newWorkflowMocks(t)
		startedReview(t, mocks)
		mocks.ui.On("NextCommand", mock.Anything, mock.Anything).Return(m.Command{}, controller.ErrInputClosed).Once()

		require.NoError(t, mocks.workflow("").View(context.Background(), domain.ViewArgs{Report: "report.yaml"}))
	})

	t.Run("nothing selected", func(t *testing.T) {
		mocks := newWorkflowMocks(t)
		startedReview(t, mocks)
		mocks.commands(m.Command{Type: m.CommandCommit}, quit())
		mocks.ui.On("DisplayWarning", mock.Anything, "nothing selected").Return().Once()

		require.NoError(t, mocks.workflow("").View(context.Background(), domain.ViewArgs{Report: "report.yaml"}))
		mocks.ui.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	})

	t.Run("declined confirmation keeps files", func(t *testing.T) {
		mocks := newWorkflowMocks(t)
		startedReview(t, mocks)
		mocks.commands(m.Command{Type: m.CommandToggle, Index: 0}, m.Command{Type: m.CommandCommit}, quit())
		mocks.ui.On("Confirm", mock.Anything, mock.Anything).Return(false, nil).Once()
		mocks.ui.On("DisplayWarning", mock.Anything, "commit cancelled").Return().Once()

		require.NoError(t, mocks.workflow("").View(context.Background(), domain.ViewArgs{Report: "report.yaml"}))
		mocks.trash.AssertNotCalled(t, "MoveToTrash", mock.Anything, mock.Anything)
	})

	t.Run("row out of range", func(t *testing.T) {
		mocks := newWorkflowMocks(t)
		startedReview(t, mocks)
		mocks.commands(m.Command{Type: m.CommandSelectRows, Indexes: []int{0, 4}}, quit())
		mocks.ui.On("DisplayWarning", mock.Anything, "no row 5").Return().Once()

		require.NoError(t, mocks.workflow("").View(context.Background(), domain.ViewArgs{Report: "report.yaml"}))
	})

	t.Run("healthy files need a second confirmation", func(t *testing.T) {
		mocks := newWorkflowMocks(t)
		startedReview(t, mocks)
		mocks.commands(
			m.Command{Type: m.CommandFilter},
			m.Command{Type: m.CommandSelectRows, Indexes: []int{0, 1}},
			m.Command{Type: m.CommandCommit},
			quit(),
		)
		mocks.ui.On("Confirm", mock.Anything, "Move 2 file(s) to the trash at /trash?").Return(true, nil).Once()
		mocks.ui.On("Confirm", mock.Anything, "1 selected file(s) decoded without errors. Move them too?").Return(false, nil).Once()
		mocks.trash.On("MoveToTrash", mock.Anything, m.Path("/videos/a.mp4")).Return(m.Path("/trash/files/a.mp4"), nil).Once()
		mocks.ui.On("DisplayCommitReport", mock.Anything, mock.MatchedBy(func(r m.CommitReport) bool {
			return r.Moved == 1 && r.Skipped == 1 && r.Records[1].Reason == "healthy file not confirmed"
		})).Return().Once()

		require.NoError(t, mocks.workflow("").View(context.Background(), domain.ViewArgs{Report: "report.yaml"}))
	})

	t.Run("selection after commit is rejected", func(t *testing.T) {
		mocks := newWorkflowMocks(t)
		startedReview(t, mocks)
		mocks.commands(
			m.Command{Type: m.CommandSelectCorrupt},
			m.Command{Type: m.CommandCommit},
			m.Command{Type: m.CommandToggle, Index: 1},
			m.Command{Type: m.CommandCommit},
			quit(),
		)
		mocks.ui.On("Confirm", mock.Anything, mock.Anything).Return(true, nil).Once()
		mocks.trash.On("MoveToTrash", mock.Anything, m.Path("/videos/a.mp4")).Return(m.Path("/trash/files/a.mp4"), nil).Once()
		mocks.ui.On("DisplayCommitReport", mock.Anything, mock.MatchedBy(func(r m.CommitReport) bool {
			return r.Moved == 1
		})).Return().Once()
		mocks.ui.On("DisplayWarning", mock.Anything, domain.ErrSessionCommitted.Error()).Return().Once()
		mocks.ui.On("DisplayCommitReport", mock.Anything, mock.MatchedBy(func(r m.CommitReport) bool {
			return r.Moved == 0 && r.Skipped == 1
		})).Return().Once()

		require.NoError(t, mocks.workflow("").View(context.Background(), domain.ViewArgs{Report: "report.yaml"}))
		mocks.trash.AssertNumberOfCalls(t, "MoveToTrash", 1)
	})
}

func TestWorkflow_Triage_JournalKeptOnlyWhenUsed(t *testing.T) {
	t.Run("removed when nothing was committed", func(t *testing.T) {
		dir := t.TempDir()
		mocks := newWorkflowMocks(t)
		startedReview(t, mocks)
		mocks.commands(quit())

		require.NoError(t, mocks.workflow(dir).View(context.Background(), domain.ViewArgs{Report: "report.yaml"}))

		files, err := filepath.Glob(filepath.Join(dir, "commit-*.gob"))
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("kept after a commit", func(t *testing.T) {
		dir := t.TempDir()
		mocks := newWorkflowMocks(t)
		startedReview(t, mocks)
		mocks.commands(m.Command{Type: m.CommandSelectCorrupt}, m.Command{Type: m.CommandCommit}, quit())
		mocks.ui.On("Confirm", mock.Anything, mock.Anything).Return(true, nil).Once()
		mocks.trash.On("MoveToTrash", mock.Anything, m.Path("/videos/a.mp4")).Return(m.Path("/trash/files/a.mp4"), nil).Once()
		mocks.ui.On("DisplayCommitReport", mock.Anything, mock.Anything).Return().Once()

		require.NoError(t, mocks.workflow(dir).View(context.Background(), domain.ViewArgs{Report: "report.yaml"}))

		files, err := filepath.Glob(filepath.Join(dir, "commit-*.gob"))
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})
}

func TestWorkflow_View_DropsVanishedFiles(t *testing.T) {
	mocks := newWorkflowMocks(t)
	report := sampleReport()

	mocks.store.On("LoadReport", m.Path("report.yaml")).Return(report, nil).Once()
	mocks.ui.On("Start", mock.Anything, mock.Anything).Return(nil).Once()
	mocks.ui.On("Close", mock.Anything).Return().Once()

	changed := report.Entries[1].Candidate
	changed.Size = 99

	mocks.fs.On("Stat", mock.Anything, m.Path("/videos/a.mp4")).
		Return(m.FileCandidate{}, &fs.PathError{Op: "stat", Path: "/videos/a.mp4", Err: os.ErrNotExist}).Once()
	mocks.fs.On("Stat", mock.Anything, m.Path("/videos/b.mp4")).Return(changed, nil).Once()
	mocks.fs.On("Stat", mock.Anything, m.Path("/videos/c.mp4")).Return(report.Entries[2].Candidate, nil).Once()

	mocks.ui.On("DisplayWarning", mock.Anything, "/videos/a.mp4 no longer exists; dropped").Return().Once()
	mocks.ui.On("DisplayWarning", mock.Anything, "/videos/b.mp4 changed since it was scanned").Return().Once()
	mocks.ui.On("DisplayScanReport", mock.Anything, mock.MatchedBy(func(r m.ScanReport) bool {
		return len(r.Entries) == 2 && r.Counts.Corrupt == 0 && r.Counts.Healthy == 1 && r.Counts.Timeout == 1
	})).Return().Once()
	mocks.commands(quit())

	require.NoError(t, mocks.workflow("").View(context.Background(), domain.ViewArgs{Report: "report.yaml"}))
}

func TestWorkflow_View_LoadError(t *testing.T) {
	mocks := newWorkflowMocks(t)
	mocks.store.On("LoadReport", m.Path("missing.yaml")).Return(m.ScanReport{}, os.ErrNotExist).Once()

	err := mocks.workflow("").View(context.Background(), domain.ViewArgs{Report: "missing.yaml"})

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	mocks.ui.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
}

func TestWorkflow_Diff(t *testing.T) {
	mocks := newWorkflowMocks(t)

	oldReport := sampleReport()
	newReport := sampleReport()
	newReport.Entries[2].Verdict = m.Healthy

	mocks.store.On("LoadReport", m.Path("old.yaml")).Return(oldReport, nil).Once()
	mocks.store.On("LoadReport", m.Path("new.yaml")).Return(newReport, nil).Once()

	diff, err := mocks.workflow("").Diff(context.Background(), domain.DiffArgs{Old: "old.yaml", New: "new.yaml"})

	require.NoError(t, err)
	assert.Contains(t, diff, "--- old.yaml")
	assert.Contains(t, diff, "+++ new.yaml")
	assert.Contains(t, diff, "-timeout     /videos/c.mp4")
	assert.Contains(t, diff, "+healthy     /videos/c.mp4")
}

func TestWorkflow_History(t *testing.T) {
	t.Run("disabled journal", func(t *testing.T) {
		records, err := newWorkflowMocks(t).workflow("").History(context.Background())

		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("records from every journal oldest first", func(t *testing.T) {
		dir := t.TempDir()
		base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

		write := func(records ...m.JournalRecord) {
			journal, err := pkg.NewJournal[m.JournalRecord](dir, "commit-*.gob")
			require.NoError(t, err)

			for _, record := range records {
				require.NoError(t, journal.Append(record))
			}

			require.NoError(t, journal.Close())
		}

		write(m.JournalRecord{ReportID: "second", At: base.Add(time.Hour), Record: m.CommitRecord{Path: "/videos/b.mp4", Outcome: m.Failed}})
		write(
			m.JournalRecord{ReportID: "first", At: base, Record: m.CommitRecord{Path: "/videos/a.mp4", Outcome: m.Moved}},
			m.JournalRecord{ReportID: "first", At: base.Add(time.Minute), Record: m.CommitRecord{Path: "/videos/c.mp4", Outcome: m.Skipped}},
		)

		records, err := newWorkflowMocks(t).workflow(dir).History(context.Background())
		require.NoError(t, err)

		require.Len(t, records, 3)
		assert.Equal(t, m.Path("/videos/a.mp4"), records[0].Record.Path)
		assert.Equal(t, m.Path("/videos/c.mp4"), records[1].Record.Path)
		assert.Equal(t, m.Path("/videos/b.mp4"), records[2].Record.Path)
	})
}
