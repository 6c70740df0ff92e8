package domain

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"vidcheck.dev/pkg/vidcheck/internal/adapter"
	m "vidcheck.dev/pkg/vidcheck/internal/model"
	"vidcheck.dev/pkg/vidcheck/pkg"
)

var (
	// ErrSessionCommitted is returned by selection operations after commit.
	ErrSessionCommitted = errors.New("triage session already committed; start a new scan")
	// ErrCommitInProgress is returned while a commit is running.
	ErrCommitInProgress = errors.New("commit in progress")
)

const (
	reasonAlreadyCommitted = "already committed"
	reasonHealthyGuard     = "healthy file not confirmed"
	reasonCancelled        = "commit cancelled"
)

// DefaultFilter hides Healthy entries.
var DefaultFilter = []m.Verdict{m.Corrupt, m.Timeout, m.Unreadable}

// TriageState is the lifecycle state of a TriageSession.
type TriageState int

const (
	// Reviewing accepts selection commands.
	Reviewing TriageState = iota
	// Committing is set while selected files are being moved.
	Committing
	// Committed is terminal; a new scan starts a new session.
	Committed
)

func (s TriageState) String() string {
	switch s {
	case Reviewing:
		return "reviewing"
	case Committing:
		return "committing"
	case Committed:
		return "committed"
	default:
		return "unknown"
	}
}

// CommitOption configures a single Commit call.
type CommitOption func(*commitOptions)

type commitOptions struct {
	healthyConfirmed bool
	progress         func(done, total int, record m.CommitRecord)
}

// WithHealthyConfirmed allows selected Healthy entries to be moved.
func WithHealthyConfirmed() CommitOption {
	return func(o *commitOptions) {
		o.healthyConfirmed = true
	}
}

// WithCommitProgress reports every record as soon as it is decided.
func WithCommitProgress(fn func(done, total int, record m.CommitRecord)) CommitOption {
	return func(o *commitOptions) {
		o.progress = fn
	}
}

// TriageSession holds a finished ScanReport together with the operator's
// selection and the append-only commit log.
type TriageSession interface {
	State() TriageState
	Report() m.ScanReport

	Toggle(id m.Path) error
	Select(ids ...m.Path) error
	Deselect(ids ...m.Path) error
	SelectAllWithVerdict(verdict m.Verdict) error
	Invert() error
	ClearSelection() error

	SetFilter(verdicts ...m.Verdict)
	Filter() []m.Verdict
	Visible() []m.ScanEntry

	IsSelected(id m.Path) bool
	Selected() []m.Path
	Log() []m.CommitRecord
	Table() m.TriageTable

	Commit(ctx context.Context, opts ...CommitOption) (m.CommitReport, error)
}

type triageSession struct {
	mu sync.Mutex

	report   m.ScanReport
	index    map[m.Path]int
	state    TriageState
	selected map[m.Path]bool
	filter   []m.Verdict

	log      []m.CommitRecord
	outcomes map[m.Path]int

	trash   adapter.TrashAdapter
	journal pkg.Journal[m.JournalRecord]
	now     func() time.Time
}

// NewTriageSession starts reviewing report. journal may be nil.
func NewTriageSession(report m.ScanReport, trash adapter.TrashAdapter, journal pkg.Journal[m.JournalRecord]) TriageSession {
	index := make(map[m.Path]int, len(report.Entries))
	for i, entry := range report.Entries {
		index[entry.ID()] = i
	}

	return &triageSession{
		report:   report,
		index:    index,
		state:    Reviewing,
		selected: make(map[m.Path]bool),
		filter:   slices.Clone(DefaultFilter),
		outcomes: make(map[m.Path]int),
		trash:    trash,
		journal:  journal,
		now:      time.Now,
	}
}

func (s *triageSession) State() TriageState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *triageSession) Report() m.ScanReport {
	return s.report
}

// guardLocked rejects selection changes outside Reviewing.
func (s *triageSession) guardLocked() error {
	switch s.state {
	case Committing:
		return ErrCommitInProgress
	case Committed:
		return ErrSessionCommitted
	case Reviewing:
	}

	return nil
}

// Toggle flips one entry. Unknown ids are ignored.
func (s *triageSession) Toggle(id m.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardLocked(); err != nil {
		return err
	}

	if _, ok := s.index[id]; !ok {
		return nil
	}

	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}

	return nil
}

func (s *triageSession) Select(ids ...m.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardLocked(); err != nil {
		return err
	}

	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			s.selected[id] = true
		}
	}

	return nil
}

func (s *triageSession) Deselect(ids ...m.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardLocked(); err != nil {
		return err
	}

	for _, id := range ids {
		delete(s.selected, id)
	}

	return nil
}

// SelectAllWithVerdict adds every entry with verdict to the selection,
// regardless of the current filter.
func (s *triageSession) SelectAllWithVerdict(verdict m.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardLocked(); err != nil {
		return err
	}

	for _, entry := range s.report.Entries {
		if entry.Verdict == verdict {
			s.selected[entry.ID()] = true
		}
	}

	return nil
}

// Invert flips the selection of every visible entry. Hidden entries keep
// their state.
func (s *triageSession) Invert() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardLocked(); err != nil {
		return err
	}

	for _, entry := range s.visibleLocked() {
		id := entry.ID()
		if s.selected[id] {
			delete(s.selected, id)
		} else {
			s.selected[id] = true
		}
	}

	return nil
}

func (s *triageSession) ClearSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardLocked(); err != nil {
		return err
	}

	clear(s.selected)

	return nil
}

// SetFilter restricts Visible to the given verdicts; no verdicts shows all.
// The filter only affects presentation so it is allowed in every state.
func (s *triageSession) SetFilter(verdicts ...m.Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = slices.Clone(verdicts)
}

func (s *triageSession) Filter() []m.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.filter)
}

func (s *triageSession) Visible() []m.ScanEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.visibleLocked()
}

func (s *triageSession) visibleLocked() []m.ScanEntry {
	visible := make([]m.ScanEntry, 0, len(s.report.Entries))

	for _, entry := range s.report.Entries {
		if len(s.filter) == 0 || slices.Contains(s.filter, entry.Verdict) {
			visible = append(visible, entry)
		}
	}

	return visible
}

func (s *triageSession) IsSelected(id m.Path) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selected[id]
}

// Selected returns the selection in report order.
func (s *triageSession) Selected() []m.Path {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectedLocked()
}

func (s *triageSession) selectedLocked() []m.Path {
	ids := make([]m.Path, 0, len(s.selected))

	for _, entry := range s.report.Entries {
		if s.selected[entry.ID()] {
			ids = append(ids, entry.ID())
		}
	}

	return ids
}

func (s *triageSession) Log() []m.CommitRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.log)
}

// Table builds the view the presentation layer renders.
func (s *triageSession) Table() m.TriageTable {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := s.visibleLocked()
	table := m.TriageTable{
		Rows:      make([]m.TriageRow, 0, len(visible)),
		Filter:    slices.Clone(s.filter),
		Counts:    s.report.Counts,
		Selected:  len(s.selected),
		Partial:   s.report.Partial,
		Committed: s.state == Committed,
		Total:     len(s.report.Entries),
	}

	for _, entry := range visible {
		row := m.TriageRow{Entry: entry, Selected: s.selected[entry.ID()]}
		if i, ok := s.outcomes[entry.ID()]; ok {
			record := s.log[i]
			row.Outcome = &record
		}

		table.Rows = append(table.Rows, row)
	}

	return table
}

// Commit moves every selected entry to the trash and records one outcome per
// entry. A failure on one file never stops the others. Calling Commit again
// after it finished reports every logged entry as Skipped without touching
// the trash.
func (s *triageSession) Commit(ctx context.Context, opts ...CommitOption) (m.CommitReport, error) {
	options := &commitOptions{}
	for _, opt := range opts {
		opt(options)
	}

	s.mu.Lock()

	switch s.state {
	case Committing:
		s.mu.Unlock()
		return m.CommitReport{}, ErrCommitInProgress
	case Committed:
		report := m.CommitReport{}
		for _, record := range s.log {
			report.Add(m.CommitRecord{
				Path:    record.Path,
				Verdict: record.Verdict,
				Outcome: m.Skipped,
				Reason:  reasonAlreadyCommitted,
			})
		}
		s.mu.Unlock()

		slog.Info("Commit repeated on committed session", "skipped", report.Skipped)

		return report, nil
	case Reviewing:
	}

	ids := s.selectedLocked()
	s.state = Committing
	s.mu.Unlock()

	slog.Info("Commit started", "report", s.report.ID, "selected", len(ids), "trash", s.trash.Location())

	report := m.CommitReport{}

	for i, id := range ids {
		record := s.commitOne(ctx, id, options)

		s.mu.Lock()
		s.appendLocked(record)
		s.mu.Unlock()

		report.Add(record)

		if options.progress != nil {
			options.progress(i+1, len(ids), record)
		}
	}

	s.mu.Lock()
	clear(s.selected)
	s.state = Committed
	s.mu.Unlock()

	slog.Info("Commit finished", "report", s.report.ID, "moved", report.Moved, "failed", report.Failed, "skipped", report.Skipped)

	return report, nil
}

func (s *triageSession) commitOne(ctx context.Context, id m.Path, options *commitOptions) m.CommitRecord {
	entry := s.report.Entries[s.index[id]]
	record := m.CommitRecord{Path: id, Verdict: entry.Verdict}

	s.mu.Lock()
	_, logged := s.outcomes[id]
	s.mu.Unlock()

	switch {
	case logged:
		record.Outcome = m.Skipped
		record.Reason = reasonAlreadyCommitted
	case entry.Verdict == m.Healthy && !options.healthyConfirmed:
		record.Outcome = m.Skipped
		record.Reason = reasonHealthyGuard
	case ctx.Err() != nil:
		record.Outcome = m.Skipped
		record.Reason = reasonCancelled
	default:
		ref, err := s.trash.MoveToTrash(ctx, id)
		if err != nil {
			slog.Error("Failed to move file to trash", "path", id, "error", err)

			record.Outcome = m.Failed
			record.Reason = err.Error()
		} else {
			record.Outcome = m.Moved
			record.TrashRef = string(ref)
		}
	}

	return record
}

// appendLocked adds record to the log. An entry keeps its first outcome.
func (s *triageSession) appendLocked(record m.CommitRecord) {
	if _, ok := s.outcomes[record.Path]; ok {
		return
	}

	s.outcomes[record.Path] = len(s.log)
	s.log = append(s.log, record)

	if s.journal == nil {
		return
	}

	err := s.journal.Append(m.JournalRecord{
		ReportID: s.report.ID,
		Root:     s.report.Root,
		At:       s.now(),
		Record:   record,
	})
	if err != nil {
		slog.Error("Failed to append commit journal", "path", record.Path, "error", err)
	}
}
