package model

import "time"

// Outcome is what happened to one selected entry during commit.
type Outcome int

const (
	// Moved means the file was relocated to the trash.
	Moved Outcome = iota
	// Failed means the trash move returned an error.
	Failed
	// Skipped means the entry was not moved (already committed or not confirmed).
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// CommitRecord is the outcome for a single entry.
type CommitRecord struct {
	Path     Path
	Verdict  Verdict
	Outcome  Outcome
	Reason   string
	TrashRef string // where the file went, when Moved
}

// CommitReport aggregates the records of one commit call.
type CommitReport struct {
	Records []CommitRecord
	Moved   int
	Failed  int
	Skipped int
}

// Add appends a record and updates the counters.
func (r *CommitReport) Add(record CommitRecord) {
	r.Records = append(r.Records, record)

	switch record.Outcome {
	case Moved:
		r.Moved++
	case Failed:
		r.Failed++
	case Skipped:
		r.Skipped++
	}
}

// JournalRecord is one commit outcome as written to the audit journal.
type JournalRecord struct {
	ReportID string
	Root     Path
	At       time.Time
	Record   CommitRecord
}
