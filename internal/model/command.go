package model

// CommandType enumerates operator commands produced by the UI.
type CommandType int

const (
	// CommandNone is returned when the UI produced nothing actionable.
	CommandNone CommandType = iota
	// CommandToggle flips the selection of the row at Index.
	CommandToggle
	// CommandSelectRows selects the rows listed in Indexes.
	CommandSelectRows
	// CommandSelectCorrupt selects every Corrupt entry.
	CommandSelectCorrupt
	// CommandSelectVerdict selects every entry with Verdict.
	CommandSelectVerdict
	// CommandClear empties the selection.
	CommandClear
	// CommandInvert inverts the selection over the visible rows.
	CommandInvert
	// CommandFilter replaces the verdict filter with Verdicts; none shows everything.
	CommandFilter
	// CommandCommit moves the selection to the trash.
	CommandCommit
	// CommandQuit ends triage.
	CommandQuit
)

// Command is one operator action. Index and Indexes refer to TriageTable rows.
type Command struct {
	Type     CommandType
	Index    int
	Indexes  []int
	Verdict  Verdict
	Verdicts []Verdict
}

// TriageRow is one visible entry of the triage table.
type TriageRow struct {
	Entry    ScanEntry
	Selected bool
	Outcome  *CommitRecord
}

// TriageTable is what the UI renders while the operator reviews a report.
type TriageTable struct {
	Rows      []TriageRow
	Filter    []Verdict // empty means every verdict
	Counts    VerdictCounts
	Selected  int
	Partial   bool
	Committed bool
	Total     int
}
