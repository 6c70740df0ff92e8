package model

import "time"

// Verdict is the classified health of a probed file.
type Verdict int

const (
	// Healthy means the file decoded without errors.
	Healthy Verdict = iota
	// Corrupt means the decoder reported corruption or exited non-zero.
	Corrupt
	// Timeout means decoding did not finish within the per-file timeout.
	Timeout
	// Unreadable means the file could not be read or the decoder could not run.
	Unreadable
)

// Verdicts lists every verdict in display order.
var Verdicts = []Verdict{Healthy, Corrupt, Timeout, Unreadable}

func (v Verdict) String() string {
	switch v {
	case Healthy:
		return "healthy"
	case Corrupt:
		return "corrupt"
	case Timeout:
		return "timeout"
	case Unreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// ParseVerdict converts the String form back into a Verdict.
func ParseVerdict(s string) (Verdict, bool) {
	for _, v := range Verdicts {
		if v.String() == s {
			return v, true
		}
	}

	return Healthy, false
}

// VerdictResult is the output of the classifier.
type VerdictResult struct {
	Verdict Verdict
	Reason  string
}

// ScanEntry is a candidate together with its verdict. Immutable once created.
type ScanEntry struct {
	Candidate FileCandidate
	Verdict   Verdict
	Reason    string
	Elapsed   time.Duration
}

// ID returns the identity of the entry inside a report.
func (e ScanEntry) ID() Path {
	return e.Candidate.Path
}

// VerdictCounts holds the number of entries per verdict.
type VerdictCounts struct {
	Healthy    int
	Corrupt    int
	Timeout    int
	Unreadable int
}

// Add increments the counter for v.
func (c *VerdictCounts) Add(v Verdict) {
	switch v {
	case Healthy:
		c.Healthy++
	case Corrupt:
		c.Corrupt++
	case Timeout:
		c.Timeout++
	case Unreadable:
		c.Unreadable++
	}
}

// Get returns the counter for v.
func (c VerdictCounts) Get(v Verdict) int {
	switch v {
	case Healthy:
		return c.Healthy
	case Corrupt:
		return c.Corrupt
	case Timeout:
		return c.Timeout
	case Unreadable:
		return c.Unreadable
	default:
		return 0
	}
}

// Total returns the sum of all counters.
func (c VerdictCounts) Total() int {
	return c.Healthy + c.Corrupt + c.Timeout + c.Unreadable
}

// Problems returns the number of entries that are not Healthy.
func (c VerdictCounts) Problems() int {
	return c.Corrupt + c.Timeout + c.Unreadable
}

// ScanReport is the result of one scan. Entries are sorted by path.
type ScanReport struct {
	ID         string
	Root       Path
	StartedAt  time.Time
	FinishedAt time.Time
	Entries    []ScanEntry
	Counts     VerdictCounts
	Enumerated int      // candidates produced by the enumerator
	Partial    bool     // the scan was cancelled before every candidate was probed
	Warnings   []string // non-fatal enumeration problems
}

// Entry looks up an entry by identity.
func (r *ScanReport) Entry(id Path) (ScanEntry, bool) {
	for _, entry := range r.Entries {
		if entry.ID() == id {
			return entry, true
		}
	}

	return ScanEntry{}, false
}

// ProgressEvent is emitted once per completed probe.
type ProgressEvent struct {
	Seq       uint64
	Entry     ScanEntry
	Counts    VerdictCounts
	Completed int
	InFlight  int
}
