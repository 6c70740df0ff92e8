package model

import "time"

// ProbeStatus tells how a decoder invocation ended.
type ProbeStatus int

const (
	// ProbeExited means the decoder ran to completion; ExitCode is meaningful.
	ProbeExited ProbeStatus = iota
	// ProbeTimedOut means the decoder was killed after exceeding the per-file timeout.
	ProbeTimedOut
	// ProbeUnreadable means the file could not be opened or the decoder could not be started.
	ProbeUnreadable
	// ProbeCancelled means the scan was cancelled while the probe was running.
	ProbeCancelled
)

func (s ProbeStatus) String() string {
	switch s {
	case ProbeExited:
		return "exited"
	case ProbeTimedOut:
		return "timed-out"
	case ProbeUnreadable:
		return "unreadable"
	case ProbeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ProbeResult is the raw outcome of one decoder invocation. It carries no judgement.
type ProbeResult struct {
	Candidate   FileCandidate
	Status      ProbeStatus
	ExitCode    int    // valid only when Status == ProbeExited
	Diagnostics string // captured stderr, bounded
	Truncated   bool   // Diagnostics hit the capture limit
	Err         string // OS error text for ProbeUnreadable
	Timeout     time.Duration
	Elapsed     time.Duration
	Seq         uint64
}
