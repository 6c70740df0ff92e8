package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vidcheck.dev/pkg/vidcheck/internal/adapter"
	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

const (
	// DefaultWorkerCap bounds the default worker count; every worker holds a decoder process.
	DefaultWorkerCap = 8
	// MaxWorkers is the hard upper bound for a configured worker count.
	MaxWorkers = 64
)

// ProgressFunc receives one event per completed probe. Calls are serialised
// and must return quickly; they run on the worker that finished the probe.
type ProgressFunc func(event m.ProgressEvent)

// ScanOptions holds the per-scan arguments.
type ScanOptions struct {
	Root     m.Path
	Progress ProgressFunc
}

// Scanner enumerates candidates, probes them on a bounded worker pool and
// aggregates verdicts into a ScanReport.
type Scanner interface {
	Scan(ctx context.Context, opts ScanOptions) (m.ScanReport, error)
}

type scanner struct {
	adapter.SourceFSAdapter
	adapter.DecoderAdapter
	Classifier
	cfg *m.ScanConfig
	now func() time.Time
}

// NewScanner creates a Scanner with the provided dependencies.
func NewScanner(cfg *m.ScanConfig, fsAdapter adapter.SourceFSAdapter, decoder adapter.DecoderAdapter, classifier Classifier) Scanner {
	return &scanner{
		SourceFSAdapter: fsAdapter,
		DecoderAdapter:  decoder,
		Classifier:      classifier,
		cfg:             cfg,
		now:             time.Now,
	}
}

// EffectiveWorkers resolves the configured worker count: zero or negative
// means the available parallelism capped at DefaultWorkerCap.
func EffectiveWorkers(configured int) int {
	workers := configured
	if workers <= 0 {
		workers = min(runtime.NumCPU(), DefaultWorkerCap)
	}

	return max(1, min(workers, MaxWorkers))
}

// scanState is owned by one Scan call. Entries are published only through
// the returned report.
type scanState struct {
	mu        sync.Mutex
	entries   []m.ScanEntry
	counts    m.VerdictCounts
	seq       uint64
	inFlight  atomic.Int64
	progress  ProgressFunc
	completed int
}

func (st *scanState) record(result m.ProbeResult, verdict m.VerdictResult) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.seq++
	result.Seq = st.seq

	entry := m.ScanEntry{
		Candidate: result.Candidate,
		Verdict:   verdict.Verdict,
		Reason:    verdict.Reason,
		Elapsed:   result.Elapsed,
	}

	st.entries = append(st.entries, entry)
	st.counts.Add(entry.Verdict)
	st.completed++

	slog.Debug("Probe classified",
		"seq", result.Seq,
		"path", entry.Candidate.Path,
		"verdict", entry.Verdict,
		"exit", result.ExitCode,
		"status", result.Status,
		"elapsed", result.Elapsed,
		"truncated", result.Truncated)

	if st.progress != nil {
		st.progress(m.ProgressEvent{
			Seq:       result.Seq,
			Entry:     entry,
			Counts:    st.counts,
			Completed: st.completed,
			InFlight:  int(st.inFlight.Load()),
		})
	}
}

// Scan walks opts.Root and probes every candidate. Only an inaccessible root
// (or a walk failure that is not a cancellation) is returned as an error.
// Cancelling ctx stops dispatch, kills in-flight probes and returns the
// completed entries in a report marked Partial.
func (s *scanner) Scan(ctx context.Context, opts ScanOptions) (m.ScanReport, error) {
	root, err := s.Root(ctx, opts.Root)
	if err != nil {
		slog.Error("Scan root inaccessible", "root", opts.Root, "error", err)
		return m.ScanReport{}, err
	}

	workers := EffectiveWorkers(s.cfg.Workers)
	report := m.ScanReport{
		ID:        uuid.NewString(),
		Root:      root,
		StartedAt: s.now(),
	}

	slog.Info("Scan started", "id", report.ID, "root", root, "workers", workers, "timeout", s.cfg.Timeout)

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := &scanState{progress: opts.Progress}

	var group errgroup.Group
	group.SetLimit(workers)

	var warnings []string

	walkErr := s.Walk(scanCtx, root, s.cfg.Extensions,
		func(candidate m.FileCandidate) error {
			if err := scanCtx.Err(); err != nil {
				return err
			}

			report.Enumerated++

			// Blocks while every worker is busy.
			group.Go(func() error {
				s.probeOne(scanCtx, candidate, state)
				return nil
			})

			return nil
		},
		func(path m.Path, err error) {
			warnings = append(warnings, fmt.Sprintf("%s: %v", path, err))
		},
	)

	interrupted := false

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			interrupted = true
		} else {
			cancel()
			_ = group.Wait()

			slog.Error("Enumeration failed", "root", root, "error", walkErr)

			return m.ScanReport{}, fmt.Errorf("enumerate %s: %w", root, walkErr)
		}
	}

	_ = group.Wait()

	report.FinishedAt = s.now()
	report.Warnings = warnings
	report.Entries = state.entries
	report.Counts = state.counts
	report.Partial = interrupted || len(report.Entries) != report.Enumerated

	sort.Slice(report.Entries, func(i, j int) bool {
		return report.Entries[i].Candidate.Path < report.Entries[j].Candidate.Path
	})

	slog.Info("Scan finished",
		"id", report.ID,
		"entries", len(report.Entries),
		"enumerated", report.Enumerated,
		"partial", report.Partial,
		"healthy", report.Counts.Healthy,
		"corrupt", report.Counts.Corrupt,
		"timeout", report.Counts.Timeout,
		"unreadable", report.Counts.Unreadable,
		"warnings", len(report.Warnings))

	return report, nil
}

func (s *scanner) probeOne(ctx context.Context, candidate m.FileCandidate, state *scanState) {
	if ctx.Err() != nil {
		// Dispatched before the cancellation was observed.
		return
	}

	state.inFlight.Add(1)
	result := s.Probe(ctx, candidate, s.cfg.Timeout)
	state.inFlight.Add(-1)

	if result.Status == m.ProbeCancelled {
		slog.Debug("Dropping cancelled probe", "path", candidate.Path)
		return
	}

	state.record(result, s.Classify(result))
}
