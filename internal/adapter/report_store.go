package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

const reportFormatVersion = 1

// ReportStore persists scan reports so triage can resume without re-scanning.
type ReportStore interface {
	SaveReport(path m.Path, report m.ScanReport) error
	LoadReport(path m.Path) (m.ScanReport, error)
}

// YAMLReportStore reads and writes reports as YAML documents.
type YAMLReportStore struct{}

// NewReportStore constructs the default ReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

type reportFile struct {
	Version    int           `yaml:"version"`
	ID         string        `yaml:"id"`
	Root       string        `yaml:"root"`
	StartedAt  time.Time     `yaml:"started_at"`
	FinishedAt time.Time     `yaml:"finished_at"`
	Partial    bool          `yaml:"partial"`
	Enumerated int           `yaml:"enumerated"`
	Warnings   []string      `yaml:"warnings,omitempty"`
	Entries    []reportEntry `yaml:"entries"`
}

type reportEntry struct {
	Path     string    `yaml:"path"`
	Size     int64     `yaml:"size"`
	ModTime  time.Time `yaml:"mod_time"`
	Verdict  string    `yaml:"verdict"`
	Reason   string    `yaml:"reason,omitempty"`
	ElapsedS float64   `yaml:"elapsed_seconds"`
}

// SaveReport writes report to path, replacing any existing file.
func (s *YAMLReportStore) SaveReport(path m.Path, report m.ScanReport) error {
	doc := reportFile{
		Version:    reportFormatVersion,
		ID:         report.ID,
		Root:       string(report.Root),
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Partial:    report.Partial,
		Enumerated: report.Enumerated,
		Warnings:   report.Warnings,
		Entries:    make([]reportEntry, 0, len(report.Entries)),
	}

	for _, entry := range report.Entries {
		doc.Entries = append(doc.Entries, reportEntry{
			Path:     string(entry.Candidate.Path),
			Size:     entry.Candidate.Size,
			ModTime:  entry.Candidate.ModTime,
			Verdict:  entry.Verdict.String(),
			Reason:   entry.Reason,
			ElapsedS: entry.Elapsed.Seconds(),
		})
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if dir := filepath.Dir(string(path)); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	tmp := string(path) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if err := os.Rename(tmp, string(path)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// LoadReport reads a report written by SaveReport. Counts are recomputed
// from the entries so they always reconcile.
func (s *YAMLReportStore) LoadReport(path m.Path) (m.ScanReport, error) {
	// #nosec G304 - the report path is chosen by the operator
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.ScanReport{}, fmt.Errorf("read report: %w", err)
	}

	var doc reportFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return m.ScanReport{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	if doc.Version != reportFormatVersion {
		return m.ScanReport{}, fmt.Errorf("decode report %s: unsupported version %d", path, doc.Version)
	}

	report := m.ScanReport{
		ID:         doc.ID,
		Root:       m.Path(doc.Root),
		StartedAt:  doc.StartedAt,
		FinishedAt: doc.FinishedAt,
		Partial:    doc.Partial,
		Enumerated: doc.Enumerated,
		Warnings:   doc.Warnings,
		Entries:    make([]m.ScanEntry, 0, len(doc.Entries)),
	}

	for _, e := range doc.Entries {
		verdict, ok := m.ParseVerdict(e.Verdict)
		if !ok {
			return m.ScanReport{}, fmt.Errorf("decode report %s: unknown verdict %q for %s", path, e.Verdict, e.Path)
		}

		report.Entries = append(report.Entries, m.ScanEntry{
			Candidate: m.FileCandidate{Path: m.Path(e.Path), Size: e.Size, ModTime: e.ModTime},
			Verdict:   verdict,
			Reason:    e.Reason,
			Elapsed:   time.Duration(e.ElapsedS * float64(time.Second)),
		})
		report.Counts.Add(verdict)
	}

	return report, nil
}
