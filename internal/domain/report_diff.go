package domain

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

// reportLines renders one "verdict  path" line per entry, in report order.
func reportLines(report m.ScanReport) []string {
	lines := make([]string, 0, len(report.Entries))
	for _, entry := range report.Entries {
		lines = append(lines, fmt.Sprintf("%-10s  %s\n", entry.Verdict, entry.Candidate.Path))
	}

	return lines
}

// DiffReports returns a unified diff of the verdicts of two reports. An empty
// string means both reports classify the same files the same way.
func DiffReports(oldReport, newReport m.ScanReport, oldName, newName string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        reportLines(oldReport),
		B:        reportLines(newReport),
		FromFile: oldName,
		FromDate: formatReportDate(oldReport),
		ToFile:   newName,
		ToDate:   formatReportDate(newReport),
		Context:  1,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff reports: %w", err)
	}

	return strings.TrimRight(text, "\n"), nil
}

func formatReportDate(report m.ScanReport) string {
	if report.FinishedAt.IsZero() {
		return ""
	}

	return report.FinishedAt.Format("2006-01-02 15:04:05")
}
