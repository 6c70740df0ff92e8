package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

func TestDiffReports(t *testing.T) {
	finished := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	oldReport := reportOf(
		scanEntry("/videos/a.mp4", m.Corrupt),
		scanEntry("/videos/b.mp4", m.Healthy),
		scanEntry("/videos/c.mp4", m.Healthy),
	)
	oldReport.FinishedAt = finished

	t.Run("identical reports", func(t *testing.T) {
		diff, err := DiffReports(oldReport, oldReport, "old", "new")
		require.NoError(t, err)
		assert.Empty(t, diff)
	})

	t.Run("changed verdict and new file", func(t *testing.T) {
		newReport := reportOf(
			scanEntry("/videos/b.mp4", m.Healthy),
			scanEntry("/videos/c.mp4", m.Timeout),
			scanEntry("/videos/d.mp4", m.Unreadable),
		)
		newReport.FinishedAt = finished.Add(24 * time.Hour)

		diff, err := DiffReports(oldReport, newReport, "monday.yaml", "tuesday.yaml")
		require.NoError(t, err)

		lines := strings.Split(diff, "\n")
		assert.Equal(t, "--- monday.yaml\t2024-05-01 10:00:00", lines[0])
		assert.Equal(t, "+++ tuesday.yaml\t2024-05-02 10:00:00", lines[1])

		assert.Contains(t, lines, "-corrupt     /videos/a.mp4")
		assert.Contains(t, lines, "-healthy     /videos/c.mp4")
		assert.Contains(t, lines, "+timeout     /videos/c.mp4")
		assert.Contains(t, lines, "+unreadable  /videos/d.mp4")
		assert.Contains(t, lines, " healthy     /videos/b.mp4")
		assert.False(t, strings.HasSuffix(diff, "\n"))
	})

	t.Run("undated report", func(t *testing.T) {
		diff, err := DiffReports(reportOf(), reportOf(scanEntry("/videos/a.mp4", m.Corrupt)), "a", "b")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(diff, "--- a\n+++ b\n"))
	})
}
