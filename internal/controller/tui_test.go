package controller

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, options ...StartOption) (tuiModel, chan tuiReply) {
	t.Helper()

	replies := make(chan tuiReply, 1)

	return newTUIModel(newStartConfig(options), replies), replies
}

// press feeds msg to the model and runs the resulting command, if any.
func press(t *testing.T, model tuiModel, msg tea.Msg) tuiModel {
	t.Helper()

	next, cmd := model.Update(msg)
	if cmd != nil {
		cmd()
	}

	updated, ok := next.(tuiModel)
	require.True(t, ok)

	return updated
}

func awaitingModel(t *testing.T) (tuiModel, chan tuiReply) {
	t.Helper()

	model, replies := newTestModel(t, WithReviewMode())
	model = press(t, model, tableMsg{table: triageRows()})

	return model, replies
}

func TestTUIModel_ScanProgress(t *testing.T) {
	model, _ := newTestModel(t, WithScanMode())

	model = press(t, model, scanStartedMsg{root: "/videos", workers: 4})

	for i, verdict := range []m.Verdict{m.Healthy, m.Corrupt, m.Corrupt, m.Timeout, m.Unreadable, m.Corrupt, m.Corrupt} {
		counts := model.counts
		counts.Add(verdict)

		model = press(t, model, progressMsg{event: m.ProgressEvent{
			Seq:       uint64(i + 1),
			Completed: i + 1,
			Counts:    counts,
			Entry:     m.ScanEntry{Candidate: m.FileCandidate{Path: m.Path("/videos/clip.mp4")}, Verdict: verdict},
		}})
	}

	assert.Equal(t, 7, model.completed)
	assert.Equal(t, 4, model.counts.Corrupt)
	assert.Len(t, model.recent, maxRecentProblems)

	view := model.View()
	assert.Contains(t, view, "/videos")
	assert.Contains(t, view, "7 file(s) probed")
	assert.Contains(t, view, "4 worker(s)")
}

func TestTUIModel_QuitDuringScanCancels(t *testing.T) {
	cancelled := false

	model, replies := newTestModel(t, WithScanMode(), WithScanCancel(func() { cancelled = true }))
	model = press(t, model, runes("q"))

	assert.True(t, cancelled)
	assert.True(t, model.cancelling)
	assert.Contains(t, model.View(), "Cancelling")
	assert.Empty(t, replies)
}

func TestTUIModel_ReviewModeLoading(t *testing.T) {
	model, _ := newTestModel(t, WithReviewMode())

	assert.Contains(t, model.View(), "Loading report")
}

func TestTUIModel_TriageKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want m.Command
	}{
		{name: "toggle first row", keys: []tea.KeyMsg{{Type: tea.KeySpace, Runes: []rune{' '}}}, want: m.Command{Type: m.CommandToggle, Index: 0}},
		{name: "move down then toggle", keys: []tea.KeyMsg{{Type: tea.KeyDown}, runes("j"), {Type: tea.KeySpace, Runes: []rune{' '}}}, want: m.Command{Type: m.CommandToggle, Index: 2}},
		{name: "cursor stops at last row", keys: []tea.KeyMsg{runes("j"), runes("j"), runes("j"), runes("k"), {Type: tea.KeySpace, Runes: []rune{' '}}}, want: m.Command{Type: m.CommandToggle, Index: 1}},
		{name: "select corrupt", keys: []tea.KeyMsg{runes("a")}, want: m.Command{Type: m.CommandSelectCorrupt}},
		{name: "invert", keys: []tea.KeyMsg{runes("i")}, want: m.Command{Type: m.CommandInvert}},
		{name: "clear", keys: []tea.KeyMsg{runes("x")}, want: m.Command{Type: m.CommandClear}},
		{name: "filter cycles", keys: []tea.KeyMsg{runes("f")}, want: m.Command{Type: m.CommandFilter, Verdicts: []m.Verdict{m.Corrupt}}},
		{name: "commit", keys: []tea.KeyMsg{runes("c")}, want: m.Command{Type: m.CommandCommit}},
		{name: "quit", keys: []tea.KeyMsg{runes("q")}, want: m.Command{Type: m.CommandQuit}},
		{name: "ctrl+c", keys: []tea.KeyMsg{{Type: tea.KeyCtrlC}}, want: m.Command{Type: m.CommandQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, replies := awaitingModel(t)

			for _, k := range tt.keys {
				model = press(t, model, k)
			}

			require.Len(t, replies, 1)
			reply := <-replies
			assert.Equal(t, tt.want, reply.command)
			assert.False(t, model.awaiting)
		})
	}
}

func TestTUIModel_KeysIgnoredUntilTableArrives(t *testing.T) {
	model, replies := newTestModel(t, WithReviewMode())

	model = press(t, model, runes("c"))
	model = press(t, model, runes("a"))

	assert.Empty(t, replies)
	assert.False(t, model.awaiting)
}

func TestTUIModel_Confirm(t *testing.T) {
	for keyName, want := range map[string]bool{"y": true, "n": false, "q": false} {
		t.Run(keyName, func(t *testing.T) {
			model, replies := awaitingModel(t)
			model = press(t, model, runes("c"))
			<-replies

			model = press(t, model, confirmMsg{question: "Move 1 file(s) to the trash at /trash?"})
			assert.Contains(t, model.View(), "Move 1 file(s) to the trash at /trash?")

			model = press(t, model, runes("a"))
			assert.Empty(t, replies)

			model = press(t, model, runes(keyName))

			require.Len(t, replies, 1)
			assert.Equal(t, want, (<-replies).confirmed)
			assert.Empty(t, model.question)
		})
	}
}

func TestTUIModel_TriageView(t *testing.T) {
	model, _ := awaitingModel(t)

	view := model.View()
	assert.Contains(t, view, "showing 3 of 4 (corrupt,timeout,unreadable), 1 selected")
	assert.Contains(t, view, "/videos/a.mp4")
	assert.Contains(t, view, "failed: permission denied")
	assert.Contains(t, view, "Report is partial")

	report := m.CommitReport{}
	report.Add(m.CommitRecord{Path: "/videos/a.mp4", Outcome: m.Moved})
	model = press(t, model, commitReportMsg{report: report})

	assert.Contains(t, model.View(), "Moved 1, failed 0, skipped 0")
	assert.Equal(t, "vidcheck: moved 1, failed 0, skipped 0", model.summaryLine())

	empty := triageRows()
	empty.Rows = nil
	model = press(t, model, tableMsg{table: empty})

	assert.Contains(t, model.View(), "No entries match the filter.")
	assert.Equal(t, "vidcheck: moved 1, failed 0, skipped 0", model.summaryLine())
}

func TestTUIModel_Paging(t *testing.T) {
	model, replies := newTestModel(t, WithReviewMode())
	model = press(t, model, tea.WindowSizeMsg{Width: 80, Height: 15})

	table := m.TriageTable{Total: 20}
	for i := range 20 {
		table.Rows = append(table.Rows, m.TriageRow{Entry: m.ScanEntry{
			Candidate: m.FileCandidate{Path: m.Path("/videos/clip-" + string(rune('a'+i)) + ".mp4")},
			Verdict:   m.Corrupt,
		}})
	}

	model = press(t, model, tableMsg{table: table})

	for range 10 {
		model = press(t, model, tea.KeyMsg{Type: tea.KeyDown})
	}

	assert.Equal(t, 10, model.cursor)
	assert.Equal(t, 8, model.offset)

	view := model.View()
	assert.Contains(t, view, "/videos/clip-k.mp4")
	assert.NotContains(t, view, "/videos/clip-a.mp4")
	assert.Empty(t, replies)
}

func TestNextFilter(t *testing.T) {
	current := []m.Verdict{m.Corrupt, m.Timeout, m.Unreadable}
	seen := make([][]m.Verdict, 0, len(filterCycle))

	for range filterCycle {
		current = nextFilter(current)
		seen = append(seen, current)
	}

	assert.Equal(t, []m.Verdict{m.Corrupt}, seen[0])
	assert.Nil(t, seen[len(seen)-2])
	assert.Equal(t, filterCycle[0], seen[len(seen)-1])
	assert.Equal(t, filterCycle[0], nextFilter([]m.Verdict{m.Timeout, m.Corrupt}))
}

func TestTruncateLeft(t *testing.T) {
	assert.Equal(t, "/short", truncateLeft("/short", 20))
	assert.Equal(t, "…/b/c.mp4", truncateLeft("/aaaa/b/c.mp4", 9))
}

func TestTUI_AwaitWithoutStart(t *testing.T) {
	ui := NewTUI(strings.NewReader(""), &bytes.Buffer{})

	_, err := ui.NextCommand(context.Background(), m.TriageTable{})
	assert.ErrorIs(t, err, ErrInputClosed)

	ui.Close(context.Background())
}

func TestTUI_ContextCancelUnblocksAwait(t *testing.T) {
	ui := NewTUI(strings.NewReader(""), &bytes.Buffer{})
	ui.replies = make(chan tuiReply)
	ui.done = make(chan struct{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := ui.Confirm(ctx, "Move?")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
