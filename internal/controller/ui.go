// Package controller provides the presentation adapters that render scan
// progress and the triage table and turn operator input into commands.
package controller

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

// ErrInputClosed is returned by NextCommand and Confirm when no more operator
// input can arrive.
var ErrInputClosed = errors.New("operator input closed")

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeScan StartMode = iota
	ModeReview
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode   StartMode
	cancel context.CancelFunc
}

// WithScanMode starts the UI with the scan progress view.
func WithScanMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeScan
	}
}

// WithReviewMode starts the UI directly in triage, for saved reports.
func WithReviewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeReview
	}
}

// WithScanCancel registers the function the UI calls when the operator
// aborts a running scan.
func WithScanCancel(cancel context.CancelFunc) StartOption {
	return func(c *StartConfig) {
		c.cancel = cancel
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeScan}
	for _, option := range options {
		option(&cfg)
	}

	return cfg
}

// UI defines the presentation boundary of the scanner and triage workflow.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	DisplayScanStarted(ctx context.Context, root m.Path, workers int)
	DisplayProgress(ctx context.Context, event m.ProgressEvent)
	DisplayScanReport(ctx context.Context, report m.ScanReport)
	DisplayWarning(ctx context.Context, message string)
	// NextCommand renders table and blocks until the operator issues a command.
	NextCommand(ctx context.Context, table m.TriageTable) (m.Command, error)
	Confirm(ctx context.Context, question string) (bool, error)
	DisplayCommitReport(ctx context.Context, report m.CommitReport)
}

// IsTerminal reports whether both streams are attached to a terminal.
func IsTerminal(in io.Reader, out io.Writer) bool {
	inFile, ok := in.(*os.File)
	if !ok {
		return false
	}

	outFile, ok := out.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(inFile.Fd())) && term.IsTerminal(int(outFile.Fd()))
}

// NewUI picks the TUI for interactive terminals and SimpleUI otherwise.
func NewUI(cmd *cobra.Command, plain bool) UI {
	if plain || !IsTerminal(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return NewSimpleUI(cmd)
	}

	return NewTUI(cmd.InOrStdin(), cmd.OutOrStdout())
}
