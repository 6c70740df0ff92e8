package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

// maxReasonRunes bounds the reason string copied from decoder output.
const maxReasonRunes = 200

// ErrInvalidPattern is returned when a configured signature does not compile.
var ErrInvalidPattern = errors.New("invalid classifier pattern")

// DefaultSignatures are decoder diagnostics that indicate damaged media.
var DefaultSignatures = []string{
	`Invalid data found`,
	`moov atom not found`,
	`error while decoding`,
	`corrupt (decoded )?frame`,
	`Packet corrupt`,
	`Invalid NAL unit`,
	`Error splitting the input into NAL units`,
	`decode_slice_header error`,
	`concealing \d+ (DC, AC, MV )?errors`,
	`missing picture in access unit`,
	`Header missing`,
	`non-existing PPS`,
	`partial file`,
	`Truncating packet`,
	`channel element \d+\.\d+ is not allocated`,
	`Invalid frame dimensions`,
	`Error while decoding stream`,
	`[1-9]\d* frames? decode errors?`,
	`EBML header parsing failed`,
	`stream \d+, offset 0x[0-9a-f]+: partial file`,
}

// DefaultBenign are diagnostics known to appear on healthy files. Lines that
// match are dropped before signatures are checked.
var DefaultBenign = []string{
	`unsupported (metadata )?tag`,
	`Could not find codec parameters for stream \d+ \(Attachment`,
	`Unknown cover type`,
	`Referenced QT chapter track not found`,
	`st:\d+ invalid id3v2 tag`,
	`Estimating duration from bitrate`,
	`\b0 frames? decode errors?`,
}

// Classifier maps a raw probe result to a verdict. It performs no I/O.
type Classifier interface {
	Classify(result m.ProbeResult) m.VerdictResult
}

type classifier struct {
	signatures []*regexp.Regexp
	benign     []*regexp.Regexp
}

// NewClassifier compiles the configured pattern sets. Empty sets fall back to
// DefaultSignatures and DefaultBenign.
func NewClassifier(cfg *m.ScanConfig) (Classifier, error) {
	signatures := cfg.Signatures
	if len(signatures) == 0 {
		signatures = DefaultSignatures
	}

	benign := cfg.Benign
	if cfg.Benign == nil {
		benign = DefaultBenign
	}

	compiledSignatures, err := compilePatterns(signatures)
	if err != nil {
		return nil, err
	}

	compiledBenign, err := compilePatterns(benign)
	if err != nil {
		return nil, err
	}

	return &classifier{signatures: compiledSignatures, benign: compiledBenign}, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}

		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
		}

		compiled = append(compiled, re)
	}

	return compiled, nil
}

// Classify applies the decision order: timeout, unreadable, corruption
// signature or non-zero exit, healthy.
func (c *classifier) Classify(result m.ProbeResult) m.VerdictResult {
	switch result.Status {
	case m.ProbeTimedOut:
		return m.VerdictResult{Verdict: m.Timeout, Reason: fmt.Sprintf("timed out after %s", result.Timeout)}
	case m.ProbeUnreadable, m.ProbeCancelled:
		reason := result.Err
		if reason == "" {
			reason = "file could not be read"
		}

		return m.VerdictResult{Verdict: m.Unreadable, Reason: truncateReason(reason)}
	case m.ProbeExited:
	}

	if line, ok := c.firstSignature(result.Diagnostics); ok {
		return m.VerdictResult{Verdict: m.Corrupt, Reason: truncateReason(line)}
	}

	if result.ExitCode != 0 {
		return m.VerdictResult{Verdict: m.Corrupt, Reason: fmt.Sprintf("non-zero exit (code %d)", result.ExitCode)}
	}

	return m.VerdictResult{Verdict: m.Healthy}
}

func (c *classifier) firstSignature(diagnostics string) (string, bool) {
	for _, raw := range strings.Split(diagnostics, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || c.isBenign(line) {
			continue
		}

		for _, re := range c.signatures {
			if re.MatchString(line) {
				return line, true
			}
		}
	}

	return "", false
}

func (c *classifier) isBenign(line string) bool {
	for _, re := range c.benign {
		if re.MatchString(line) {
			return true
		}
	}

	return false
}

func truncateReason(reason string) string {
	if utf8.RuneCountInString(reason) <= maxReasonRunes {
		return reason
	}

	runes := []rune(reason)

	return string(runes[:maxReasonRunes-1]) + "…"
}
