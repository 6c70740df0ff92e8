package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

// DefaultDecoder is the decoder binary looked up on PATH when none is configured.
const DefaultDecoder = "ffmpeg"

// DefaultMaxOutput bounds the diagnostic text captured per probe.
const DefaultMaxOutput = 64 * 1024

// waitDelay bounds how long Wait keeps draining stderr after the process was killed.
const waitDelay = 2 * time.Second

// ErrDecoderNotFound is returned by Check when the decoder binary cannot be located.
var ErrDecoderNotFound = errors.New("decoder binary not found")

// DecoderInfo describes the decoder found by Check.
type DecoderInfo struct {
	Path    string
	Version string
}

// DecoderAdapter runs the external decoder against a single file.
// Probe never classifies; it only reports how the process ended.
type DecoderAdapter interface {
	// Check verifies the decoder can be executed. It is called once before a scan.
	Check(ctx context.Context) (DecoderInfo, error)
	// Probe fully decodes candidate with output discarded and captures stderr.
	// A zero timeout disables the per-file deadline.
	Probe(ctx context.Context, candidate m.FileCandidate, timeout time.Duration) m.ProbeResult
}

// LocalDecoderAdapter invokes ffmpeg (or a compatible binary) through os/exec.
type LocalDecoderAdapter struct {
	binary     string
	maxOutput  int
	cacheLocal bool
	cacheDir   string
}

// NewLocalDecoderAdapter constructs a LocalDecoderAdapter from the scan configuration.
func NewLocalDecoderAdapter(cfg *m.ScanConfig) *LocalDecoderAdapter {
	binary := strings.TrimSpace(cfg.DecoderPath)
	if binary == "" {
		binary = DefaultDecoder
	}

	maxOutput := cfg.MaxOutput
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}

	return &LocalDecoderAdapter{
		binary:     binary,
		maxOutput:  maxOutput,
		cacheLocal: cfg.CacheLocal,
		cacheDir:   os.TempDir(),
	}
}

// Check looks the decoder up on PATH and reads the first line of its version banner.
func (a *LocalDecoderAdapter) Check(ctx context.Context) (DecoderInfo, error) {
	path, err := exec.LookPath(a.binary)
	if err != nil {
		return DecoderInfo{}, fmt.Errorf("%w: %s: %w", ErrDecoderNotFound, a.binary, err)
	}

	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return DecoderInfo{}, fmt.Errorf("%w: %s -version failed: %w", ErrDecoderNotFound, path, err)
	}

	version := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(version, '\n'); idx > 0 {
		version = strings.TrimSpace(version[:idx])
	}

	slog.Debug("Decoder found", "path", path, "version", version)

	return DecoderInfo{Path: path, Version: version}, nil
}

// DecodeArgs returns the decoder arguments used to verify path.
func DecodeArgs(path string) []string {
	return []string{"-nostdin", "-hide_banner", "-v", "error", "-i", path, "-f", "null", "-"}
}

// Probe runs one decoder invocation against candidate.
func (a *LocalDecoderAdapter) Probe(ctx context.Context, candidate m.FileCandidate, timeout time.Duration) m.ProbeResult {
	start := time.Now()
	result := m.ProbeResult{Candidate: candidate, Timeout: timeout}

	finish := func(status m.ProbeStatus) m.ProbeResult {
		result.Status = status
		result.Elapsed = time.Since(start)

		return result
	}

	if err := ctx.Err(); err != nil {
		return finish(m.ProbeCancelled)
	}

	if err := checkReadable(candidate.Path); err != nil {
		result.Err = err.Error()
		return finish(m.ProbeUnreadable)
	}

	target := string(candidate.Path)

	if a.cacheLocal {
		local, err := a.copyToCache(candidate.Path)
		if err != nil {
			result.Err = fmt.Sprintf("local copy: %v", err)
			return finish(m.ProbeUnreadable)
		}

		defer func() {
			if err := os.RemoveAll(filepath.Dir(local)); err != nil {
				slog.Warn("Failed to remove cached copy", "path", local, "error", err)
			}
		}()

		target = local
	}

	probeCtx := ctx

	if timeout > 0 {
		var cancel context.CancelFunc

		probeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	stderr := newBoundedBuffer(a.maxOutput)

	cmd := exec.CommandContext(probeCtx, a.binary, DecodeArgs(target)...)
	cmd.Stdout = nil
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		result.Err = fmt.Sprintf("start decoder: %v", err)
		return finish(m.ProbeUnreadable)
	}

	waitErr := cmd.Wait()

	result.Diagnostics, result.Truncated = stderr.Result()

	switch {
	case ctx.Err() != nil:
		slog.Debug("Probe cancelled", "path", candidate.Path)
		return finish(m.ProbeCancelled)
	case errors.Is(probeCtx.Err(), context.DeadlineExceeded):
		slog.Debug("Probe timed out", "path", candidate.Path, "timeout", timeout)
		return finish(m.ProbeTimedOut)
	case waitErr == nil:
		result.ExitCode = 0
		return finish(m.ProbeExited)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return finish(m.ProbeExited)
	}

	result.Err = waitErr.Error()

	return finish(m.ProbeUnreadable)
}

// copyToCache copies path into a fresh private directory under cacheDir.
// The caller removes that directory when done.
func (a *LocalDecoderAdapter) copyToCache(path m.Path) (string, error) {
	dir, err := os.MkdirTemp(a.cacheDir, "vidcheck-*")
	if err != nil {
		return "", err
	}

	local := filepath.Join(dir, "probe"+filepath.Ext(string(path)))

	if err := copyFile(string(path), local); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}

	return local, nil
}

// checkReadable opens path for reading so permission and I/O errors surface
// before the decoder is spawned.
func checkReadable(path m.Path) error {
	f, err := os.Open(string(path))
	if err != nil {
		return err
	}

	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	var probe [1]byte
	if _, err := f.Read(probe[:]); err != nil && info.Size() > 0 {
		return err
	}

	return nil
}

// boundedBuffer keeps the first limit bytes written to it and silently drops
// the rest, so the child process never blocks on a full pipe.
type boundedBuffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.limit - b.buf.Len()
	if room <= 0 {
		b.truncated = b.truncated || len(p) > 0
		return len(p), nil
	}

	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true

		return len(p), nil
	}

	b.buf.Write(p)

	return len(p), nil
}

// Result returns the captured text and whether anything was dropped.
func (b *boundedBuffer) Result() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String(), b.truncated
}
