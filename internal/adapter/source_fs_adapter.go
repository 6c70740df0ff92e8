// Package adapter contains the I/O collaborators of the scanner: file
// enumeration, the external decoder, the trash and report persistence.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

// ErrRootInaccessible is returned when the scan root cannot be used.
var ErrRootInaccessible = errors.New("scan root is not an accessible directory")

// DefaultExtensions are the video extensions scanned when none are configured.
var DefaultExtensions = []string{
	".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm",
	".m4v", ".mpg", ".mpeg", ".ts", ".m2ts", ".vob", ".3gp", ".ogv",
}

// CandidateFunc receives each enumerated candidate. Returning an error stops the walk.
type CandidateFunc func(candidate m.FileCandidate) error

// WarningFunc receives non-fatal enumeration problems.
type WarningFunc func(path m.Path, err error)

// SourceFSAdapter abstracts the filesystem operations the scanner relies on
// so the scheduling logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// Root canonicalises root and verifies it is a readable directory.
	Root(ctx context.Context, root m.Path) (m.Path, error)

	// Walk calls fn for every regular file under root whose extension is in
	// extensions. Unreadable subdirectories are reported to warn and skipped.
	Walk(ctx context.Context, root m.Path, extensions []string, fn CandidateFunc, warn WarningFunc) error

	// Stat returns the current candidate metadata for path.
	Stat(ctx context.Context, path m.Path) (m.FileCandidate, error)
}

// LocalSourceFSAdapter walks the local filesystem.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the scanner.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Root resolves root to an absolute, symlink-free path and checks it can be listed.
func (a *LocalSourceFSAdapter) Root(ctx context.Context, root m.Path) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(string(root))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRootInaccessible, root, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRootInaccessible, root, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRootInaccessible, root, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrRootInaccessible, root)
	}

	dir, err := os.Open(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRootInaccessible, root, err)
	}

	defer func() { _ = dir.Close() }()

	if _, err := dir.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %s: %w", ErrRootInaccessible, root, err)
	}

	return m.Path(filepath.Clean(resolved)), nil
}

// Walk enumerates video files under root in lexical order.
func (a *LocalSourceFSAdapter) Walk(ctx context.Context, root m.Path, extensions []string, fn CandidateFunc, warn WarningFunc) error {
	rootStr := string(root)
	allowed := extensionSet(extensions)

	return filepath.WalkDir(rootStr, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == rootStr {
				return fmt.Errorf("%w: %s: %w", ErrRootInaccessible, root, err)
			}

			slog.Warn("Skipping unreadable path", "path", path, "error", err)

			if warn != nil {
				warn(m.Path(path), err)
			}

			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if entry.IsDir() || !entry.Type().IsRegular() {
			// Symlinks and special files are never followed.
			return nil
		}

		if isPartialFile(entry.Name()) || !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			if warn != nil {
				warn(m.Path(path), err)
			}

			return nil
		}

		return fn(m.FileCandidate{
			Path:    m.Path(filepath.Clean(path)),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	})
}

// Stat returns metadata for a single file.
func (a *LocalSourceFSAdapter) Stat(ctx context.Context, path m.Path) (m.FileCandidate, error) {
	if err := ctx.Err(); err != nil {
		return m.FileCandidate{}, err
	}

	info, err := os.Stat(string(path))
	if err != nil {
		return m.FileCandidate{}, err
	}

	if !info.Mode().IsRegular() {
		return m.FileCandidate{}, fmt.Errorf("%s is not a regular file", path)
	}

	return m.FileCandidate{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// NormalizeExtensions lowercases extensions and adds the leading dot.
func NormalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))

	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}

		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		normalized = append(normalized, ext)
	}

	return normalized
}

func extensionSet(extensions []string) map[string]bool {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	set := make(map[string]bool, len(extensions))
	for _, ext := range NormalizeExtensions(extensions) {
		set[ext] = true
	}

	return set
}

// isPartialFile reports download leftovers and editor temp files that are
// expected to fail decoding.
func isPartialFile(name string) bool {
	lower := strings.ToLower(name)

	if strings.HasPrefix(name, ".fuse_hidden") || strings.HasPrefix(name, "._") {
		return true
	}

	for _, suffix := range []string{".part", ".partial", ".tmp", ".temp", ".crdownload", ".!qb"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}

	return false
}
