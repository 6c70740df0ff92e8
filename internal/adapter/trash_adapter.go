package adapter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

// ErrNoTrash is returned when no recoverable trash location exists on this platform.
var ErrNoTrash = errors.New("no recoverable trash location available")

// maxNameAttempts bounds the collision suffixes tried for one file.
const maxNameAttempts = 10000

// TrashAdapter relocates files to a recoverable store. Implementations must
// never delete data irreversibly.
type TrashAdapter interface {
	// MoveToTrash moves path to the trash and returns where it ended up.
	MoveToTrash(ctx context.Context, path m.Path) (m.Path, error)
	// Location describes the trash for display.
	Location() string
}

// NewTrashAdapter picks the trash implementation for the current platform.
// A non-empty dir always wins and is used as a plain trash directory.
func NewTrashAdapter(dir string) (TrashAdapter, error) {
	if strings.TrimSpace(dir) != "" {
		return NewDirTrash(dir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTrash, err)
	}

	switch runtime.GOOS {
	case "darwin":
		return NewDirTrash(filepath.Join(home, ".Trash")), nil
	case "windows":
		return nil, fmt.Errorf("%w: set trash.dir to a directory on the same drive", ErrNoTrash)
	default:
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			dataHome = filepath.Join(home, ".local", "share")
		}

		return NewFreedesktopTrash(filepath.Join(dataHome, "Trash")), nil
	}
}

// LazyTrash picks the trash implementation the first time it is used, so
// commands that never move files work where no trash is available.
type LazyTrash struct {
	dir   string
	once  sync.Once
	trash TrashAdapter
	err   error
}

// NewLazyTrash returns a TrashAdapter that calls NewTrashAdapter(dir) on first use.
func NewLazyTrash(dir string) *LazyTrash {
	return &LazyTrash{dir: dir}
}

func (t *LazyTrash) resolve() (TrashAdapter, error) {
	t.once.Do(func() {
		t.trash, t.err = NewTrashAdapter(t.dir)
	})

	return t.trash, t.err
}

// Location implements TrashAdapter.
func (t *LazyTrash) Location() string {
	trash, err := t.resolve()
	if err != nil {
		return "unavailable"
	}

	return trash.Location()
}

// MoveToTrash implements TrashAdapter.
func (t *LazyTrash) MoveToTrash(ctx context.Context, path m.Path) (m.Path, error) {
	trash, err := t.resolve()
	if err != nil {
		return "", err
	}

	return trash.MoveToTrash(ctx, path)
}

// DirTrash moves files into a single directory, renaming on collision.
type DirTrash struct {
	dir string
}

// NewDirTrash constructs a DirTrash rooted at dir.
func NewDirTrash(dir string) *DirTrash {
	return &DirTrash{dir: dir}
}

// Location implements TrashAdapter.
func (t *DirTrash) Location() string {
	return t.dir
}

// MoveToTrash implements TrashAdapter.
func (t *DirTrash) MoveToTrash(ctx context.Context, path m.Path) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := requireRegular(path); err != nil {
		return "", err
	}

	if err := os.MkdirAll(t.dir, 0o700); err != nil {
		return "", fmt.Errorf("create trash dir: %w", err)
	}

	dst, err := claimName(t.dir, filepath.Base(string(path)), func(candidate string) error {
		return moveFile(string(path), candidate)
	})
	if err != nil {
		return "", err
	}

	slog.Info("Moved file to trash", "path", path, "trash", dst)

	return m.Path(dst), nil
}

// FreedesktopTrash implements the freedesktop.org trash layout: files/ holds
// the payload and info/<name>.trashinfo records the original location so the
// desktop can restore it.
type FreedesktopTrash struct {
	root string
	now  func() time.Time
}

// NewFreedesktopTrash constructs a FreedesktopTrash rooted at root (usually ~/.local/share/Trash).
func NewFreedesktopTrash(root string) *FreedesktopTrash {
	return &FreedesktopTrash{root: root, now: time.Now}
}

// Location implements TrashAdapter.
func (t *FreedesktopTrash) Location() string {
	return t.root
}

// MoveToTrash implements TrashAdapter.
func (t *FreedesktopTrash) MoveToTrash(ctx context.Context, path m.Path) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := requireRegular(path); err != nil {
		return "", err
	}

	filesDir := filepath.Join(t.root, "files")
	infoDir := filepath.Join(t.root, "info")

	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("create trash dir: %w", err)
		}
	}

	abs, err := filepath.Abs(string(path))
	if err != nil {
		return "", err
	}

	// A name is taken when either the info file or the payload exists.
	dst, err := claimName(filesDir, filepath.Base(abs), func(candidate string) error {
		infoPath := filepath.Join(infoDir, filepath.Base(candidate)+".trashinfo")

		if err := writeTrashInfo(infoPath, abs, t.now()); err != nil {
			return err
		}

		if err := moveFile(abs, candidate); err != nil {
			_ = os.Remove(infoPath)
			return err
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("Moved file to trash", "path", abs, "trash", dst)

	return m.Path(dst), nil
}

func trashInfo(path string, deletedAt time.Time) string {
	escaped := (&url.URL{Path: path}).EscapedPath()

	return fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n", escaped, deletedAt.Format("2006-01-02T15:04:05"))
}

// writeTrashInfo creates infoPath exclusively. It fails with fs.ErrExist
// when the name is already used.
func writeTrashInfo(infoPath, original string, deletedAt time.Time) error {
	f, err := os.OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(trashInfo(original, deletedAt)); err != nil {
		_ = f.Close()
		_ = os.Remove(infoPath)

		return fmt.Errorf("write trash info: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(infoPath)
		return fmt.Errorf("write trash info: %w", err)
	}

	return nil
}

// claimName calls place with dir/base, then dir/<stem>.2<ext> and so on,
// moving past every name for which place reports fs.ErrExist. It returns
// the path place accepted.
func claimName(dir, base string, place func(candidate string) error) (string, error) {
	for i := 1; i <= maxNameAttempts; i++ {
		candidate := filepath.Join(dir, trashName(base, i))

		err := place(candidate)
		if errors.Is(err, fs.ErrExist) {
			continue
		}

		if err != nil {
			return "", err
		}

		return candidate, nil
	}

	return "", fmt.Errorf("claim trash name: too many files named %s", base)
}

// trashName is base for the first attempt and base with ".N" before the
// extension afterwards.
func trashName(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}

	ext := filepath.Ext(base)

	return strings.TrimSuffix(base, ext) + "." + strconv.Itoa(attempt) + ext
}

func requireRegular(path m.Path) error {
	info, err := os.Lstat(string(path))
	if err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	return nil
}
