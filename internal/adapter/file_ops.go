package adapter

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// moveFile moves src to dst without ever replacing an existing dst: it
// returns an error wrapping fs.ErrExist when dst is taken. The source is
// hard-linked into place and then unlinked. When linking is not possible
// (another device, no hard link support) the file is copied, synced and only
// then removed, so the data exists in at least one place at every step.
func moveFile(src, dst string) error {
	err := os.Link(src, dst)

	switch {
	case err == nil:
	case errors.Is(err, fs.ErrExist), errors.Is(err, fs.ErrNotExist):
		return err
	default:
		if copyErr := copyFile(src, dst); copyErr != nil {
			return fmt.Errorf("copy fallback: %w (link error: %w)", copyErr, err)
		}
	}

	if rmErr := os.Remove(src); rmErr != nil {
		return fmt.Errorf("remove source after move: %w", rmErr)
	}

	return nil
}

// copyFile copies src to a new file dst, preserving the permission bits and
// modification time and fsyncing dst. It fails with fs.ErrExist rather than
// overwrite dst.
func copyFile(src, dst string) error {
	// #nosec G304 - src comes from the scanned tree
	in, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	// #nosec G304 - dst is a path we generated
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if err := writeCopy(out, in); err != nil {
		_ = os.Remove(dst)
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func writeCopy(out *os.File, in io.Reader) error {
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
