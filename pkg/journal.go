// Package pkg provides utilities shared by vidcheck commands.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Journal is an append-only, on-disk log of records of type T.
// Records are never rewritten once appended.
type Journal[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Close() error
}

type journalImpl[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
	closed  bool
}

// Append implements Journal. Each record is synced to disk before returning.
func (j *journalImpl[T]) Append(item T) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return fmt.Errorf("journal %s is closed", j.path)
	}

	if err := j.encoder.Encode(item); err != nil {
		slog.Error("failed to encode journal record", "path", j.path, "index", j.length, "error", err)
		return fmt.Errorf("failed to encode record: %w", err)
	}

	if err := j.file.Sync(); err != nil {
		slog.Error("failed to sync journal", "path", j.path, "error", err)
		return fmt.Errorf("failed to sync journal: %w", err)
	}

	j.length++
	slog.Debug("appended journal record", "path", j.path, "index", j.length-1)

	return nil
}

// Path implements Journal.
func (j *journalImpl[T]) Path() string {
	return j.path
}

// Len implements Journal.
func (j *journalImpl[T]) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.length
}

// Close implements Journal.
func (j *journalImpl[T]) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}

	j.closed = true

	if err := j.file.Close(); err != nil {
		slog.Error("failed to close journal", "path", j.path, "error", err)
		return err
	}

	slog.Debug("closed journal", "path", j.path, "length", j.length)

	return nil
}

// NewJournal creates a new journal file in dir whose name is built from pattern
// as in os.CreateTemp.
func NewJournal[T any](dir, pattern string) (Journal[T], error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("failed to create journal directory", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		slog.Error("failed to create journal file", "path", dir, "error", err)
		return nil, fmt.Errorf("failed to create journal file: %w", err)
	}

	slog.Debug("created journal", "path", file.Name())

	return &journalImpl[T]{
		path:    filepath.Clean(file.Name()),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// ReadJournal decodes every record of the journal at path in append order.
// A record cut short by a crash ends the iteration without error.
func ReadJournal[T any](path string, fn func(index uint64, item T) error) error {
	// #nosec G304 - journal path is chosen by the operator
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close journal", "path", path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	for i := uint64(0); ; i++ {
		var item T

		err := decoder.Decode(&item)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("failed to decode record at index %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}
}
