package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	Path    string
	Outcome int
}

func TestJournal(t *testing.T) {
	t.Run("NewJournal creates file in dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "journals")
		journal, err := NewJournal[record](dir, "commit-*.gob")
		require.NoError(t, err)
		defer journal.Close()

		require.Equal(t, dir, filepath.Dir(journal.Path()))
		_, err = os.Stat(journal.Path())
		require.NoError(t, err)
	})

	t.Run("Append and ReadJournal keep order", func(t *testing.T) {
		journal, err := NewJournal[record](t.TempDir(), "commit-*.gob")
		require.NoError(t, err)

		require.NoError(t, journal.Append(record{Path: "/a.mkv", Outcome: 0}))
		require.NoError(t, journal.Append(record{Path: "/b.mkv", Outcome: 1}))
		require.Equal(t, uint64(2), journal.Len())
		require.NoError(t, journal.Close())

		var got []record
		err = ReadJournal(journal.Path(), func(index uint64, item record) error {
			require.Equal(t, uint64(len(got)), index)
			got = append(got, item)
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, []record{{"/a.mkv", 0}, {"/b.mkv", 1}}, got)
	})

	t.Run("Append after Close fails", func(t *testing.T) {
		journal, err := NewJournal[record](t.TempDir(), "commit-*.gob")
		require.NoError(t, err)
		require.NoError(t, journal.Close())
		require.NoError(t, journal.Close())

		require.Error(t, journal.Append(record{Path: "/a.mkv"}))
	})

	t.Run("ReadJournal empty file", func(t *testing.T) {
		journal, err := NewJournal[record](t.TempDir(), "commit-*.gob")
		require.NoError(t, err)
		require.NoError(t, journal.Close())

		calls := 0
		err = ReadJournal(journal.Path(), func(uint64, record) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		require.Zero(t, calls)
	})

	t.Run("ReadJournal propagates callback error", func(t *testing.T) {
		journal, err := NewJournal[record](t.TempDir(), "commit-*.gob")
		require.NoError(t, err)
		require.NoError(t, journal.Append(record{Path: "/a.mkv"}))
		require.NoError(t, journal.Close())

		stop := errors.New("stop")
		err = ReadJournal(journal.Path(), func(uint64, record) error { return stop })
		require.ErrorIs(t, err, stop)
	})

	t.Run("ReadJournal missing file", func(t *testing.T) {
		err := ReadJournal(filepath.Join(t.TempDir(), "nope.gob"), func(uint64, record) error { return nil })
		require.Error(t, err)
	})
}
