package assignment

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "db", DefaultDBFile))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordAndCounts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	now := time.Now()

	for i, bid := range []int{3, 1, 3, 0, 3} {
		require.NoError(t, s.Record(ctx, string(rune('a'+i)), bid, now))
	}

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, []Count{
		{BookletID: 0, Count: 1},
		{BookletID: 1, Count: 1},
		{BookletID: 3, Count: 3},
	}, counts)
}

func TestStore_DuplicateIDRollsBack(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "same", 2, time.Now()))
	require.Error(t, s.Record(ctx, "same", 2, time.Now()))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, []Count{{BookletID: 2, Count: 1}}, counts)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultDBFile)
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, path, s.Path())
	require.NoError(t, s.Record(ctx, "x", 5, time.Now()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, []Count{{BookletID: 5, Count: 1}}, counts)
}

func TestStore_EmptyCounts(t *testing.T) {
	counts, err := openStore(t).Counts(context.Background())
	require.NoError(t, err)
	require.Empty(t, counts)
}
