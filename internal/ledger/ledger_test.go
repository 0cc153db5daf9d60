package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/poker"
)

func handResult(n int, chips map[string]int) game.HandResult {
	return game.HandResult{
		TableID:    "main",
		HandID:     "hand-" + string(rune('a'+n)),
		HandNumber: n,
		Reason:     game.EndShowdown,
		Winners:    []string{"alice"},
		Chips:      chips,
		Deltas:     map[string]int{"alice": 10, "bob": -10},
		Board:      poker.MustParseCards("As Kd 7c 7h 2s"),
		EndedAt:    time.Date(2024, 3, 1, 12, 0, n, 0, time.UTC),
	}
}

func TestStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) ChipStore{
		"memory": func(t *testing.T) ChipStore { return NewMemoryStore() },
		"file": func(t *testing.T) ChipStore {
			fs, err := OpenFileStore(filepath.Join(t.TempDir(), "ledger.json"), zerolog.Nop())
			require.NoError(t, err)
			return fs
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := open(t)

			_, ok, err := s.Balance(ctx, "alice")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.SetBalance(ctx, "alice", 500))
			chips, ok, err := s.Balance(ctx, "alice")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 500, chips)

			require.ErrorIs(t, s.SetBalance(ctx, "alice", -1), ErrNegativeBalance)

			for n := range 3 {
				require.NoError(t, s.RecordHand(ctx, handResult(n, map[string]int{"alice": 1000 + n, "bob": 1000 - n})))
			}
			chips, _, _ = s.Balance(ctx, "bob")
			assert.Equal(t, 998, chips)

			hands, err := s.RecentHands(ctx, 2)
			require.NoError(t, err)
			require.Len(t, hands, 2)
			assert.Equal(t, 2, hands[0].HandNumber, "newest first")
			assert.Equal(t, 1, hands[1].HandNumber)

			all, err := s.RecentHands(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, all, 3)

			err = s.RecordHand(ctx, handResult(9, map[string]int{"alice": -5}))
			require.ErrorIs(t, err, ErrNegativeBalance)
		})
	}
}

func TestHistoryIsBounded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryStore()
	m.history = 3
	for n := range 5 {
		require.NoError(t, m.RecordHand(ctx, handResult(n, map[string]int{"alice": n})))
	}
	hands, err := m.RecentHands(ctx, 10)
	require.NoError(t, err)
	require.Len(t, hands, 3)
	assert.Equal(t, 4, hands[0].HandNumber)
	assert.Equal(t, 2, hands[2].HandNumber)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "ledger.json")

	fs, err := OpenFileStore(path, zerolog.Nop())
	require.NoError(t, err)
	want := handResult(1, map[string]int{"alice": 1010, "bob": 990})
	require.NoError(t, fs.RecordHand(ctx, want))

	reopened, err := OpenFileStore(path, zerolog.Nop())
	require.NoError(t, err)
	chips, ok, err := reopened.Balance(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 990, chips)

	hands, err := reopened.RecentHands(ctx, 1)
	require.NoError(t, err)
	require.Len(t, hands, 1)
	assert.Equal(t, want.HandID, hands[0].HandID)
	assert.Equal(t, want.Board, hands[0].Board)
	assert.True(t, want.EndedAt.Equal(hands[0].EndedAt))
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := OpenFileStore(path, zerolog.Nop())
	require.Error(t, err)
}

func TestFileStoreRollsBackOnCancelledContext(t *testing.T) {
	t.Parallel()
	fs, err := OpenFileStore(filepath.Join(t.TempDir(), "ledger.json"), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, fs.SetBalance(ctx, "alice", 100), context.Canceled)

	_, ok, err := fs.Balance(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}
