package ledger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/holdemtable/internal/fileutil"
	"github.com/lox/holdemtable/internal/game"
)

// FileStore is a ChipStore backed by a single JSON file. Every mutation
// rewrites the file atomically.
type FileStore struct {
	mu      sync.Mutex
	path    string
	data    snapshot
	history int
	logger  zerolog.Logger
}

// OpenFileStore loads path if it exists, or starts empty.
func OpenFileStore(path string, logger zerolog.Logger) (*FileStore, error) {
	fs := &FileStore{
		path:    path,
		data:    newSnapshot(),
		history: DefaultHistory,
		logger:  logger.With().Str("component", "ledger").Str("path", path).Logger(),
	}
	found, err := fileutil.ReadJSON(path, &fs.data)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if fs.data.Balances == nil {
		fs.data.Balances = make(map[string]int)
	}
	fs.logger.Info().
		Bool("existing", found).
		Int("balances", len(fs.data.Balances)).
		Int("hands", len(fs.data.Hands)).
		Msg("Ledger opened")
	return fs, nil
}

func (f *FileStore) Balance(_ context.Context, userID string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chips, ok := f.data.Balances[userID]
	return chips, ok, nil
}

func (f *FileStore) SetBalance(ctx context.Context, userID string, chips int) error {
	if chips < 0 {
		return ErrNegativeBalance
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data.Balances[userID]
	f.data.Balances[userID] = chips
	if err := f.flush(ctx); err != nil {
		if had {
			f.data.Balances[userID] = prev
		} else {
			delete(f.data.Balances, userID)
		}
		return err
	}
	return nil
}

func (f *FileStore) RecordHand(ctx context.Context, result game.HandResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev := snapshot{
		Balances: maps.Clone(f.data.Balances),
		Hands:    slices.Clone(f.data.Hands),
	}
	if err := f.data.apply(result, f.history); err != nil {
		f.data = prev
		return err
	}
	if err := f.flush(ctx); err != nil {
		f.data = prev
		return err
	}
	f.logger.Debug().
		Str("hand_id", result.HandID).
		Int("hand_number", result.HandNumber).
		Msg("Hand recorded")
	return nil
}

func (f *FileStore) RecentHands(_ context.Context, limit int) ([]game.HandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data.recent(limit), nil
}

// flush must be called with mu held
func (f *FileStore) flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutil.WriteJSONAtomic(f.path, f.data, 0o644); err != nil {
		f.logger.Error().Err(err).Msg("Failed to write ledger")
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

var (
	_ ChipStore = (*MemoryStore)(nil)
	_ ChipStore = (*FileStore)(nil)
)
