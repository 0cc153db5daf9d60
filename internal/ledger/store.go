// Package ledger persists chip balances and settled hands outside the engine.
//
// The table writes to a ChipStore after every hand and reads balances back when
// a user sits down, so stacks survive reconnects and restarts.
package ledger

import (
	"context"
	"errors"
	"maps"

	"github.com/lox/holdemtable/internal/game"
)

// ErrNegativeBalance is returned when a store is asked to record a negative stack
var ErrNegativeBalance = errors.New("ledger: negative balance")

// DefaultHistory is the number of settled hands a store keeps
const DefaultHistory = 200

// ChipStore is the persistence boundary for chip stacks.
type ChipStore interface {
	// Balance returns the stored stack for userID. ok is false for unknown users.
	Balance(ctx context.Context, userID string) (chips int, ok bool, err error)
	// SetBalance overwrites a single user's stack, e.g. when they leave a table.
	SetBalance(ctx context.Context, userID string, chips int) error
	// RecordHand stores the final stacks of a settled hand and keeps the result
	// in the recent-hand history.
	RecordHand(ctx context.Context, result game.HandResult) error
	// RecentHands returns up to limit settled hands, newest first.
	RecentHands(ctx context.Context, limit int) ([]game.HandResult, error)
}

// snapshot is the persisted form shared by the stores
type snapshot struct {
	Balances map[string]int    `json:"balances"`
	Hands    []game.HandResult `json:"hands"`
}

func newSnapshot() snapshot {
	return snapshot{Balances: make(map[string]int)}
}

func (s *snapshot) apply(result game.HandResult, history int) error {
	for _, chips := range result.Chips {
		if chips < 0 {
			return ErrNegativeBalance
		}
	}
	maps.Copy(s.Balances, result.Chips)
	s.Hands = append(s.Hands, result)
	if over := len(s.Hands) - history; over > 0 {
		s.Hands = append(s.Hands[:0:0], s.Hands[over:]...)
	}
	return nil
}

func (s *snapshot) recent(limit int) []game.HandResult {
	if limit <= 0 || limit > len(s.Hands) {
		limit = len(s.Hands)
	}
	out := make([]game.HandResult, 0, limit)
	for i := len(s.Hands) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.Hands[i])
	}
	return out
}
