package table

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownTable = errors.New("unknown table")

// Summary holds lightweight table metadata for lobbies
type Summary struct {
	ID         string `json:"id"`
	MinBet     int    `json:"minBet"`
	MaxPlayers int    `json:"maxPlayers"`
	Seated     int    `json:"seated"`
	HandNumber int    `json:"handNumber"`
	InHand     bool   `json:"inHand"`
	AutoStart  bool   `json:"autoStart"`
}

// Manager tracks the tables served by a process
type Manager struct {
	logger zerolog.Logger
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewManager constructs an empty manager
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		logger: logger.With().Str("component", "table_manager").Logger(),
		tables: make(map[string]*Table),
	}
}

// Add registers a table. Table ids must be unique.
func (m *Manager) Add(t *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[t.ID()]; ok {
		return fmt.Errorf("table %s already registered", t.ID())
	}
	m.tables[t.ID()] = t
	m.logger.Info().Str("table_id", t.ID()).Msg("Table registered")
	return nil
}

// Get retrieves a table by id
func (m *Manager) Get(id string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, id)
	}
	return t, nil
}

// Tables returns the registered tables ordered by id
func (m *Manager) Tables() []*Table {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Table) int { return cmp.Compare(a.ID(), b.ID()) })
	return out
}

// List summarises every table
func (m *Manager) List() []Summary {
	tables := m.Tables()
	out := make([]Summary, 0, len(tables))
	for _, t := range tables {
		st := t.State("")
		out = append(out, Summary{
			ID:         t.ID(),
			MinBet:     t.settings.Rules.MinBet,
			MaxPlayers: t.settings.Rules.MaxPlayers,
			Seated:     len(st.Players),
			HandNumber: st.HandNumber,
			InHand:     st.IsGameActive,
			AutoStart:  t.settings.AutoStart,
		})
	}
	return out
}

// Run sweeps every registered table until ctx is cancelled or one fails
func (m *Manager) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range m.Tables() {
		g.Go(func() error {
			if err := t.Run(ctx); err != nil {
				return fmt.Errorf("table %s: %w", t.ID(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
