// Package table serialises access to a game engine and connects it to the
// outside world: timer sweeps, per-user snapshot delivery, ready-state auto
// start and chip persistence.
package table

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/ledger"
)

var (
	ErrTableFull   = errors.New("table is full")
	ErrNotSeated   = errors.New("not seated at this table")
	ErrCannotStart = errors.New("hand cannot start")
	ErrHandActive  = errors.New("hand in progress")
)

const persistTimeout = 5 * time.Second

// Settings describes a table
type Settings struct {
	ID            string
	Rules         game.Config
	StartingChips int
	AutoStart     bool
	NextHandDelay time.Duration
	SweepInterval time.Duration
}

// Option configures a Table
type Option func(*Table)

// WithClock sets the clock shared by the table and its engine
func WithClock(clock quartz.Clock) Option {
	return func(t *Table) { t.clock = clock }
}

// WithStore sets where chip stacks are persisted. Default is an in-memory store.
func WithStore(store ledger.ChipStore) Option {
	return func(t *Table) { t.store = store }
}

// WithLogger sets the table logger
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Table) { t.logger = logger }
}

// WithRNG fixes the shuffle source, for reproducible tables
func WithRNG(rng *rand.Rand) Option {
	return func(t *Table) { t.rng = rng }
}

// Table owns one Engine. Every engine call happens under mu.
type Table struct {
	settings Settings
	clock    quartz.Clock
	store    ledger.ChipStore
	logger   zerolog.Logger
	rng      *rand.Rand

	mu       sync.Mutex
	engine   *game.Engine
	ready    map[string]bool
	startAt  time.Time
	recorded int    // hand number of the last persisted result
	rev      uint64 // bumps on table-only changes such as ready flags
	sent     [2]uint64
	subs     map[int]*Subscription
	nextSub  int
}

// New creates a table and its engine
func New(settings Settings, opts ...Option) (*Table, error) {
	t := &Table{
		settings: settings,
		clock:    quartz.NewReal(),
		logger:   zerolog.Nop(),
		ready:    make(map[string]bool),
		subs:     make(map[int]*Subscription),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.store == nil {
		t.store = ledger.NewMemoryStore()
	}
	if settings.SweepInterval <= 0 {
		t.settings.SweepInterval = 500 * time.Millisecond
	}
	if settings.StartingChips < settings.Rules.BigBlind() {
		return nil, fmt.Errorf("table %s: starting chips below the big blind", settings.ID)
	}
	t.logger = t.logger.With().Str("component", "table").Str("table_id", settings.ID).Logger()

	engineOpts := []game.Option{
		game.WithClock(t.clock),
		game.WithLogger(t.logger),
		game.WithTableID(settings.ID),
	}
	if t.rng != nil {
		engineOpts = append(engineOpts, game.WithRNG(t.rng))
	}
	engine, err := game.NewEngine(settings.Rules, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", settings.ID, err)
	}
	t.engine = engine
	return t, nil
}

// ID returns the table id
func (t *Table) ID() string { return t.settings.ID }

// Settings returns the table settings
func (t *Table) Settings() Settings { return t.settings }

// Join seats userID, or reconnects them if already seated. Stacks come from the
// chip store; new users and busted users receive the starting stack.
func (t *Table) Join(ctx context.Context, userID, nickname string) (int, error) {
	t.mu.Lock()
	if p := t.engine.Player(userID); p != nil {
		seat := p.Seat
		t.apply(func(e *game.Engine) { e.SetConnected(userID) })
		return seat, nil
	}
	seat := t.freeSeatLocked()
	t.mu.Unlock()
	if seat < 0 {
		return -1, ErrTableFull
	}

	chips := t.settings.StartingChips
	stored, ok, err := t.store.Balance(ctx, userID)
	if err != nil {
		return -1, fmt.Errorf("load balance: %w", err)
	}
	if ok && stored >= t.settings.Rules.BigBlind() {
		chips = stored
	}

	t.mu.Lock()
	// The seat may have been taken while the store was read
	if t.engine.Player(userID) == nil {
		if seat = t.freeSeatLocked(); seat < 0 {
			t.mu.Unlock()
			return -1, ErrTableFull
		}
	}
	t.apply(func(e *game.Engine) {
		if e.Player(userID) != nil {
			seat = e.Player(userID).Seat
			e.SetConnected(userID)
			return
		}
		e.AddPlayer(userID, nickname, chips, seat)
	})
	t.logger.Info().Str("user", userID).Int("seat", seat).Int("chips", chips).Msg("Player joined")
	return seat, nil
}

func (t *Table) freeSeatLocked() int {
	for seat := range t.settings.Rules.MaxPlayers {
		if t.engine.Seats().BySeat(seat) == nil {
			return seat
		}
	}
	return -1
}

// Leave removes userID from the table and persists their remaining stack
func (t *Table) Leave(ctx context.Context, userID string) error {
	t.mu.Lock()
	p := t.engine.Player(userID)
	if p == nil {
		t.mu.Unlock()
		return ErrNotSeated
	}
	chips := p.Chips
	delete(t.ready, userID)
	t.apply(func(e *game.Engine) { e.RemovePlayer(userID) })

	t.logger.Info().Str("user", userID).Int("chips", chips).Msg("Player left")
	if err := t.store.SetBalance(ctx, userID, chips); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	return nil
}

// Connect marks a seated user online
func (t *Table) Connect(userID string) error {
	return t.seated(userID, func(e *game.Engine) { e.SetConnected(userID) })
}

// Disconnect marks a seated user offline, applying the engine's disconnect policy
func (t *Table) Disconnect(userID string) error {
	return t.seated(userID, func(e *game.Engine) { e.SetDisconnected(userID) })
}

// Act submits a player action
func (t *Table) Act(userID string, action game.Action, amount int) (game.ActionResult, error) {
	var (
		res game.ActionResult
		err error
	)
	t.mu.Lock()
	t.apply(func(e *game.Engine) { res, err = e.PlayerAction(userID, action, amount) })
	return res, err
}

// Start deals a hand on request of a seated user
func (t *Table) Start(userID string) error {
	var err error
	t.mu.Lock()
	if t.engine.Player(userID) == nil {
		t.mu.Unlock()
		return ErrNotSeated
	}
	t.apply(func(e *game.Engine) {
		switch {
		case e.IsGameActive():
			err = ErrHandActive
		case !e.StartGame():
			err = ErrCannotStart
		}
	})
	return err
}

// SetReady records whether userID wants the next hand dealt
func (t *Table) SetReady(userID string, ready bool) error {
	return t.seated(userID, func(*game.Engine) {
		if t.ready[userID] != ready {
			t.ready[userID] = ready
			t.rev++
		}
	})
}

// Reveal shows userID's hole cards after the hand
func (t *Table) Reveal(userID string) (bool, error) {
	var ok bool
	err := t.seated(userID, func(e *game.Engine) { ok = e.VoluntaryReveal(userID) })
	return ok, err
}

// Decide answers the single-player wait prompt
func (t *Table) Decide(userID, decision string) (bool, error) {
	var ok bool
	err := t.seated(userID, func(e *game.Engine) { ok = e.HandleSinglePlayerDecision(userID, decision) })
	return ok, err
}

// Sweep resolves expired timers and due auto starts
func (t *Table) Sweep() {
	t.mu.Lock()
	t.apply(func(e *game.Engine) {
		for _, p := range e.AutoFoldTimeoutPlayers() {
			t.logger.Debug().Str("user", p.UserID).Str("action", p.LastAction).Msg("Timed out")
		}
	})
}

// Run sweeps the table until ctx is cancelled
func (t *Table) Run(ctx context.Context) error {
	t.logger.Info().Dur("interval", t.settings.SweepInterval).Msg("Table running")
	w := t.clock.TickerFunc(ctx, t.settings.SweepInterval, func() error {
		t.Sweep()
		return nil
	}, "table", "sweep")
	err := w.Wait()
	if ctx.Err() != nil {
		t.logger.Info().Msg("Table stopped")
		return nil
	}
	return err
}

// State returns a snapshot for viewer
func (t *Table) State(viewer string) View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked(viewer)
}

// RecentHands returns settled hands from the chip store
func (t *Table) RecentHands(ctx context.Context, limit int) ([]game.HandResult, error) {
	return t.store.RecentHands(ctx, limit)
}

func (t *Table) seated(userID string, fn func(e *game.Engine)) error {
	t.mu.Lock()
	if t.engine.Player(userID) == nil {
		t.mu.Unlock()
		return ErrNotSeated
	}
	t.apply(fn)
	return nil
}

// apply runs fn with mu held, then settles bookkeeping, releases mu and
// persists any hand that finished. The caller must hold mu.
func (t *Table) apply(fn func(e *game.Engine)) {
	fn(t.engine)
	finished := t.collectResultLocked()
	t.scheduleStartLocked()
	if finished == nil {
		// An auto-started hand can run out during the deal
		finished = t.collectResultLocked()
	}
	t.broadcastLocked()
	t.mu.Unlock()

	if finished != nil {
		t.persist(*finished)
	}
}

func (t *Table) collectResultLocked() *game.HandResult {
	r := t.engine.LastResult()
	if r == nil || r.HandNumber == t.recorded {
		return nil
	}
	t.recorded = r.HandNumber
	if len(t.ready) > 0 {
		clear(t.ready)
		t.rev++
	}
	res := *r
	return &res
}

func (t *Table) persist(result game.HandResult) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := t.store.RecordHand(ctx, result); err != nil {
		t.logger.Error().Err(err).Str("hand_id", result.HandID).Msg("Failed to persist hand")
	}
}

// readyToStartLocked reports whether every online seat that can cover the big
// blind is ready, with at least two such seats.
func (t *Table) readyToStartLocked() bool {
	e := t.engine
	if !t.settings.AutoStart || e.IsGameActive() || !e.CanStartGame() {
		return false
	}
	n := 0
	for _, p := range e.Seats().Players() {
		if !p.IsOnline() || p.Chips < t.settings.Rules.BigBlind() {
			continue
		}
		if !t.ready[p.UserID] {
			return false
		}
		n++
	}
	return n >= 2
}

func (t *Table) scheduleStartLocked() {
	if !t.readyToStartLocked() {
		if !t.startAt.IsZero() {
			t.startAt = time.Time{}
			t.rev++
		}
		return
	}
	now := t.clock.Now()
	if t.startAt.IsZero() {
		t.startAt = now.Add(t.settings.NextHandDelay)
		t.rev++
	}
	if now.Before(t.startAt) {
		return
	}
	t.startAt = time.Time{}
	t.rev++
	if t.engine.StartGame() {
		t.logger.Info().Int("hand_number", t.engine.HandNumber()).Msg("Auto-started hand")
	}
}
