package game

import (
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lox/holdemtable/poker"
)

// Stage is the hand's position in the betting state machine
type Stage uint8

const (
	Preflop Stage = iota
	Flop
	Turn
	River
	Showdown
	Ended
)

func (s Stage) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalText encodes the stage by name
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Action is a player decision
type Action string

const (
	Fold  Action = "fold"
	Check Action = "check"
	Call  Action = "call"
	Raise Action = "raise"
)

// ParseAction converts a wire string to an Action
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Fold, Check, Call, Raise:
		return a, nil
	}
	return "", actionErrorf(CodeInvalidAction, "invalid action %q", s)
}

// Reveal is a seat's hole cards shown at showdown
type Reveal struct {
	Seat         int              `json:"seat"`
	UserID       string           `json:"userId"`
	Nickname     string           `json:"nickname"`
	HoleCards    []poker.Card     `json:"holeCards"`
	Hand         poker.Evaluation `json:"hand"`
	Disconnected bool             `json:"disconnected"`
	Voluntary    bool             `json:"voluntary"`
}

// SinglePlayerWait is armed when a disconnect leaves one online seat in the hand
type SinglePlayerWait struct {
	UserID   string
	Seat     int
	Deadline time.Time
}

type turnGrace struct {
	seat     int
	deadline time.Time
}

// Engine runs hands for one table. It is not safe for concurrent use; callers
// serialize every call (see the table package).
type Engine struct {
	cfg        Config
	clock      quartz.Clock
	rng        *rand.Rand
	logger     zerolog.Logger
	deckSource func() *poker.Deck
	tableID    string

	seats *SeatManager

	stage      Stage
	handID     string
	handNumber int
	deck       *poker.Deck
	burned     []poker.Card
	community  []poker.Card

	pot                int
	sidePots           []SidePot
	departed           []contribution // chips left behind by players who stood up mid-hand
	currentBet         int
	lastRaiseIncrement int
	acted              map[int]bool
	currentPos         int
	lastAggressor      int
	sbPos, bbPos       int
	headsUp            bool

	showdownReveal []Reveal
	wait           *SinglePlayerWait
	grace          *turnGrace
	lastActionAt   time.Time
	result         *HandResult
	version        uint64
}

// NewEngine creates an engine with no seated players
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	o := &engineOptions{
		clock:  quartz.NewReal(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}

	return &Engine{
		cfg:           cfg,
		clock:         o.clock,
		rng:           o.rng,
		logger:        o.logger.With().Str("component", "engine").Str("table", o.tableID).Logger(),
		deckSource:    o.deckSource,
		tableID:       o.tableID,
		seats:         NewSeatManager(),
		stage:         Ended,
		acted:         make(map[int]bool),
		currentPos:    -1,
		lastAggressor: -1,
		sbPos:         -1,
		bbPos:         -1,
	}, nil
}

// Config returns the engine's rules
func (e *Engine) Config() Config { return e.cfg }

// Stage returns the current stage
func (e *Engine) Stage() Stage { return e.stage }

// Seats exposes the seat manager for read-only queries
func (e *Engine) Seats() *SeatManager { return e.seats }

// Player returns the seated player for userID, or nil
func (e *Engine) Player(userID string) *Player { return e.seats.ByUser(userID) }

// Pot returns the chips committed this hand and not yet awarded
func (e *Engine) Pot() int { return e.pot }

// SidePots returns the current side-pot layers
func (e *Engine) SidePots() []SidePot { return e.sidePots }

// CurrentBet returns the amount to match this street
func (e *Engine) CurrentBet() int { return e.currentBet }

// LastRaiseIncrement returns the minimum legal raise step
func (e *Engine) LastRaiseIncrement() int { return e.lastRaiseIncrement }

// CommunityCards returns the board
func (e *Engine) CommunityCards() []poker.Card { return e.community }

// CurrentPlayer returns the seat on turn, or nil
func (e *Engine) CurrentPlayer() *Player {
	if e.currentPos < 0 || !e.IsGameActive() {
		return nil
	}
	return e.seats.BySeat(e.currentPos)
}

// LastResult returns the most recent finished hand, or nil
func (e *Engine) LastResult() *HandResult { return e.result }

// HandNumber returns how many hands have started
func (e *Engine) HandNumber() int { return e.handNumber }

// Wait returns the armed single-player wait, or nil
func (e *Engine) Wait() *SinglePlayerWait { return e.wait }

// Version increments on every state change; equal versions mean equal snapshots
// apart from countdowns.
func (e *Engine) Version() uint64 { return e.version }

// TotalChips returns every seated stack plus the pot. Constant within a hand
// unless a player stands up and takes their stack with them.
func (e *Engine) TotalChips() int {
	total := e.pot
	for _, p := range e.seats.Players() {
		total += p.Chips
	}
	return total
}

// IsGameActive reports whether a betting round is in progress
func (e *Engine) IsGameActive() bool {
	return e.stage <= River
}

// ActivePlayerCount returns the number of seats dealt in and not folded
func (e *Engine) ActivePlayerCount() int {
	return len(e.seats.ActivePlayers())
}

// CanStartGame reports whether StartGame would deal a hand
func (e *Engine) CanStartGame() bool {
	return !e.IsGameActive() && len(e.eligibleForDeal()) >= 2
}

// AddPlayer seats a player. It fails if the seat is out of range or occupied,
// the user is already seated, or chips is negative.
func (e *Engine) AddPlayer(userID, nickname string, chips, seat int) bool {
	if userID == "" || chips < 0 || seat < 0 || seat >= e.cfg.MaxPlayers {
		return false
	}
	if !e.seats.Add(NewPlayer(userID, nickname, chips, seat)) {
		return false
	}
	e.version++
	e.logger.Info().Str("user", userID).Int("seat", seat).Int("chips", chips).Msg("Player seated")
	return true
}

// RemovePlayer unseats a player. If the player is in a live hand they are
// folded first and their committed chips stay in the pot.
func (e *Engine) RemovePlayer(userID string) bool {
	p := e.seats.ByUser(userID)
	if p == nil {
		return false
	}

	wasCurrent := e.IsGameActive() && e.currentPos == p.Seat
	if e.IsGameActive() && p.InHand {
		if !p.Folded {
			p.Fold()
		}
		e.departed = append(e.departed, contribution{seat: -1, total: p.TotalBet, folded: true})
		if e.grace != nil && e.grace.seat == p.Seat {
			e.grace = nil
		}
		if e.wait != nil && e.wait.Seat == p.Seat {
			e.wait = nil
		}
	}
	e.seats.Remove(userID)
	e.version++
	e.logger.Info().Str("user", userID).Int("seat", p.Seat).Msg("Player left table")

	if !e.IsGameActive() {
		return true
	}
	e.recomputeSidePots()
	if e.checkInstantWin() {
		return true
	}
	if wasCurrent {
		e.advance(p.Seat)
	} else if e.shouldAdvanceStage() {
		e.nextStage()
	}
	return true
}

// eligibleForDeal returns online seats that can cover the big blind
func (e *Engine) eligibleForDeal() []*Player {
	return e.seats.filter(func(p *Player) bool {
		return p.IsOnline() && p.Chips >= e.cfg.BigBlind()
	})
}

// StartGame deals a new hand. It returns false, leaving state unchanged, when a
// hand is already running or fewer than two seats can play.
func (e *Engine) StartGame() bool {
	if e.IsGameActive() {
		return false
	}
	eligible := e.eligibleForDeal()
	if len(eligible) < 2 {
		return false
	}

	for _, p := range e.seats.Players() {
		p.ResetHand()
	}
	for _, p := range eligible {
		p.InHand = true
	}

	e.handNumber++
	e.handID = uuid.NewString()
	e.pot = 0
	e.sidePots = nil
	e.departed = nil
	e.community = nil
	e.burned = nil
	e.showdownReveal = nil
	e.wait = nil
	e.grace = nil
	e.result = nil
	e.lastAggressor = -1
	e.headsUp = len(eligible) == 2

	if e.deckSource != nil {
		e.deck = e.deckSource()
	} else {
		e.deck = poker.NewDeck(e.rng)
	}

	dealer := e.seats.MoveDealerButton(e.rng)
	for _, p := range eligible {
		p.ReceiveCards(e.deal(2))
	}

	sb, bb := e.seats.Blinds()
	e.sbPos, e.bbPos = sb.Seat, bb.Seat
	e.postBlind(sb, e.cfg.SmallBlind(), TagSmall)
	e.postBlind(bb, e.cfg.BigBlind(), TagBig)
	e.currentBet = max(sb.CurrentBet, bb.CurrentBet)
	e.lastRaiseIncrement = e.cfg.MinBet
	clear(e.acted)
	e.stage = Preflop
	e.lastActionAt = e.clock.Now()
	e.version++

	e.logger.Info().
		Str("hand_id", e.handID).
		Int("hand", e.handNumber).
		Int("dealer", dealer).
		Int("sb", e.sbPos).
		Int("bb", e.bbPos).
		Int("players", len(eligible)).
		Msg("Hand started")

	if e.headsUp {
		e.setFirstToAct(sb.Seat, true)
	} else {
		e.setFirstToAct(bb.Seat, false)
	}
	e.recomputeSidePots()
	if e.needsRunOut() {
		e.runOut()
	}
	return true
}

func (e *Engine) postBlind(p *Player, amount int, tag string) {
	paid := p.Bet(amount)
	e.pot += paid
	p.LastAction = tag
	if p.Chips == 0 {
		p.LastAction = TagAllIn
	}
}

// deal draws n cards. Running out of cards breaks the dealing invariant and is fatal.
func (e *Engine) deal(n int) []poker.Card {
	cards, err := e.deck.Deal(n)
	if err != nil {
		panic(fmt.Sprintf("dealing %d cards: %v", n, err))
	}
	return cards
}

func (e *Engine) burn() {
	e.burned = append(e.burned, e.deal(1)...)
}

func (e *Engine) recomputeSidePots() {
	contribs := make([]contribution, 0, e.seats.Len()+len(e.departed))
	for _, p := range e.seats.InHand() {
		contribs = append(contribs, contribution{seat: p.Seat, total: p.TotalBet, folded: p.Folded})
	}
	contribs = append(contribs, e.departed...)
	e.sidePots = buildSidePots(contribs, e.pot)
}
