package game

import (
	"time"

	"github.com/lox/holdemtable/poker"
)

// Connectivity is the seat's connection state
type Connectivity uint8

const (
	Connected Connectivity = iota
	Disconnected
	// Spectating seats went offline mid-hand and were auto-folded
	Spectating
)

func (c Connectivity) String() string {
	switch c {
	case Connected:
		return "online"
	case Disconnected:
		return "offline"
	case Spectating:
		return "spectating"
	default:
		return "unknown"
	}
}

// Action tags recorded in Player.LastAction
const (
	TagFold      = "fold"
	TagCheck     = "check"
	TagCall      = "call"
	TagRaise     = "raise"
	TagAllIn     = "all-in"
	TagSmall     = "sb"
	TagBig       = "bb"
	TagAutoFold  = "auto-fold"
	TagAutoCheck = "auto-check"
)

// Player represents a seated player. Chips persist across hands; the remaining
// fields are reset at the start of every hand.
type Player struct {
	UserID   string
	Nickname string
	Seat     int
	Chips    int

	CurrentBet    int // this street
	TotalBet      int // this hand
	HoleCards     []poker.Card
	Folded        bool
	InHand        bool // dealt into the current hand
	LastAction    string
	Win           bool
	StartingChips int

	conn           Connectivity
	disconnectedAt time.Time
}

// NewPlayer creates a connected player
func NewPlayer(userID, nickname string, chips, seat int) *Player {
	return &Player{
		UserID:        userID,
		Nickname:      nickname,
		Seat:          seat,
		Chips:         chips,
		StartingChips: chips,
	}
}

// IsAllIn reports whether the player has committed the whole stack
func (p *Player) IsAllIn() bool {
	return p.Chips == 0 && !p.Folded && p.InHand
}

// IsActive reports whether the player is dealt in and has not folded
func (p *Player) IsActive() bool {
	return p.InHand && !p.Folded
}

// IsPlaying reports whether the player still makes decisions this hand
func (p *Player) IsPlaying() bool {
	return p.IsActive() && !p.IsAllIn()
}

// Connectivity returns the connection state
func (p *Player) Connectivity() Connectivity { return p.conn }

// IsOnline reports whether the player is connected
func (p *Player) IsOnline() bool { return p.conn == Connected }

// DisconnectedSince returns when the player went offline (zero when online)
func (p *Player) DisconnectedSince() time.Time { return p.disconnectedAt }

// HandDelta returns the chip change since the hand started
func (p *Player) HandDelta() int { return p.Chips - p.StartingChips }

// ReceiveCards gives the player hole cards
func (p *Player) ReceiveCards(cards []poker.Card) {
	p.HoleCards = append(p.HoleCards[:0], cards...)
}

// Fold folds the hand. Folding is terminal for the hand.
func (p *Player) Fold() {
	p.Folded = true
	p.LastAction = TagFold
}

// Bet moves up to amount chips from the stack into the pot, clamping to the
// stack (auto all-in). It returns the chips actually committed.
func (p *Player) Bet(amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}
	if amount < 0 {
		amount = 0
	}
	p.Chips -= amount
	p.CurrentBet += amount
	p.TotalBet += amount
	return amount
}

// Call matches tableBet, returning the chips committed
func (p *Player) Call(tableBet int) int {
	return p.Bet(tableBet - p.CurrentBet)
}

// Raise raises to a street total of target, returning the chips committed
func (p *Player) Raise(target int) int {
	return p.Bet(target - p.CurrentBet)
}

// Check records a check
func (p *Player) Check() {
	p.LastAction = TagCheck
}

// ResetRound clears street state. Folded persists across streets.
func (p *Player) ResetRound() {
	p.CurrentBet = 0
	p.LastAction = ""
}

// ResetHand clears hand state and snapshots the starting stack
func (p *Player) ResetHand() {
	p.ResetRound()
	p.HoleCards = nil
	p.TotalBet = 0
	p.Folded = false
	p.InHand = false
	p.Win = false
	p.StartingChips = p.Chips
	if p.conn == Spectating {
		p.conn = Disconnected
	}
}

func (p *Player) setConnected() {
	p.conn = Connected
	p.disconnectedAt = time.Time{}
}

func (p *Player) setDisconnected(now time.Time) {
	if p.conn == Connected {
		p.disconnectedAt = now
	}
	p.conn = Disconnected
}

func (p *Player) setSpectating(now time.Time) {
	if p.conn == Connected {
		p.disconnectedAt = now
	}
	p.conn = Spectating
	p.Folded = true
}
