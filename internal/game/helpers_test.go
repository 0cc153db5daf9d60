package game

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/poker"
)

type seatSpec struct {
	user  string
	chips int
}

// newTestEngine seats players at positions 0..n-1 with a mock clock
func newTestEngine(t *testing.T, seats []seatSpec, opts ...Option) (*Engine, *quartz.Mock) {
	t.Helper()
	clk := quartz.NewMock(t)
	all := append([]Option{WithClock(clk), WithRNG(randutil.New(1)), WithTableID("test")}, opts...)
	e, err := NewEngine(DefaultConfig(), all...)
	require.NoError(t, err)
	for i, s := range seats {
		require.True(t, e.AddPlayer(s.user, s.user, s.chips, i))
	}
	return e, clk
}

// forceDealer makes the next StartGame put the button on seat
func forceDealer(e *Engine, seat int) {
	players := e.seats.Players()
	for i, p := range players {
		if p.Seat == seat {
			prev := players[(i-1+len(players))%len(players)]
			e.seats.dealerPosition = prev.Seat
			return
		}
	}
}

// stackedDeck deals holes to seats in seat order, then the board, with unused
// cards as burns.
func stackedDeck(t *testing.T, holes []string, board string) func() *poker.Deck {
	t.Helper()
	used := make(map[poker.Card]bool)
	var holeCards [][]poker.Card
	for _, h := range holes {
		cards := poker.MustParseCards(h)
		require.Len(t, cards, 2)
		for _, c := range cards {
			used[c] = true
		}
		holeCards = append(holeCards, cards)
	}
	boardCards := poker.MustParseCards(board)
	require.Len(t, boardCards, 5)
	for _, c := range boardCards {
		used[c] = true
	}
	var spare []poker.Card
	for _, c := range poker.Fresh() {
		if !used[c] {
			spare = append(spare, c)
		}
	}

	var order []poker.Card
	for _, h := range holeCards {
		order = append(order, h...)
	}
	order = append(order, spare[0])
	order = append(order, boardCards[:3]...)
	order = append(order, spare[1], boardCards[3], spare[2], boardCards[4])
	order = append(order, spare[3:]...)

	return func() *poker.Deck { return poker.NewDeckFromCards(order) }
}

// act plays an action for whoever is on turn
func act(t *testing.T, e *Engine, action Action, amount int) ActionResult {
	t.Helper()
	p := e.CurrentPlayer()
	require.NotNil(t, p, "nobody is on turn at %s", e.Stage())
	res, err := e.PlayerAction(p.UserID, action, amount)
	require.NoError(t, err, "%s %s %d", p.UserID, action, amount)
	return res
}

// checkOrCallDown passively plays the hand to completion
func checkOrCallDown(t *testing.T, e *Engine) {
	t.Helper()
	for i := 0; e.IsGameActive(); i++ {
		require.Less(t, i, 100, "hand did not finish")
		p := e.CurrentPlayer()
		require.NotNil(t, p)
		if p.CurrentBet < e.CurrentBet() {
			act(t, e, Call, 0)
		} else {
			act(t, e, Check, 0)
		}
	}
}

func advance(t *testing.T, clk *quartz.Mock, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clk.Advance(d).MustWait(ctx)
}

func sumChips(e *Engine) int {
	total := 0
	for _, p := range e.seats.Players() {
		total += p.Chips
	}
	return total
}

func sumPots(pots []SidePot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}
