package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"

	"github.com/lox/holdemtable/cmd/holdemtable/shared"
	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/ledger"
	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/internal/table"
)

const maxStepsPerHand = 1000

// SimCmd plays random hands at a single table
type SimCmd struct {
	Hands   int    `default:"1000" help:"Number of hands to play"`
	Players int    `default:"6" help:"Seated players"`
	Chips   int    `default:"1000" help:"Starting chips per player"`
	MinBet  int    `default:"10" help:"Big blind"`
	Seed    int64  `help:"Deterministic seed (0 picks one)"`
	Ledger  string `help:"Write results to this chip ledger file"`
	Debug   bool   `help:"Log every engine action"`
	Quiet   bool   `short:"q" help:"Only print the summary"`

	out io.Writer
}

func (c *SimCmd) Run() error {
	out := c.out
	if out == nil {
		out = os.Stderr
	}
	level := "info"
	if c.Quiet {
		level = "warn"
	}
	narrator := shared.SetupCharmLogger(out, level).WithPrefix("sim")

	logger := zerolog.Nop()
	if c.Debug {
		logger = shared.SetupLogger(true)
	}

	rules := game.DefaultConfig()
	rules.MinBet = c.MinBet
	rules.MaxPlayers = max(c.Players, 2)

	var store ledger.ChipStore = ledger.NewMemoryStore()
	if c.Ledger != "" {
		fs, err := ledger.OpenFileStore(c.Ledger, logger)
		if err != nil {
			return err
		}
		store = fs
	}

	rng, seed := randutil.NewUnseeded(c.Seed)
	narrator.Info("Starting simulation", "hands", c.Hands, "players", c.Players, "seed", seed)

	tbl, err := table.New(table.Settings{
		ID:            "sim",
		Rules:         rules,
		StartingChips: c.Chips,
	},
		table.WithStore(store),
		table.WithLogger(logger),
		table.WithRNG(randutil.Derive(seed, 0)),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for i := range c.Players {
		name := fmt.Sprintf("p%d", i+1)
		if _, err := tbl.Join(ctx, name, name); err != nil {
			return fmt.Errorf("seat %s: %w", name, err)
		}
	}
	total := chipTotal(tbl.State(""))

	played := 0
	for hand := 1; hand <= c.Hands; hand++ {
		if err := tbl.Start("p1"); err != nil {
			if errors.Is(err, table.ErrCannotStart) {
				narrator.Info("Too few players can cover the blinds", "hand", hand)
				break
			}
			return err
		}
		if err := playHand(tbl, rng); err != nil {
			return fmt.Errorf("hand %d: %w", hand, err)
		}
		played++

		v := tbl.State("")
		if got := chipTotal(v); got != total || v.Pot != 0 {
			return fmt.Errorf("hand %d: chips not conserved: have %d in stacks and %d in pot, want %d", hand, got, v.Pot, total)
		}
		narrateResult(narrator, v)
	}

	summary := tbl.State("")
	for _, p := range summary.Players {
		narrator.Warn("Final stack", "player", p.UserID, "chips", p.Chips, "net", p.Chips-c.Chips)
	}
	narrator.Warn("Simulation complete", "hands", played, "chips", total, "seed", seed)
	return nil
}

// playHand drives random legal actions until the hand ends
func playHand(tbl *table.Table, rng *rand.Rand) error {
	for step := 0; ; step++ {
		v := tbl.State("")
		if !v.IsGameActive {
			return nil
		}
		if step >= maxStepsPerHand {
			return fmt.Errorf("no result after %d actions", step)
		}
		onTurn := v.CurrentPlayerID
		action, amount := chooseAction(rng, tbl.State(onTurn))
		if _, err := tbl.Act(onTurn, action, amount); err != nil {
			return fmt.Errorf("%s %s %d rejected: %w", onTurn, action, amount, err)
		}
	}
}

// chooseAction picks a legal action for the seat on turn in v
func chooseAction(rng *rand.Rand, v table.View) (game.Action, int) {
	var me game.PlayerView
	for _, p := range v.Players {
		if p.UserID == v.CurrentPlayerID {
			me = p
		}
	}
	owed := v.CurrentBet - me.CurrentBet
	maxTo := me.CurrentBet + me.Chips

	switch r := rng.IntN(100); {
	case r < 12 && owed > 0:
		return game.Fold, 0
	case r < 30 && maxTo > v.CurrentBet:
		minTo := min(v.MinRaiseTo, maxTo)
		// Mostly min-raises, sometimes all-in
		if rng.IntN(8) == 0 {
			return game.Raise, maxTo
		}
		return game.Raise, minTo + rng.IntN(min(maxTo-minTo, v.BigBlind*4)+1)
	case owed > 0:
		return game.Call, 0
	}
	return game.Check, 0
}

func chipTotal(v table.View) int {
	total := v.Pot
	for _, p := range v.Players {
		total += p.Chips
	}
	return total
}

func narrateResult(narrator *log.Logger, v table.View) {
	r := v.Result
	if r == nil {
		return
	}
	board := make([]string, len(r.Board))
	for i, c := range r.Board {
		board[i] = c.String()
	}
	pot := 0
	for _, p := range r.Pots {
		pot += p.Amount
	}
	narrator.Info("Hand complete",
		"hand", r.HandNumber,
		"reason", r.Reason,
		"winners", strings.Join(r.Winners, ","),
		"pot", pot,
		"board", strings.Join(board, " "),
	)
}
