// Package game implements the Texas Hold'em table engine.
//
// The main type is Engine, which owns the seats at one table and runs hands
// through the stage machine preflop → flop → turn → river → showdown → ended.
// A hand jumps straight to ended as soon as one unfolded seat remains.
//
// # Basic Usage
//
//	e, err := game.NewEngine(game.DefaultConfig(), game.WithRNG(randutil.New(42)))
//	e.AddPlayer("alice", "Alice", 1000, 0)
//	e.AddPlayer("bob", "Bob", 1000, 1)
//	e.StartGame()
//	res, err := e.PlayerAction("alice", game.Call, 0)
//	state := e.GetGameState("alice")
//
// # Concurrency
//
// Engine is not safe for concurrent use. Every mutation, including the periodic
// AutoFoldTimeoutPlayers sweep and connectivity events, must go through a single
// serialization point; the table package provides one. No call blocks waiting for
// player input: a stalled turn is resolved by the sweep.
//
// # Deterministic Testing
//
// Inject a quartz mock clock with WithClock to drive timeouts, a seeded RNG with
// WithRNG, and a stacked deck with WithDeckSource:
//
//	clk := quartz.NewMock(t)
//	deck := func() *poker.Deck { return poker.NewDeckFromCards(cards) }
//	e, _ := game.NewEngine(cfg, game.WithClock(clk), game.WithDeckSource(deck))
//
// # Pots
//
// Side pots are recomputed after every bet-affecting action. Cap levels are the
// distinct hand totals of unfolded seats; each layer collects every seat's
// contribution between the previous cap and its own, including folded and
// departed seats, so the layers always sum to the pot.
package game
