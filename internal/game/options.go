package game

import (
	rand "math/rand/v2"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/holdemtable/poker"
)

// Option configures an Engine during creation.
type Option func(*engineOptions)

type engineOptions struct {
	clock      quartz.Clock
	rng        *rand.Rand
	logger     zerolog.Logger
	deckSource func() *poker.Deck
	tableID    string
}

// WithClock sets the clock used for action timeouts and grace windows.
// Default is the real clock.
func WithClock(clock quartz.Clock) Option {
	return func(o *engineOptions) {
		o.clock = clock
	}
}

// WithRNG sets the random source for shuffling and the bootstrap dealer pick.
func WithRNG(rng *rand.Rand) Option {
	return func(o *engineOptions) {
		o.rng = rng
	}
}

// WithLogger sets the engine's logger. Default is a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithDeckSource supplies the deck for each new hand, overriding the RNG for
// deck creation. Used to stack decks in tests.
func WithDeckSource(source func() *poker.Deck) Option {
	return func(o *engineOptions) {
		o.deckSource = source
	}
}

// WithTableID tags logs, hand results and snapshots with a table id.
func WithTableID(id string) Option {
	return func(o *engineOptions) {
		o.tableID = id
	}
}
