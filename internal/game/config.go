package game

import (
	"fmt"
	"time"
)

// Config holds the per-table rules the engine enforces.
type Config struct {
	MinBet              int           // big blind; small blind is MinBet/2
	MaxPlayers          int           // seat positions are 0..MaxPlayers-1
	ActionTimeout       time.Duration // silence on turn before an auto-action
	TurnDisconnectGrace time.Duration // wait after an on-turn disconnect before auto-acting
	SinglePlayerGrace   time.Duration // wait offered to the last online seat
}

// DefaultConfig returns the standard table rules
func DefaultConfig() Config {
	return Config{
		MinBet:              10,
		MaxPlayers:          10,
		ActionTimeout:       30 * time.Second,
		TurnDisconnectGrace: 5 * time.Second,
		SinglePlayerGrace:   20 * time.Second,
	}
}

// SmallBlind returns the small blind amount
func (c Config) SmallBlind() int { return c.MinBet / 2 }

// BigBlind returns the big blind amount
func (c Config) BigBlind() int { return c.MinBet }

// Validate checks the configuration is playable
func (c Config) Validate() error {
	if c.MinBet < 2 {
		return fmt.Errorf("min bet must be at least 2, got %d", c.MinBet)
	}
	if c.MaxPlayers < 2 || c.MaxPlayers > 10 {
		return fmt.Errorf("max players must be between 2 and 10, got %d", c.MaxPlayers)
	}
	if c.ActionTimeout <= 0 {
		return fmt.Errorf("action timeout must be positive")
	}
	if c.TurnDisconnectGrace <= 0 || c.TurnDisconnectGrace > c.ActionTimeout {
		return fmt.Errorf("turn disconnect grace must be positive and not exceed the action timeout")
	}
	if c.SinglePlayerGrace <= 0 {
		return fmt.Errorf("single player grace must be positive")
	}
	return nil
}
