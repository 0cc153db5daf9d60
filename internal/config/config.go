// Package config loads the HCL configuration file for holdemtable.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdemtable/internal/game"
)

// Config represents the complete configuration file
type Config struct {
	Server *ServerSettings `hcl:"server,block"`
	Tables []TableConfig   `hcl:"table,block"`
}

// ServerSettings contains process-level configuration
type ServerSettings struct {
	Address         string `hcl:"address,optional"`
	LogLevel        string `hcl:"log_level,optional"`
	LedgerPath      string `hcl:"ledger_path,optional"`
	SweepIntervalMS int    `hcl:"sweep_interval_ms,optional"`
}

// TableConfig defines one table
type TableConfig struct {
	ID                 string `hcl:"id,label"`
	MinBet             int    `hcl:"min_bet,optional"`
	MaxPlayers         int    `hcl:"max_players,optional"`
	StartingChips      int    `hcl:"starting_chips,optional"`
	ActionTimeoutS     int    `hcl:"action_timeout_s,optional"`
	TurnGraceS         int    `hcl:"turn_grace_s,optional"`
	SinglePlayerGraceS int    `hcl:"single_player_grace_s,optional"`
	AutoStart          bool   `hcl:"auto_start,optional"`
	NextHandDelayMS    int    `hcl:"next_hand_delay_ms,optional"`
}

const (
	defaultAddress       = "localhost:8080"
	defaultLogLevel      = "info"
	defaultSweepInterval = 500
	defaultStartingChips = 1000
)

// Default returns the configuration used when no file is present
func Default() *Config {
	c := &Config{Tables: []TableConfig{{ID: "main", AutoStart: true}}}
	c.applyDefaults()
	return c
}

// Load reads configuration from an HCL file. A missing file yields Default().
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

// Parse decodes configuration from HCL source held in memory
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var config Config
	if diags := gohcl.DecodeBody(body, nil, &config); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	if len(config.Tables) == 0 {
		config.Tables = []TableConfig{{ID: "main", AutoStart: true}}
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Server.SweepIntervalMS == 0 {
		c.Server.SweepIntervalMS = defaultSweepInterval
	}

	base := game.DefaultConfig()
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.MinBet == 0 {
			t.MinBet = base.MinBet
		}
		if t.MaxPlayers == 0 {
			t.MaxPlayers = base.MaxPlayers
		}
		if t.StartingChips == 0 {
			t.StartingChips = defaultStartingChips
		}
		if t.ActionTimeoutS == 0 {
			t.ActionTimeoutS = int(base.ActionTimeout / time.Second)
		}
		if t.TurnGraceS == 0 {
			t.TurnGraceS = int(base.TurnDisconnectGrace / time.Second)
		}
		if t.SinglePlayerGraceS == 0 {
			t.SinglePlayerGraceS = int(base.SinglePlayerGrace / time.Second)
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.SweepIntervalMS <= 0 {
		return fmt.Errorf("sweep_interval_ms must be positive")
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.Server.LogLevel)
	}

	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if seen[t.ID] {
			return fmt.Errorf("table %s: declared twice", t.ID)
		}
		seen[t.ID] = true

		if err := t.EngineConfig().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", t.ID, err)
		}
		if t.StartingChips < t.MinBet {
			return fmt.Errorf("table %s: starting_chips must cover the big blind", t.ID)
		}
		if t.NextHandDelayMS < 0 {
			return fmt.Errorf("table %s: next_hand_delay_ms must not be negative", t.ID)
		}
	}
	return nil
}

// SweepInterval returns how often tables check for expired timers
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Server.SweepIntervalMS) * time.Millisecond
}

// Table returns a table configuration by id
func (c *Config) Table(id string) *TableConfig {
	for i := range c.Tables {
		if c.Tables[i].ID == id {
			return &c.Tables[i]
		}
	}
	return nil
}

// EngineConfig converts the table block into engine settings
func (t TableConfig) EngineConfig() game.Config {
	return game.Config{
		MinBet:              t.MinBet,
		MaxPlayers:          t.MaxPlayers,
		ActionTimeout:       time.Duration(t.ActionTimeoutS) * time.Second,
		TurnDisconnectGrace: time.Duration(t.TurnGraceS) * time.Second,
		SinglePlayerGrace:   time.Duration(t.SinglePlayerGraceS) * time.Second,
	}
}

// NextHandDelay returns the pause between hands when auto_start is on
func (t TableConfig) NextHandDelay() time.Duration {
	return time.Duration(t.NextHandDelayMS) * time.Millisecond
}
