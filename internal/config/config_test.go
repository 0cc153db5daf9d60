package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	c, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "localhost:8080", c.Server.Address)
	assert.Equal(t, 500*time.Millisecond, c.SweepInterval())
	require.Len(t, c.Tables, 1)

	main := c.Table("main")
	require.NotNil(t, main)
	assert.True(t, main.AutoStart)
	assert.Equal(t, 1000, main.StartingChips)

	ec := main.EngineConfig()
	assert.Equal(t, 10, ec.MinBet)
	assert.Equal(t, 30*time.Second, ec.ActionTimeout)
	assert.Equal(t, 5*time.Second, ec.TurnDisconnectGrace)
	assert.Equal(t, 20*time.Second, ec.SinglePlayerGrace)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "holdemtable.hcl")
	src := `
server {
  address           = ":9000"
  log_level         = "debug"
  ledger_path       = "chips.json"
  sweep_interval_ms = 250
}

table "high" {
  min_bet            = 100
  max_players        = 6
  starting_chips     = 5000
  action_timeout_s   = 15
  auto_start         = true
  next_hand_delay_ms = 2000
}

table "low" {}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, ":9000", c.Server.Address)
	assert.Equal(t, "chips.json", c.Server.LedgerPath)
	assert.Equal(t, 250*time.Millisecond, c.SweepInterval())

	high := c.Table("high")
	require.NotNil(t, high)
	assert.Equal(t, 100, high.EngineConfig().MinBet)
	assert.Equal(t, 50, high.EngineConfig().SmallBlind())
	assert.Equal(t, 15*time.Second, high.EngineConfig().ActionTimeout)
	assert.Equal(t, 5*time.Second, high.EngineConfig().TurnDisconnectGrace, "unset values take defaults")
	assert.Equal(t, 2*time.Second, high.NextHandDelay())

	low := c.Table("low")
	require.NotNil(t, low)
	assert.False(t, low.AutoStart)
	assert.Equal(t, 10, low.MaxPlayers)
	assert.Nil(t, c.Table("missing"))
}

func TestParseWithoutServerBlock(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte(`table "solo" { min_bet = 20 }`), "inline.hcl")
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, "info", c.Server.LogLevel)
	assert.Equal(t, 20, c.Table("solo").MinBet)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte(`server {`), "broken.hcl")
	require.Error(t, err)

	_, err = Parse([]byte(`table "x" { bogus = 1 }`), "unknown.hcl")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"odd log level", `server { log_level = "loud" }`, "invalid log_level"},
		{"duplicate table", `
table "a" {}
table "a" {}`, "declared twice"},
		{"too many players", `table "a" { max_players = 12 }`, "table a"},
		{"tiny min bet", `table "a" { min_bet = 1 }`, "table a"},
		{"short stack", `table "a" {
  min_bet        = 100
  starting_chips = 50
}`, "starting_chips"},
		{"grace beyond timeout", `table "a" {
  action_timeout_s = 3
  turn_grace_s     = 10
}`, "table a"},
		{"negative delay", `table "a" { next_hand_delay_ms = -1 }`, "next_hand_delay_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := Parse([]byte(tt.src), "test.hcl")
			require.NoError(t, err)
			err = c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
