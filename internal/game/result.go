package game

import (
	"time"

	"github.com/lox/holdemtable/poker"
)

// EndReason records how a hand finished
type EndReason string

const (
	EndInstantWin EndReason = "instant_win"
	EndShowdown   EndReason = "showdown"
	EndForced     EndReason = "forced_end"
)

// PotResult is the settlement of one side-pot layer
type PotResult struct {
	SidePot
	Winners []int       `json:"winners"`
	Shares  map[int]int `json:"shares"`
}

// HandResult summarises a finished hand
type HandResult struct {
	TableID    string         `json:"tableId,omitempty"`
	HandID     string         `json:"handId"`
	HandNumber int            `json:"handNumber"`
	Reason     EndReason      `json:"reason"`
	Winners    []string       `json:"winners"` // user ids of the main pot winners
	Pots       []PotResult    `json:"pots"`
	Deltas     map[string]int `json:"deltas"` // chip change per user id
	Chips      map[string]int `json:"chips"`  // final stacks per user id
	Board      []poker.Card   `json:"board"`
	EndedAt    time.Time      `json:"endedAt"`
}
