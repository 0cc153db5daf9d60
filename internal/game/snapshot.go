package game

import (
	"slices"

	"github.com/lox/holdemtable/poker"
)

// PlayerView is one seat as seen by a particular viewer
type PlayerView struct {
	UserID           string       `json:"userId"`
	Nickname         string       `json:"nickname"`
	Seat             int          `json:"seat"`
	Chips            int          `json:"chips"`
	CurrentBet       int          `json:"currentBet"`
	TotalBet         int          `json:"totalBet"`
	Folded           bool         `json:"folded"`
	AllIn            bool         `json:"allIn"`
	InHand           bool         `json:"inHand"`
	LastAction       string       `json:"lastAction,omitempty"`
	HoleCards        []poker.Card `json:"holeCards,omitempty"` // only when visible to the viewer
	CardCount        int          `json:"cardCount"`
	ConnectionStatus string       `json:"connectionStatus"`
	Win              bool         `json:"win"`
	HandDelta        int          `json:"handDelta"`
	IsDealer         bool         `json:"isDealer"`
	IsCurrent        bool         `json:"isCurrent"`
}

// SidePotView is a side-pot layer in a snapshot
type SidePotView struct {
	SidePot
	IsMain bool `json:"isMain"`
}

// WaitView describes an armed single-player wait
type WaitView struct {
	UserID           string  `json:"userId"`
	Seat             int     `json:"seat"`
	SecondsRemaining float64 `json:"secondsRemaining"`
}

// GameState is a consistent, viewer-specific snapshot of the table
type GameState struct {
	TableID               string        `json:"tableId,omitempty"`
	HandID                string        `json:"handId,omitempty"`
	HandNumber            int           `json:"handNumber"`
	Version               uint64        `json:"version"`
	Stage                 Stage         `json:"stage"`
	IsGameActive          bool          `json:"isGameActive"`
	CommunityCards        []poker.Card  `json:"communityCards"`
	Pot                   int           `json:"pot"`
	CurrentBet            int           `json:"currentBet"`
	MinBet                int           `json:"minBet"`
	SmallBlind            int           `json:"smallBlind"`
	BigBlind              int           `json:"bigBlind"`
	DealerPosition        int           `json:"dealerPosition"`
	SmallBlindPosition    int           `json:"smallBlindPosition"`
	BigBlindPosition      int           `json:"bigBlindPosition"`
	CurrentPlayerPosition int           `json:"currentPlayerPosition"`
	CurrentPlayerID       string        `json:"currentPlayerId,omitempty"`
	Players               []PlayerView  `json:"players"`
	SidePots              []SidePotView `json:"sidePots"`
	LastRaiseIncrement    int           `json:"lastRaiseIncrement"`
	MinRaiseTo            int           `json:"minRaiseTo,omitempty"` // for the viewer when on turn
	LastAggressor         int           `json:"lastAggressor"`
	ActedPositions        []int         `json:"actedPositions"`
	ShowdownReveal        []Reveal      `json:"showdownReveal,omitempty"`
	TimeRemaining         float64       `json:"timeRemaining"`
	IsTimeout             bool          `json:"isTimeout"`
	SinglePlayerWait      *WaitView     `json:"singlePlayerWait,omitempty"`
	Winner                string        `json:"winner,omitempty"`
	Result                *HandResult   `json:"result,omitempty"`
}

// GetGameState builds a snapshot for viewer. The viewer sees their own hole
// cards and any revealed at showdown; an empty viewer gets the observer view.
func (e *Engine) GetGameState(viewer string) GameState {
	st := GameState{
		TableID:               e.tableID,
		HandID:                e.handID,
		HandNumber:            e.handNumber,
		Version:               e.version,
		Stage:                 e.stage,
		IsGameActive:          e.IsGameActive(),
		CommunityCards:        slices.Clone(e.community),
		Pot:                   e.pot,
		CurrentBet:            e.currentBet,
		MinBet:                e.cfg.MinBet,
		SmallBlind:            e.cfg.SmallBlind(),
		BigBlind:              e.cfg.BigBlind(),
		DealerPosition:        e.seats.DealerPosition(),
		SmallBlindPosition:    e.sbPos,
		BigBlindPosition:      e.bbPos,
		CurrentPlayerPosition: -1,
		LastRaiseIncrement:    e.lastRaiseIncrement,
		LastAggressor:         e.lastAggressor,
		ShowdownReveal:        slices.Clone(e.showdownReveal),
		Result:                e.result,
	}
	if st.CommunityCards == nil {
		st.CommunityCards = []poker.Card{}
	}

	current := e.CurrentPlayer()
	if current != nil {
		st.CurrentPlayerPosition = current.Seat
		st.CurrentPlayerID = current.UserID
		st.TimeRemaining, _ = e.TimeRemaining()
		st.IsTimeout = st.TimeRemaining == 0
		if current.UserID == viewer {
			st.MinRaiseTo = e.MinRaiseTo(current)
		}
	}

	revealed := make(map[int]bool, len(e.showdownReveal))
	for _, r := range e.showdownReveal {
		revealed[r.Seat] = true
	}
	st.Players = make([]PlayerView, 0, e.seats.Len())
	for _, p := range e.seats.Players() {
		v := PlayerView{
			UserID:           p.UserID,
			Nickname:         p.Nickname,
			Seat:             p.Seat,
			Chips:            p.Chips,
			CurrentBet:       p.CurrentBet,
			TotalBet:         p.TotalBet,
			Folded:           p.Folded,
			AllIn:            p.IsAllIn(),
			InHand:           p.InHand,
			LastAction:       p.LastAction,
			CardCount:        len(p.HoleCards),
			ConnectionStatus: p.Connectivity().String(),
			Win:              p.Win,
			HandDelta:        p.HandDelta(),
			IsDealer:         p.Seat == e.seats.DealerPosition(),
			IsCurrent:        current != nil && current.Seat == p.Seat,
		}
		if (viewer != "" && p.UserID == viewer) || revealed[p.Seat] {
			v.HoleCards = slices.Clone(p.HoleCards)
		}
		st.Players = append(st.Players, v)
	}

	st.SidePots = make([]SidePotView, 0, len(e.sidePots))
	for i, sp := range e.sidePots {
		st.SidePots = append(st.SidePots, SidePotView{SidePot: sp, IsMain: i == len(e.sidePots)-1})
	}

	st.ActedPositions = make([]int, 0, len(e.acted))
	for seat, ok := range e.acted {
		if ok {
			st.ActedPositions = append(st.ActedPositions, seat)
		}
	}
	slices.Sort(st.ActedPositions)

	if e.wait != nil {
		st.SinglePlayerWait = &WaitView{
			UserID:           e.wait.UserID,
			Seat:             e.wait.Seat,
			SecondsRemaining: max(e.wait.Deadline.Sub(e.clock.Now()).Seconds(), 0),
		}
	}
	if e.result != nil && len(e.result.Winners) > 0 {
		st.Winner = e.result.Winners[0]
	}
	return st
}
