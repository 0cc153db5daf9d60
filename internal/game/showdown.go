package game

import (
	"strings"

	"github.com/lox/holdemtable/poker"
)

// checkInstantWin ends the hand when a single seat is left unfolded
func (e *Engine) checkInstantWin() bool {
	if !e.IsGameActive() {
		return false
	}
	active := e.seats.ActivePlayers()
	if len(active) != 1 {
		return false
	}
	e.awardWholePot(active[0], EndInstantWin)
	return true
}

// awardWholePot gives the entire pot to p without a showdown
func (e *Engine) awardWholePot(p *Player, reason EndReason) {
	e.recomputeSidePots()
	amount := e.pot
	p.Chips += amount
	p.Win = true

	pot := SidePot{Cap: p.TotalBet, Amount: amount, Eligible: []int{p.Seat}}
	e.finishHand(reason, []PotResult{{
		SidePot: pot,
		Winners: []int{p.Seat},
		Shares:  map[int]int{p.Seat: amount},
	}})
}

// showdown reveals every unfolded hand and settles each side-pot layer
func (e *Engine) showdown() {
	e.stage = Showdown
	e.currentPos = -1
	e.recomputeSidePots()

	evals := make(map[int]poker.Evaluation)
	e.showdownReveal = e.showdownReveal[:0]
	for _, p := range e.seats.ActivePlayers() {
		ev := poker.Evaluate(p.HoleCards, e.community)
		evals[p.Seat] = ev
		e.showdownReveal = append(e.showdownReveal, Reveal{
			Seat:         p.Seat,
			UserID:       p.UserID,
			Nickname:     p.Nickname,
			HoleCards:    p.HoleCards,
			Hand:         ev,
			Disconnected: !p.IsOnline(),
		})
	}

	dealer := e.seats.DealerPosition()
	results := make([]PotResult, 0, len(e.sidePots))
	for _, pot := range e.sidePots {
		var winners []int
		if len(pot.Eligible) == 1 {
			winners = pot.Eligible
		} else {
			winners = bestHands(pot.Eligible, evals)
		}
		winners = ClockwiseFrom(dealer, winners)
		shares := splitPot(pot.Amount, winners)
		for seat, amount := range shares {
			if p := e.seats.BySeat(seat); p != nil {
				p.Chips += amount
				p.Win = true
			}
		}
		results = append(results, PotResult{SidePot: pot, Winners: winners, Shares: shares})
	}

	e.finishHand(EndShowdown, results)
}

// bestHands returns the seats holding the strongest evaluation
func bestHands(seats []int, evals map[int]poker.Evaluation) []int {
	var best []int
	var top poker.Evaluation
	for _, seat := range seats {
		ev, ok := evals[seat]
		if !ok {
			continue
		}
		switch {
		case len(best) == 0:
			best, top = []int{seat}, ev
		case poker.Compare(ev, top) > 0:
			best, top = []int{seat}, ev
		case poker.Compare(ev, top) == 0:
			best = append(best, seat)
		}
	}
	return best
}

// finishHand zeroes the pot and records the result. The stage ends at Ended.
func (e *Engine) finishHand(reason EndReason, pots []PotResult) {
	res := &HandResult{
		TableID:    e.tableID,
		HandID:     e.handID,
		HandNumber: e.handNumber,
		Reason:     reason,
		Pots:       pots,
		Deltas:     make(map[string]int),
		Chips:      make(map[string]int),
		Board:      append([]poker.Card(nil), e.community...),
		EndedAt:    e.clock.Now(),
	}
	if len(pots) > 0 {
		for _, seat := range pots[len(pots)-1].Winners {
			if p := e.seats.BySeat(seat); p != nil {
				res.Winners = append(res.Winners, p.UserID)
			}
		}
	}
	for _, p := range e.seats.Players() {
		res.Chips[p.UserID] = p.Chips
		if p.InHand {
			res.Deltas[p.UserID] = p.HandDelta()
		}
	}

	e.pot = 0
	e.stage = Ended
	e.currentPos = -1
	e.wait = nil
	e.grace = nil
	e.result = res
	e.version++

	e.logger.Info().
		Str("hand_id", e.handID).
		Str("reason", string(reason)).
		Strs("winners", res.Winners).
		Str("board", cardsString(e.community)).
		Msg("Hand complete")
}

// VoluntaryReveal shows a player's hole cards after the hand. Only allowed at
// showdown or once the hand has ended.
func (e *Engine) VoluntaryReveal(userID string) bool {
	if e.stage != Showdown && e.stage != Ended {
		return false
	}
	p := e.seats.ByUser(userID)
	if p == nil || !p.InHand || len(p.HoleCards) != 2 {
		return false
	}
	for _, r := range e.showdownReveal {
		if r.Seat == p.Seat {
			return true
		}
	}
	e.showdownReveal = append(e.showdownReveal, Reveal{
		Seat:         p.Seat,
		UserID:       p.UserID,
		Nickname:     p.Nickname,
		HoleCards:    p.HoleCards,
		Hand:         poker.Evaluate(p.HoleCards, e.community),
		Disconnected: !p.IsOnline(),
		Voluntary:    true,
	})
	e.version++
	return true
}

func cardsString(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
