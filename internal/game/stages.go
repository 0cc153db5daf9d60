package game

// nextStage deals the next street (or settles after the river) and opens its
// betting round. When nobody is left to bet, the board is run out.
func (e *Engine) nextStage() {
	switch e.stage {
	case Preflop:
		e.burn()
		e.community = append(e.community, e.deal(3)...)
		e.stage = Flop
	case Flop:
		e.burn()
		e.community = append(e.community, e.deal(1)...)
		e.stage = Turn
	case Turn:
		e.burn()
		e.community = append(e.community, e.deal(1)...)
		e.stage = River
	case River:
		e.showdown()
		return
	default:
		return
	}
	e.version++
	e.logger.Debug().Str("stage", e.stage.String()).Str("board", cardsString(e.community)).Msg("Street dealt")

	e.startBettingRound()
	if e.needsRunOut() {
		e.runOut()
	}
}

func (e *Engine) startBettingRound() {
	for _, p := range e.seats.InHand() {
		if p.IsAllIn() {
			// Keep the all-in marker visible across streets
			p.CurrentBet = 0
			continue
		}
		p.ResetRound()
	}
	e.currentBet = 0
	e.lastRaiseIncrement = e.cfg.MinBet
	clear(e.acted)

	if e.headsUp {
		e.setFirstToAct(e.bbPos, true)
	} else {
		e.setFirstToAct(e.seats.DealerPosition(), false)
	}
	e.lastActionAt = e.clock.Now()
}

// setFirstToAct puts the first seat at or after from (inclusive) or strictly
// after it on turn.
func (e *Engine) setFirstToAct(from int, inclusive bool) {
	if inclusive {
		if p := e.seats.BySeat(from); p != nil && mustAct(p) {
			e.currentPos = p.Seat
			return
		}
	}
	if p := e.seats.NextPlayer(from); p != nil {
		e.currentPos = p.Seat
		return
	}
	e.currentPos = -1
}

// needsRunOut reports whether betting is over for the hand: none of the seats
// owing a decision is online, or fewer than two seats can still bet and nobody
// faces an unmatched bet.
func (e *Engine) needsRunOut() bool {
	if !e.IsGameActive() {
		return false
	}
	pending := e.stillMustAct()
	if len(pending) == 0 {
		return true
	}
	if len(e.seats.PlayingPlayers()) >= 2 {
		return false
	}
	for _, p := range pending {
		if p.CurrentBet < e.currentBet {
			return false
		}
	}
	return true
}

// runOut deals the remaining streets without betting and settles the hand
func (e *Engine) runOut() {
	e.logger.Debug().Str("stage", e.stage.String()).Msg("Running out the board")
	e.currentPos = -1
	for e.stage < River {
		switch e.stage {
		case Preflop:
			e.burn()
			e.community = append(e.community, e.deal(3)...)
		default:
			e.burn()
			e.community = append(e.community, e.deal(1)...)
		}
		e.stage++
	}
	e.version++
	e.showdown()
}
