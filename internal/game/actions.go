package game

import "fmt"

// PlayerAction applies a decision from the seat on turn. For Raise, amount is
// the street total being raised to. A rejected action returns an *ActionError
// and leaves the engine untouched, so retrying it yields the same error.
func (e *Engine) PlayerAction(userID string, action Action, amount int) (ActionResult, error) {
	if !e.IsGameActive() {
		return ActionResult{}, ErrHandNotActive
	}
	p := e.seats.ByUser(userID)
	if p == nil || !p.InHand {
		return ActionResult{}, ErrUnknownPlayer
	}
	if p.Folded {
		return ActionResult{}, ErrAlreadyFolded
	}
	if e.currentPos != p.Seat {
		return ActionResult{}, ErrNotYourTurn
	}
	// Turns stay put until the sole online seat decides or the wait expires
	if e.wait != nil {
		return ActionResult{}, ErrAwaitingDecision
	}

	var res ActionResult
	switch action {
	case Fold:
		p.Fold()
		res.Message = fmt.Sprintf("%s folds", p.Nickname)

	case Check:
		if p.CurrentBet != e.currentBet {
			return ActionResult{}, actionErrorf(CodeCannotCheck,
				"cannot check, %d to call", e.currentBet-p.CurrentBet)
		}
		p.Check()
		if p.IsPlaying() {
			e.acted[p.Seat] = true
		}
		res.Message = fmt.Sprintf("%s checks", p.Nickname)

	case Call:
		if e.currentBet-p.CurrentBet <= 0 {
			return ActionResult{}, ErrNothingToCall
		}
		paid := p.Call(e.currentBet)
		e.pot += paid
		res.AllIn = p.Chips == 0
		p.LastAction = TagCall
		if res.AllIn {
			p.LastAction = TagAllIn
			res.Message = fmt.Sprintf("%s calls %d and is all-in", p.Nickname, paid)
		} else {
			res.Message = fmt.Sprintf("%s calls %d", p.Nickname, paid)
		}
		e.acted[p.Seat] = true

	case Raise:
		if err := e.validateRaise(p, amount); err != nil {
			return ActionResult{}, err
		}
		callAmount := e.currentBet - p.CurrentBet
		raiseChips := p.Raise(amount)
		e.pot += raiseChips
		res.AllIn = p.Chips == 0
		increment := raiseChips - callAmount
		// All-in raises never change the minimum increment
		if !res.AllIn {
			e.lastRaiseIncrement = increment
		}
		e.currentBet = amount
		clear(e.acted)
		e.acted[p.Seat] = true
		e.lastAggressor = p.Seat
		p.LastAction = TagRaise
		if res.AllIn {
			p.LastAction = TagAllIn
			res.Message = fmt.Sprintf("%s raises all-in to %d", p.Nickname, amount)
		} else {
			res.Message = fmt.Sprintf("%s raises to %d", p.Nickname, amount)
		}

	default:
		return ActionResult{}, actionErrorf(CodeInvalidAction, "invalid action %q", action)
	}

	e.logger.Debug().
		Str("user", p.UserID).
		Str("action", string(action)).
		Int("amount", amount).
		Int("pot", e.pot).
		Msg(res.Message)

	e.afterAction(p)
	return res, nil
}

// MinRaiseTo returns the smallest legal non-all-in raise target for p
func (e *Engine) MinRaiseTo(p *Player) int {
	callAmount := e.currentBet - p.CurrentBet
	return p.CurrentBet + callAmount + e.lastRaiseIncrement
}

func (e *Engine) validateRaise(p *Player, amount int) error {
	if amount <= e.currentBet {
		return actionErrorf(CodeRaiseNotAboveBet,
			"raise must be above the current bet of %d", e.currentBet)
	}
	raiseChips := amount - p.CurrentBet
	if raiseChips > p.Chips {
		return actionErrorf(CodeInsufficient,
			"insufficient chips: raising to %d needs %d, you have %d", amount, raiseChips, p.Chips)
	}
	allIn := raiseChips >= p.Chips
	if minTo := e.MinRaiseTo(p); !allIn && amount < minTo {
		return actionErrorf(CodeRaiseTooSmall, "minimum raise is to %d", minTo)
	}
	return nil
}

// afterAction runs the bookkeeping shared by player and automatic actions
func (e *Engine) afterAction(p *Player) {
	e.lastActionAt = e.clock.Now()
	if e.grace != nil && e.grace.seat == p.Seat {
		e.grace = nil
	}
	e.version++
	e.recomputeSidePots()
	if e.checkInstantWin() {
		return
	}
	e.advance(p.Seat)
}

// advance moves to the next street or the next seat after from
func (e *Engine) advance(from int) {
	if e.shouldAdvanceStage() {
		e.nextStage()
		return
	}
	next := e.seats.NextPlayer(from)
	if next == nil {
		e.currentPos = -1
		return
	}
	e.currentPos = next.Seat
	e.lastActionAt = e.clock.Now()
}

// stillMustAct returns seats that are dealt in, not folded, not all-in and online
func (e *Engine) stillMustAct() []*Player {
	return e.seats.filter(mustAct)
}

func (e *Engine) shouldAdvanceStage() bool {
	pending := e.stillMustAct()
	if len(pending) == 0 {
		return true
	}
	for _, p := range pending {
		if e.currentBet > 0 {
			if p.CurrentBet != e.currentBet {
				return false
			}
		} else if !e.acted[p.Seat] {
			return false
		}
	}
	return true
}
