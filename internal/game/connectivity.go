package game

// Decisions offered to the last online seat
const (
	DecisionContinue = "continue"
	DecisionEnd      = "end"
)

// SetConnected marks a player online. Reconnecting on turn cancels the pending
// auto-action; reconnecting while a single-player wait is armed disarms it once
// two online seats remain. Seats auto-folded while away stay folded.
func (e *Engine) SetConnected(userID string) {
	p := e.seats.ByUser(userID)
	if p == nil {
		return
	}
	wasOnline := p.IsOnline()
	p.setConnected()
	if !wasOnline {
		e.logger.Info().Str("user", userID).Int("seat", p.Seat).Msg("Player reconnected")
	}

	if e.grace != nil && e.grace.seat == p.Seat {
		e.grace = nil
		e.lastActionAt = e.clock.Now()
	}
	if e.wait != nil && e.onlineInHand(-1) >= 2 {
		e.logger.Info().Str("user", e.wait.UserID).Msg("Single player wait cleared")
		e.wait = nil
		e.lastActionAt = e.clock.Now()
	}
	e.version++
}

// SetDisconnected marks a player offline and applies the disconnect policy.
func (e *Engine) SetDisconnected(userID string) {
	p := e.seats.ByUser(userID)
	if p == nil {
		return
	}
	now := e.clock.Now()

	if !e.IsGameActive() || !p.IsActive() {
		p.setDisconnected(now)
		e.version++
		e.logger.Info().Str("user", userID).Msg("Player disconnected")
		return
	}

	if e.currentPos == p.Seat {
		p.setDisconnected(now)
		e.grace = &turnGrace{seat: p.Seat, deadline: now.Add(e.cfg.TurnDisconnectGrace)}
		e.version++
		e.logger.Info().Str("user", userID).Dur("grace", e.cfg.TurnDisconnectGrace).Msg("Player disconnected on turn")
		return
	}

	remaining := e.onlineInHand(p.Seat)
	if remaining <= 1 {
		p.setDisconnected(now)
		if remaining == 1 && e.wait == nil {
			sole := e.soleOnline(p.Seat)
			e.wait = &SinglePlayerWait{
				UserID:   sole.UserID,
				Seat:     sole.Seat,
				Deadline: now.Add(e.cfg.SinglePlayerGrace),
			}
			e.logger.Info().Str("user", sole.UserID).Dur("grace", e.cfg.SinglePlayerGrace).Msg("Single player wait armed")
		}
		e.version++
		return
	}

	p.setSpectating(now)
	p.LastAction = TagAutoFold
	e.version++
	e.logger.Info().Str("user", userID).Msg("Player disconnected, folded to spectator")
	e.recomputeSidePots()
	if e.checkInstantWin() {
		return
	}
	if e.shouldAdvanceStage() {
		e.nextStage()
	}
}

// HandleSinglePlayerDecision lets the last online seat end the hand (taking the
// pot) or keep playing. Only the seat the wait was offered to may decide.
func (e *Engine) HandleSinglePlayerDecision(userID, decision string) bool {
	if e.wait == nil || e.wait.UserID != userID || !e.IsGameActive() {
		return false
	}
	switch decision {
	case DecisionEnd:
		e.forceEnd()
		return true
	case DecisionContinue:
		e.logger.Info().Str("user", userID).Msg("Single player chose to continue")
		e.wait = nil
		e.lastActionAt = e.clock.Now()
		e.version++
		return true
	}
	return false
}

func (e *Engine) forceEnd() {
	p := e.seats.BySeat(e.wait.Seat)
	e.wait = nil
	if p == nil {
		return
	}
	e.logger.Info().Str("user", p.UserID).Msg("Hand force-ended by sole online player")
	e.awardWholePot(p, EndForced)
}

// AutoFoldTimeoutPlayers resolves expired waits: the single-player wait (treated
// as "end"), the on-turn disconnect grace, and the action timeout. Turn timers
// are paused while the single-player wait is armed. It returns the players
// acted for. Called by the table's periodic sweep.
func (e *Engine) AutoFoldTimeoutPlayers() []*Player {
	if !e.IsGameActive() {
		return nil
	}
	now := e.clock.Now()

	if e.wait != nil {
		if !now.Before(e.wait.Deadline) {
			e.logger.Info().Str("user", e.wait.UserID).Msg("Single player wait expired")
			e.forceEnd()
		}
		return nil
	}

	p := e.CurrentPlayer()
	if p == nil {
		return nil
	}
	graceExpired := e.grace != nil && e.grace.seat == p.Seat && !now.Before(e.grace.deadline)
	timedOut := now.Sub(e.lastActionAt) > e.cfg.ActionTimeout
	if !graceExpired && !timedOut {
		return nil
	}
	e.autoAct(p)
	return []*Player{p}
}

// autoAct checks for p when nothing is owed, otherwise folds
func (e *Engine) autoAct(p *Player) {
	if p.CurrentBet == e.currentBet {
		p.Check()
		if p.IsPlaying() {
			e.acted[p.Seat] = true
		}
		p.LastAction = TagAutoCheck
	} else {
		p.Fold()
		p.LastAction = TagAutoFold
	}
	e.logger.Info().Str("user", p.UserID).Str("action", p.LastAction).Msg("Auto action on timeout")
	e.afterAction(p)
}

// TimeRemaining returns how long the seat on turn has before an auto-action
func (e *Engine) TimeRemaining() (remaining float64, onTurn bool) {
	p := e.CurrentPlayer()
	if p == nil {
		return 0, false
	}
	now := e.clock.Now()
	left := e.cfg.ActionTimeout - now.Sub(e.lastActionAt)
	if e.grace != nil && e.grace.seat == p.Seat {
		left = min(left, e.grace.deadline.Sub(now))
	}
	return max(left.Seconds(), 0), true
}

// onlineInHand counts online unfolded seats, excluding seat except
func (e *Engine) onlineInHand(except int) int {
	n := 0
	for _, p := range e.seats.ActivePlayers() {
		if p.Seat != except && p.IsOnline() {
			n++
		}
	}
	return n
}

func (e *Engine) soleOnline(except int) *Player {
	for _, p := range e.seats.ActivePlayers() {
		if p.Seat != except && p.IsOnline() {
			return p
		}
	}
	return nil
}
