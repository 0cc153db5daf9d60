package game

import "fmt"

// ErrorCode classifies a rejected player action
type ErrorCode string

const (
	CodeNotYourTurn      ErrorCode = "not_your_turn"
	CodeAlreadyFolded    ErrorCode = "already_folded"
	CodeHandNotActive    ErrorCode = "hand_not_active"
	CodeCannotCheck      ErrorCode = "cannot_check"
	CodeNothingToCall    ErrorCode = "nothing_to_call"
	CodeRaiseTooSmall    ErrorCode = "raise_too_small"
	CodeRaiseNotAboveBet ErrorCode = "raise_not_above_bet"
	CodeInsufficient     ErrorCode = "insufficient_chips"
	CodeInvalidAction    ErrorCode = "invalid_action"
	CodeUnknownPlayer    ErrorCode = "unknown_player"
	CodeAwaitingDecision ErrorCode = "awaiting_decision"
)

// ActionError is returned when a player action is rejected. The engine state is
// unchanged whenever an ActionError is returned.
type ActionError struct {
	Code   ErrorCode
	Reason string
}

func (e *ActionError) Error() string {
	return e.Reason
}

// Is matches any ActionError with the same code, so callers can write
// errors.Is(err, game.ErrNotYourTurn).
func (e *ActionError) Is(target error) bool {
	t, ok := target.(*ActionError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is comparisons
var (
	ErrNotYourTurn      = &ActionError{Code: CodeNotYourTurn, Reason: "not your turn"}
	ErrAlreadyFolded    = &ActionError{Code: CodeAlreadyFolded, Reason: "you have already folded"}
	ErrHandNotActive    = &ActionError{Code: CodeHandNotActive, Reason: "no hand in progress"}
	ErrCannotCheck      = &ActionError{Code: CodeCannotCheck, Reason: "cannot check, there is a bet to call"}
	ErrNothingToCall    = &ActionError{Code: CodeNothingToCall, Reason: "nothing to call"}
	ErrRaiseTooSmall    = &ActionError{Code: CodeRaiseTooSmall}
	ErrRaiseNotAboveBet = &ActionError{Code: CodeRaiseNotAboveBet}
	ErrInsufficient     = &ActionError{Code: CodeInsufficient}
	ErrInvalidAction    = &ActionError{Code: CodeInvalidAction}
	ErrUnknownPlayer    = &ActionError{Code: CodeUnknownPlayer, Reason: "player is not seated at this table"}
	ErrAwaitingDecision = &ActionError{Code: CodeAwaitingDecision, Reason: "waiting for the single player decision"}
)

func actionErrorf(code ErrorCode, format string, args ...any) *ActionError {
	return &ActionError{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// ActionResult describes an accepted action
type ActionResult struct {
	Message string `json:"message"`
	AllIn   bool   `json:"allIn"`
}
