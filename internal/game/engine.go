// internal/game/engine.go
//
// Game engine for a single visitor session.
// Responsibilities:
//   - Start a round lazily when none is in progress (EnsureRound).
//   - Parse and apply guesses, counting valid-format attempts (SubmitGuess).
//   - End the round on a correct guess so the next request starts a new one.
//
// The engine never does I/O. Session state is passed in explicitly and
// persisted by the caller.
package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// User-visible messages.
const (
	MsgWelcome = "Guess a number between 1 and 100!"
	MsgLow     = "Too low! Try again."
	MsgHigh    = "Too high! Try again."
	MsgInvalid = "Invalid input. Enter a number between 1 and 100."
	msgCorrect = "You got it! The number was %d. It took %d attempts."
)

// ErrInvalidGuess is returned by ParseGuess when the input is not a base-10
// integer (empty, non-numeric, or outside the int range).
var ErrInvalidGuess = errors.New("invalid guess format")

// Engine applies game transitions to sessions.
type Engine struct {
	picker Picker
}

// NewEngine constructs an Engine. A nil picker falls back to CryptoPicker.
func NewEngine(p Picker) *Engine {
	if p == nil {
		p = CryptoPicker{}
	}
	return &Engine{picker: p}
}

// EnsureRound starts a round if none is in progress.
// Returns the welcome feedback when a round was created, empty feedback otherwise.
func (e *Engine) EnsureRound(s *Session) Feedback {
	if s.InProgress() {
		return Feedback{}
	}
	s.Round = &Round{Secret: e.picker.Pick(MinNumber, MaxNumber)}
	return Feedback{Outcome: OutcomeWelcome, Message: MsgWelcome}
}

// SubmitGuess evaluates a raw guess against the current round.
//
// Rules:
//   - Unparseable input → OutcomeInvalid, no mutation.
//   - Otherwise Attempts is incremented and the guess compared to Secret.
//   - A correct guess ends the round (Session.Round = nil).
//
// Integers outside [MinNumber, MaxNumber] are compared, not rejected.
// If no round is in progress one is started silently first.
func (e *Engine) SubmitGuess(s *Session, raw string) Feedback {
	guess, err := ParseGuess(raw)
	if err != nil {
		return Feedback{Outcome: OutcomeInvalid, Message: MsgInvalid}
	}
	e.EnsureRound(s)

	r := s.Round
	r.Attempts++
	switch {
	case guess < r.Secret:
		return Feedback{Outcome: OutcomeLow, Message: MsgLow}
	case guess > r.Secret:
		return Feedback{Outcome: OutcomeHigh, Message: MsgHigh}
	}
	s.Round = nil
	return Feedback{
		Outcome: OutcomeCorrect,
		Message: fmt.Sprintf(msgCorrect, r.Secret, r.Attempts),
	}
}

// Play runs the per-request contract: ensure a round exists, then evaluate
// the guess if one was submitted. A guess's feedback supersedes the welcome.
func (e *Engine) Play(s *Session, guess *string) Feedback {
	fb := e.EnsureRound(s)
	if guess != nil {
		fb = e.SubmitGuess(s, *guess)
	}
	return fb
}

// ParseGuess trims surrounding whitespace and parses a base-10 integer.
func ParseGuess(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGuess, raw)
	}
	return n, nil
}
