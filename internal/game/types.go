// internal/game/types.go
//
// Core type definitions for the guessing game.
// Defines:
//   - Round: an in-progress round (secret number + attempt counter).
//   - Session: per-visitor state holding at most one round.
//   - Outcome/Feedback: the result of a state transition.

package game

// Bounds of the secret number (inclusive).
const (
	MinNumber = 1
	MaxNumber = 100
)

// Round holds the state of a single in-progress round.
type Round struct {
	Secret   int // Target number, always within [MinNumber, MaxNumber].
	Attempts int // Valid-format guesses submitted so far.
}

// Session is the per-visitor game state.
// A nil Round means no round is in progress; the next interaction starts one.
type Session struct {
	Round *Round
}

// InProgress reports whether a round is active.
func (s Session) InProgress() bool { return s.Round != nil }

// Valid reports whether the session satisfies the data-model invariants.
// Session backends use it to discard corrupted state.
func (s Session) Valid() bool {
	if s.Round == nil {
		return true
	}
	return s.Round.Secret >= MinNumber && s.Round.Secret <= MaxNumber && s.Round.Attempts >= 0
}

// Outcome classifies the feedback produced by a transition.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeWelcome Outcome = "welcome"
	OutcomeLow     Outcome = "low"
	OutcomeHigh    Outcome = "high"
	OutcomeCorrect Outcome = "correct"
	OutcomeInvalid Outcome = "invalid"
)

// Feedback is the user-visible result of EnsureRound or SubmitGuess.
type Feedback struct {
	Outcome Outcome
	Message string
}
