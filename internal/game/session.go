// Package game implements the quiz session engine: the per-user state
// machine that sequences questions, grades answers and decides level
// promotion.
package game

import (
	"github.com/trivialuned/trivial-bot/internal/domain"
)

// Phase is the lifecycle state of a game session. Sessions only ever move
// forward: AwaitingConfirmation -> InProgress -> Finished.
type Phase int

const (
	AwaitingConfirmation Phase = iota
	InProgress
	Finished
)

// GameSession is one user's active play-through. At most one exists per
// user at any instant, held exclusively by the SessionStore. There is no
// expiry: an abandoned session persists until it is superseded by a new
// play request, cancelled, or finished.
type GameSession struct {
	User        domain.UserID
	StudentID   int64
	StudentName string

	// Level is a snapshot of the student's level at session start.
	Level int

	Phase Phase

	// Questions is fixed for the session's lifetime, ordered by id.
	Questions []domain.Question

	// Cursor indexes Questions. Monotonically increasing; Cursor ==
	// len(Questions) means the session is exhausted.
	Cursor int

	// Page is the displayed option offset in paginated mode, reset to 0
	// whenever a new question is shown.
	Page int

	// Mode is the display mode the current question was rendered with.
	Mode domain.DisplayMode

	// LastMsg is the handle of the last delivered message, kept so the
	// engine can edit it (grade results, option paging).
	LastMsg MessageRef
}

// Current returns the question at the cursor, or nil when exhausted.
func (s *GameSession) Current() *domain.Question {
	if s.Cursor >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.Cursor]
}

// Exhausted reports whether every question in the session was answered.
func (s *GameSession) Exhausted() bool {
	return s.Cursor >= len(s.Questions)
}
