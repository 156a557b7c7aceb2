package game

import "errors"

// Expected gating and flow outcomes. These are surfaced to the user as
// chat messages and are never logged as failures.
var (
	// ErrNotRegistered means the participant has no student record yet.
	ErrNotRegistered = errors.New("student not registered")

	// ErrPendingApproval means the registration awaits tutor validation.
	ErrPendingApproval = errors.New("registration pending approval")

	// ErrSuspended means the tutor has withdrawn the student from the game.
	ErrSuspended = errors.New("student suspended")

	// ErrInvalidState means an event arrived for a session that is absent
	// or not in the expected phase (stale, duplicate or out of order).
	// The mutation is ignored; the user is told to restart.
	ErrInvalidState = errors.New("no active session in the expected phase")

	// ErrNoQuestions means the student's level has no active questions at
	// confirmation time. Content configuration issue, not a system fault.
	ErrNoQuestions = errors.New("no active questions for level")
)
