// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/trivialuned/trivial-bot/internal/domain"
)

// Repository defines the persistence operations the quiz engine consumes.
type Repository interface {
	// GetEnrollmentStatus returns the administrative approval state for a
	// chat participant. Unknown participants map to domain.Unregistered.
	GetEnrollmentStatus(ctx context.Context, user domain.UserID) (domain.EnrollmentStatus, error)

	// GetStudent retrieves the student record for a chat participant.
	// Returns nil (not an error) if the participant is not registered.
	GetStudent(ctx context.Context, user domain.UserID) (*domain.Student, error)

	// RegisterStudent creates a student pending tutor approval, enrolled
	// at level 1 in every active subject.
	RegisterStudent(ctx context.Context, user domain.UserID, name, email string) error

	// GetCurrentLevel returns the student's current level (defaults to 1).
	GetCurrentLevel(ctx context.Context, studentID int64) (int, error)

	// LoadActiveQuestions returns the active questions for a level,
	// ordered by question id ascending.
	LoadActiveQuestions(ctx context.Context, level int) ([]domain.Question, error)

	// GetDisplayPreference returns how the student wants options rendered.
	GetDisplayPreference(ctx context.Context, studentID int64) (domain.DisplayMode, error)

	// SetDisplayPreference updates the student's rendering preference.
	SetDisplayPreference(ctx context.Context, studentID int64, mode domain.DisplayMode) error

	// UpsertAttempt records one submitted answer. Idempotent per
	// (student, question): the first call inserts, later calls update
	// counters in place. The 1st attempt sets the first-attempt-correct
	// flag, the 2nd sets the second-attempt-correct flag, 3rd and later
	// attempts only bump the attempt and mistake counters.
	UpsertAttempt(ctx context.Context, studentID, questionID int64, isCorrect bool) error

	// CountRemainingUnanswered returns how many of the level's active
	// questions the student has never answered.
	CountRemainingUnanswered(ctx context.Context, studentID int64, level int) (int, error)

	// CountActiveQuestions returns the number of active questions at a level.
	CountActiveQuestions(ctx context.Context, level int) (int, error)

	// MaxLevel returns the highest level with active questions (at least 1).
	MaxLevel(ctx context.Context) (int, error)

	// PromoteLevel increments the student's level by one. Monotonic: the
	// engine never decrements a level.
	PromoteLevel(ctx context.Context, studentID int64) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
