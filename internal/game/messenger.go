package game

import (
	"context"

	"github.com/trivialuned/trivial-bot/internal/domain"
)

// MessageRef is an opaque handle to a delivered chat message, kept so the
// engine can edit or delete it later.
type MessageRef struct {
	Chat domain.UserID
	ID   int
}

// QuestionView is a transport-neutral rendering of one question.
type QuestionView struct {
	Level  int
	Index  int // 1-based position within the session
	Total  int
	Prompt string

	// Options are the answer texts; buttons are numbered from 1.
	Options []string

	// Paginated selects one-option-per-page rendering; Page is the
	// 0-based offset of the option currently shown.
	Paginated bool
	Page      int
}

// Messenger abstracts the chat transport the engine delivers through.
// Implementations send formatted messages and must not leak transport
// types back into the engine.
type Messenger interface {
	// SendText sends a plain informational message.
	SendText(ctx context.Context, user domain.UserID, text string) error

	// SendConfirmation sends the play confirmation prompt with
	// accept/cancel controls.
	SendConfirmation(ctx context.Context, user domain.UserID, name string, level int) (MessageRef, error)

	// SendQuestion delivers a question with its answer controls.
	SendQuestion(ctx context.Context, user domain.UserID, view QuestionView) (MessageRef, error)

	// EditQuestion re-renders a delivered question in place, used for
	// option paging.
	EditQuestion(ctx context.Context, ref MessageRef, view QuestionView) error

	// EditText replaces a delivered message with plain text, removing
	// any controls it carried.
	EditText(ctx context.Context, ref MessageRef, text string) error

	// Delete removes a delivered message.
	Delete(ctx context.Context, ref MessageRef) error
}
