package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/trivialuned/trivial-bot/internal/domain"
	"github.com/trivialuned/trivial-bot/internal/game"
)

// Messenger implements game.Messenger on top of the Telegram Bot API.
type Messenger struct {
	api *tgbotapi.BotAPI
}

// NewMessenger creates a Telegram-backed messenger.
func NewMessenger(api *tgbotapi.BotAPI) *Messenger {
	return &Messenger{api: api}
}

// SendText sends a plain Markdown message.
func (m *Messenger) SendText(_ context.Context, user domain.UserID, text string) error {
	msg := tgbotapi.NewMessage(int64(user), text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("send message to %d: %w", user, err)
	}
	return nil
}

// SendConfirmation sends the play confirmation prompt with accept/cancel
// buttons.
func (m *Messenger) SendConfirmation(_ context.Context, user domain.UserID, name string, level int) (game.MessageRef, error) {
	text := fmt.Sprintf("🎮 *TRIVIAL*\n\n"+
		"👤 Estudiante: *%s*\n"+
		"📚 Nivel actual: *%d*\n\n"+
		"¿Deseas comenzar a jugar?\n\n"+
		"💡 Se te presentarán preguntas de tu nivel actual.", name, level)

	msg := tgbotapi.NewMessage(int64(user), text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = confirmKeyboard()

	sent, err := m.api.Send(msg)
	if err != nil {
		return game.MessageRef{}, fmt.Errorf("send confirmation to %d: %w", user, err)
	}
	return game.MessageRef{Chat: user, ID: sent.MessageID}, nil
}

// SendQuestion delivers a question with its answer keyboard.
func (m *Messenger) SendQuestion(_ context.Context, user domain.UserID, view game.QuestionView) (game.MessageRef, error) {
	msg := tgbotapi.NewMessage(int64(user), formatQuestion(view))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = questionKeyboard(view)

	sent, err := m.api.Send(msg)
	if err != nil {
		return game.MessageRef{}, fmt.Errorf("send question to %d: %w", user, err)
	}
	return game.MessageRef{Chat: user, ID: sent.MessageID}, nil
}

// EditQuestion re-renders a delivered question in place (option paging).
func (m *Messenger) EditQuestion(_ context.Context, ref game.MessageRef, view game.QuestionView) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		int64(ref.Chat), ref.ID, formatQuestion(view), questionKeyboard(view))
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := m.api.Send(edit); err != nil {
		return fmt.Errorf("edit question %d in chat %d: %w", ref.ID, ref.Chat, err)
	}
	return nil
}

// EditText replaces a delivered message with plain text. Editing without a
// reply markup drops the inline keyboard, so answers are single-shot.
func (m *Messenger) EditText(_ context.Context, ref game.MessageRef, text string) error {
	edit := tgbotapi.NewEditMessageText(int64(ref.Chat), ref.ID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := m.api.Send(edit); err != nil {
		return fmt.Errorf("edit message %d in chat %d: %w", ref.ID, ref.Chat, err)
	}
	return nil
}

// Delete removes a delivered message.
func (m *Messenger) Delete(_ context.Context, ref game.MessageRef) error {
	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(int64(ref.Chat), ref.ID)); err != nil {
		return fmt.Errorf("delete message %d in chat %d: %w", ref.ID, ref.Chat, err)
	}
	return nil
}

func questionKeyboard(view game.QuestionView) tgbotapi.InlineKeyboardMarkup {
	if view.Paginated {
		return paginatedKeyboard(len(view.Options))
	}
	return answerKeyboard(len(view.Options))
}

// formatQuestion renders a question body: all options at once in extended
// mode, one option per page in paginated mode.
func formatQuestion(view game.QuestionView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 *Nivel %d* | Pregunta %d/%d\n\n", view.Level, view.Index, view.Total)
	fmt.Fprintf(&b, "*%s*\n\n", view.Prompt)

	if view.Paginated {
		option := view.Page + 1
		fmt.Fprintf(&b, "%s *Opción %d:* %s\n\n", optionBadge(option), option, view.Options[view.Page])
		fmt.Fprintf(&b, "◀️ ▶️ para ver más opciones (%d/%d)", option, len(view.Options))
		return b.String()
	}

	for i, opt := range view.Options {
		fmt.Fprintf(&b, "%s *Opción %d:* %s\n", optionBadge(i+1), i+1, opt)
	}
	return b.String()
}
