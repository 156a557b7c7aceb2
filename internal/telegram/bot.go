// Package telegram is the delivery adapter: it runs the bot update loop,
// translates commands and callback payloads into typed engine events and
// renders engine output as chat messages.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/trivialuned/trivial-bot/internal/domain"
	"github.com/trivialuned/trivial-bot/internal/game"
	"github.com/trivialuned/trivial-bot/internal/store"
)

var (
	registerPattern = regexp.MustCompile(`^/registro\s+'([^']+)'\s+(\S+@\S+\.\S+)\s*$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Bot runs the long-polling update loop and dispatches user events.
type Bot struct {
	api         *tgbotapi.BotAPI
	engine      *game.Engine
	repo        store.Repository
	messenger   *Messenger
	pollTimeout int
}

// NewAPI authorises against the Telegram Bot API.
func NewAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorise bot: %w", err)
	}
	api.Debug = debug
	return api, nil
}

// NewBot creates the bot around an authorised API client.
func NewBot(api *tgbotapi.BotAPI, engine *game.Engine, repo store.Repository, messenger *Messenger, pollTimeout int) *Bot {
	return &Bot{
		api:         api,
		engine:      engine,
		repo:        repo,
		messenger:   messenger,
		pollTimeout: pollTimeout,
	}
}

// Run polls for updates until the context is cancelled. Each update is
// handled in its own goroutine; per-user ordering is enforced by the
// engine's phase gating and per-user serialization.
func (b *Bot) Run(ctx context.Context) {
	slog.Info("Bot authorised", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling update", "panic", r)
		}
	}()

	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	user := domain.UserID(msg.Chat.ID)

	switch msg.Command() {
	case "start", "ayuda":
		b.sendText(ctx, user, helpText)
	case "jugar":
		if _, err := b.engine.RequestPlay(ctx, user); err != nil && !isGatingError(err) {
			slog.Error("play request failed", "user", user, "error", err)
		}
	case "registro":
		b.handleRegister(ctx, user, msg.Text)
	case "vista":
		b.handleDisplayMode(ctx, user, msg.CommandArguments())
	case "promocion":
		if err := b.engine.CheckPromotion(ctx, user); err != nil && !isGatingError(err) {
			slog.Error("promotion check failed", "user", user, "error", err)
		}
	default:
		b.sendText(ctx, user, "⚠️ Comando desconocido.\n\nUsa /ayuda para ver los comandos disponibles.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		b.ack(cb.ID, "")
		return
	}
	user := domain.UserID(cb.Message.Chat.ID)

	switch {
	case cb.Data == cbConfirmPlay:
		err := b.engine.Confirm(ctx, user)
		switch {
		case errors.Is(err, game.ErrInvalidState):
			b.ack(cb.ID, "❌ Sesión no válida")
		case errors.Is(err, game.ErrNoQuestions):
			b.ack(cb.ID, "")
		case err != nil:
			slog.Error("confirm failed", "user", user, "error", err)
			b.ack(cb.ID, "⚠️ Error temporal")
		default:
			b.ack(cb.ID, "¡Comenzando el juego!")
		}

	case cb.Data == cbCancelPlay:
		if err := b.engine.Cancel(ctx, user); errors.Is(err, game.ErrInvalidState) {
			b.ack(cb.ID, "❌ Sesión no válida")
			return
		} else if err != nil {
			slog.Error("cancel failed", "user", user, "error", err)
		}
		b.ack(cb.ID, "Juego cancelado")

	case cb.Data == cbNavPrev, cb.Data == cbNavNext:
		dir := game.Previous
		if cb.Data == cbNavNext {
			dir = game.Next
		}
		if err := b.engine.Navigate(ctx, user, dir); errors.Is(err, game.ErrInvalidState) {
			b.ack(cb.ID, "❌ Sesión no válida")
			return
		} else if err != nil {
			slog.Error("navigation failed", "user", user, "error", err)
		}
		b.ack(cb.ID, "")

	default:
		option, ok := parseAnswer(cb.Data)
		if !ok {
			b.ack(cb.ID, "")
			return
		}
		err := b.engine.Answer(ctx, user, option)
		switch {
		case errors.Is(err, game.ErrInvalidState):
			b.ack(cb.ID, "❌ Sesión no válida. Usa /jugar para comenzar.")
		case err != nil:
			slog.Error("answer failed", "user", user, "error", err)
			b.ack(cb.ID, "⚠️ Error temporal")
		default:
			b.ack(cb.ID, "")
		}
	}
}

// parseAnswer extracts the 1-based option number from an answer callback.
func parseAnswer(data string) (int, bool) {
	if !strings.HasPrefix(data, cbAnswerPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(data, cbAnswerPrefix))
	if err != nil || n < 1 || n > 4 {
		return 0, false
	}
	return n, true
}

func (b *Bot) handleRegister(ctx context.Context, user domain.UserID, text string) {
	student, err := b.repo.GetStudent(ctx, user)
	if err != nil {
		slog.Error("registration lookup failed", "user", user, "error", err)
		b.sendText(ctx, user, "❌ Error al registrar. Por favor, intente nuevamente o contacte al administrador.")
		return
	}
	if student != nil {
		b.sendText(ctx, user, "✅ Usted ya está registrado en el sistema.")
		return
	}

	match := registerPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		b.sendText(ctx, user, "❌ Formato incorrecto. Use:\n"+
			"/registro 'nombre apellidos' email\n\n"+
			"Ejemplo: /registro 'Pablo Pérez García' pperez@alumno.uned.es")
		return
	}

	name, email := match[1], match[2]
	if !emailPattern.MatchString(email) {
		b.sendText(ctx, user, "❌ El email proporcionado no es válido.")
		return
	}

	if err := b.repo.RegisterStudent(ctx, user, name, email); err != nil {
		slog.Error("registration failed", "user", user, "error", err)
		b.sendText(ctx, user, "❌ Error al registrar. Por favor, intente nuevamente o contacte al administrador.")
		return
	}

	slog.Info("student registered", "user", user, "name", name)
	b.sendText(ctx, user, fmt.Sprintf("✅ ¡Registro exitoso!\n\n"+
		"👤 Nombre: %s\n"+
		"📧 Email: %s\n\n"+
		"⏳ Su solicitud está pendiente de validación por su tutor.", name, email))
}

func (b *Bot) handleDisplayMode(ctx context.Context, user domain.UserID, args string) {
	student, err := b.repo.GetStudent(ctx, user)
	if err != nil {
		slog.Error("display mode lookup failed", "user", user, "error", err)
		b.sendText(ctx, user, "❌ Error al actualizar el modo de vista. Intente nuevamente.")
		return
	}
	if student == nil {
		b.sendText(ctx, user, "❌ Por favor, regístrese primero usando:\n"+
			"/registro 'nombre apellidos' email")
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 1 || (fields[0] != "1" && fields[0] != "2") {
		b.sendText(ctx, user, "❌ Formato incorrecto. Use:\n\n"+
			"👁️ */vista 1* - Modo extendido\n"+
			"  (Muestra pregunta + todas las opciones)\n\n"+
			"👁️ */vista 2* - Modo paginado\n"+
			"  (Navega entre opciones con botones)\n\n"+
			"Ejemplo: /vista 1")
		return
	}

	mode := domain.DisplayExtended
	modeName := "Extendido"
	modeDesc := "📋 Verás la pregunta y todas las opciones juntas"
	if fields[0] == "2" {
		mode = domain.DisplayPaginated
		modeName = "Paginado"
		modeDesc = "📖 Navegarás entre las opciones con botones ◀️ ▶️"
	}

	if err := b.repo.SetDisplayPreference(ctx, student.ID, mode); err != nil {
		slog.Error("display mode update failed", "user", user, "error", err)
		b.sendText(ctx, user, "❌ Error al actualizar el modo de vista. Intente nuevamente.")
		return
	}

	b.sendText(ctx, user, fmt.Sprintf("✅ *Modo de vista actualizado*\n\n"+
		"👁️ Modo seleccionado: *%s*\n\n%s\n\n"+
		"💡 Este cambio se aplicará la próxima vez que uses /jugar", modeName, modeDesc))
}

func (b *Bot) sendText(ctx context.Context, user domain.UserID, text string) {
	if err := b.messenger.SendText(ctx, user, text); err != nil {
		slog.Error("failed to send message", "user", user, "error", err)
	}
}

func (b *Bot) ack(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		slog.Warn("failed to answer callback", "error", err)
	}
}

// isGatingError reports whether the error is an expected enrollment or
// flow outcome already surfaced to the user.
func isGatingError(err error) bool {
	return errors.Is(err, game.ErrNotRegistered) ||
		errors.Is(err, game.ErrPendingApproval) ||
		errors.Is(err, game.ErrSuspended) ||
		errors.Is(err, game.ErrNoQuestions) ||
		errors.Is(err, game.ErrInvalidState)
}

const helpText = "📚 *AYUDA - TRIVIAL BOT*\n\n" +
	"🎮 *COMANDOS DISPONIBLES:*\n\n" +
	"📝 */registro 'nombre apellidos' email*\n" +
	"Solicita tu registro en el sistema.\n" +
	"Ejemplo: /registro 'Juan Pérez López' jperez@alumno.uned.es\n\n" +
	"🎯 */jugar*\n" +
	"Inicia el juego con preguntas de tu nivel actual.\n\n" +
	"📈 */promocion*\n" +
	"Verifica si cumples los requisitos para subir de nivel.\n\n" +
	"👁️ */vista 1|2*\n" +
	"Cambia el modo de visualización de las preguntas:\n" +
	"• /vista 1 - Modo extendido\n" +
	"• /vista 2 - Modo paginado\n\n" +
	"❓ */ayuda*\n" +
	"Muestra este mensaje de ayuda.\n\n" +
	"🎓 ¡Mucha suerte con el Trivial!"
