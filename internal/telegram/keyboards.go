package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback payloads. The bot parses these into typed engine events; the
// engine itself never sees them.
const (
	cbConfirmPlay  = "play:confirm"
	cbCancelPlay   = "play:cancel"
	cbNavPrev      = "nav:prev"
	cbNavNext      = "nav:next"
	cbAnswerPrefix = "answer:"
)

var optionBadges = []string{"🔴", "🔵", "🟢", "🟣"}

func optionBadge(option int) string {
	if option >= 1 && option <= len(optionBadges) {
		return optionBadges[option-1]
	}
	return "▪️"
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ SÍ, JUGAR", cbConfirmPlay),
			tgbotapi.NewInlineKeyboardButtonData("❌ CANCELAR", cbCancelPlay),
		),
	)
}

// answerKeyboard builds one numbered answer button per option.
func answerKeyboard(optionCount int) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, optionCount)
	for i := 1; i <= optionCount; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%s Opción %d", optionBadge(i), i),
			fmt.Sprintf("%s%d", cbAnswerPrefix, i),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

// paginatedKeyboard adds option paging controls above the answer buttons.
func paginatedKeyboard(optionCount int) tgbotapi.InlineKeyboardMarkup {
	kb := answerKeyboard(optionCount)
	nav := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Opción", cbNavPrev),
		tgbotapi.NewInlineKeyboardButtonData("Opción ▶️", cbNavNext),
	)
	kb.InlineKeyboard = append([][]tgbotapi.InlineKeyboardButton{nav}, kb.InlineKeyboard...)
	return kb
}
