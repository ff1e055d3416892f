package bot

import (
	"eventbot/internal/flow"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(flow.BtnEvents),
			tgbotapi.NewKeyboardButton(flow.BtnMyRegs),
		),
	)
}

func adminMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(flow.BtnParticipants)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(flow.BtnAddEvent)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(flow.BtnDeleteEvent)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(flow.BtnBack),
			tgbotapi.NewKeyboardButton(flow.BtnCancel),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func backCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(flow.BtnBack),
			tgbotapi.NewKeyboardButton(flow.BtnCancel),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func seatsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("1"),
			tgbotapi.NewKeyboardButton("2"),
			tgbotapi.NewKeyboardButton("3"),
			tgbotapi.NewKeyboardButton("4"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(flow.BtnBack),
			tgbotapi.NewKeyboardButton(flow.BtnCancel),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(flow.BtnSendPhone),
			tgbotapi.NewKeyboardButton(flow.BtnSendUsername),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(flow.BtnBack),
			tgbotapi.NewKeyboardButton(flow.BtnCancel),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func backOnlyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(flow.BtnBack)),
	)
}

// replyKeyboard maps a flow keyboard hint to its Telegram markup.
// Returns nil when the message carries no reply keyboard.
func replyKeyboard(kb flow.Keyboard) interface{} {
	switch kb {
	case flow.KeyboardMainMenu:
		return mainMenuKeyboard()
	case flow.KeyboardAdminMenu:
		return adminMenuKeyboard()
	case flow.KeyboardBackCancel:
		return backCancelKeyboard()
	case flow.KeyboardSeats:
		return seatsKeyboard()
	case flow.KeyboardContact:
		return contactKeyboard()
	case flow.KeyboardBackOnly:
		return backOnlyKeyboard()
	}
	return nil
}

// inlineKeyboard renders flow buttons one per row.
func inlineKeyboard(buttons []flow.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Token)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
