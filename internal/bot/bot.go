// Package bot binds the flow service to the Telegram Bot API: it
// receives updates, routes them into the flows, and renders the
// resulting replies.
package bot

import (
	"context"
	"fmt"
	"strings"

	"eventbot/internal/flow"
	"eventbot/internal/logger"
	"eventbot/internal/text"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	API    *tgbotapi.BotAPI
	Flow   *flow.Service
	Logger *logger.Logger
}

func New(api *tgbotapi.BotAPI, svc *flow.Service, log *logger.Logger) *Bot {
	return &Bot{API: api, Flow: svc, Logger: log}
}

// Run polls for updates until the context is cancelled. Each update
// is processed to completion; one user's failure never touches
// another user's flow state.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.API.GetUpdatesChan(u)

	b.Logger.Info("BOT", fmt.Sprintf("Polling for updates as @%s", b.API.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.API.StopReceivingUpdates()
			b.Logger.Info("BOT", "Update polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(m *tgbotapi.Message) {
	msg := flow.Message{
		UserID:   m.From.ID,
		Username: m.From.UserName,
		Text:     m.Text,
	}
	if m.Contact != nil {
		msg.ContactPhone = m.Contact.PhoneNumber
	}

	replies, err := b.Flow.HandleMessage(msg)
	if err != nil {
		b.Logger.Error("BOT", fmt.Sprintf("message from user %d failed: %v", m.From.ID, err))
		b.send(m.Chat.ID, flow.Reply{
			Text:     "Произошла ошибка. Попробуйте ещё раз.",
			Keyboard: flow.KeyboardMainMenu,
		})
		return
	}
	for _, r := range replies {
		b.send(m.Chat.ID, r)
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	result, err := b.Flow.HandleCallback(flow.Callback{
		UserID:   cb.From.ID,
		Username: cb.From.UserName,
		Token:    cb.Data,
	})
	if err != nil {
		b.Logger.Error("BOT", fmt.Sprintf("callback from user %d failed: %v", cb.From.ID, err))
		b.answer(cb.ID, "Произошла ошибка. Попробуйте ещё раз.", true)
		return
	}

	if result.Alert {
		b.answer(cb.ID, result.Ack, true)
	} else {
		b.answer(cb.ID, result.Ack, false)
	}

	chatID := cb.From.ID
	if cb.Message != nil {
		chatID = cb.Message.Chat.ID
	}
	for _, r := range result.Replies {
		b.send(chatID, r)
	}
}

func (b *Bot) answer(callbackID, ack string, alert bool) {
	var cfg tgbotapi.CallbackConfig
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(callbackID, ack)
	} else {
		cfg = tgbotapi.NewCallback(callbackID, ack)
	}
	if _, err := b.API.Request(cfg); err != nil {
		b.Logger.Warn("BOT", fmt.Sprintf("failed to answer callback: %v", err))
	}
}

// send renders one flow reply. Long texts are split at line
// boundaries to stay under the platform message limit; only the first
// chunk carries the keyboard.
func (b *Bot) send(chatID int64, r flow.Reply) {
	chunks := []string{r.Text}
	if len(r.Text) > text.MessageLimit {
		chunks = text.ChunkLines(strings.Split(r.Text, "\n"), text.MessageLimit)
	}

	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if r.HTML {
			msg.ParseMode = tgbotapi.ModeHTML
		}
		if i == 0 {
			if len(r.Buttons) > 0 {
				msg.ReplyMarkup = inlineKeyboard(r.Buttons)
			} else if kb := replyKeyboard(r.Keyboard); kb != nil {
				msg.ReplyMarkup = kb
			}
		}
		if _, err := b.API.Send(msg); err != nil {
			b.Logger.Warn("BOT", fmt.Sprintf("failed to send message to chat %d: %v", chatID, err))
		}
	}

	if len(r.QR) > 0 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "pass.png", Bytes: r.QR})
		if _, err := b.API.Send(photo); err != nil {
			b.Logger.Warn("BOT", fmt.Sprintf("failed to send pass to chat %d: %v", chatID, err))
		}
	}
}

// Notifier delivers admin notifications over the same bot connection.
type Notifier struct {
	API *tgbotapi.BotAPI
}

func (n *Notifier) NotifyAdmin(adminID int64, text string) error {
	_, err := n.API.Send(tgbotapi.NewMessage(adminID, text))
	return err
}
