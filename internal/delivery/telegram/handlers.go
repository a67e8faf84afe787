package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handlers struct {
	router *Router
	sender Sender
	logger *zap.Logger
}

func NewHandlers(router *Router, sender Sender, logger *zap.Logger) *Handlers {
	return &Handlers{router: router, sender: sender, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}
	if message.Text == "" {
		return
	}

	chatID := message.Chat.ID
	fields := []zap.Field{zap.Int64("chat_id", chatID), zap.String("text", message.Text)}
	if message.From != nil {
		fields = append(fields, zap.Int64("telegram_user_id", message.From.ID), zap.String("username", message.From.UserName))
	}
	h.logger.Info("telegram message received", fields...)

	reply := h.router.Handle(ctx, strconv.FormatInt(chatID, 10), message.Text)
	h.reply(chatID, reply)
}

func (h *Handlers) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.sender.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
