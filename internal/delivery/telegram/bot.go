package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Bot struct {
	api         *tgbotapi.BotAPI
	handlers    *Handlers
	pollTimeout int
	logger      *zap.Logger
}

func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

func NewBot(api *tgbotapi.BotAPI, handlers *Handlers, pollTimeout int, logger *zap.Logger) *Bot {
	return &Bot{api: api, handlers: handlers, pollTimeout: pollTimeout, logger: logger}
}

func (b *Bot) Start(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("failed to delete webhook before polling", zap.Error(err))
	}

	config := tgbotapi.NewUpdate(0)
	config.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(config)
	b.logger.Info("telegram polling started", zap.String("bot", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handlers.HandleUpdate(ctx, update)
		}
	}
}

func (b *Bot) RegisterWebhook(url string) error {
	webhook, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook: %w", err)
	}
	if _, err := b.api.Request(webhook); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}
	b.logger.Info("telegram webhook registered", zap.String("bot", b.api.Self.UserName))
	return nil
}

type Notifier struct {
	sender Sender
	logger *zap.Logger
}

func NewNotifier(sender Sender, logger *zap.Logger) *Notifier {
	return &Notifier{sender: sender, logger: logger}
}

func (n *Notifier) Notify(ctx context.Context, userID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", userID, err)
	}
	n.logger.Info("telegram notify send", zap.Int64("chat_id", chatID), zap.String("text", text))
	if _, err := n.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		n.logger.Warn("failed to notify", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}
