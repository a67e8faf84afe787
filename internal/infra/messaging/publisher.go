package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type notificationMessage struct {
	UserID string    `json:"user_id"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

func NewPublisher(url, subject string, logger *zap.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("pricebot"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", conn.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{conn: conn, subject: subject, logger: logger}, nil
}

func (p *Publisher) Notify(ctx context.Context, userID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := encodeNotification(userID, text, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	p.logger.Debug("nats notification published", zap.String("subject", p.subject), zap.String("user_id", userID))
	return nil
}

func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

func encodeNotification(userID, text string, sentAt time.Time) ([]byte, error) {
	payload, err := json.Marshal(notificationMessage{UserID: userID, Text: text, SentAt: sentAt})
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return payload, nil
}
