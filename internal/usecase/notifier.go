package usecase

import (
	"context"

	"github.com/NasaVasa/pricebot/internal/domain"
	"go.uber.org/zap"
)

type FanoutNotifier struct {
	primary domain.Notifier
	mirrors []domain.Notifier
	logger  *zap.Logger
}

func NewFanoutNotifier(primary domain.Notifier, logger *zap.Logger, mirrors ...domain.Notifier) *FanoutNotifier {
	return &FanoutNotifier{primary: primary, mirrors: mirrors, logger: logger}
}

func (n *FanoutNotifier) Notify(ctx context.Context, userID, text string) error {
	err := n.primary.Notify(ctx, userID, text)
	for _, mirror := range n.mirrors {
		if mirrorErr := mirror.Notify(ctx, userID, text); mirrorErr != nil {
			n.logger.Warn("notification mirror failed", zap.String("user_id", userID), zap.Error(mirrorErr))
		}
	}
	return err
}
