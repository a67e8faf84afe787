package usecase

import (
	"context"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"go.uber.org/zap"
)

const persistTimeout = 10 * time.Second

type Persister struct {
	registry *Registry
	store    domain.AlertStore
	logger   *zap.Logger
}

func NewPersister(registry *Registry, store domain.AlertStore, logger *zap.Logger) *Persister {
	return &Persister{registry: registry, store: store, logger: logger}
}

func (p *Persister) Restore(ctx context.Context) int {
	alerts, problems := p.store.LoadAll(ctx)
	for _, problem := range problems {
		p.logger.Warn("skipping persisted alert", zap.Error(problem))
	}
	restored := p.registry.Restore(alerts)
	p.logger.Info("alerts restored", zap.Int("restored", restored), zap.Int("skipped", len(problems)))
	return restored
}

func (p *Persister) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			p.Save(shutdownCtx)
			cancel()
			return nil
		case <-p.registry.Changes():
			p.Save(ctx)
		}
	}
}

func (p *Persister) Save(ctx context.Context) {
	alerts := p.registry.ListActive()
	saveCtx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	if err := p.store.ReplaceAll(saveCtx, alerts); err != nil {
		p.logger.Warn("failed to persist alerts", zap.Int("count", len(alerts)), zap.Error(err))
		return
	}
	p.logger.Debug("alerts persisted", zap.Int("count", len(alerts)))
}
