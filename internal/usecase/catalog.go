package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"go.uber.org/zap"
)

type KindSupport interface {
	Supports(kind domain.AssetKind) bool
}

type CatalogRefresher struct {
	seed     []domain.CatalogEntry
	sources  []domain.CatalogSource
	resolver *Resolver
	support  KindSupport
	timeout  time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	loaded bool
}

func NewCatalogRefresher(seed []domain.CatalogEntry, sources []domain.CatalogSource, resolver *Resolver, support KindSupport, timeout time.Duration, logger *zap.Logger) *CatalogRefresher {
	return &CatalogRefresher{
		seed:     seed,
		sources:  sources,
		resolver: resolver,
		support:  support,
		timeout:  timeout,
		logger:   logger,
	}
}

func (r *CatalogRefresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	builder := NewAliasTableBuilder()
	builder.AddEntries(r.supported(r.seed))
	r.logger.Debug("seed aliases loaded", zap.Int("aliases", builder.Len()))

	var firstErr error
	for _, source := range r.sources {
		entries, err := r.load(ctx, source)
		if err != nil {
			r.logger.Warn("catalog source failed", zap.String("source", source.Name()), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		added := builder.AddEntries(r.supported(entries))
		r.logger.Info(
			"catalog source loaded",
			zap.String("source", source.Name()),
			zap.Int("entries", len(entries)),
			zap.Int("aliases_added", added),
			zap.Int("aliases_total", builder.Len()),
		)
	}

	if firstErr != nil && r.loaded {
		r.logger.Warn("keeping previous alias table", zap.Int("aliases", r.resolver.Table().Len()))
		return firstErr
	}

	table := builder.Build()
	r.resolver.Replace(table)
	r.loaded = firstErr == nil
	r.logger.Info("alias table replaced", zap.Int("aliases", table.Len()), zap.Bool("complete", r.loaded))
	return firstErr
}

func (r *CatalogRefresher) load(ctx context.Context, source domain.CatalogSource) ([]domain.CatalogEntry, error) {
	if r.timeout <= 0 {
		return source.Catalog(ctx)
	}
	loadCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return source.Catalog(loadCtx)
}

func (r *CatalogRefresher) supported(entries []domain.CatalogEntry) []domain.CatalogEntry {
	if r.support == nil {
		return entries
	}
	kept := entries[:0:0]
	for _, entry := range entries {
		if r.support.Supports(entry.Asset.Kind) {
			kept = append(kept, entry)
		}
	}
	return kept
}
