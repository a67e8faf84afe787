package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultProviderTimeout = 4 * time.Second

type QuoteCache interface {
	Get(ctx context.Context, asset domain.Asset) (domain.PriceQuote, bool, error)
	Set(ctx context.Context, quote domain.PriceQuote) error
}

type PriceSource struct {
	providers map[domain.AssetKind][]domain.PriceProvider
	timeout   time.Duration
	cache     QuoteCache
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewPriceSource(providers []domain.PriceProvider, timeout time.Duration, cache QuoteCache, metrics Metrics, logger *zap.Logger) *PriceSource {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	byKind := make(map[domain.AssetKind][]domain.PriceProvider)
	for _, provider := range providers {
		byKind[provider.Kind()] = append(byKind[provider.Kind()], provider)
	}
	return &PriceSource{
		providers: byKind,
		timeout:   timeout,
		cache:     cache,
		metrics:   metricsOrNop(metrics),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *PriceSource) Supports(kind domain.AssetKind) bool {
	return len(s.providers[kind]) > 0
}

// GetPrice never returns an error; ok=false means the price is temporarily unknown.
func (s *PriceSource) GetPrice(ctx context.Context, asset domain.Asset) (domain.PriceQuote, bool) {
	if quote, ok := s.fromCache(ctx, asset); ok {
		return quote, true
	}

	for _, provider := range s.providers[asset.Kind] {
		if ctx.Err() != nil {
			break
		}
		price, err := s.quote(ctx, provider, asset)
		if err != nil {
			s.logger.Debug(
				"price provider failed, trying next",
				zap.String("provider", provider.Name()),
				zap.String("asset", asset.ID),
				zap.Error(err),
			)
			continue
		}

		quote := domain.PriceQuote{Asset: asset, Price: price, Source: provider.Name(), FetchedAt: s.now()}
		s.toCache(ctx, quote)
		return quote, true
	}

	s.logger.Warn("price unavailable from every provider", zap.String("asset", asset.ID), zap.String("kind", string(asset.Kind)))
	return domain.PriceQuote{}, false
}

func (s *PriceSource) quote(ctx context.Context, provider domain.PriceProvider, asset domain.Asset) (price decimal.Decimal, err error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: panic: %v", provider.Name(), domain.ErrProviderUnavailable, r)
		}
		s.metrics.ObserveProvider(provider.Name(), classify(callCtx, err), time.Since(start))
	}()

	price, err = provider.Quote(callCtx, asset)
	if err == nil && !price.IsPositive() {
		err = fmt.Errorf("%s: %w: non-positive price %s", provider.Name(), domain.ErrMalformedResponse, price)
	}
	return price, err
}

func (s *PriceSource) fromCache(ctx context.Context, asset domain.Asset) (domain.PriceQuote, bool) {
	if s.cache == nil {
		return domain.PriceQuote{}, false
	}
	quote, ok, err := s.cache.Get(ctx, asset)
	if err != nil {
		s.logger.Warn("quote cache read failed", zap.String("asset", asset.ID), zap.Error(err))
		return domain.PriceQuote{}, false
	}
	s.metrics.ObserveQuoteCache(ok)
	return quote, ok
}

func (s *PriceSource) toCache(ctx context.Context, quote domain.PriceQuote) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, quote); err != nil {
		s.logger.Warn("quote cache write failed", zap.String("asset", quote.Asset.ID), zap.Error(err))
	}
}

func classify(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, domain.ErrMalformedResponse):
		return OutcomeMalformed
	default:
		return OutcomeUnavailable
	}
}
