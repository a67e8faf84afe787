package usecase

import (
	"context"
	"strings"

	"github.com/NasaVasa/pricebot/internal/domain"
)

const DefaultTopMarkets = 5

type PriceUsecase struct {
	resolver *Resolver
	prices   PriceGetter
	markets  domain.MarketLister
}

func NewPriceUsecase(resolver *Resolver, prices PriceGetter, markets domain.MarketLister) *PriceUsecase {
	return &PriceUsecase{resolver: resolver, prices: prices, markets: markets}
}

// Lookup falls back to exact aliases word by word, then to quoting text as a ticker.
func (u *PriceUsecase) Lookup(ctx context.Context, text string) (domain.PriceQuote, error) {
	asset, ok := u.resolve(text)
	if !ok {
		if quote, ok := quoteTicker(ctx, u.prices, text); ok {
			return quote, nil
		}
		return domain.PriceQuote{}, ErrAssetNotFound
	}
	quote, ok := u.prices.GetPrice(ctx, asset)
	if !ok {
		return domain.PriceQuote{Asset: asset}, ErrPriceUnavailable
	}
	return quote, nil
}

func (u *PriceUsecase) TopMarkets(ctx context.Context, limit int) ([]domain.MarketSummary, error) {
	if u.markets == nil {
		return nil, ErrPriceUnavailable
	}
	if limit <= 0 {
		limit = DefaultTopMarkets
	}
	markets, err := u.markets.TopMarkets(ctx, limit)
	if err != nil || len(markets) == 0 {
		return nil, ErrPriceUnavailable
	}
	return markets, nil
}

func (u *PriceUsecase) resolve(text string) (domain.Asset, bool) {
	if asset, ok := u.resolver.Resolve(text); ok {
		return asset, true
	}
	words := strings.Fields(text)
	if len(words) < 2 {
		return domain.Asset{}, false
	}
	for _, word := range words {
		if asset, ok := u.resolver.ResolveExact(strings.Trim(word, "?!.,")); ok {
			return asset, true
		}
	}
	return domain.Asset{}, false
}
