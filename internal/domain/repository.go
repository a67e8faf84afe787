package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrMalformedResponse   = errors.New("malformed provider response")
)

type PriceProvider interface {
	Name() string
	Kind() AssetKind
	Quote(ctx context.Context, asset Asset) (decimal.Decimal, error)
}

// CatalogEntry aliases are listed by priority: key first, then name, then symbol.
// Rank is the market cap rank, 0 when unknown.
type CatalogEntry struct {
	Asset   Asset
	Aliases []string
	Rank    int
}

type CatalogSource interface {
	Name() string
	Catalog(ctx context.Context) ([]CatalogEntry, error)
}

type MarketLister interface {
	TopMarkets(ctx context.Context, limit int) ([]MarketSummary, error)
}

type AlertStore interface {
	ReplaceAll(ctx context.Context, alerts []Alert) error
	// LoadAll returns every well-formed record; malformed ones are reported in the second value.
	LoadAll(ctx context.Context) ([]Alert, []error)
}

type Notifier interface {
	Notify(ctx context.Context, userID string, text string) error
}
