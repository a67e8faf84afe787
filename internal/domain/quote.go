package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PriceQuote struct {
	Asset     Asset
	Price     decimal.Decimal
	Source    string
	FetchedAt time.Time
}

type MarketSummary struct {
	Name   string
	Symbol string
	Price  decimal.Decimal
}
