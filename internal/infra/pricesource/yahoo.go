package pricesource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Yahoo struct {
	http httpGetter
}

func NewYahoo(baseURL string, timeout time.Duration, logger *zap.Logger) *Yahoo {
	return &Yahoo{http: newHTTPGetter("yahoo", baseURL, timeout, logger)}
}

func (y *Yahoo) Name() string { return "yahoo" }

func (y *Yahoo) Kind() domain.AssetKind { return domain.KindStock }

func (y *Yahoo) Quote(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	symbol := stockSymbol(asset)
	path := fmt.Sprintf("/v7/finance/quote?symbols=%s", url.QueryEscape(symbol))

	var payload yahooQuoteResponse
	if err := y.http.getJSON(ctx, path, &payload); err != nil {
		return decimal.Decimal{}, err
	}
	for _, result := range payload.QuoteResponse.Result {
		if !strings.EqualFold(result.Symbol, symbol) {
			continue
		}
		if price, ok := result.RegularMarketPrice.positive(); ok {
			return price, nil
		}
	}
	return decimal.Decimal{}, missingField(y.Name(), "regularMarketPrice")
}

func stockSymbol(asset domain.Asset) string {
	if asset.Symbol != "" {
		return asset.Symbol
	}
	return strings.ToUpper(asset.Key())
}
