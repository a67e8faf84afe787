package pricesource

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const binanceQuoteAsset = "USDT"

type Binance struct {
	http httpGetter
}

func NewBinance(baseURL string, timeout time.Duration, logger *zap.Logger) *Binance {
	return &Binance{http: newHTTPGetter("binance", baseURL, timeout, logger)}
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) Kind() domain.AssetKind { return domain.KindCrypto }

func (b *Binance) Quote(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	if asset.Symbol == "" {
		return decimal.Decimal{}, missingField(b.Name(), "symbol for "+asset.ID)
	}
	pair := binancePair(asset.Symbol)
	path := fmt.Sprintf("/api/v3/ticker/price?symbol=%s", url.QueryEscape(pair))

	var ticker binanceTicker
	if err := b.http.getJSON(ctx, path, &ticker); err != nil {
		return decimal.Decimal{}, err
	}
	price, ok := ticker.Price.positive()
	if !ok {
		return decimal.Decimal{}, missingField(b.Name(), "price")
	}
	return price, nil
}

func binancePair(symbol string) string {
	return symbol + binanceQuoteAsset
}
