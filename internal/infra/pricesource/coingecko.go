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

const catalogRankDepth = 250

type CoinGecko struct {
	http httpGetter
}

func NewCoinGecko(baseURL string, timeout time.Duration, logger *zap.Logger) *CoinGecko {
	return &CoinGecko{http: newHTTPGetter("coingecko", baseURL, timeout, logger)}
}

func (c *CoinGecko) Name() string { return "coingecko" }

func (c *CoinGecko) Kind() domain.AssetKind { return domain.KindCrypto }

func (c *CoinGecko) Quote(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	id := asset.Key()
	path := fmt.Sprintf("/simple/price?ids=%s&vs_currencies=usd", url.QueryEscape(id))

	var payload map[string]map[string]NullableDecimal
	if err := c.http.getJSON(ctx, path, &payload); err != nil {
		return decimal.Decimal{}, err
	}
	price, ok := payload[id]["usd"].positive()
	if !ok {
		return decimal.Decimal{}, missingField(c.Name(), id+".usd")
	}
	return price, nil
}

func (c *CoinGecko) Catalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	var coins []coinGeckoCoin
	if err := c.http.getJSON(ctx, "/coins/list", &coins); err != nil {
		return nil, err
	}

	ranks := make(map[string]int, catalogRankDepth)
	if markets, err := c.markets(ctx, catalogRankDepth); err != nil {
		c.http.logger.Warn("coingecko market ranks unavailable", zap.Error(err))
	} else {
		for i, market := range markets {
			ranks[market.ID] = i + 1
		}
	}

	entries := make([]domain.CatalogEntry, 0, len(coins))
	for _, coin := range coins {
		if strings.TrimSpace(coin.ID) == "" {
			continue
		}
		entries = append(entries, domain.CatalogEntry{
			Asset:   domain.NewAsset(domain.KindCrypto, coin.ID, coin.Symbol, coin.Name),
			Aliases: []string{coin.ID, coin.Name, coin.Symbol},
			Rank:    ranks[coin.ID],
		})
	}
	return entries, nil
}

func (c *CoinGecko) TopMarkets(ctx context.Context, limit int) ([]domain.MarketSummary, error) {
	markets, err := c.markets(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]domain.MarketSummary, 0, len(markets))
	for _, market := range markets {
		price, ok := market.CurrentPrice.positive()
		if !ok {
			continue
		}
		result = append(result, domain.MarketSummary{
			Name:   market.Name,
			Symbol: strings.ToUpper(market.Symbol),
			Price:  price,
		})
	}
	return result, nil
}

func (c *CoinGecko) markets(ctx context.Context, limit int) ([]coinGeckoMarket, error) {
	path := fmt.Sprintf("/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1", limit)
	var markets []coinGeckoMarket
	if err := c.http.getJSON(ctx, path, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}
