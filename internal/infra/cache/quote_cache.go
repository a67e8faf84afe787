package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type cachedQuote struct {
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}

type QuoteCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

func NewQuoteCache(client redis.UniversalClient, ttl time.Duration) *QuoteCache {
	return &QuoteCache{client: client, prefix: "pricebot:quote:", ttl: ttl}
}

func (c *QuoteCache) Get(ctx context.Context, asset domain.Asset) (domain.PriceQuote, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+asset.ID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PriceQuote{}, false, nil
		}
		return domain.PriceQuote{}, false, fmt.Errorf("failed to get quote from redis: %w", err)
	}
	var cached cachedQuote
	if err := json.Unmarshal(data, &cached); err != nil {
		return domain.PriceQuote{}, false, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return domain.PriceQuote{
		Asset:     asset,
		Price:     cached.Price,
		Source:    cached.Source,
		FetchedAt: cached.FetchedAt,
	}, true, nil
}

func (c *QuoteCache) Set(ctx context.Context, quote domain.PriceQuote) error {
	data, err := json.Marshal(cachedQuote{Price: quote.Price, Source: quote.Source, FetchedAt: quote.FetchedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	return c.client.Set(ctx, c.prefix+quote.Asset.ID, data, c.ttl).Err()
}

func (c *QuoteCache) Close() error {
	return c.client.Close()
}
