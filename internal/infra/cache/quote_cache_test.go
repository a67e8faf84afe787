package cache

import (
	"context"
	"testing"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuoteCacheUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	cache := NewQuoteCache(client, time.Second)
	defer cache.Close()

	asset := domain.NewAsset(domain.KindCrypto, "bitcoin", "btc", "Bitcoin")
	_, ok, err := cache.Get(context.Background(), asset)
	assert.False(t, ok)
	assert.Error(t, err)

	err = cache.Set(context.Background(), domain.PriceQuote{Asset: asset, Price: decimal.NewFromInt(1)})
	assert.Error(t, err)
}
