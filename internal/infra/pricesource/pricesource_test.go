package pricesource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	bitcoin = domain.NewAsset(domain.KindCrypto, "bitcoin", "btc", "Bitcoin")
	apple   = domain.NewAsset(domain.KindStock, "aapl", "aapl", "Apple Inc")
)

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestCoinGeckoQuote(t *testing.T) {
	server := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		respond(`{"bitcoin":{"usd":30001.5}}`)(w, r)
	})

	price, err := NewCoinGecko(server.URL, time.Second, zap.NewNop()).Quote(context.Background(), bitcoin)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30001.5").Equal(price))
}

func TestCoinGeckoQuoteFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		target  error
	}{
		{name: "missing field", handler: respond(`{"bitcoin":{}}`), target: domain.ErrMalformedResponse},
		{name: "unknown coin", handler: respond(`{}`), target: domain.ErrMalformedResponse},
		{name: "not json", handler: respond(`<html>`), target: domain.ErrMalformedResponse},
		{name: "server error", handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}, target: domain.ErrProviderUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := serve(t, tc.handler)
			_, err := NewCoinGecko(server.URL, time.Second, zap.NewNop()).Quote(context.Background(), bitcoin)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestProviderHonoursContextDeadline(t *testing.T) {
	server := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := NewCoinGecko(server.URL, 10*time.Second, zap.NewNop()).Quote(ctx, bitcoin)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCoinGeckoCatalogAndTopMarkets(t *testing.T) {
	server := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/list":
			respond(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},
				{"id":"wrapped-bitcoin","symbol":"wbtc","name":"Wrapped Bitcoin"},
				{"id":"","symbol":"x","name":"x"}]`)(w, r)
		case "/coins/markets":
			switch r.URL.Query().Get("per_page") {
			case "2":
				respond(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":30000},
					{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":null}]`)(w, r)
			case "250":
				respond(`[{"id":"ethereum","symbol":"eth","name":"Ethereum"},{"id":"bitcoin","symbol":"btc","name":"Bitcoin"}]`)(w, r)
			default:
				t.Errorf("unexpected per_page %q", r.URL.Query().Get("per_page"))
				http.NotFound(w, r)
			}
		default:
			http.NotFound(w, r)
		}
	})
	client := NewCoinGecko(server.URL, time.Second, zap.NewNop())

	entries, err := client.Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "crypto:bitcoin", entries[0].Asset.ID)
	assert.Equal(t, "BTC", entries[0].Asset.Symbol)
	assert.Equal(t, []string{"bitcoin", "Bitcoin", "btc"}, entries[0].Aliases)
	assert.Equal(t, 2, entries[0].Rank)
	assert.Equal(t, 0, entries[1].Rank)

	markets, err := client.TopMarkets(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "BTC", markets[0].Symbol)
}

func TestCoinGeckoCatalogWithoutRanks(t *testing.T) {
	server := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/coins/list" {
			respond(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin"}]`)(w, r)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	})

	entries, err := NewCoinGecko(server.URL, time.Second, zap.NewNop()).Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].Rank)
}

func TestBinanceQuote(t *testing.T) {
	server := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		respond(`{"symbol":"BTCUSDT","price":"29999.10000000"}`)(w, r)
	})

	price, err := NewBinance(server.URL, time.Second, zap.NewNop()).Quote(context.Background(), bitcoin)
	require.NoError(t, err)
	assert.Equal(t, "29999.1", price.String())

	_, err = NewBinance(server.URL, time.Second, zap.NewNop()).Quote(context.Background(), domain.Asset{ID: "crypto:nosymbol", Kind: domain.KindCrypto})
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestYahooQuote(t *testing.T) {
	server := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		respond(`{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":189.84}]}}`)(w, r)
	})

	price, err := NewYahoo(server.URL, time.Second, zap.NewNop()).Quote(context.Background(), apple)
	require.NoError(t, err)
	assert.Equal(t, "189.84", price.String())
}

func TestYahooQuoteEmptyResult(t *testing.T) {
	server := serve(t, respond(`{"quoteResponse":{"result":[]}}`))
	_, err := NewYahoo(server.URL, time.Second, zap.NewNop()).Quote(context.Background(), apple)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestFinnhub(t *testing.T) {
	server := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("token"))
		switch r.URL.Path {
		case "/quote":
			if r.URL.Query().Get("symbol") == "AAPL" {
				respond(`{"c":190.1,"h":191,"l":188}`)(w, r)
				return
			}
			respond(`{"c":0,"h":0,"l":0}`)(w, r)
		case "/stock/symbol":
			respond(`[{"symbol":"AAPL","description":"APPLE INC","type":"Common Stock"},
				{"symbol":"SPY","description":"SPDR S&P 500","type":"ETP"}]`)(w, r)
		}
	})
	client := NewFinnhub(server.URL, "key", time.Second, zap.NewNop())

	price, err := client.Quote(context.Background(), apple)
	require.NoError(t, err)
	assert.Equal(t, "190.1", price.String())

	_, err = client.Quote(context.Background(), domain.NewAsset(domain.KindStock, "zzzz", "zzzz", ""))
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)

	entries, err := client.Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "stock:aapl", entries[0].Asset.ID)
	assert.Equal(t, "Apple Inc", entries[0].Asset.Name)
}

func TestNullableDecimal(t *testing.T) {
	var payload struct {
		Number  NullableDecimal `json:"number"`
		String  NullableDecimal `json:"string"`
		Null    NullableDecimal `json:"null"`
		Missing NullableDecimal `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"number":1.25,"string":"0.5","null":null}`), &payload))
	assert.True(t, payload.Number.Valid)
	assert.Equal(t, "1.25", payload.Number.Decimal.String())
	assert.True(t, payload.String.Valid)
	assert.False(t, payload.Null.Valid)
	assert.False(t, payload.Missing.Valid)

	assert.Error(t, json.Unmarshal([]byte(`{"number":"abc"}`), &payload))
}

func TestBinanceStreamCacheStaleness(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	stream := NewBinanceStream("ws://unused", 15*time.Second, zap.NewNop())
	stream.now = func() time.Time { return now }

	_, err := stream.Quote(context.Background(), bitcoin)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)

	require.NoError(t, stream.handleMessage([]byte(`[{"e":"24hrMiniTicker","s":"BTCUSDT","c":"30100.00"},{"e":"24hrMiniTicker","s":"ETHUSDT","c":"0"}]`)))
	price, err := stream.Quote(context.Background(), bitcoin)
	require.NoError(t, err)
	assert.Equal(t, "30100", price.String())

	now = now.Add(16 * time.Second)
	_, err = stream.Quote(context.Background(), bitcoin)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)

	assert.Error(t, stream.handleMessage([]byte(" ")))
	assert.Error(t, stream.handleMessage([]byte("{not json")))
}

func TestBinanceStreamRun(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := serve(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`[{"e":"24hrMiniTicker","s":"BTCUSDT","c":"31000.5"}]`))
		_, _, _ = conn.ReadMessage()
	})

	stream := NewBinanceStream("ws"+strings.TrimPrefix(server.URL, "http"), time.Minute, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- stream.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := stream.Quote(context.Background(), bitcoin)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
}
