package pricesource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const streamReconnectDelay = 5 * time.Second

type streamPrice struct {
	price      decimal.Decimal
	observedAt time.Time
}

// BinanceStream keeps the last close price of every USDT pair seen on the
// all-market mini ticker stream. Quote only answers from that cache.
type BinanceStream struct {
	url         string
	dialer      *websocket.Dialer
	maxAge      time.Duration
	readTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time

	mu     sync.RWMutex
	prices map[string]streamPrice
}

func NewBinanceStream(url string, maxAge time.Duration, logger *zap.Logger) *BinanceStream {
	return &BinanceStream{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		maxAge:      maxAge,
		readTimeout: time.Minute,
		logger:      logger.With(zap.String("provider", "binance-stream")),
		now:         time.Now,
		prices:      make(map[string]streamPrice),
	}
}

func (s *BinanceStream) Name() string { return "binance-stream" }

func (s *BinanceStream) Kind() domain.AssetKind { return domain.KindCrypto }

func (s *BinanceStream) Quote(_ context.Context, asset domain.Asset) (decimal.Decimal, error) {
	if asset.Symbol == "" {
		return decimal.Decimal{}, missingField(s.Name(), "symbol for "+asset.ID)
	}
	s.mu.RLock()
	cached, ok := s.prices[binancePair(asset.Symbol)]
	s.mu.RUnlock()

	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%s: %w: no tick for %s", s.Name(), domain.ErrProviderUnavailable, asset.Symbol)
	}
	if age := s.now().Sub(cached.observedAt); age > s.maxAge {
		return decimal.Decimal{}, fmt.Errorf("%s: %w: tick for %s is %s old", s.Name(), domain.ErrProviderUnavailable, asset.Symbol, age)
	}
	return cached.price, nil
}

func (s *BinanceStream) Run(ctx context.Context) error {
	for {
		if err := s.consume(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("ws stream interrupted", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(streamReconnectDelay):
		}
	}
}

func (s *BinanceStream) consume(ctx context.Context) error {
	s.logger.Info("ws connect start", zap.String("url", s.url))
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	s.logger.Info("ws connect success", zap.String("url", s.url))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		if s.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := s.handleMessage(data); err != nil {
			s.logger.Debug("ws message ignored", zap.Error(err))
		}
	}
}

func (s *BinanceStream) handleMessage(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty message")
	}

	var tickers []binanceMiniTicker
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &tickers); err != nil {
			return fmt.Errorf("decode ticker array: %w", err)
		}
	} else {
		var ticker binanceMiniTicker
		if err := json.Unmarshal(trimmed, &ticker); err != nil {
			return fmt.Errorf("decode ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	s.observe(tickers)
	return nil
}

func (s *BinanceStream) observe(tickers []binanceMiniTicker) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ticker := range tickers {
		if ticker.EventType != "24hrMiniTicker" || ticker.Symbol == "" {
			continue
		}
		price, ok := ticker.Close.positive()
		if !ok {
			continue
		}
		s.prices[ticker.Symbol] = streamPrice{price: price, observedAt: now}
	}
}
