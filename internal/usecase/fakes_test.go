package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	bitcoin  = domain.NewAsset(domain.KindCrypto, "bitcoin", "btc", "Bitcoin")
	ethereum = domain.NewAsset(domain.KindCrypto, "ethereum", "eth", "Ethereum")
	apple    = domain.NewAsset(domain.KindStock, "aapl", "aapl", "Apple Inc")
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testTable() *AliasTable {
	builder := NewAliasTableBuilder()
	builder.AddEntries([]domain.CatalogEntry{
		{Asset: bitcoin, Aliases: []string{"bitcoin", "btc"}},
		{Asset: ethereum, Aliases: []string{"ethereum", "eth"}},
		{Asset: apple, Aliases: []string{"aapl", "apple", "Apple Inc"}},
	})
	return builder.Build()
}

type fakeProvider struct {
	name  string
	kind  domain.AssetKind
	calls atomic.Int32
	quote func(ctx context.Context, asset domain.Asset) (decimal.Decimal, error)
}

func (p *fakeProvider) Name() string           { return p.name }
func (p *fakeProvider) Kind() domain.AssetKind { return p.kind }

func (p *fakeProvider) Quote(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	p.calls.Add(1)
	return p.quote(ctx, asset)
}

func fixedProvider(name string, kind domain.AssetKind, price string) *fakeProvider {
	return &fakeProvider{name: name, kind: kind, quote: func(context.Context, domain.Asset) (decimal.Decimal, error) {
		return dec(price), nil
	}}
}

func failingProvider(name string, kind domain.AssetKind) *fakeProvider {
	return &fakeProvider{name: name, kind: kind, quote: func(context.Context, domain.Asset) (decimal.Decimal, error) {
		return decimal.Decimal{}, domain.ErrProviderUnavailable
	}}
}

// scriptedPrices returns queued prices per asset. An exhausted or missing queue is unavailable.
type scriptedPrices struct {
	mu     sync.Mutex
	queues map[string][]string
	hook   func(asset domain.Asset)
}

func newScriptedPrices(queues map[string][]string) *scriptedPrices {
	return &scriptedPrices{queues: queues}
}

func (s *scriptedPrices) GetPrice(_ context.Context, asset domain.Asset) (domain.PriceQuote, bool) {
	if s.hook != nil {
		s.hook(asset)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queues[asset.ID]
	if len(queue) == 0 {
		return domain.PriceQuote{}, false
	}
	s.queues[asset.ID] = queue[1:]
	if queue[0] == "" {
		return domain.PriceQuote{}, false
	}
	return domain.PriceQuote{Asset: asset, Price: dec(queue[0]), Source: "script"}, true
}

type sentMessage struct {
	UserID string
	Text   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
	hook func()
}

func (n *recordingNotifier) Notify(_ context.Context, userID, text string) error {
	if n.hook != nil {
		n.hook()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{UserID: userID, Text: text})
	return n.err
}

func (n *recordingNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

type memoryStore struct {
	mu       sync.Mutex
	saved    [][]domain.Alert
	load     []domain.Alert
	problems []error
	err      error
}

func (s *memoryStore) ReplaceAll(_ context.Context, alerts []domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, alerts)
	return nil
}

func (s *memoryStore) LoadAll(context.Context) ([]domain.Alert, []error) {
	return s.load, s.problems
}

func (s *memoryStore) saves() [][]domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]domain.Alert(nil), s.saved...)
}

type fakeCatalog struct {
	name    string
	entries []domain.CatalogEntry
	err     error
}

func (c *fakeCatalog) Name() string { return c.name }

func (c *fakeCatalog) Catalog(context.Context) ([]domain.CatalogEntry, error) {
	return c.entries, c.err
}

var errBoom = errors.New("boom")
