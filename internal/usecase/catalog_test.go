package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type kinds map[domain.AssetKind]bool

func (k kinds) Supports(kind domain.AssetKind) bool { return k[kind] }

func TestCatalogRefreshSeedWins(t *testing.T) {
	seed := []domain.CatalogEntry{{Asset: bitcoin, Aliases: []string{"btc", "bitcoin"}}}
	fork := domain.NewAsset(domain.KindCrypto, "batcat", "btc", "Batcat")
	source := &fakeCatalog{name: "coins", entries: []domain.CatalogEntry{
		{Asset: fork, Aliases: []string{"batcat", "btc"}},
		{Asset: ethereum, Aliases: []string{"ethereum", "eth"}},
	}}
	resolver := NewResolver(nil, DefaultMatchThreshold)
	refresher := NewCatalogRefresher(seed, []domain.CatalogSource{source}, resolver, nil, time.Second, zap.NewNop())

	require.NoError(t, refresher.Refresh(context.Background()))

	asset, ok := resolver.Resolve("btc")
	require.True(t, ok)
	assert.Equal(t, bitcoin.ID, asset.ID)
	asset, ok = resolver.Resolve("batcat")
	require.True(t, ok)
	assert.Equal(t, fork.ID, asset.ID)
	assert.Equal(t, 5, resolver.Table().Len())
}

func TestCatalogRefreshFiltersUnsupportedKinds(t *testing.T) {
	seed := []domain.CatalogEntry{
		{Asset: bitcoin, Aliases: []string{"btc"}},
		{Asset: apple, Aliases: []string{"aapl"}},
	}
	resolver := NewResolver(nil, DefaultMatchThreshold)
	refresher := NewCatalogRefresher(seed, nil, resolver, kinds{domain.KindCrypto: true}, time.Second, zap.NewNop())

	require.NoError(t, refresher.Refresh(context.Background()))

	_, ok := resolver.Resolve("btc")
	assert.True(t, ok)
	_, ok = resolver.ResolveExact("aapl")
	assert.False(t, ok)
}

func TestCatalogRefreshKeepsPreviousTableOnFailure(t *testing.T) {
	source := &fakeCatalog{name: "coins", entries: []domain.CatalogEntry{{Asset: ethereum, Aliases: []string{"eth"}}}}
	resolver := NewResolver(nil, DefaultMatchThreshold)
	refresher := NewCatalogRefresher(nil, []domain.CatalogSource{source}, resolver, nil, time.Second, zap.NewNop())
	require.NoError(t, refresher.Refresh(context.Background()))

	source.entries = nil
	source.err = errBoom
	assert.ErrorIs(t, refresher.Refresh(context.Background()), errBoom)

	_, ok := resolver.Resolve("eth")
	assert.True(t, ok)
}

func TestCatalogRefreshInstallsSeedWhenFirstLoadFails(t *testing.T) {
	seed := []domain.CatalogEntry{{Asset: bitcoin, Aliases: []string{"btc"}}}
	resolver := NewResolver(nil, DefaultMatchThreshold)
	refresher := NewCatalogRefresher(seed, []domain.CatalogSource{&fakeCatalog{name: "down", err: errBoom}}, resolver, nil, time.Second, zap.NewNop())

	assert.Error(t, refresher.Refresh(context.Background()))
	_, ok := resolver.Resolve("btc")
	assert.True(t, ok)

	refresher.sources = []domain.CatalogSource{&fakeCatalog{name: "up", entries: []domain.CatalogEntry{{Asset: ethereum, Aliases: []string{"eth"}}}}}
	require.NoError(t, refresher.Refresh(context.Background()))
	_, ok = resolver.Resolve("eth")
	assert.True(t, ok)
}

func TestCatalogRefreshCanonicalKeysBeatOtherAliases(t *testing.T) {
	usdCoin := domain.NewAsset(domain.KindCrypto, "usd-coin", "usdc", "USDC")
	bridged := domain.NewAsset(domain.KindCrypto, "axelar-bridged-usdc", "usdc", "Axelar Bridged USDC")
	tron := domain.NewAsset(domain.KindCrypto, "tron", "trx", "TRON")
	aTron := domain.NewAsset(domain.KindCrypto, "a-tron-token", "tron", "A Tron Token")
	entry := func(asset domain.Asset) domain.CatalogEntry {
		return domain.CatalogEntry{Asset: asset, Aliases: []string{asset.Key(), asset.Name, asset.Symbol}}
	}
	source := &fakeCatalog{name: "coingecko", entries: []domain.CatalogEntry{
		entry(bridged), entry(usdCoin), entry(aTron), entry(tron),
	}}
	resolver := NewResolver(nil, DefaultMatchThreshold)
	refresher := NewCatalogRefresher(nil, []domain.CatalogSource{source}, resolver, nil, time.Second, zap.NewNop())

	require.NoError(t, refresher.Refresh(context.Background()))

	for alias, want := range map[string]domain.Asset{
		"usdc":         usdCoin,
		"tron":         tron,
		"trx":          tron,
		"a-tron-token": aTron,
		"usd-coin":     usdCoin,
	} {
		asset, ok := resolver.ResolveExact(alias)
		require.True(t, ok, alias)
		assert.Equal(t, want.ID, asset.ID, alias)
	}
}

func TestCatalogRefreshRankedSymbolWins(t *testing.T) {
	uniswap := domain.NewAsset(domain.KindCrypto, "uniswap", "uni", "Uniswap")
	bridgedUni := domain.NewAsset(domain.KindCrypto, "bridged-uniswap", "uni", "Bridged Uniswap")
	byRank := &fakeCatalog{name: "coingecko", entries: []domain.CatalogEntry{
		{Asset: bridgedUni, Aliases: []string{"bridged-uniswap", "Bridged Uniswap", "uni"}},
		{Asset: uniswap, Aliases: []string{"uniswap", "Uniswap", "uni"}, Rank: 20},
	}}
	resolver := NewResolver(nil, DefaultMatchThreshold)
	refresher := NewCatalogRefresher(nil, []domain.CatalogSource{byRank}, resolver, nil, time.Second, zap.NewNop())

	require.NoError(t, refresher.Refresh(context.Background()))

	asset, ok := resolver.ResolveExact("uni")
	require.True(t, ok)
	assert.Equal(t, uniswap.ID, asset.ID)
}
