package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionTriggered(t *testing.T) {
	threshold := decimal.NewFromInt(30000)
	tests := []struct {
		direction Direction
		price     string
		want      bool
	}{
		{DirectionAbove, "29999", false},
		{DirectionAbove, "30000", true},
		{DirectionAbove, "30001", true},
		{DirectionBelow, "30001", false},
		{DirectionBelow, "30000", true},
		{DirectionBelow, "12.5", true},
		{Direction("SIDEWAYS"), "30000", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.direction.Triggered(decimal.RequireFromString(tt.price), threshold), "%s %s", tt.direction, tt.price)
	}
}

func TestParseDirection(t *testing.T) {
	for input, want := range map[string]Direction{"above": DirectionAbove, " Below ": DirectionBelow, ">=": DirectionAbove, "<": DirectionBelow} {
		got, ok := ParseDirection(input)
		require.True(t, ok, input)
		assert.Equal(t, want, got)
	}
	_, ok := ParseDirection("up")
	assert.False(t, ok)
}

func TestAssetIdentity(t *testing.T) {
	asset := NewAsset(KindStock, " AAPL ", "aapl", "Apple Inc")
	assert.Equal(t, "stock:aapl", asset.ID)
	assert.Equal(t, "AAPL", asset.Symbol)
	assert.Equal(t, "aapl", asset.Key())
	assert.Equal(t, "Apple Inc (AAPL)", asset.DisplayName())
	assert.True(t, asset.Valid())

	parsed, err := ParseAssetID("STOCK:AAPL")
	require.NoError(t, err)
	assert.Equal(t, asset.ID, parsed.ID)
	assert.Equal(t, "AAPL", parsed.Symbol)

	_, err = ParseAssetID("bond:ust10y")
	assert.Error(t, err)
	_, err = ParseAssetID("crypto:")
	assert.Error(t, err)

	assert.False(t, Asset{ID: "crypto:btc", Kind: KindStock}.Valid())
}

func TestNotificationText(t *testing.T) {
	alert := Alert{
		UserID:    "9",
		Asset:     NewAsset(KindCrypto, "bitcoin", "btc", "Bitcoin"),
		Direction: DirectionAbove,
		Threshold: decimal.NewFromInt(30000),
	}
	n := NewNotification(alert, decimal.RequireFromString("30001"))
	assert.Equal(t, "9", n.UserID)
	assert.Equal(t, "🔔 Alert: Bitcoin (BTC) is above 30000 (price $30001)", n.Text())
}
