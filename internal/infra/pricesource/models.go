package pricesource

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// NullableDecimal accepts JSON numbers, numeric strings and null. A field absent
// from the payload leaves Valid false.
type NullableDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

func (n *NullableDecimal) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		n.Valid = false
		return nil
	}
	trimmed := strings.Trim(strings.TrimSpace(string(data)), "\"")
	if trimmed == "" {
		n.Valid = false
		return nil
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		n.Valid = false
		return err
	}
	n.Decimal = dec
	n.Valid = true
	return nil
}

func (n NullableDecimal) positive() (decimal.Decimal, bool) {
	if !n.Valid || !n.Decimal.IsPositive() {
		return decimal.Decimal{}, false
	}
	return n.Decimal, true
}

type coinGeckoCoin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type coinGeckoMarket struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	CurrentPrice NullableDecimal `json:"current_price"`
}

type binanceTicker struct {
	Symbol string          `json:"symbol"`
	Price  NullableDecimal `json:"price"`
}

type binanceMiniTicker struct {
	EventType string          `json:"e"`
	Symbol    string          `json:"s"`
	Close     NullableDecimal `json:"c"`
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string          `json:"symbol"`
			ShortName          string          `json:"shortName"`
			RegularMarketPrice NullableDecimal `json:"regularMarketPrice"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

type finnhubQuote struct {
	Current NullableDecimal `json:"c"`
}

type finnhubSymbol struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Type        string `json:"type"`
}
