package pricesource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Finnhub struct {
	http   httpGetter
	apiKey string
}

func NewFinnhub(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Finnhub {
	return &Finnhub{http: newHTTPGetter("finnhub", baseURL, timeout, logger), apiKey: apiKey}
}

func (f *Finnhub) Name() string { return "finnhub" }

func (f *Finnhub) Kind() domain.AssetKind { return domain.KindStock }

func (f *Finnhub) Quote(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	path := fmt.Sprintf("/quote?symbol=%s&token=%s", url.QueryEscape(stockSymbol(asset)), url.QueryEscape(f.apiKey))

	var quote finnhubQuote
	if err := f.http.getJSON(ctx, path, &quote); err != nil {
		return decimal.Decimal{}, err
	}
	// unknown symbols come back as all zeroes
	price, ok := quote.Current.positive()
	if !ok {
		return decimal.Decimal{}, missingField(f.Name(), "c")
	}
	return price, nil
}

func (f *Finnhub) Catalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	path := fmt.Sprintf("/stock/symbol?exchange=US&token=%s", url.QueryEscape(f.apiKey))

	var symbols []finnhubSymbol
	if err := f.http.getJSON(ctx, path, &symbols); err != nil {
		return nil, err
	}

	entries := make([]domain.CatalogEntry, 0, len(symbols))
	for _, symbol := range symbols {
		if symbol.Symbol == "" || symbol.Type != "Common Stock" {
			continue
		}
		name := titleCase(symbol.Description)
		entries = append(entries, domain.CatalogEntry{
			Asset:   domain.NewAsset(domain.KindStock, symbol.Symbol, symbol.Symbol, name),
			Aliases: []string{symbol.Symbol, symbol.Description},
		})
	}
	return entries, nil
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
