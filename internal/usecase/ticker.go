package usecase

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/NasaVasa/pricebot/internal/domain"
)

// tickerAsset builds a stock asset for a bare symbol missing from the alias table,
// e.g. "IBM". Callers keep it only once a provider has quoted it.
func tickerAsset(text string) (domain.Asset, bool) {
	token := strings.Trim(strings.TrimSpace(text), "?!.,$")
	length := utf8.RuneCountInString(token)
	if length == 0 || length > maxStockHintLen {
		return domain.Asset{}, false
	}
	for _, r := range token {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return domain.Asset{}, false
		}
	}
	return domain.NewAsset(domain.KindStock, token, token, ""), true
}

func quoteTicker(ctx context.Context, prices PriceGetter, text string) (domain.PriceQuote, bool) {
	if prices == nil {
		return domain.PriceQuote{}, false
	}
	asset, ok := tickerAsset(text)
	if !ok {
		return domain.PriceQuote{}, false
	}
	quote, ok := prices.GetPrice(ctx, asset)
	if !ok {
		return domain.PriceQuote{}, false
	}
	quote.Asset = asset
	return quote, true
}
