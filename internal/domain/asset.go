package domain

import (
	"fmt"
	"strings"
)

type AssetKind string

const (
	KindCrypto AssetKind = "CRYPTO"
	KindStock  AssetKind = "STOCK"
)

func (k AssetKind) Valid() bool {
	return k == KindCrypto || k == KindStock
}

func (k AssetKind) prefix() string {
	if k == KindStock {
		return "stock"
	}
	return "crypto"
}

// Asset is immutable once resolved. ID is lowercase and namespaced by kind,
// e.g. crypto:bitcoin or stock:aapl.
type Asset struct {
	ID     string
	Kind   AssetKind
	Symbol string
	Name   string
}

func NewAsset(kind AssetKind, key, symbol, name string) Asset {
	return Asset{
		ID:     AssetID(kind, key),
		Kind:   kind,
		Symbol: strings.ToUpper(strings.TrimSpace(symbol)),
		Name:   strings.TrimSpace(name),
	}
}

func AssetID(kind AssetKind, key string) string {
	return kind.prefix() + ":" + strings.ToLower(strings.TrimSpace(key))
}

func (a Asset) Key() string {
	if i := strings.IndexByte(a.ID, ':'); i >= 0 {
		return a.ID[i+1:]
	}
	return a.ID
}

func (a Asset) DisplayName() string {
	switch {
	case a.Name != "" && a.Symbol != "" && !strings.EqualFold(a.Name, a.Symbol):
		return fmt.Sprintf("%s (%s)", a.Name, a.Symbol)
	case a.Name != "":
		return a.Name
	case a.Symbol != "":
		return a.Symbol
	default:
		return a.Key()
	}
}

func (a Asset) Valid() bool {
	return a.Kind.Valid() && a.Key() != "" && strings.HasPrefix(a.ID, a.Kind.prefix()+":")
}

func ParseAssetID(id string) (Asset, error) {
	prefix, key, ok := strings.Cut(strings.ToLower(strings.TrimSpace(id)), ":")
	if !ok || key == "" {
		return Asset{}, fmt.Errorf("invalid asset id %q", id)
	}
	switch prefix {
	case "crypto":
		return Asset{ID: AssetID(KindCrypto, key), Kind: KindCrypto}, nil
	case "stock":
		return Asset{ID: AssetID(KindStock, key), Kind: KindStock, Symbol: strings.ToUpper(key)}, nil
	}
	return Asset{}, fmt.Errorf("invalid asset kind in %q", id)
}
