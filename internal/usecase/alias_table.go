package usecase

import (
	"sort"
	"strings"

	"github.com/NasaVasa/pricebot/internal/domain"
)

type AliasTable struct {
	assets map[string]domain.Asset
	keys   []string
}

func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

func (t *AliasTable) Lookup(alias string) (domain.Asset, bool) {
	if t == nil {
		return domain.Asset{}, false
	}
	asset, ok := t.assets[NormalizeAlias(alias)]
	return asset, ok
}

func (t *AliasTable) Aliases() []string {
	if t == nil {
		return nil
	}
	return t.keys
}

type AliasTableBuilder struct {
	assets map[string]domain.Asset
}

func NewAliasTableBuilder() *AliasTableBuilder {
	return &AliasTableBuilder{assets: make(map[string]domain.Asset)}
}

func (b *AliasTableBuilder) Add(alias string, asset domain.Asset) bool {
	key := NormalizeAlias(alias)
	if key == "" || !asset.Valid() {
		return false
	}
	if _, exists := b.assets[key]; exists {
		return false
	}
	b.assets[key] = asset
	return true
}

// AddEntries adds the i-th alias of every entry before any entry's (i+1)-th, so a
// canonical key is never taken by another asset's name or symbol. Within a pass
// ranked entries go first, then lower asset IDs.
func (b *AliasTableBuilder) AddEntries(entries []domain.CatalogEntry) int {
	sorted := make([]domain.CatalogEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return entryBefore(sorted[i], sorted[j]) })

	passes := 0
	for _, entry := range sorted {
		passes = max(passes, len(entry.Aliases))
	}

	added := 0
	for pass := 0; pass < passes; pass++ {
		for _, entry := range sorted {
			if pass < len(entry.Aliases) && b.Add(entry.Aliases[pass], entry.Asset) {
				added++
			}
		}
	}
	return added
}

func entryBefore(a, b domain.CatalogEntry) bool {
	aRanked, bRanked := a.Rank > 0, b.Rank > 0
	switch {
	case aRanked && bRanked && a.Rank != b.Rank:
		return a.Rank < b.Rank
	case aRanked != bRanked:
		return aRanked
	}
	return a.Asset.ID < b.Asset.ID
}

func (b *AliasTableBuilder) Len() int {
	return len(b.assets)
}

func (b *AliasTableBuilder) Build() *AliasTable {
	assets := make(map[string]domain.Asset, len(b.assets))
	keys := make([]string, 0, len(b.assets))
	for key, asset := range b.assets {
		assets[key] = asset
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &AliasTable{assets: assets, keys: keys}
}

func NormalizeAlias(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
