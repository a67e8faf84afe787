package usecase

import (
	"math"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/agnivade/levenshtein"
)

const (
	DefaultMatchThreshold = 70
	exactScore            = 100
	maxStockHintLen       = 5
)

type Match struct {
	Asset domain.Asset
	Alias string
	Score int
}

type Resolver struct {
	table     atomic.Pointer[AliasTable]
	threshold int
}

func NewResolver(table *AliasTable, threshold int) *Resolver {
	if threshold <= 0 || threshold > exactScore {
		threshold = DefaultMatchThreshold
	}
	r := &Resolver{threshold: threshold}
	if table == nil {
		table = NewAliasTableBuilder().Build()
	}
	r.table.Store(table)
	return r
}

func (r *Resolver) Replace(table *AliasTable) {
	if table != nil {
		r.table.Store(table)
	}
}

func (r *Resolver) Table() *AliasTable {
	return r.table.Load()
}

func (r *Resolver) Resolve(text string) (domain.Asset, bool) {
	match, ok := r.Match(text)
	return match.Asset, ok
}

func (r *Resolver) ResolveExact(text string) (domain.Asset, bool) {
	return r.table.Load().Lookup(text)
}

func (r *Resolver) Match(text string) (Match, bool) {
	table := r.table.Load()
	query := NormalizeAlias(text)
	if query == "" {
		return Match{}, false
	}
	if asset, ok := table.Lookup(query); ok {
		return Match{Asset: asset, Alias: query, Score: exactScore}, true
	}

	hint := kindHint(text)
	queryLen := utf8.RuneCountInString(query)
	var best Match
	found := false
	for _, alias := range table.Aliases() {
		aliasLen := utf8.RuneCountInString(alias)
		if upperBound(queryLen, aliasLen) < r.threshold {
			continue
		}
		score := similarity(query, alias, queryLen, aliasLen)
		if score < r.threshold {
			continue
		}
		candidate := Match{Asset: table.assets[alias], Alias: alias, Score: score}
		if !found || better(candidate, best, hint) {
			best = candidate
			found = true
		}
	}
	return best, found
}

func better(a, b Match, hint domain.AssetKind) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	aHinted, bHinted := a.Asset.Kind == hint, b.Asset.Kind == hint
	if aHinted != bHinted {
		return aHinted
	}
	if a.Alias != b.Alias {
		return a.Alias < b.Alias
	}
	return a.Asset.ID < b.Asset.ID
}

func similarity(a, b string, aLen, bLen int) int {
	longest := max(aLen, bLen)
	if longest == 0 {
		return exactScore
	}
	distance := levenshtein.ComputeDistance(a, b)
	return int(math.Round(float64(exactScore) * (1 - float64(distance)/float64(longest))))
}

func upperBound(aLen, bLen int) int {
	longest := max(aLen, bLen)
	if longest == 0 {
		return exactScore
	}
	diff := aLen - bLen
	if diff < 0 {
		diff = -diff
	}
	return int(math.Round(float64(exactScore) * (1 - float64(diff)/float64(longest))))
}

func kindHint(raw string) domain.AssetKind {
	token := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(token)
	if length == 0 || length > maxStockHintLen {
		return domain.KindCrypto
	}
	for _, r := range token {
		if !unicode.IsUpper(r) {
			return domain.KindCrypto
		}
	}
	return domain.KindStock
}
