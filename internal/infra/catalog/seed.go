package catalog

import (
	_ "embed"
	"fmt"

	"github.com/NasaVasa/pricebot/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Crypto []seedEntry `yaml:"crypto"`
	Stock  []seedEntry `yaml:"stock"`
}

type seedEntry struct {
	ID      string   `yaml:"id"`
	Symbol  string   `yaml:"symbol"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

func DefaultSeed() ([]domain.CatalogEntry, error) {
	return ParseSeed(defaultSeed)
}

func ParseSeed(data []byte) ([]domain.CatalogEntry, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse alias seed: %w", err)
	}

	entries := make([]domain.CatalogEntry, 0, len(file.Crypto)+len(file.Stock))
	for i, entry := range file.Crypto {
		if entry.ID == "" {
			return nil, fmt.Errorf("alias seed crypto[%d]: missing id", i)
		}
		asset := domain.NewAsset(domain.KindCrypto, entry.ID, entry.Symbol, entry.Name)
		entries = append(entries, domain.CatalogEntry{Asset: asset, Aliases: aliases(entry, entry.ID)})
	}
	for i, entry := range file.Stock {
		if entry.Symbol == "" {
			return nil, fmt.Errorf("alias seed stock[%d]: missing symbol", i)
		}
		asset := domain.NewAsset(domain.KindStock, entry.Symbol, entry.Symbol, entry.Name)
		entries = append(entries, domain.CatalogEntry{Asset: asset, Aliases: aliases(entry, entry.Symbol)})
	}
	return entries, nil
}

func aliases(entry seedEntry, key string) []string {
	out := make([]string, 0, len(entry.Aliases)+3)
	out = append(out, key)
	out = append(out, entry.Aliases...)
	return append(out, entry.Name, entry.Symbol)
}
