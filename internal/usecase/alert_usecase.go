package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrAssetNotFound    = errors.New("asset not found")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrAlertNotFound    = errors.New("alert not found")
	ErrPriceUnavailable = errors.New("price unavailable")
)

type AlertUsecase struct {
	resolver *Resolver
	registry *Registry
	prices   PriceGetter
}

func NewAlertUsecase(resolver *Resolver, registry *Registry, prices PriceGetter) *AlertUsecase {
	return &AlertUsecase{resolver: resolver, registry: registry, prices: prices}
}

func (u *AlertUsecase) SetAlert(ctx context.Context, userID, assetText, direction, threshold string) (domain.Alert, error) {
	dir, ok := domain.ParseDirection(direction)
	if !ok {
		return domain.Alert{}, ErrInvalidDirection
	}

	value, err := decimal.NewFromString(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(threshold), "$")))
	if err != nil || !value.IsPositive() {
		return domain.Alert{}, ErrInvalidThreshold
	}

	asset, ok := u.resolver.Resolve(assetText)
	if !ok {
		quote, quoted := quoteTicker(ctx, u.prices, assetText)
		if !quoted {
			return domain.Alert{}, ErrAssetNotFound
		}
		asset = quote.Asset
	}

	return u.registry.Set(userID, asset, dir, value), nil
}

func (u *AlertUsecase) ListAlerts(userID string) []domain.Alert {
	return u.registry.ListByUser(userID)
}

func (u *AlertUsecase) CancelAlert(userID, assetText string) (domain.Asset, error) {
	normalized := NormalizeAlias(assetText)
	for _, alert := range u.registry.ListByUser(userID) {
		if alert.Asset.ID == normalized || NormalizeAlias(alert.Asset.Symbol) == normalized || NormalizeAlias(alert.Asset.Name) == normalized {
			if u.registry.Remove(userID, alert.Asset.ID) {
				return alert.Asset, nil
			}
		}
	}

	asset, ok := u.resolver.Resolve(assetText)
	if !ok {
		return domain.Asset{}, ErrAlertNotFound
	}
	if !u.registry.Remove(userID, asset.ID) {
		return asset, ErrAlertNotFound
	}
	return asset, nil
}
