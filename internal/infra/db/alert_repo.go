package db

import (
	"context"
	"fmt"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const insertBatchSize = 200

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) ReplaceAll(ctx context.Context, alerts []domain.Alert) error {
	models := make([]alertModel, 0, len(alerts))
	for _, alert := range alerts {
		models = append(models, mapAlertToModel(alert))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&alertModel{}).Error; err != nil {
			return fmt.Errorf("clear alerts: %w", err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&models, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert alerts: %w", err)
		}
		return nil
	})
}

func (r *AlertRepository) LoadAll(ctx context.Context) ([]domain.Alert, []error) {
	var models []alertModel
	if err := r.db.WithContext(ctx).Order("created_at").Find(&models).Error; err != nil {
		return nil, []error{fmt.Errorf("load alerts: %w", err)}
	}
	return mapAlertsToDomain(models)
}

func mapAlertsToDomain(models []alertModel) ([]domain.Alert, []error) {
	alerts := make([]domain.Alert, 0, len(models))
	var problems []error
	for _, model := range models {
		alert, err := mapAlertToDomain(model)
		if err != nil {
			problems = append(problems, fmt.Errorf("alert %s: %w", model.ID, err))
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts, problems
}

func mapAlertToDomain(model alertModel) (domain.Alert, error) {
	if model.UserID == "" {
		return domain.Alert{}, fmt.Errorf("missing user id")
	}
	asset := domain.Asset{
		ID:     model.AssetID,
		Kind:   domain.AssetKind(model.AssetKind),
		Symbol: model.AssetSymbol,
		Name:   model.AssetName,
	}
	if !asset.Valid() {
		return domain.Alert{}, fmt.Errorf("invalid asset %q of kind %q", model.AssetID, model.AssetKind)
	}
	direction, ok := domain.ParseDirection(model.Direction)
	if !ok {
		return domain.Alert{}, fmt.Errorf("unknown direction %q", model.Direction)
	}
	threshold, err := decimal.NewFromString(model.Threshold)
	if err != nil || !threshold.IsPositive() {
		return domain.Alert{}, fmt.Errorf("invalid threshold %q", model.Threshold)
	}
	return domain.Alert{
		ID:        model.ID,
		UserID:    model.UserID,
		Asset:     asset,
		Direction: direction,
		Threshold: threshold,
		CreatedAt: model.CreatedAt,
	}, nil
}

func mapAlertToModel(alert domain.Alert) alertModel {
	return alertModel{
		ID:          alert.ID,
		UserID:      alert.UserID,
		AssetID:     alert.Asset.ID,
		AssetKind:   string(alert.Asset.Kind),
		AssetSymbol: alert.Asset.Symbol,
		AssetName:   alert.Asset.Name,
		Direction:   string(alert.Direction),
		Threshold:   alert.Threshold.String(),
		CreatedAt:   alert.CreatedAt,
	}
}
