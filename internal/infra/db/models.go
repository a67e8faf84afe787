package db

import (
	"time"
)

type alertModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	UserID      string    `gorm:"uniqueIndex:idx_alerts_user_asset,priority:1;not null"`
	AssetID     string    `gorm:"uniqueIndex:idx_alerts_user_asset,priority:2;not null"`
	AssetKind   string    `gorm:"not null"`
	AssetSymbol string    `gorm:""`
	AssetName   string    `gorm:""`
	Direction   string    `gorm:"not null"`
	Threshold   string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (alertModel) TableName() string {
	return "alerts"
}
