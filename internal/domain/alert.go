package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionAbove Direction = "ABOVE"
	DirectionBelow Direction = "BELOW"
)

func ParseDirection(input string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "ABOVE", ">", ">=":
		return DirectionAbove, true
	case "BELOW", "<", "<=":
		return DirectionBelow, true
	}
	return "", false
}

func (d Direction) Word() string {
	return strings.ToLower(string(d))
}

// Triggered reports whether price satisfies the condition. Both bounds are inclusive.
func (d Direction) Triggered(price, threshold decimal.Decimal) bool {
	switch d {
	case DirectionAbove:
		return price.GreaterThanOrEqual(threshold)
	case DirectionBelow:
		return price.LessThanOrEqual(threshold)
	}
	return false
}

type Alert struct {
	ID        string
	UserID    string
	Asset     Asset
	Direction Direction
	Threshold decimal.Decimal
	CreatedAt time.Time
}

func (a Alert) Key() AlertKey {
	return AlertKey{UserID: a.UserID, AssetID: a.Asset.ID}
}

type AlertKey struct {
	UserID  string
	AssetID string
}

type Notification struct {
	UserID    string
	Asset     Asset
	Price     decimal.Decimal
	Threshold decimal.Decimal
	Direction Direction
}

func NewNotification(alert Alert, price decimal.Decimal) Notification {
	return Notification{
		UserID:    alert.UserID,
		Asset:     alert.Asset,
		Price:     price,
		Threshold: alert.Threshold,
		Direction: alert.Direction,
	}
}

func (n Notification) Text() string {
	return fmt.Sprintf(
		"🔔 Alert: %s is %s %s (price $%s)",
		n.Asset.DisplayName(),
		n.Direction.Word(),
		n.Threshold.String(),
		n.Price.String(),
	)
}
