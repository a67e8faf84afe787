package usecase

import (
	"sort"
	"sync"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Registry struct {
	mu      sync.Mutex
	alerts  map[domain.AlertKey]domain.Alert
	changes chan struct{}
	now     func() time.Time
	newID   func() string
}

func NewRegistry() *Registry {
	return &Registry{
		alerts:  make(map[domain.AlertKey]domain.Alert),
		changes: make(chan struct{}, 1),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

func (r *Registry) Set(userID string, asset domain.Asset, direction domain.Direction, threshold decimal.Decimal) domain.Alert {
	r.mu.Lock()
	alert := domain.Alert{
		ID:        r.newID(),
		UserID:    userID,
		Asset:     asset,
		Direction: direction,
		Threshold: threshold,
		CreatedAt: r.now().UTC(),
	}
	r.alerts[alert.Key()] = alert
	r.mu.Unlock()

	r.signal()
	return alert
}

func (r *Registry) Remove(userID, assetID string) bool {
	r.mu.Lock()
	key := domain.AlertKey{UserID: userID, AssetID: assetID}
	_, ok := r.alerts[key]
	delete(r.alerts, key)
	r.mu.Unlock()

	if ok {
		r.signal()
	}
	return ok
}

// Claim removes alert only if it is still the live entry for its key. Exactly one
// caller can claim a given alert; a cancelled or replaced alert cannot be claimed.
func (r *Registry) Claim(alert domain.Alert) bool {
	r.mu.Lock()
	current, ok := r.alerts[alert.Key()]
	claimed := ok && current.ID == alert.ID
	if claimed {
		delete(r.alerts, alert.Key())
	}
	r.mu.Unlock()

	if claimed {
		r.signal()
	}
	return claimed
}

func (r *Registry) ListActive() []domain.Alert {
	r.mu.Lock()
	alerts := make([]domain.Alert, 0, len(r.alerts))
	for _, alert := range r.alerts {
		alerts = append(alerts, alert)
	}
	r.mu.Unlock()

	sortAlerts(alerts)
	return alerts
}

func (r *Registry) ListByUser(userID string) []domain.Alert {
	r.mu.Lock()
	alerts := make([]domain.Alert, 0)
	for key, alert := range r.alerts {
		if key.UserID == userID {
			alerts = append(alerts, alert)
		}
	}
	r.mu.Unlock()

	sortAlerts(alerts)
	return alerts
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

func (r *Registry) Restore(alerts []domain.Alert) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	restored := 0
	for _, alert := range alerts {
		if alert.ID == "" {
			alert.ID = r.newID()
		}
		if existing, ok := r.alerts[alert.Key()]; ok && existing.CreatedAt.After(alert.CreatedAt) {
			continue
		}
		r.alerts[alert.Key()] = alert
		restored++
	}
	return restored
}

// Changes fires at least once after any sequence of mutations.
func (r *Registry) Changes() <-chan struct{} {
	return r.changes
}

func (r *Registry) signal() {
	select {
	case r.changes <- struct{}{}:
	default:
	}
}

func sortAlerts(alerts []domain.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].UserID != alerts[j].UserID {
			return alerts[i].UserID < alerts[j].UserID
		}
		return alerts[i].Asset.ID < alerts[j].Asset.ID
	})
}
