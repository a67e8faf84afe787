package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultEvaluatorInterval = 30 * time.Second
	DefaultMaxInFlight       = 8
)

type EvaluatorState int32

const (
	StateIdle EvaluatorState = iota
	StateFetching
	StateEvaluating
	StateNotifying
)

func (s EvaluatorState) String() string {
	switch s {
	case StateFetching:
		return "FETCHING"
	case StateEvaluating:
		return "EVALUATING"
	case StateNotifying:
		return "NOTIFYING"
	default:
		return "IDLE"
	}
}

type PriceGetter interface {
	GetPrice(ctx context.Context, asset domain.Asset) (domain.PriceQuote, bool)
}

type CycleReport struct {
	Checked     int
	Fired       int
	Suppressed  int
	Unavailable int
	NotifyFail  int
}

type Evaluator struct {
	registry    *Registry
	prices      PriceGetter
	notifier    domain.Notifier
	metrics     Metrics
	logger      *zap.Logger
	interval    time.Duration
	maxInFlight int

	cycleMu sync.Mutex
	state   atomic.Int32
}

func NewEvaluator(registry *Registry, prices PriceGetter, notifier domain.Notifier, interval time.Duration, maxInFlight int, metrics Metrics, logger *zap.Logger) *Evaluator {
	if interval <= 0 {
		interval = DefaultEvaluatorInterval
	}
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	return &Evaluator{
		registry:    registry,
		prices:      prices,
		notifier:    notifier,
		metrics:     metricsOrNop(metrics),
		logger:      logger,
		interval:    interval,
		maxInFlight: maxInFlight,
	}
}

func (e *Evaluator) State() EvaluatorState {
	return EvaluatorState(e.state.Load())
}

func (e *Evaluator) Run(ctx context.Context) error {
	e.logger.Info("alert evaluator started", zap.Duration("interval", e.interval), zap.Int("max_in_flight", e.maxInFlight))
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("alert evaluator stopped")
			return nil
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

func (e *Evaluator) RunCycle(ctx context.Context) CycleReport {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()
	defer e.setState(StateIdle)

	start := time.Now()
	alerts := e.registry.ListActive()
	e.metrics.SetActiveAlerts(len(alerts))
	report := CycleReport{Checked: len(alerts)}
	if len(alerts) == 0 {
		e.metrics.ObserveCycle(report, time.Since(start))
		return report
	}

	e.setState(StateFetching)
	quotes := e.fetch(ctx, alerts)

	e.setState(StateEvaluating)
	var fired []firedAlert
	for _, alert := range alerts {
		quote, ok := quotes[alert.Asset.ID]
		if !ok {
			report.Unavailable++
			continue
		}
		if alert.Direction.Triggered(quote.Price, alert.Threshold) {
			fired = append(fired, firedAlert{alert: alert, price: quote.Price})
		}
	}

	e.setState(StateNotifying)
	for _, f := range fired {
		// the claim decides the race with a concurrent cancel or replace
		if !e.registry.Claim(f.alert) {
			report.Suppressed++
			e.logger.Debug("fired alert no longer active", zap.String("alert_id", f.alert.ID), zap.String("user_id", f.alert.UserID))
			continue
		}
		report.Fired++
		notification := domain.NewNotification(f.alert, f.price)
		if err := e.notifier.Notify(ctx, notification.UserID, notification.Text()); err != nil {
			report.NotifyFail++
			e.logger.Warn(
				"failed to deliver alert notification",
				zap.String("alert_id", f.alert.ID),
				zap.String("user_id", f.alert.UserID),
				zap.Error(err),
			)
			continue
		}
		e.logger.Info(
			"alert fired",
			zap.String("alert_id", f.alert.ID),
			zap.String("user_id", f.alert.UserID),
			zap.String("asset", f.alert.Asset.ID),
			zap.String("direction", string(f.alert.Direction)),
			zap.String("threshold", f.alert.Threshold.String()),
			zap.String("price", f.price.String()),
		)
	}

	duration := time.Since(start)
	e.metrics.ObserveCycle(report, duration)
	e.metrics.SetActiveAlerts(e.registry.Len())
	e.logger.Debug(
		"evaluation cycle complete",
		zap.Int("checked", report.Checked),
		zap.Int("fired", report.Fired),
		zap.Int("suppressed", report.Suppressed),
		zap.Int("unavailable", report.Unavailable),
		zap.Duration("duration", duration),
	)
	return report
}

type firedAlert struct {
	alert domain.Alert
	price decimal.Decimal
}

func (e *Evaluator) fetch(ctx context.Context, alerts []domain.Alert) map[string]domain.PriceQuote {
	assets := make(map[string]domain.Asset)
	for _, alert := range alerts {
		assets[alert.Asset.ID] = alert.Asset
	}

	var mu sync.Mutex
	quotes := make(map[string]domain.PriceQuote, len(assets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.maxInFlight)
	for id, asset := range assets {
		group.Go(func() error {
			quote, ok := e.prices.GetPrice(groupCtx, asset)
			if !ok {
				return nil
			}
			mu.Lock()
			quotes[id] = quote
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return quotes
}

func (e *Evaluator) setState(state EvaluatorState) {
	e.state.Store(int32(state))
}
