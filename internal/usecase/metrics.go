package usecase

import "time"

type Metrics interface {
	ObserveProvider(provider string, outcome string, duration time.Duration)
	ObserveQuoteCache(hit bool)
	ObserveCycle(report CycleReport, duration time.Duration)
	SetActiveAlerts(count int)
}

const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeMalformed   = "malformed"
	OutcomeTimeout     = "timeout"
)

type nopMetrics struct{}

func (nopMetrics) ObserveProvider(string, string, time.Duration) {}
func (nopMetrics) ObserveQuoteCache(bool)                        {}
func (nopMetrics) ObserveCycle(CycleReport, time.Duration)       {}
func (nopMetrics) SetActiveAlerts(int)                           {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
