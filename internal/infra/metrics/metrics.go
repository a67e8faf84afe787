package metrics

import (
	"net/http"
	"time"

	"github.com/NasaVasa/pricebot/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pricebot"

type Metrics struct {
	registry *prometheus.Registry

	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	quoteCache       *prometheus.CounterVec
	cycles           prometheus.Counter
	cycleAlerts      *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	activeAlerts     prometheus.Gauge
}

var _ usecase.Metrics = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Price provider calls by outcome",
		}, []string{"provider", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Price provider call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}, []string{"provider"}),
		quoteCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote_cache",
			Name:      "lookups_total",
			Help:      "Quote cache lookups by result",
		}, []string{"result"}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluator",
			Name:      "cycles_total",
			Help:      "Completed evaluation cycles",
		}),
		cycleAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluator",
			Name:      "alerts_total",
			Help:      "Alerts processed by evaluation cycles, by result",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluator",
			Name:      "cycle_duration_seconds",
			Help:      "Evaluation cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		activeAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_alerts",
			Help:      "Alerts currently registered",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.providerRequests,
		m.providerLatency,
		m.quoteCache,
		m.cycles,
		m.cycleAlerts,
		m.cycleDuration,
		m.activeAlerts,
	)
	return m
}

func (m *Metrics) ObserveProvider(provider string, outcome string, duration time.Duration) {
	m.providerRequests.WithLabelValues(provider, outcome).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) ObserveQuoteCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.quoteCache.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveCycle(report usecase.CycleReport, duration time.Duration) {
	m.cycles.Inc()
	m.cycleDuration.Observe(duration.Seconds())
	m.cycleAlerts.WithLabelValues("checked").Add(float64(report.Checked))
	m.cycleAlerts.WithLabelValues("fired").Add(float64(report.Fired))
	m.cycleAlerts.WithLabelValues("suppressed").Add(float64(report.Suppressed))
	m.cycleAlerts.WithLabelValues("unavailable").Add(float64(report.Unavailable))
	m.cycleAlerts.WithLabelValues("notify_failed").Add(float64(report.NotifyFail))
}

func (m *Metrics) SetActiveAlerts(count int) {
	m.activeAlerts.Set(float64(count))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
