package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

// RefreshMetrics records refresh run outcomes. It satisfies
// ports.RefreshObserver.
type RefreshMetrics struct {
	service  string
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	runsInFlight   prometheus.Gauge
	queueLag       *prometheus.HistogramVec
	rowsTotal      *prometheus.CounterVec
	establishments prometheus.Gauge
}

func NewRefreshMetrics(service string) *RefreshMetrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inspections",
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total refresh runs by status.",
		},
		[]string{"service", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inspections",
			Subsystem: "refresh",
			Name:      "run_duration_seconds",
			Help:      "Refresh run duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	runsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "inspections",
			Subsystem: "refresh",
			Name:      "runs_in_flight",
			Help:      "Number of in-flight refresh runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inspections",
			Subsystem: "refresh",
			Name:      "queue_lag_seconds",
			Help:      "Delay between a run being queued and a worker picking it up.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	rowsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inspections",
			Subsystem: "parser",
			Name:      "rows_total",
			Help:      "Rows seen by the parser by outcome.",
		},
		[]string{"service", "outcome"},
	)
	establishments := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "inspections",
			Subsystem: "refresh",
			Name:      "establishments",
			Help:      "Establishments published by the last successful run.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(runsTotal, runDuration, runsInFlight, queueLag, rowsTotal, establishments)

	return &RefreshMetrics{
		service:        service,
		registry:       registry,
		runsTotal:      runsTotal,
		runDuration:    runDuration,
		runsInFlight:   runsInFlight,
		queueLag:       queueLag,
		rowsTotal:      rowsTotal,
		establishments: establishments,
	}
}

func (m *RefreshMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *RefreshMetrics) StartRun() {
	m.runsInFlight.Inc()
}

func (m *RefreshMetrics) FinishRun(duration time.Duration, stats domain.ParseStats, establishments int, err error) {
	m.runsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.runsTotal.WithLabelValues(m.service, status).Inc()
	m.runDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())

	if stats.Lines > 0 {
		skipped := stats.Lines - stats.MatchedRows
		m.rowsTotal.WithLabelValues(m.service, "matched").Add(float64(stats.MatchedRows - stats.FormatErrors))
		m.rowsTotal.WithLabelValues(m.service, "format_error").Add(float64(stats.FormatErrors))
		m.rowsTotal.WithLabelValues(m.service, "skipped").Add(float64(skipped))
	}
	if err == nil {
		m.establishments.Set(float64(establishments))
	}
}

func (m *RefreshMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}
