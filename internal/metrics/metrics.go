// Package metrics exposes Prometheus instrumentation for the ledger service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector of the service on its own registry
type Metrics struct {
	registry *prometheus.Registry

	ForecastDuration *prometheus.HistogramVec
	LedgersForecast  prometheus.Counter
	RecurringPosted  *prometheus.CounterVec
	AlertsSent       *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ForecastDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_forecast_duration_seconds",
				Help:    "Time spent building a forecast request, by result",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"result"},
		),
		LedgersForecast: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_forecast_ledgers_total",
				Help: "Number of ledger forecasts computed",
			},
		),
		RecurringPosted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_recurring_posted_total",
				Help: "Recurring occurrences posted as transactions, by type",
			},
			[]string{"type"},
		),
		AlertsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_low_balance_alerts_total",
				Help: "Low balance alerts, by result",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_http_requests_total",
				Help: "HTTP requests, by route and status code",
			},
			[]string{"route", "code"},
		),
	}
	m.registry.MustRegister(m.ForecastDuration, m.LedgersForecast, m.RecurringPosted, m.AlertsSent, m.HTTPRequests)
	return m
}

// ObserveForecast records how long a forecast request took
func (m *Metrics) ObserveForecast(start time.Time, ledgers int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ForecastDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	m.LedgersForecast.Add(float64(ledgers))
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collected metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
