package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application-level instruments on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	uploads          *prometheus.CounterVec
	forecastRuns     *prometheus.CounterVec
	forecastDuration prometheus.Histogram
	productsForecast prometheus.Counter
	productsSkipped  prometheus.Counter
}

// New registers the StockIQ instruments plus the Go runtime collectors.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Sales CSV uploads by outcome.",
		}, []string{"outcome"}),
		forecastRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_runs_total",
			Help:      "Forecast requests by outcome.",
		}, []string{"outcome"}),
		forecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Time spent fitting and predicting all products of one table.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		productsForecast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_products_total",
			Help:      "Products that produced a forecast.",
		}),
		productsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_products_skipped_total",
			Help:      "Products skipped for having fewer than two observations.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.uploads,
		m.forecastRuns,
		m.forecastDuration,
		m.productsForecast,
		m.productsSkipped,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) RecordUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

// RecordForecast records one forecast request. forecasted and skipped are
// product counts.
func (m *Metrics) RecordForecast(outcome string, elapsed time.Duration, forecasted, skipped int) {
	if m == nil {
		return
	}
	m.forecastRuns.WithLabelValues(outcome).Inc()
	m.forecastDuration.Observe(elapsed.Seconds())
	m.productsForecast.Add(float64(forecasted))
	m.productsSkipped.Add(float64(skipped))
}
