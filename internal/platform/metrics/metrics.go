// Package metrics exposes the planner's prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the process-wide collector container.
type Metrics struct {
	MatrixBuildDuration  *prometheus.HistogramVec
	MatrixCacheHitsTotal *prometheus.CounterVec
	MatrixDegradedCells  *prometheus.GaugeVec
	SolveDuration        *prometheus.HistogramVec
	SolveOperationsTotal *prometheus.CounterVec
	RoutesProduced       *prometheus.GaugeVec
	CustomersDropped     *prometheus.GaugeVec
	WarehouseUtilization prometheus.Gauge
	HTTPRequestDuration  *prometheus.HistogramVec
}

var defaultMetrics *Metrics

// Init builds and registers the default collector set under the given
// namespace. Safe to call once per process.
func Init(namespace string) *Metrics {
	m := &Metrics{
		MatrixBuildDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "matrix_build_duration_seconds",
				Help:      "Duration of distance/duration matrix builds.",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"strategy"},
		),
		MatrixCacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "matrix_cache_requests_total",
				Help:      "Matrix cache lookups, partitioned by hit/miss.",
			},
			[]string{"result"},
		),
		MatrixDegradedCells: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "matrix_degraded_cells",
				Help:      "Cells in the most recent matrix build filled by the haversine fallback.",
			},
			[]string{"provider"},
		),
		SolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "solve_duration_seconds",
				Help:      "Duration of CVRP solve attempts.",
				Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"backend", "strategy"},
		),
		SolveOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "solve_operations_total",
				Help:      "Total solve attempts, partitioned by backend and outcome.",
			},
			[]string{"backend", "outcome"},
		),
		RoutesProduced: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "routes_produced",
				Help:      "Number of non-empty routes in the most recent solution.",
			},
			[]string{"class"},
		),
		CustomersDropped: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "customers_dropped",
				Help:      "Number of customers routed to the warehouse in the most recent run.",
			},
			[]string{"reason"},
		),
		WarehouseUtilization: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "warehouse_allocator_utilization_ratio",
				Help:      "Fraction of total fleet capacity used by the most recent allocation.",
			},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests handled by the API, partitioned by route and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
	defaultMetrics = m
	return m
}

// ObserveHTTPRequest records one handled request against the HTTP
// request duration histogram.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(d.Seconds())
}

// Default returns the process-wide collector set. If Init was never called,
// it calls Init with the "cvrp_optimizer" namespace, which registers the
// collectors with the default prometheus registry.
func Default() *Metrics {
	if defaultMetrics == nil {
		return Init("cvrp_optimizer")
	}
	return defaultMetrics
}
