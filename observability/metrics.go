package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for dataset loading, prediction,
// and the dashboard server.
type Metrics struct {
	DatasetLoads        *prometheus.CounterVec // labels: snapshot={current,past}, outcome={ok,error}
	DatasetLoadDuration prometheus.Histogram
	DatasetCache        *prometheus.CounterVec // labels: result={hit,miss}
	RowsDropped         *prometheus.CounterVec // labels: reason={sentinel,unmapped}
	RecordsRetained     prometheus.Gauge
	Predictions         *prometheus.CounterVec // labels: outcome={ok,miss}
	HTTPRequests        *prometheus.CounterVec // labels: route, code
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "epimap",
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by snapshot and outcome.",
		}, []string{"snapshot", "outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "epimap",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of reading and preparing a dataset.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		DatasetCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "epimap",
			Name:      "dataset_cache_total",
			Help:      "Prepared dataset cache lookups by result.",
		}, []string{"result"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "epimap",
			Name:      "rows_dropped_total",
			Help:      "Source rows excluded during preparation by reason.",
		}, []string{"reason"}),
		RecordsRetained: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "epimap",
			Name:      "records_retained",
			Help:      "Region records in the most recently prepared current dataset.",
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "epimap",
			Name:      "predictions_total",
			Help:      "Trend predictions by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "epimap",
			Name:      "http_requests_total",
			Help:      "Dashboard HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	reg.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.DatasetCache,
		m.RowsDropped,
		m.RecordsRetained,
		m.Predictions,
		m.HTTPRequests,
	)
	return m
}
