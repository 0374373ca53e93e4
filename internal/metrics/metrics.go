package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SitesProcessed *prometheus.CounterVec
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	ActiveWorkers  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SitesProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "threewords_sites_processed_total",
			Help: "Total number of processed site resolutions.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "threewords_api_errors_total",
			Help: "Total number of errors received from the what3words API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "threewords_request_duration_seconds",
			Help:    "Duration of requests to the what3words API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"direction"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "threewords_active_workers",
			Help: "Current number of active workers resolving sites.",
		}),
	}
}
