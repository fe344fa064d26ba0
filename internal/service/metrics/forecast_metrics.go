package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ForecastLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gridcast",
			Subsystem: "forecast",
			Name:      "latency_seconds",
			Help:      "Latency of forecast API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ForecastErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gridcast",
			Subsystem: "forecast",
			Name:      "errors_total",
			Help:      "Errors by forecast API endpoint",
		},
		[]string{"endpoint"},
	)

	ModelTrainings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gridcast",
			Subsystem: "forecast",
			Name:      "model_trainings_total",
			Help:      "Completed bias model trainings by market",
		},
		[]string{"market"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ForecastLatency, ForecastErrors, ModelTrainings)
	})
}
