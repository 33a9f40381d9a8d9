// internal/metrics/metrics.go

// Package metrics 彙整帳戶操作的 Prometheus 指標，並提供 /metrics handler。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bank_operations_total",
			Help: "Total number of account operations by outcome",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bank_operation_duration_seconds",
			Help:    "Duration of account operations",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"operation"},
	)

	persistErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bank_snapshot_errors_total",
			Help: "Total number of failed snapshot writes",
		},
	)

	publishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bank_event_publish_errors_total",
			Help: "Total number of failed ledger event publishes",
		},
	)
)

// Observe 記錄一次操作的結果與耗時。status 為 Report 狀態或錯誤分類。
func Observe(op, status string, start time.Time) {
	operationsTotal.WithLabelValues(op, status).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func PersistFailed() { persistErrors.Inc() }

func PublishFailed() { publishErrors.Inc() }

// Handler 回傳預設 registry 的 /metrics handler。
func Handler() http.Handler { return promhttp.Handler() }
