package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Backtest counters
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})
	BacktestStepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_steps_total",
		Help:      "Total number of walk-forward steps evaluated",
	})
)

// Backtest histograms
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// Backtest gauge vectors
var (
	BacktestRecall = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_recall",
		Help:      "Averaged primary recall@k per variant for the latest run",
	}, []string{"variant", "k"})
	BacktestSecondaryHit = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_secondary_hit",
		Help:      "Averaged secondary hit@k per variant for the latest run",
	}, []string{"variant", "k"})
)

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "failure", "canceled"
func RecordBacktestRun(status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		BacktestDuration.Observe(durationSeconds)
	}
}

// RecordBacktestStep records one evaluated step.
func RecordBacktestStep() {
	BacktestStepsTotal.Inc()
}

// UpdateBacktestRecall sets the averaged primary recall for a variant and k.
func UpdateBacktestRecall(variant string, k int, value float64) {
	BacktestRecall.WithLabelValues(variant, strconv.Itoa(k)).Set(value)
}

// UpdateBacktestSecondaryHit sets the averaged secondary hit rate for a variant and k.
func UpdateBacktestSecondaryHit(variant string, k int, value float64) {
	BacktestSecondaryHit.WithLabelValues(variant, strconv.Itoa(k)).Set(value)
}
