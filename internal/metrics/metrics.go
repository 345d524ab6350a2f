// Package metrics provides the centralized Prometheus registry for the forecasting pipeline.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ssq_forecast"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	TrainingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "training_runs_total",
		Help:      "Total number of sequence model training runs by status",
	}, []string{"status"})
	ForecastFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forecast_fallbacks_total",
		Help:      "Total number of sum forecasts that used the empirical range",
	}, []string{"reason"})
	CandidatesGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidates_generated_total",
		Help:      "Total number of unique candidate combinations generated",
	})
	CandidatePoolRelaxedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidate_pool_relaxed_total",
		Help:      "Total number of generations rerun without the sum constraint",
	})
	RecommendationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Total number of recommendations produced",
	})
)

// Gauge metrics
var (
	BlendAlpha = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "blend_alpha",
		Help:      "Model weight used by the most recent blend",
	})
	HistorySize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "history_records",
		Help:      "Number of draw records loaded into the analyzer",
	})
)

// Histogram metrics
var (
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "training_duration_seconds",
		Help:      "Duration of sequence model training in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
	GenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of Monte Carlo candidate generation in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(TrainingRunsTotal)
		registry.MustRegister(ForecastFallbacksTotal)
		registry.MustRegister(CandidatesGeneratedTotal)
		registry.MustRegister(CandidatePoolRelaxedTotal)
		registry.MustRegister(RecommendationsTotal)

		registry.MustRegister(BlendAlpha)
		registry.MustRegister(HistorySize)

		registry.MustRegister(TrainingDuration)
		registry.MustRegister(GenerationDuration)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestStepsTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(BacktestRecall)
		registry.MustRegister(BacktestSecondaryHit)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// WriteTextfile writes every registered metric in the textfile collector format.
func WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, GetRegistry()); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// RecordTraining records a training run outcome.
func RecordTraining(status string, durationSeconds float64) {
	TrainingRunsTotal.WithLabelValues(status).Inc()
	if status == "trained" {
		TrainingDuration.Observe(durationSeconds)
	}
}

// RecordForecastFallback records a sum forecast fallback.
// reason should be one of: "short_history", "fit_failed"
func RecordForecastFallback(reason string) {
	ForecastFallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordGeneration records a candidate generation pass.
func RecordGeneration(unique int, relaxed bool, durationSeconds float64) {
	CandidatesGeneratedTotal.Add(float64(unique))
	if relaxed {
		CandidatePoolRelaxedTotal.Inc()
	}
	GenerationDuration.Observe(durationSeconds)
}

// RecordRecommendations records produced recommendations.
func RecordRecommendations(count int) {
	RecommendationsTotal.Add(float64(count))
}

// UpdateBlendAlpha updates the blend weight gauge.
func UpdateBlendAlpha(alpha float64) {
	BlendAlpha.Set(alpha)
}

// UpdateHistorySize updates the loaded history gauge.
func UpdateHistorySize(count int) {
	HistorySize.Set(float64(count))
}
