package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for forecasting stages.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a pipeline logger. A nil base logger discards output.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	if baseLogger == nil {
		baseLogger = Discard()
	}
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogTraining logs the outcome of a training run. Skipped runs are warnings.
func (pl *PipelineLogger) LogTraining(status string, samples, epochs int, primaryLoss, secondaryLoss float64, duration time.Duration, err error) {
	entry := pl.WithFields(logrus.Fields{
		"status":         status,
		"samples":        samples,
		"epochs":         epochs,
		"primary_loss":   primaryLoss,
		"secondary_loss": secondaryLoss,
		"duration_ms":    duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("Model training skipped, using fused prior")
		return
	}
	entry.Info("Model training completed")
}

// LogBlend logs the blend weight chosen for a prediction.
func (pl *PipelineLogger) LogBlend(mode string, alpha, divergence float64, modelUsed, sparse bool, target string) {
	pl.WithFields(logrus.Fields{
		"mode":           mode,
		"alpha":          alpha,
		"divergence":     divergence,
		"model_used":     modelUsed,
		"weekday_sparse": sparse,
		"target_weekday": target,
	}).Debug("Probabilities blended")
}

// LogForecastFallback logs a sum forecast that fell back to mean ± margin.
func (pl *PipelineLogger) LogForecastFallback(expected, lower, upper float64, err error) {
	entry := pl.WithFields(logrus.Fields{
		"expected": expected,
		"lower":    lower,
		"upper":    upper,
	})
	if err != nil {
		entry.WithError(err).Warn("Sum forecast fit failed, using empirical range")
		return
	}
	entry.Debug("Short history, using empirical sum range")
}

// LogCandidates logs a candidate generation pass.
func (pl *PipelineLogger) LogCandidates(trials, accepted, unique int, low, high int, relaxed bool) {
	entry := pl.WithFields(logrus.Fields{
		"trials":   trials,
		"accepted": accepted,
		"unique":   unique,
		"sum_low":  low,
		"sum_high": high,
		"relaxed":  relaxed,
	})
	if relaxed {
		entry.Warn("Candidate pool empty under sum constraint, regenerated without it")
		return
	}
	entry.Info("Candidates generated")
}

// LogBacktestStep logs one walk-forward step.
func (pl *PipelineLogger) LogBacktestStep(runID string, step, total int, period string, trained bool) {
	pl.WithFields(logrus.Fields{
		"run_id":  runID,
		"step":    step,
		"total":   total,
		"period":  period,
		"trained": trained,
	}).Debug("Backtest step evaluated")
}

// LogBacktestSummary logs the completion of a backtest run.
func (pl *PipelineLogger) LogBacktestSummary(runID string, samples int, variants int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"run_id":      runID,
		"samples":     samples,
		"variants":    variants,
		"duration_ms": duration.Milliseconds(),
	}).Info("Backtest completed")
}
