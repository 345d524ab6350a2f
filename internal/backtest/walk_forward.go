// Package backtest replays history step by step and scores every forecasting variant
// with rank-based recall metrics.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/ssq-forecast/internal/blend"
	"github.com/yourusername/ssq-forecast/internal/estimator"
	"github.com/yourusername/ssq-forecast/internal/logger"
	"github.com/yourusername/ssq-forecast/internal/metrics"
	"github.com/yourusername/ssq-forecast/internal/models"
	"github.com/yourusername/ssq-forecast/internal/pipeline"
)

// ErrInsufficientHistory is returned when no step can be evaluated.
var ErrInsufficientHistory = errors.New("insufficient history for backtest")

// Variant names
const (
	VariantModelAuto   = "model_auto"
	VariantModelFixed  = "model_fixed"
	VariantBaseGlobal  = "base_global"
	VariantBaseWeekday = "base_weekday"
	VariantBaseShort   = "base_short"
	VariantBaseLong    = "base_long"
)

// MixVariant names the short/weekday mix for beta.
func MixVariant(beta float64) string {
	return fmt.Sprintf("base_mix_%.2f", beta)
}

// Variants lists the evaluated variants in report order.
func (c Config) Variants() []string {
	out := []string{
		VariantModelAuto, VariantModelFixed,
		VariantBaseGlobal, VariantBaseWeekday, VariantBaseShort, VariantBaseLong,
	}
	for _, b := range c.MixBetas {
		out = append(out, MixVariant(b))
	}
	return out
}

// Summary is the averaged outcome of a run.
type Summary struct {
	RunID          string                     `json:"run_id"`
	Samples        int                        `json:"samples"`
	TrainedSteps   int                        `json:"trained_steps"`
	Variants       []string                   `json:"variants"`
	KList          []int                      `json:"k_list"`
	SecondaryKList []int                      `json:"secondary_k_list"`
	Primary        map[string]map[int]float64 `json:"primary_recall"`
	Secondary      map[string]map[int]float64 `json:"secondary_hit"`
	StartedAt      time.Time                  `json:"started_at"`
	Duration       time.Duration              `json:"duration"`
}

// Runner executes walk-forward backtests.
type Runner struct {
	config Config
	log    *logger.PipelineLogger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(cfg Config, log *logrus.Logger) *Runner {
	return &Runner{config: cfg, log: logger.NewPipelineLogger(log)}
}

// Run is a convenience for NewRunner(cfg, nil).Run.
func Run(ctx context.Context, history []models.DrawRecord, cfg Config) (Summary, error) {
	return NewRunner(cfg, nil).Run(ctx, history)
}

// Run evaluates t = SeqLen .. n-2: each step freezes records [0,t) and scores the
// predictions against record t.
func (r *Runner) Run(ctx context.Context, history []models.DrawRecord) (Summary, error) {
	cfg := r.config
	if err := cfg.Validate(); err != nil {
		metrics.RecordBacktestRun("failure", 0)
		return Summary{}, err
	}
	if err := models.ValidateDraws(history); err != nil {
		metrics.RecordBacktestRun("failure", 0)
		return Summary{}, err
	}
	recs := models.SortDraws(history)
	if !cfg.StartDate.IsZero() {
		recs = models.FilterFrom(recs, cfg.StartDate)
	}
	if len(recs) <= cfg.SeqLen+1 {
		metrics.RecordBacktestRun("failure", 0)
		return Summary{}, fmt.Errorf("%w: have %d records, need more than %d",
			ErrInsufficientHistory, len(recs), cfg.SeqLen+1)
	}

	start := time.Now()
	summary := Summary{
		RunID:          uuid.New().String(),
		Samples:        len(recs) - 1 - cfg.SeqLen,
		Variants:       cfg.Variants(),
		KList:          cfg.KList,
		SecondaryKList: cfg.SecondaryKList,
		StartedAt:      start,
	}
	acc := NewAccumulator(summary.Variants, cfg.KList, cfg.SecondaryKList)

	for t := cfg.SeqLen; t < len(recs)-1; t++ {
		if err := ctx.Err(); err != nil {
			metrics.RecordBacktestRun("canceled", 0)
			return Summary{}, err
		}
		step := PredictStep(recs, t, cfg)
		for _, v := range summary.Variants {
			acc.Add(v, step.Probabilities[v], recs[t])
		}
		if step.Trained {
			summary.TrainedSteps++
		}
		metrics.RecordBacktestStep()
		r.log.LogBacktestStep(summary.RunID, t-cfg.SeqLen+1, summary.Samples, recs[t].Period, step.Trained)
	}

	summary.Primary, summary.Secondary = acc.Averages()
	summary.Duration = time.Since(start)
	for _, v := range summary.Variants {
		for _, k := range cfg.KList {
			metrics.UpdateBacktestRecall(v, k, summary.Primary[v][k])
		}
		for _, k := range cfg.SecondaryKList {
			metrics.UpdateBacktestSecondaryHit(v, k, summary.Secondary[v][k])
		}
	}
	metrics.RecordBacktestRun("success", summary.Duration.Seconds())
	r.log.LogBacktestSummary(summary.RunID, summary.Samples, len(summary.Variants), summary.Duration)
	return summary, nil
}

// Step holds every variant's prediction for one target index.
type Step struct {
	Probabilities map[string]models.Probabilities
	Trained       bool
}

// PredictStep predicts record t from records[:t] only; nothing at index t or later
// is read. records must be sorted oldest first.
func PredictStep(records []models.DrawRecord, t int, cfg Config) Step {
	train := records[:t:t]
	settings := cfg.stageSettings()
	pc := pipeline.Context{History: train, Settings: settings}
	target := pc.Target()
	halfLife := settings.Fusion.HalfLife
	beta := cfg.BaselineShrinkBeta

	global := estimator.Marginals(train, estimator.Params{HalfLife: halfLife, ShrinkBeta: beta})
	weekday := estimator.Marginals(train, estimator.Params{HalfLife: halfLife, Weekday: &target, ShrinkBeta: beta})
	short := estimator.Marginals(train, estimator.Params{HalfLife: halfLife, Window: cfg.ShortWindow, Weekday: &target, ShrinkBeta: beta})
	long := estimator.Marginals(train, estimator.Params{HalfLife: halfLife, Window: cfg.LongWindow, Weekday: &target, ShrinkBeta: beta})

	step := Step{Probabilities: map[string]models.Probabilities{
		VariantBaseGlobal:  global,
		VariantBaseWeekday: weekday,
		VariantBaseShort:   short,
		VariantBaseLong:    long,
	}}
	for _, b := range cfg.MixBetas {
		step.Probabilities[MixVariant(b)] = models.Probabilities{
			Primary:   models.Mix(short.Primary, weekday.Primary, b),
			Secondary: models.Mix(short.Secondary, weekday.Secondary, b),
		}
	}

	if cfg.UseModel {
		trained, result := pipeline.Train(pc, settings.Train)
		pc = trained
		step.Trained = result.Trained()
	}
	step.Probabilities[VariantModelAuto] = pipeline.PredictNext(pc, blend.Adaptive(), halfLife).Probabilities
	step.Probabilities[VariantModelFixed] = pipeline.PredictNext(pc, blend.Fixed(cfg.FixedAlpha), halfLife).Probabilities
	return step
}
