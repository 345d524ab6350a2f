// Package service exposes the forecasting operations over an in-memory draw history.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/ssq-forecast/internal/backtest"
	"github.com/yourusername/ssq-forecast/internal/blend"
	"github.com/yourusername/ssq-forecast/internal/config"
	"github.com/yourusername/ssq-forecast/internal/estimator"
	"github.com/yourusername/ssq-forecast/internal/evaluation"
	"github.com/yourusername/ssq-forecast/internal/forecast"
	"github.com/yourusername/ssq-forecast/internal/logger"
	"github.com/yourusername/ssq-forecast/internal/metrics"
	"github.com/yourusername/ssq-forecast/internal/ml"
	"github.com/yourusername/ssq-forecast/internal/models"
	"github.com/yourusername/ssq-forecast/internal/pipeline"
)

// Analyzer owns the pipeline context for one history. It is not safe for
// concurrent use.
type Analyzer struct {
	ctx      pipeline.Context
	config   *config.Config
	logger   *logrus.Logger
	pipeline *logger.PipelineLogger
}

// NewAnalyzer validates and sorts history. A nil config uses config.Default and a
// nil logger discards output.
func NewAnalyzer(history []models.DrawRecord, cfg *config.Config, log *logrus.Logger) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Discard()
	}
	validator := NewDataValidator(log)
	if err := models.ValidateDraws(history); err != nil {
		for i, r := range history {
			if issues := validator.ValidateRecord(r); len(issues) > 0 {
				log.WithFields(logrus.Fields{
					"index":  i,
					"period": r.Period,
					"issues": issues,
				}).Error("Malformed draw record")
				return nil, fmt.Errorf("%w (%s)", err, strings.Join(issues, "; "))
			}
		}
		return nil, err
	}

	a := &Analyzer{
		ctx:      pipeline.New(history, SettingsFromConfig(cfg)),
		config:   cfg,
		logger:   log,
		pipeline: logger.NewPipelineLogger(log),
	}
	validator.ValidateHistory(a.ctx.History)
	metrics.UpdateHistorySize(len(a.ctx.History))

	log.WithFields(logrus.Fields{
		"records": len(a.ctx.History),
		"target":  a.ctx.Target().String(),
	}).Info("Analyzer initialized")
	return a, nil
}

// SettingsFromConfig maps application config onto the pipeline stages.
func SettingsFromConfig(cfg *config.Config) pipeline.Settings {
	s := pipeline.DefaultSettings()
	if cfg == nil {
		return s
	}
	e, m, b, f, g := cfg.Estimator, cfg.Model, cfg.Blend, cfg.Forecast, cfg.Generator

	s.Fusion = estimator.FusionParams{
		HalfLife:      e.HalfLife,
		ShortWindow:   e.ShortWindow,
		ShrinkBeta:    e.ShrinkBeta,
		ShortWeight:   e.FusionShort,
		WeekdayWeight: e.FusionWeekday,
	}
	s.HotWindow = e.HotWindow
	s.HotMinCount = e.HotMinCount

	s.Train = ml.TrainConfig{
		SeqLen:       m.SeqLen,
		Epochs:       m.Epochs,
		LearningRate: m.LearningRate,
		HiddenSize:   m.HiddenSize,
		Dropout:      m.Dropout,
		BatchSize:    m.BatchSize,
		Seed:         m.Seed,
	}

	s.Blend.TauPrimary = b.TauPrimary
	s.Blend.TauSecondary = b.TauSecondary
	s.Blend.SharpnessThreshold = b.SharpnessThreshold
	s.Blend.SharpnessBump = b.SharpnessBump
	s.Blend.WeekdayMinCount = b.WeekdayMinCount
	s.Blend.SparsityPenalty = b.SparsityPenalty
	s.Blend.AlphaMin = b.AlphaMin
	s.Blend.AlphaMax = b.AlphaMax
	s.WeekdayLookback = b.WeekdayLookback
	s.Mode = blend.Adaptive()
	if b.Mode == "fixed" {
		s.Mode = blend.Fixed(b.FixedAlpha)
	}

	s.Forecast = forecast.Config{
		MinHistory:     f.MinHistory,
		FallbackMargin: f.FallbackMargin,
		ErrorMargin:    f.ErrorMargin,
		Confidence:     f.Confidence,
	}
	s.Slack = f.Slack
	s.SumFloor = f.SumFloor
	s.SumCeiling = f.SumCeiling

	s.Generator.Trials = g.Trials
	s.Generator.Workers = g.Workers
	s.Generator.ShardSize = g.ShardSize
	s.Generator.Seed = g.Seed
	s.Generator.HotMassCap = g.HotMassCap
	return s
}

// History returns the sorted records the analyzer works on.
func (a *Analyzer) History() []models.DrawRecord {
	return a.ctx.History
}

// Trained reports whether a model from the last Train call is held.
func (a *Analyzer) Trained() bool {
	return a.ctx.Model != nil
}

// SetClock overrides the clock used to resolve the target weekday of an empty history.
func (a *Analyzer) SetClock(now func() time.Time) {
	a.ctx.Now = now
}

// TrainOptions overrides the configured model parameters; zero fields keep the config.
type TrainOptions struct {
	SeqLen       int
	Epochs       int
	LearningRate float64
	HiddenSize   int
}

// Train retrains the sequence model from scratch. An untrained result drops any
// previously held model so later predictions use the fused prior.
func (a *Analyzer) Train(opts TrainOptions) ml.TrainResult {
	cfg := a.ctx.Settings.Train
	if opts.SeqLen > 0 {
		cfg.SeqLen = opts.SeqLen
	}
	if opts.Epochs > 0 {
		cfg.Epochs = opts.Epochs
	}
	if opts.LearningRate > 0 {
		cfg.LearningRate = opts.LearningRate
	}
	if opts.HiddenSize > 0 {
		cfg.HiddenSize = opts.HiddenSize
	}

	var res ml.TrainResult
	a.ctx, res = pipeline.Train(a.ctx, cfg)
	metrics.RecordTraining(string(res.Status), res.Duration.Seconds())
	a.pipeline.LogTraining(string(res.Status), res.Samples, res.Epochs, res.PrimaryLoss, res.SecondaryLoss, res.Duration, res.Err)
	return res
}

// PredictNext returns the blended distributions for the next draw. A zero
// halfLife keeps the configured value.
func (a *Analyzer) PredictNext(mode blend.Mode, halfLife float64) pipeline.Prediction {
	pred := pipeline.PredictNext(a.ctx, mode, halfLife)
	a.logPrediction(mode, pred)
	return pred
}

func (a *Analyzer) logPrediction(mode blend.Mode, pred pipeline.Prediction) {
	if pred.ModelErr != nil {
		a.logger.WithError(pred.ModelErr).Warn("Model prediction failed, using fused prior")
	}
	metrics.UpdateBlendAlpha(pred.Alpha)
	a.pipeline.LogBlend(mode.String(), pred.Alpha, pred.Divergence, pred.ModelUsed, pred.Sparse, pred.Target)
}

// RecommendationBatch is the outcome of GenerateRecommendations.
type RecommendationBatch struct {
	ID              string                  `json:"id"`
	Target          string                  `json:"target_weekday"`
	SumRange        forecast.Range          `json:"sum_range"`
	Bounds          forecast.SumBounds      `json:"sum_bounds"`
	Relaxed         bool                    `json:"relaxed"`
	Probabilities   models.Probabilities    `json:"-"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// GenerateRecommendations samples candidates under the blended distribution and the
// forecast sum range, returning the numSets best. An empty history yields no sets.
func (a *Analyzer) GenerateRecommendations(ctx context.Context, numSets int) (*RecommendationBatch, error) {
	if numSets <= 0 {
		numSets = a.config.Generator.NumSets
	}
	batch := &RecommendationBatch{
		ID:              uuid.New().String(),
		Target:          a.ctx.Target().String(),
		Recommendations: []models.Recommendation{},
	}
	if len(a.ctx.History) == 0 {
		a.logger.WithField("batch_id", batch.ID).Warn("Empty history, no recommendations generated")
		return batch, nil
	}

	start := time.Now()
	plan, err := pipeline.Recommend(ctx, a.ctx, numSets)
	if err != nil {
		return nil, fmt.Errorf("failed to generate recommendations: %w", err)
	}
	a.logPrediction(a.ctx.Settings.Mode, plan.Prediction)

	if plan.SumRange.Fallback {
		reason := "short_history"
		if errors.Is(plan.SumRange.Err, forecast.ErrFitFailed) {
			reason = "fit_failed"
		}
		metrics.RecordForecastFallback(reason)
		a.pipeline.LogForecastFallback(plan.SumRange.Expected, plan.SumRange.Lower, plan.SumRange.Upper, plan.SumRange.Err)
	}

	gen := plan.Generation
	metrics.RecordGeneration(len(gen.Candidates), gen.Relaxed, time.Since(start).Seconds())
	metrics.RecordRecommendations(len(plan.Recommendations))
	a.pipeline.LogCandidates(a.ctx.Settings.Generator.Trials, gen.Accepted, len(gen.Candidates), plan.Bounds.Low, plan.Bounds.High, gen.Relaxed)

	batch.SumRange = plan.SumRange
	batch.Bounds = plan.Bounds
	batch.Relaxed = gen.Relaxed
	batch.Probabilities = plan.Prediction.Probabilities
	batch.Recommendations = plan.Recommendations
	return batch, nil
}

// BacktestOptions overrides the configured backtest; zero fields keep the config.
type BacktestOptions struct {
	SeqLen         int
	Epochs         int
	KList          []int
	SecondaryKList []int
	StartDate      time.Time
	// SkipModel evaluates the baselines only.
	SkipModel bool
}

// RunBacktest replays the history walk-forward and averages every variant's metrics.
func (a *Analyzer) RunBacktest(ctx context.Context, opts BacktestOptions) (backtest.Summary, error) {
	cfg, err := backtest.FromConfig(a.config, a.ctx.Settings)
	if err != nil {
		return backtest.Summary{}, err
	}
	if opts.SeqLen > 0 {
		cfg.SeqLen = opts.SeqLen
	}
	if opts.Epochs > 0 {
		cfg.Epochs = opts.Epochs
	}
	if len(opts.KList) > 0 {
		cfg.KList = opts.KList
	}
	if len(opts.SecondaryKList) > 0 {
		cfg.SecondaryKList = opts.SecondaryKList
	}
	if !opts.StartDate.IsZero() {
		cfg.StartDate = opts.StartDate
	}
	if opts.SkipModel {
		cfg.UseModel = false
	}

	return backtest.NewRunner(cfg, a.logger).Run(ctx, a.ctx.History)
}

// EvaluateLatest scores recs against the newest draw. The probability diagnostics
// come from the fused prior of the history preceding that draw.
func (a *Analyzer) EvaluateLatest(recs []models.Recommendation) (evaluation.LatestEvaluation, error) {
	n := len(a.ctx.History)
	if n == 0 {
		return evaluation.LatestEvaluation{}, models.ErrEmptyHistory
	}
	latest := a.ctx.History[n-1]
	before := a.ctx.WithHistory(a.ctx.History[: n-1 : n-1])
	pred := pipeline.PredictNext(before, a.ctx.Settings.Mode, 0)

	ev := evaluation.EvaluateLatest(latest, recs, &pred.Probabilities)
	a.logger.WithFields(logrus.Fields{
		"period":       ev.Period,
		"sets":         len(recs),
		"best_hits":    ev.BestHits,
		"best_tier":    ev.BestTier.String(),
		"primary_mass": ev.PrimaryMass,
		"net":          ev.Net.String(),
	}).Info("Latest draw evaluated")
	return ev, nil
}

// Patterns summarizes odd/even splits, sums and spans over the whole history.
func (a *Analyzer) Patterns() evaluation.PatternAnalysis {
	return evaluation.AnalyzePatterns(a.ctx.History)
}

// Trends lists the hot numbers of the newest window draws; zero keeps the
// configured window.
func (a *Analyzer) Trends(window int) evaluation.TrendAnalysis {
	s := a.ctx.Settings
	if window <= 0 {
		window = s.HotWindow
	}
	return evaluation.AnalyzeTrends(a.ctx.History, window, s.HotMinCount)
}
