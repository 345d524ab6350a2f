// Package pipeline threads an explicit forecasting context through pure stages:
// prior fusion, model training, blending and candidate generation.
package pipeline

import (
	"time"

	"github.com/yourusername/ssq-forecast/internal/blend"
	"github.com/yourusername/ssq-forecast/internal/estimator"
	"github.com/yourusername/ssq-forecast/internal/forecast"
	"github.com/yourusername/ssq-forecast/internal/generator"
	"github.com/yourusername/ssq-forecast/internal/ml"
	"github.com/yourusername/ssq-forecast/internal/models"
)

// Settings gathers the parameters of every stage.
type Settings struct {
	Fusion          estimator.FusionParams
	Blend           blend.Config
	Mode            blend.Mode
	WeekdayLookback int
	Train           ml.TrainConfig
	Forecast        forecast.Config
	Slack           int
	SumFloor        int
	SumCeiling      int
	Generator       generator.Config
	HotWindow       int
	HotMinCount     int
}

// DefaultSettings returns the calibrated defaults for all stages.
func DefaultSettings() Settings {
	return Settings{
		Fusion: estimator.FusionParams{
			HalfLife:      60,
			ShortWindow:   30,
			ShrinkBeta:    40,
			ShortWeight:   0.30,
			WeekdayWeight: 0.20,
		},
		Blend:           blend.DefaultConfig(),
		Mode:            blend.Adaptive(),
		WeekdayLookback: 24,
		Train: ml.TrainConfig{
			SeqLen:       10,
			Epochs:       5,
			LearningRate: 1e-3,
			HiddenSize:   64,
			Dropout:      0.2,
			BatchSize:    128,
			Seed:         2025,
		},
		Forecast:    forecast.DefaultConfig(),
		Slack:       5,
		SumFloor:    60,
		SumCeiling:  180,
		Generator:   generator.DefaultConfig(),
		HotWindow:   10,
		HotMinCount: 2,
	}
}

// Context is the state a forecast is computed from. History is sorted oldest
// first; Model is nil until Train succeeds.
type Context struct {
	History  []models.DrawRecord
	Model    *ml.Model
	Settings Settings
	// Now supplies the clock for an empty history.
	Now func() time.Time
}

// New sorts history into a fresh context without a model.
func New(history []models.DrawRecord, settings Settings) Context {
	return Context{
		History:  models.SortDraws(history),
		Settings: settings,
		Now:      time.Now,
	}
}

// Target returns the weekday of the draw being predicted.
func (c Context) Target() time.Weekday {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return models.TargetWeekday(c.History, now())
}

// WithHistory returns a copy scoped to a different history and no model.
func (c Context) WithHistory(history []models.DrawRecord) Context {
	c.History = history
	c.Model = nil
	return c
}
