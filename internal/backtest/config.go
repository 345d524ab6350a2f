package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/ssq-forecast/internal/config"
	"github.com/yourusername/ssq-forecast/internal/models"
	"github.com/yourusername/ssq-forecast/internal/pipeline"
)

// Config controls a walk-forward backtest.
type Config struct {
	SeqLen             int
	Epochs             int
	LearningRate       float64
	HiddenSize         int
	KList              []int
	SecondaryKList     []int
	HalfLife           float64
	FixedAlpha         float64
	ShortWindow        int
	LongWindow         int
	MixBetas           []float64
	BaselineShrinkBeta float64
	// UseModel false evaluates baselines only; model variants then equal the fused prior.
	UseModel  bool
	StartDate time.Time
	Settings  pipeline.Settings
}

// DefaultConfig returns the calibrated backtest settings.
func DefaultConfig() Config {
	return Config{
		SeqLen:             10,
		Epochs:             3,
		LearningRate:       1e-3,
		HiddenSize:         64,
		KList:              []int{6, 10, 12, 16},
		SecondaryKList:     []int{1, 2, 3, 4},
		HalfLife:           60,
		FixedAlpha:         0.40,
		ShortWindow:        30,
		LongWindow:         180,
		MixBetas:           []float64{0.20, 0.35, 0.50},
		BaselineShrinkBeta: 20,
		UseModel:           true,
		Settings:           pipeline.DefaultSettings(),
	}
}

// FromConfig converts app config to backtest config.
func FromConfig(cfg *config.Config, settings pipeline.Settings) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("backtest config is required")
	}
	b := cfg.Backtest
	bt := Config{
		SeqLen:             cfg.Model.SeqLen,
		Epochs:             b.Epochs,
		LearningRate:       cfg.Model.LearningRate,
		HiddenSize:         cfg.Model.HiddenSize,
		KList:              append([]int(nil), b.KList...),
		SecondaryKList:     append([]int(nil), b.SecondaryKList...),
		HalfLife:           cfg.Estimator.HalfLife,
		FixedAlpha:         b.FixedAlpha,
		ShortWindow:        b.ShortWindow,
		LongWindow:         b.LongWindow,
		MixBetas:           append([]float64(nil), b.MixBetas...),
		BaselineShrinkBeta: b.BaselineShrinkBeta,
		UseModel:           b.UseModel,
		Settings:           settings,
	}
	if b.StartDate != "" {
		start, err := time.Parse(models.DateLayout, b.StartDate)
		if err != nil {
			return Config{}, fmt.Errorf("invalid start date: %w", err)
		}
		bt.StartDate = start
	}
	return bt, bt.Validate()
}

// Validate validates backtest config parameters.
func (c Config) Validate() error {
	if c.SeqLen < 1 {
		return fmt.Errorf("sequence length must be positive")
	}
	if len(c.KList) == 0 || len(c.SecondaryKList) == 0 {
		return fmt.Errorf("k lists cannot be empty")
	}
	for _, k := range c.KList {
		if k < 1 || k > models.PrimaryPool.Size {
			return fmt.Errorf("primary k %d must be between 1 and %d", k, models.PrimaryPool.Size)
		}
	}
	for _, k := range c.SecondaryKList {
		if k < 1 || k > models.SecondaryPool.Size {
			return fmt.Errorf("secondary k %d must be between 1 and %d", k, models.SecondaryPool.Size)
		}
	}
	if c.FixedAlpha < 0 || c.FixedAlpha > 1 {
		return fmt.Errorf("fixed alpha must be between 0 and 1")
	}
	for _, b := range c.MixBetas {
		if b < 0 || b > 1 {
			return fmt.Errorf("mix beta %.2f must be between 0 and 1", b)
		}
	}
	if c.ShortWindow < 1 || c.LongWindow < 1 {
		return fmt.Errorf("baseline windows must be positive")
	}
	return nil
}

func (c Config) stageSettings() pipeline.Settings {
	s := c.Settings
	s.Train.SeqLen = c.SeqLen
	if c.Epochs > 0 {
		s.Train.Epochs = c.Epochs
	}
	if c.LearningRate > 0 {
		s.Train.LearningRate = c.LearningRate
	}
	if c.HiddenSize > 0 {
		s.Train.HiddenSize = c.HiddenSize
	}
	if c.HalfLife > 0 {
		s.Fusion.HalfLife = c.HalfLife
	}
	return s
}
