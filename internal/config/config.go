// Package config provides configuration management for the forecasting engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Data      DataConfig      `mapstructure:"data" validate:"required"`
	Estimator EstimatorConfig `mapstructure:"estimator" validate:"required"`
	Model     ModelConfig     `mapstructure:"model" validate:"required"`
	Blend     BlendConfig     `mapstructure:"blend" validate:"required"`
	Forecast  ForecastConfig  `mapstructure:"forecast" validate:"required"`
	Generator GeneratorConfig `mapstructure:"generator" validate:"required"`
	Backtest  BacktestConfig  `mapstructure:"backtest" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DataConfig locates the draw history
type DataConfig struct {
	HistoryPath string `mapstructure:"history_path" validate:"required"`
}

// EstimatorConfig controls the decayed priors and their fusion
type EstimatorConfig struct {
	HalfLife      float64 `mapstructure:"half_life" validate:"gt=0"`
	ShortWindow   int     `mapstructure:"short_window" validate:"gt=0"`
	ShrinkBeta    float64 `mapstructure:"shrink_beta" validate:"gte=0"`
	FusionShort   float64 `mapstructure:"fusion_short" validate:"gte=0,lte=1"`
	FusionWeekday float64 `mapstructure:"fusion_weekday" validate:"gte=0,lte=1"`
	HotWindow     int     `mapstructure:"hot_window" validate:"gt=0"`
	HotMinCount   int     `mapstructure:"hot_min_count" validate:"gt=0"`
}

// ModelConfig controls sequence model training
type ModelConfig struct {
	SeqLen       int     `mapstructure:"seq_len" validate:"gt=0"`
	Epochs       int     `mapstructure:"epochs" validate:"gt=0"`
	LearningRate float64 `mapstructure:"learning_rate" validate:"gt=0"`
	HiddenSize   int     `mapstructure:"hidden_size" validate:"gt=0"`
	Dropout      float64 `mapstructure:"dropout" validate:"gte=0,lt=1"`
	BatchSize    int     `mapstructure:"batch_size" validate:"gt=0"`
	Seed         int64   `mapstructure:"seed"`
}

// BlendConfig controls smoothing and the model weight
type BlendConfig struct {
	Mode               string  `mapstructure:"mode" validate:"required,blendmode"`
	FixedAlpha         float64 `mapstructure:"fixed_alpha" validate:"gte=0,lte=1"`
	TauPrimary         float64 `mapstructure:"tau_primary" validate:"gt=0"`
	TauSecondary       float64 `mapstructure:"tau_secondary" validate:"gt=0"`
	SharpnessThreshold float64 `mapstructure:"sharpness_threshold" validate:"gt=0,lte=1"`
	SharpnessBump      float64 `mapstructure:"sharpness_bump" validate:"gte=0"`
	WeekdayLookback    int     `mapstructure:"weekday_lookback" validate:"gt=0"`
	WeekdayMinCount    int     `mapstructure:"weekday_min_count" validate:"gte=0"`
	SparsityPenalty    float64 `mapstructure:"sparsity_penalty" validate:"gt=0,lte=1"`
	AlphaMin           float64 `mapstructure:"alpha_min" validate:"gte=0,lte=1"`
	AlphaMax           float64 `mapstructure:"alpha_max" validate:"gte=0,lte=1"`
}

// ForecastConfig controls the sum-range forecast and its constraint
type ForecastConfig struct {
	MinHistory     int     `mapstructure:"min_history" validate:"gt=0"`
	FallbackMargin float64 `mapstructure:"fallback_margin" validate:"gt=0"`
	ErrorMargin    float64 `mapstructure:"error_margin" validate:"gt=0"`
	Confidence     float64 `mapstructure:"confidence" validate:"gt=0,lt=1"`
	Slack          int     `mapstructure:"slack" validate:"gte=0"`
	SumFloor       int     `mapstructure:"sum_floor" validate:"gte=21,lte=183"`
	SumCeiling     int     `mapstructure:"sum_ceiling" validate:"gte=21,lte=183"`
}

// GeneratorConfig controls Monte Carlo candidate generation
type GeneratorConfig struct {
	Trials     int     `mapstructure:"trials" validate:"gt=0"`
	Workers    int     `mapstructure:"workers" validate:"gt=0,lte=64"`
	ShardSize  int     `mapstructure:"shard_size" validate:"gt=0"`
	Seed       int64   `mapstructure:"seed"`
	HotMassCap float64 `mapstructure:"hot_mass_cap" validate:"gt=0,lte=1"`
	NumSets    int     `mapstructure:"num_sets" validate:"gt=0,lte=100"`
}

// BacktestConfig represents walk-forward backtest configuration
type BacktestConfig struct {
	StartDate          string    `mapstructure:"start_date" validate:"omitempty,datetime"`
	Epochs             int       `mapstructure:"epochs" validate:"gt=0"`
	KList              []int     `mapstructure:"k_list" validate:"required,min=1,dive,gte=1,lte=33"`
	SecondaryKList     []int     `mapstructure:"secondary_k_list" validate:"required,min=1,dive,gte=1,lte=16"`
	FixedAlpha         float64   `mapstructure:"fixed_alpha" validate:"gte=0,lte=1"`
	ShortWindow        int       `mapstructure:"short_window" validate:"gt=0"`
	LongWindow         int       `mapstructure:"long_window" validate:"gt=0"`
	MixBetas           []float64 `mapstructure:"mix_betas" validate:"dive,gte=0,lte=1"`
	BaselineShrinkBeta float64   `mapstructure:"baseline_shrink_beta" validate:"gte=0"`
	UseModel           bool      `mapstructure:"use_model"`
	ReportPath         string    `mapstructure:"report_path"`
}

// MetricsConfig represents metrics export configuration
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	TextfilePath string `mapstructure:"textfile_path" validate:"required_if=Enabled true"`
}

// Default returns the calibrated configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{Name: "ssq-forecast", Environment: "development", LogLevel: "info"},
		Data: DataConfig{HistoryPath: "data/lottery_data.json"},
		Estimator: EstimatorConfig{
			HalfLife:      60,
			ShortWindow:   30,
			ShrinkBeta:    40,
			FusionShort:   0.30,
			FusionWeekday: 0.20,
			HotWindow:     10,
			HotMinCount:   2,
		},
		Model: ModelConfig{
			SeqLen:       10,
			Epochs:       5,
			LearningRate: 1e-3,
			HiddenSize:   64,
			Dropout:      0.2,
			BatchSize:    128,
			Seed:         2025,
		},
		Blend: BlendConfig{
			Mode:               "auto",
			FixedAlpha:         0.40,
			TauPrimary:         1.3,
			TauSecondary:       1.5,
			SharpnessThreshold: 0.18,
			SharpnessBump:      0.1,
			WeekdayLookback:    24,
			WeekdayMinCount:    8,
			SparsityPenalty:    0.85,
			AlphaMin:           0.20,
			AlphaMax:           0.60,
		},
		Forecast: ForecastConfig{
			MinHistory:     30,
			FallbackMargin: 20,
			ErrorMargin:    25,
			Confidence:     0.80,
			Slack:          5,
			SumFloor:       60,
			SumCeiling:     180,
		},
		Generator: GeneratorConfig{
			Trials:     2500,
			Workers:    4,
			ShardSize:  250,
			Seed:       2025,
			HotMassCap: 0.40,
			NumSets:    5,
		},
		Backtest: BacktestConfig{
			Epochs:             3,
			KList:              []int{6, 10, 12, 16},
			SecondaryKList:     []int{1, 2, 3, 4},
			FixedAlpha:         0.40,
			ShortWindow:        30,
			LongWindow:         180,
			MixBetas:           []float64{0.20, 0.35, 0.50},
			BaselineShrinkBeta: 20,
			UseModel:           true,
		},
		Metrics: MetricsConfig{Enabled: false, TextfilePath: "metrics/ssq.prom"},
	}
}

// IsProduction returns true if the application is running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if the application is running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// String returns a short description of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: %s, Environment: %s, LogLevel: %s, BlendMode: %s, SeqLen: %d}",
		c.App.Name, c.App.Environment, c.App.LogLevel, c.Blend.Mode, c.Model.SeqLen)
}
