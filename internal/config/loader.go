package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SSQ_MODEL_EPOCHS.
const EnvPrefix = "SSQ"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration on top of Default(). A missing file is not
// an error; environment variables still apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v, Default())

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.environment", d.App.Environment)
	v.SetDefault("app.log_level", d.App.LogLevel)

	v.SetDefault("data.history_path", d.Data.HistoryPath)

	v.SetDefault("estimator.half_life", d.Estimator.HalfLife)
	v.SetDefault("estimator.short_window", d.Estimator.ShortWindow)
	v.SetDefault("estimator.shrink_beta", d.Estimator.ShrinkBeta)
	v.SetDefault("estimator.fusion_short", d.Estimator.FusionShort)
	v.SetDefault("estimator.fusion_weekday", d.Estimator.FusionWeekday)
	v.SetDefault("estimator.hot_window", d.Estimator.HotWindow)
	v.SetDefault("estimator.hot_min_count", d.Estimator.HotMinCount)

	v.SetDefault("model.seq_len", d.Model.SeqLen)
	v.SetDefault("model.epochs", d.Model.Epochs)
	v.SetDefault("model.learning_rate", d.Model.LearningRate)
	v.SetDefault("model.hidden_size", d.Model.HiddenSize)
	v.SetDefault("model.dropout", d.Model.Dropout)
	v.SetDefault("model.batch_size", d.Model.BatchSize)
	v.SetDefault("model.seed", d.Model.Seed)

	v.SetDefault("blend.mode", d.Blend.Mode)
	v.SetDefault("blend.fixed_alpha", d.Blend.FixedAlpha)
	v.SetDefault("blend.tau_primary", d.Blend.TauPrimary)
	v.SetDefault("blend.tau_secondary", d.Blend.TauSecondary)
	v.SetDefault("blend.sharpness_threshold", d.Blend.SharpnessThreshold)
	v.SetDefault("blend.sharpness_bump", d.Blend.SharpnessBump)
	v.SetDefault("blend.weekday_lookback", d.Blend.WeekdayLookback)
	v.SetDefault("blend.weekday_min_count", d.Blend.WeekdayMinCount)
	v.SetDefault("blend.sparsity_penalty", d.Blend.SparsityPenalty)
	v.SetDefault("blend.alpha_min", d.Blend.AlphaMin)
	v.SetDefault("blend.alpha_max", d.Blend.AlphaMax)

	v.SetDefault("forecast.min_history", d.Forecast.MinHistory)
	v.SetDefault("forecast.fallback_margin", d.Forecast.FallbackMargin)
	v.SetDefault("forecast.error_margin", d.Forecast.ErrorMargin)
	v.SetDefault("forecast.confidence", d.Forecast.Confidence)
	v.SetDefault("forecast.slack", d.Forecast.Slack)
	v.SetDefault("forecast.sum_floor", d.Forecast.SumFloor)
	v.SetDefault("forecast.sum_ceiling", d.Forecast.SumCeiling)

	v.SetDefault("generator.trials", d.Generator.Trials)
	v.SetDefault("generator.workers", d.Generator.Workers)
	v.SetDefault("generator.shard_size", d.Generator.ShardSize)
	v.SetDefault("generator.seed", d.Generator.Seed)
	v.SetDefault("generator.hot_mass_cap", d.Generator.HotMassCap)
	v.SetDefault("generator.num_sets", d.Generator.NumSets)

	v.SetDefault("backtest.start_date", d.Backtest.StartDate)
	v.SetDefault("backtest.epochs", d.Backtest.Epochs)
	v.SetDefault("backtest.k_list", d.Backtest.KList)
	v.SetDefault("backtest.secondary_k_list", d.Backtest.SecondaryKList)
	v.SetDefault("backtest.fixed_alpha", d.Backtest.FixedAlpha)
	v.SetDefault("backtest.short_window", d.Backtest.ShortWindow)
	v.SetDefault("backtest.long_window", d.Backtest.LongWindow)
	v.SetDefault("backtest.mix_betas", d.Backtest.MixBetas)
	v.SetDefault("backtest.baseline_shrink_beta", d.Backtest.BaselineShrinkBeta)
	v.SetDefault("backtest.use_model", d.Backtest.UseModel)
	v.SetDefault("backtest.report_path", d.Backtest.ReportPath)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.textfile_path", d.Metrics.TextfilePath)
}
