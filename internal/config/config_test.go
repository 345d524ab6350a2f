package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	expectedNoErrorMsg   = "expected no error, got %v"
	expectedNonNilConfig = "expected non-nil config"
	testAppName          = "test-app"
	expandedPathValue    = "/srv/ssq/history.json"
)

const sampleConfig = `
app:
  name: ssq-test
  environment: development
  log_level: debug
data:
  history_path: ${SSQ_TEST_HISTORY}
model:
  seq_len: 8
  epochs: 2
blend:
  mode: fixed
  fixed_alpha: 0.35
backtest:
  k_list: [6, 12]
  start_date: "2015-01-01"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests ${VAR} expansion in the file body
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	t.Setenv("SSQ_TEST_HISTORY", expandedPathValue)

	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}
	if cfg.Data.HistoryPath != expandedPathValue {
		t.Errorf("expected history path '%s', got '%s'", expandedPathValue, cfg.Data.HistoryPath)
	}
	if cfg.Model.SeqLen != 8 {
		t.Errorf("expected seq_len 8, got %d", cfg.Model.SeqLen)
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("SSQ_APP_NAME", testAppName)

	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestLoadWithDefaultsMissingFile falls back to the calibrated defaults
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	def := Default()
	if cfg.Estimator.HalfLife != def.Estimator.HalfLife {
		t.Errorf("expected half_life %.0f, got %.0f", def.Estimator.HalfLife, cfg.Estimator.HalfLife)
	}
	if len(cfg.Backtest.KList) != 4 || cfg.Backtest.KList[0] != 6 {
		t.Errorf("expected default k list, got %v", cfg.Backtest.KList)
	}
	if cfg.Generator.Trials != 2500 {
		t.Errorf("expected 2500 trials, got %d", cfg.Generator.Trials)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

// TestLoadWithDefaultsOverlay keeps defaults for keys the file omits
func TestLoadWithDefaultsOverlay(t *testing.T) {
	t.Setenv("SSQ_TEST_HISTORY", expandedPathValue)
	t.Setenv("SSQ_GENERATOR_TRIALS", "400")

	cfg, err := LoadWithDefaults(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.Blend.Mode != "fixed" || cfg.Blend.FixedAlpha != 0.35 {
		t.Errorf("expected fixed blend at 0.35, got %s %.2f", cfg.Blend.Mode, cfg.Blend.FixedAlpha)
	}
	if cfg.Blend.TauPrimary != 1.3 {
		t.Errorf("expected default tau_primary 1.3, got %.2f", cfg.Blend.TauPrimary)
	}
	if cfg.Generator.Trials != 400 {
		t.Errorf("expected trials 400 from environment, got %d", cfg.Generator.Trials)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected overlay to validate, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests the environment validator
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg := Default()
	cfg.App.Environment = "invalid"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
	if !strings.Contains(err.Error(), "Environment") {
		t.Errorf("expected error to name Environment, got %v", err)
	}
}

// TestValidateBlendMode tests the blend mode validator
func TestValidateBlendMode(t *testing.T) {
	cfg := Default()
	cfg.Blend.Mode = "sometimes"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for blend mode")
	}
	if !strings.Contains(err.Error(), "auto, fixed") {
		t.Errorf("expected blend mode message, got %v", err)
	}
}

// TestValidateStartDate tests the datetime validator
func TestValidateStartDate(t *testing.T) {
	cfg := Default()
	cfg.Backtest.StartDate = "2015/01/01"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for start date")
	}

	cfg.Backtest.StartDate = "2015-01-01"
	if err := Validate(cfg); err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
}

// TestValidateKList rejects k beyond the pool size
func TestValidateKList(t *testing.T) {
	cfg := Default()
	cfg.Backtest.SecondaryKList = []int{1, 17}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for secondary k")
	}
}

// TestValidateCrossField tests the cross-field rules
func TestValidateCrossField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "fusion weights", mutate: func(c *Config) { c.Estimator.FusionShort, c.Estimator.FusionWeekday = 0.7, 0.5 }, want: "fusion"},
		{name: "alpha bounds", mutate: func(c *Config) { c.Blend.AlphaMin, c.Blend.AlphaMax = 0.7, 0.3 }, want: "alpha_min"},
		{name: "sum bounds", mutate: func(c *Config) { c.Forecast.SumFloor, c.Forecast.SumCeiling = 150, 90 }, want: "sum_floor"},
		{name: "seq len", mutate: func(c *Config) { c.Model.SeqLen = 200 }, want: "seq_len"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

// TestMetricsTextfileRequiredWhenEnabled tests required_if on the metrics section
func TestMetricsTextfileRequiredWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Enabled = true
	cfg.Metrics.TextfilePath = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for missing textfile path")
	}
}

// TestIsDevelopment tests the environment helpers
func TestIsDevelopment(t *testing.T) {
	cfg := Default()
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("expected development defaults")
	}
	cfg.App.Environment = "production"
	if !cfg.IsProduction() {
		t.Error("expected IsProduction to return true")
	}
}

func TestNewValidatorRegistersCustomRules(t *testing.T) {
	cv, err := NewValidator()
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if err := cv.Validate(Default()); err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg := Default()
	cfg.App.LogLevel = "verbose"
	if err := cv.Validate(cfg); err == nil {
		t.Fatal("expected validation error for unknown log level")
	}
}
