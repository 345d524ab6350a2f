package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// customRules are the tags registered on top of the validator built-ins.
var customRules = map[string]validator.Func{
	"environment": validateEnvironment,
	"loglevel":    validateLogLevel,
	"blendmode":   validateBlendMode,
	"datetime":    validateDateTime,
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() (*CustomValidator, error) {
	v := validator.New()
	for tag, fn := range customRules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
	}
	return &CustomValidator{validator: v}, nil
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv, err := NewValidator()
	if err != nil {
		return err
	}
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateBlendMode accepts "auto" or "fixed"
func validateBlendMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "auto", "fixed":
		return true
	default:
		return false
	}
}

// validateDateTime validates datetime strings
func validateDateTime(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.DateLayout, fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Estimator.FusionShort+cfg.Estimator.FusionWeekday > 1 {
		return fmt.Errorf("fusion_short + fusion_weekday cannot exceed 1")
	}

	if cfg.Blend.AlphaMin > cfg.Blend.AlphaMax {
		return fmt.Errorf("alpha_min cannot exceed alpha_max")
	}

	if cfg.Forecast.SumFloor > cfg.Forecast.SumCeiling {
		return fmt.Errorf("sum_floor cannot exceed sum_ceiling")
	}

	if cfg.Model.SeqLen >= cfg.Backtest.LongWindow {
		return fmt.Errorf("seq_len must be shorter than the backtest long_window")
	}

	if cfg.Backtest.ShortWindow > cfg.Backtest.LongWindow {
		return fmt.Errorf("backtest short_window cannot exceed long_window")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated, got '%v'\n", field, tag, value)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "blendmode":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: auto, fixed\n", field)
		case "datetime":
			errMsg += fmt.Sprintf("- Field '%s' must be a YYYY-MM-DD date, got '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
