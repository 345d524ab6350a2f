package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerForLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerFor("debug", "development", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	log = NewLoggerFor("not-a-level", "production", buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	assert.Contains(t, buf.String(), "defaulting to info")
}

func TestPipelineLoggerTraining(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log)

	pl.LogTraining("trained", 120, 5, 0.41, 2.7, 1500*time.Millisecond, nil)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pipeline", logEntry["component"])
	assert.Equal(t, "trained", logEntry["status"])
	assert.Equal(t, float64(120), logEntry["samples"])
	assert.Equal(t, float64(1500), logEntry["duration_ms"])
	assert.Equal(t, "info", logEntry["level"])
}

func TestPipelineLoggerTrainingSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log)

	pl.LogTraining("untrained", 0, 0, 0, 0, 0, errors.New("insufficient data"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "insufficient data", logEntry["error"])
}

func TestPipelineLoggerBlend(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log)

	pl.LogBlend("auto", 0.35, 0.46, true, false, "Tuesday")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "auto", logEntry["mode"])
	assert.Equal(t, 0.35, logEntry["alpha"])
	assert.Equal(t, "Tuesday", logEntry["target_weekday"])
	assert.Equal(t, "debug", logEntry["level"])
}

func TestPipelineLoggerForecastFallback(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log)

	pl.LogForecastFallback(102, 77, 127, errors.New("fit failed"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, float64(77), logEntry["lower"])
}

func TestPipelineLoggerCandidatesRelaxed(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log)

	pl.LogCandidates(2500, 2500, 2480, 60, 180, true)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, true, logEntry["relaxed"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestPipelineLoggerBacktestSummary(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log)

	pl.LogBacktestSummary("run-1", 42, 9, 2*time.Second)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "run-1", logEntry["run_id"])
	assert.Equal(t, float64(42), logEntry["samples"])
	assert.Equal(t, float64(9), logEntry["variants"])
}

func TestNilBaseLoggerDiscards(t *testing.T) {
	pl := NewPipelineLogger(nil)
	assert.NotPanics(t, func() {
		pl.LogBacktestStep("run", 1, 2, "2025001", true)
	})
}
