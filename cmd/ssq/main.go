// Package main provides the ssq forecasting CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/ssq-forecast/internal/config"
	"github.com/yourusername/ssq-forecast/internal/datasource"
	"github.com/yourusername/ssq-forecast/internal/logger"
	"github.com/yourusername/ssq-forecast/internal/metrics"
	"github.com/yourusername/ssq-forecast/internal/models"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	dataFile   string
	appLogger  *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&dataFile, "data", "d", "", "Path to the JSON draw history (overrides data.history_path)")

	rootCmd.AddCommand(predictCmd, trainCmd, recommendCmd, backtestCmd, evaluateCmd, analyzeCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:           "ssq",
	Short:         "Probability forecasting and walk-forward backtesting for the 6/33 + 1/16 draw",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLogger = logger.NewLoggerFor(cfg.App.LogLevel, cfg.App.Environment, os.Stderr)
		metrics.InitRegistry()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil || !cfg.Metrics.Enabled {
			return nil
		}
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		appLogger.WithField("path", cfg.Metrics.TextfilePath).Debug("Metrics textfile written")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ssq %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if dataFile != "" {
		loaded.Data.HistoryPath = dataFile
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func loadHistory(ctx context.Context) ([]models.DrawRecord, error) {
	src := datasource.NewJSONFile(cfg.Data.HistoryPath)
	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	appLogger.WithFields(logrus.Fields{
		"source":  src.Name(),
		"path":    cfg.Data.HistoryPath,
		"records": len(records),
	}).Info("History loaded")
	return records, nil
}
