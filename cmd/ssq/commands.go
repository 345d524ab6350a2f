package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/ssq-forecast/internal/backtest"
	"github.com/yourusername/ssq-forecast/internal/blend"
	"github.com/yourusername/ssq-forecast/internal/models"
	"github.com/yourusername/ssq-forecast/internal/service"
)

var (
	blendMode   string
	halfLife    float64
	withModel   bool
	numSets     int
	outputPath  string
	noModel     bool
	startDate   string
	seqLen      int
	epochs      int
	recsPath    string
	trendWindow int
)

func init() {
	predictCmd.Flags().StringVar(&blendMode, "blend", "", "Blend mode: auto or a model weight in [0,1] (default from config)")
	predictCmd.Flags().Float64Var(&halfLife, "half-life", 0, "Decay half-life in draws (default from config)")
	predictCmd.Flags().BoolVar(&withModel, "train", true, "Train the sequence model before predicting")
	predictCmd.Flags().IntVar(&seqLen, "seq-len", 0, "Sequence window length (default from config)")
	predictCmd.Flags().IntVar(&epochs, "epochs", 0, "Training epochs (default from config)")

	trainCmd.Flags().IntVar(&seqLen, "seq-len", 0, "Sequence window length (default from config)")
	trainCmd.Flags().IntVar(&epochs, "epochs", 0, "Training epochs (default from config)")

	recommendCmd.Flags().IntVarP(&numSets, "sets", "n", 0, "Number of sets to recommend (default from config)")
	recommendCmd.Flags().BoolVar(&withModel, "train", true, "Train the sequence model before sampling")
	recommendCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the recommendation batch as JSON")

	backtestCmd.Flags().BoolVar(&noModel, "no-model", false, "Evaluate baselines only, skipping model training")
	backtestCmd.Flags().StringVar(&startDate, "start", "", "Only replay draws on or after this date (YYYY-MM-DD)")
	backtestCmd.Flags().IntVar(&seqLen, "seq-len", 0, "Sequence window length (default from config)")
	backtestCmd.Flags().IntVar(&epochs, "epochs", 0, "Training epochs per step (default from config)")
	backtestCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the summary as CSV (default backtest.report_path)")

	evaluateCmd.Flags().StringVar(&recsPath, "recommendations", "", "JSON batch written by recommend; generated from the prior draws when empty")
	evaluateCmd.Flags().IntVarP(&numSets, "sets", "n", 0, "Number of sets to generate when no batch is given")

	analyzeCmd.Flags().IntVar(&trendWindow, "window", 0, "Recent window for hot numbers (default estimator.hot_window)")
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Print the blended probabilities of the next draw",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := resolveMode()
		if err != nil {
			return err
		}
		analyzer, err := newAnalyzer(cmd)
		if err != nil {
			return err
		}
		if withModel {
			analyzer.Train(service.TrainOptions{SeqLen: seqLen, Epochs: epochs})
		}
		pred := analyzer.PredictNext(mode, halfLife)
		fmt.Print(formatPrediction(pred, 10))
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the sequence model and report its status",
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, err := newAnalyzer(cmd)
		if err != nil {
			return err
		}
		res := analyzer.Train(service.TrainOptions{SeqLen: seqLen, Epochs: epochs})
		fmt.Printf("Status: %s\nSamples: %d\nEpochs: %d\n", res.Status, res.Samples, res.Epochs)
		if res.Trained() {
			fmt.Printf("Primary loss: %.4f\nSecondary loss: %.4f\nDuration: %s\n",
				res.PrimaryLoss, res.SecondaryLoss, res.Duration.Round(time.Millisecond))
		} else if res.Err != nil {
			fmt.Printf("Reason: %v\n", res.Err)
		}
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Generate ranked number sets for the next draw",
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, err := newAnalyzer(cmd)
		if err != nil {
			return err
		}
		if withModel {
			analyzer.Train(service.TrainOptions{})
		}
		batch, err := analyzer.GenerateRecommendations(cmd.Context(), numSets)
		if err != nil {
			return err
		}
		fmt.Print(formatBatch(batch))
		if outputPath != "" {
			if err := writeJSON(outputPath, batch); err != nil {
				return err
			}
			appLogger.WithField("path", outputPath).Info("Recommendation batch written")
		}
		return nil
	},
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay history walk-forward and score every variant",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := service.BacktestOptions{SeqLen: seqLen, Epochs: epochs, SkipModel: noModel}
		if startDate != "" {
			start, err := time.Parse(models.DateLayout, startDate)
			if err != nil {
				return fmt.Errorf("invalid start date: %w", err)
			}
			opts.StartDate = start
		}
		analyzer, err := newAnalyzer(cmd)
		if err != nil {
			return err
		}
		summary, err := analyzer.RunBacktest(cmd.Context(), opts)
		if err != nil {
			return err
		}
		fmt.Print(backtest.GenerateConsoleReport(summary))

		path := outputPath
		if path == "" {
			path = cfg.Backtest.ReportPath
		}
		if path != "" {
			if err := backtest.GenerateCSVExport(summary, path); err != nil {
				return err
			}
			appLogger.WithField("path", path).Info("Backtest report written")
		}
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score recommendations against the newest draw",
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, err := newAnalyzer(cmd)
		if err != nil {
			return err
		}
		recs, err := evaluationSets(cmd, analyzer)
		if err != nil {
			return err
		}
		ev, err := analyzer.EvaluateLatest(recs)
		if err != nil {
			return err
		}
		fmt.Print(formatEvaluation(ev))
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarize odd/even, sum and span patterns and recent hot numbers",
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, err := newAnalyzer(cmd)
		if err != nil {
			return err
		}
		fmt.Print(formatPatterns(analyzer.Patterns()))
		fmt.Print(formatTrends(analyzer.Trends(trendWindow)))
		return nil
	},
}

func newAnalyzer(cmd *cobra.Command) (*service.Analyzer, error) {
	history, err := loadHistory(cmd.Context())
	if err != nil {
		return nil, err
	}
	return service.NewAnalyzer(history, cfg, appLogger)
}

func resolveMode() (blend.Mode, error) {
	if blendMode != "" {
		return blend.ParseMode(blendMode)
	}
	if cfg.Blend.Mode == "fixed" {
		return blend.Fixed(cfg.Blend.FixedAlpha), nil
	}
	return blend.Adaptive(), nil
}

// evaluationSets loads a saved batch, or generates sets from every draw except the
// newest so the evaluation never sees its own target.
func evaluationSets(cmd *cobra.Command, analyzer *service.Analyzer) ([]models.Recommendation, error) {
	if recsPath != "" {
		data, err := os.ReadFile(recsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read recommendations: %w", err)
		}
		var batch service.RecommendationBatch
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("failed to parse recommendations: %w", err)
		}
		return batch.Recommendations, nil
	}

	history := analyzer.History()
	if len(history) == 0 {
		return nil, models.ErrEmptyHistory
	}
	prior, err := service.NewAnalyzer(history[:len(history)-1], cfg, appLogger)
	if err != nil {
		return nil, err
	}
	prior.Train(service.TrainOptions{})
	batch, err := prior.GenerateRecommendations(cmd.Context(), numSets)
	if err != nil {
		return nil, err
	}
	return batch.Recommendations, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
