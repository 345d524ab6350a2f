package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats the averaged metrics as tab-separated tables.
func GenerateConsoleReport(s Summary) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Run ID: %s\n", s.RunID))
	builder.WriteString(fmt.Sprintf("Evaluated Steps: %d (model trained on %d)\n", s.Samples, s.TrainedSteps))

	builder.WriteString("\nPrimary Recall@k\n")
	writeTable(&builder, s.Variants, s.KList, s.Primary)
	builder.WriteString("\nSecondary Hit@k\n")
	writeTable(&builder, s.Variants, s.SecondaryKList, s.Secondary)

	if ranking := RankVariants(s); len(ranking) > 0 {
		builder.WriteString(fmt.Sprintf("\nBest Variant: %s (composite %.4f)\n", ranking[0].Variant, ranking[0].CompositeScore))
	}
	return builder.String()
}

func writeTable(b *strings.Builder, variants []string, ks []int, values map[string]map[int]float64) {
	b.WriteString("k\t" + strings.Join(variants, "\t") + "\n")
	for _, k := range ks {
		cells := []string{fmt.Sprintf("@%d", k)}
		for _, v := range variants {
			cells = append(cells, fmt.Sprintf("%.4f", values[v][k]))
		}
		b.WriteString(strings.Join(cells, "\t") + "\n")
	}
}

// GenerateCSVExport exports one row per variant, pool and k for spreadsheets.
func GenerateCSVExport(s Summary, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	var builder strings.Builder
	builder.WriteString("variant,pool,k,value\n")
	for _, v := range s.Variants {
		for _, k := range s.KList {
			builder.WriteString(fmt.Sprintf("%s,primary,%d,%.6f\n", v, k, s.Primary[v][k]))
		}
		for _, k := range s.SecondaryKList {
			builder.WriteString(fmt.Sprintf("%s,secondary,%d,%.6f\n", v, k, s.Secondary[v][k]))
		}
	}
	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}
