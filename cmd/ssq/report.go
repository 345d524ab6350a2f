package main

import (
	"fmt"
	"strings"

	"github.com/yourusername/ssq-forecast/internal/evaluation"
	"github.com/yourusername/ssq-forecast/internal/models"
	"github.com/yourusername/ssq-forecast/internal/pipeline"
	"github.com/yourusername/ssq-forecast/internal/service"
)

func formatPrediction(pred pipeline.Prediction, top int) string {
	var b strings.Builder
	b.WriteString("\n=== Next Draw Forecast ===\n")
	fmt.Fprintf(&b, "Target weekday: %s\n", pred.Target)
	if pred.ModelUsed {
		fmt.Fprintf(&b, "Model weight: %.3f (divergence %.4f, sparse %v)\n", pred.Alpha, pred.Divergence, pred.Sparse)
	} else {
		b.WriteString("Model weight: 0 (fused prior only)\n")
	}
	b.WriteString("\nPrimary\n")
	writeRanked(&b, pred.Primary, top)
	b.WriteString("\nSecondary\n")
	writeRanked(&b, pred.Secondary, top/2)
	return b.String()
}

func writeRanked(b *strings.Builder, p models.ProbabilityVector, k int) {
	for i, n := range p.TopK(k) {
		fmt.Fprintf(b, "%2d. %02d  %.4f\n", i+1, n, p.Prob(n))
	}
}

func formatBatch(batch *service.RecommendationBatch) string {
	var b strings.Builder
	b.WriteString("\n=== Recommendations ===\n")
	fmt.Fprintf(&b, "Batch ID: %s\n", batch.ID)
	fmt.Fprintf(&b, "Target weekday: %s\n", batch.Target)
	if len(batch.Recommendations) == 0 {
		b.WriteString("No sets generated\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Sum forecast: %.1f [%.1f, %.1f]", batch.SumRange.Expected, batch.SumRange.Lower, batch.SumRange.Upper)
	if batch.SumRange.Fallback {
		b.WriteString(" (fallback)")
	}
	fmt.Fprintf(&b, "\nSum constraint: %d-%d", batch.Bounds.Low, batch.Bounds.High)
	if batch.Relaxed {
		b.WriteString(" (relaxed)")
	}
	b.WriteString("\n\n")
	for i, rec := range batch.Recommendations {
		fmt.Fprintf(&b, "%d. %s + %02d  score %.4f  entropy %.3f  sum %d  span %d  odd/even %d:%d  confidence %.6f\n",
			i+1, joinNumbers(rec.Primary), rec.Secondary, rec.Score, rec.Entropy,
			rec.Sum, rec.Span, rec.OddCount, rec.EvenCount, rec.Confidence)
	}
	return b.String()
}

func formatEvaluation(ev evaluation.LatestEvaluation) string {
	var b strings.Builder
	b.WriteString("\n=== Latest Draw Evaluation ===\n")
	fmt.Fprintf(&b, "Period %s (%s): %s + %02d\n", ev.Period, ev.Date, joinNumbers(ev.Primary), ev.Secondary)
	if ev.HasProbabilities {
		fmt.Fprintf(&b, "Primary probability mass: %.4f\n", ev.PrimaryMass)
		fmt.Fprintf(&b, "Secondary rank: %d (top 3: %v)\n", ev.SecondaryRank, ev.SecondaryTop3)
	}
	b.WriteString("\n")
	for i, r := range ev.Results {
		fmt.Fprintf(&b, "%d. %s + %02d  hits %d+%d  prize %s  payout %s\n",
			i+1, joinNumbers(r.Recommendation.Primary), r.Recommendation.Secondary,
			r.PrimaryHits, boolInt(r.SecondaryHit), r.Tier, r.Payout.StringFixed(0))
	}
	fmt.Fprintf(&b, "\nBest overlap: %d primaries, secondary hit %v (estimated tier %s)\n", ev.BestHits, ev.AnySecondary, ev.EstimatedTier)
	fmt.Fprintf(&b, "Cost %s, fixed payout %s, net %s\n", ev.Cost.StringFixed(0), ev.Payout.StringFixed(0), ev.Net.StringFixed(0))
	if ev.BestTier.Floating() {
		b.WriteString("Jackpot tier hit: payout depends on the prize pool\n")
	}
	return b.String()
}

func formatPatterns(pa evaluation.PatternAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Patterns (%d draws) ===\n", pa.Total)
	writeBuckets(&b, "Odd/Even", pa.OddEven)
	writeBuckets(&b, "Sum", pa.Sums)
	writeBuckets(&b, "Span", pa.Spans)
	return b.String()
}

func writeBuckets(b *strings.Builder, title string, buckets []evaluation.Bucket) {
	fmt.Fprintf(b, "\n%s\n", title)
	for _, bk := range buckets {
		fmt.Fprintf(b, "  %-16s %5d  %5.1f%%\n", bk.Label, bk.Count, bk.Percent)
	}
}

func formatTrends(ta evaluation.TrendAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Trends (last %d draws) ===\n", ta.Window)
	if !ta.Sufficient {
		b.WriteString("Not enough draws\n")
		return b.String()
	}
	for _, r := range ta.Recent {
		fmt.Fprintf(&b, "  %s %s  %s + %02d\n", r.Period, r.Date, joinNumbers(models.NewCombination(r.Primary).Slice()), r.Secondary)
	}
	fmt.Fprintf(&b, "Hot primary: %s\n", joinNumbers(ta.HotPrimary))
	fmt.Fprintf(&b, "Hot secondary: %s\n", joinNumbers(ta.HotSecondary))
	return b.String()
}

func joinNumbers(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, " ")
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
