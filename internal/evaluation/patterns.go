package evaluation

import (
	"fmt"
	"sort"

	"github.com/yourusername/ssq-forecast/internal/estimator"
	"github.com/yourusername/ssq-forecast/internal/models"
)

// Bucket counts records falling in one category.
type Bucket struct {
	Label   string  `json:"label"`
	Low     int     `json:"low"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// PatternAnalysis summarizes the primary numbers across history.
type PatternAnalysis struct {
	Total   int      `json:"total"`
	OddEven []Bucket `json:"odd_even"`
	Sums    []Bucket `json:"sums"`
	Spans   []Bucket `json:"spans"`
}

// AnalyzePatterns buckets odd/even splits (most frequent first), sums by tens and
// spans by fives (ascending).
func AnalyzePatterns(history []models.DrawRecord) PatternAnalysis {
	oddEven := map[int]int{}
	sums := map[int]int{}
	spans := map[int]int{}
	for _, r := range history {
		oddEven[r.OddCount()]++
		sums[r.PrimarySum()/10*10]++
		spans[r.Span()/5*5]++
	}

	total := len(history)
	pa := PatternAnalysis{Total: total}
	for odd, c := range oddEven {
		pa.OddEven = append(pa.OddEven, newBucket(fmt.Sprintf("%d odd / %d even", odd, models.PrimaryPool.Picks-odd), odd, c, total))
	}
	sort.Slice(pa.OddEven, func(i, j int) bool {
		if pa.OddEven[i].Count != pa.OddEven[j].Count {
			return pa.OddEven[i].Count > pa.OddEven[j].Count
		}
		return pa.OddEven[i].Low < pa.OddEven[j].Low
	})
	pa.Sums = ranged(sums, 10, total)
	pa.Spans = ranged(spans, 5, total)
	return pa
}

func ranged(counts map[int]int, width, total int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for low, c := range counts {
		out = append(out, newBucket(fmt.Sprintf("%d-%d", low, low+width-1), low, c, total))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Low < out[j].Low })
	return out
}

func newBucket(label string, low, count, total int) Bucket {
	pct := 0.0
	if total > 0 {
		pct = float64(count) / float64(total) * 100
	}
	return Bucket{Label: label, Low: low, Count: count, Percent: pct}
}

// TrendAnalysis lists the newest draws and the numbers repeated within them.
type TrendAnalysis struct {
	Sufficient   bool                `json:"sufficient"`
	Window       int                 `json:"window"`
	Recent       []models.DrawRecord `json:"recent"`
	HotPrimary   []int               `json:"hot_primary"`
	HotSecondary []int               `json:"hot_secondary"`
}

// AnalyzeTrends inspects the newest window records of a sorted history. Histories
// shorter than window are reported as insufficient.
func AnalyzeTrends(history []models.DrawRecord, window, minCount int) TrendAnalysis {
	ta := TrendAnalysis{Window: window}
	if window <= 0 || len(history) < window {
		return ta
	}
	ta.Sufficient = true
	recent := models.Last(history, window)
	ta.Recent = make([]models.DrawRecord, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		ta.Recent = append(ta.Recent, recent[i])
	}

	counts := map[int]int{}
	for _, r := range recent {
		for _, n := range r.Primary {
			counts[n]++
		}
	}
	for n, c := range counts {
		if c >= minCount {
			ta.HotPrimary = append(ta.HotPrimary, n)
		}
	}
	sort.Ints(ta.HotPrimary)
	ta.HotSecondary = estimator.HotSecondaries(history, window, minCount)
	return ta
}
