// Package estimator computes time-decayed frequency priors over both pools.
package estimator

import (
	"math"
	"time"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// Params controls a single marginal estimate.
type Params struct {
	HalfLife   float64
	Window     int
	Weekday    *time.Weekday
	ShrinkBeta float64
}

// DecayWeights returns exponential weights oldest to newest; the newest weight is 1.
func DecayWeights(n int, halfLife float64) []float64 {
	lambda := math.Ln2 / math.Max(1, halfLife)
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = math.Exp(lambda * float64(i-n+1))
	}
	return weights
}

// Marginals estimates both pool distributions from records sorted oldest first.
// It never fails: empty input or zero mass yields uniform vectors.
func Marginals(records []models.DrawRecord, p Params) models.Probabilities {
	if p.Window > 0 {
		records = models.Last(records, p.Window)
	}
	if len(records) == 0 {
		return models.UniformProbabilities()
	}
	weights := DecayWeights(len(records), p.HalfLife)
	global := accumulate(records, weights, nil)
	if p.Weekday == nil {
		return global
	}

	target := *p.Weekday
	cond := accumulate(records, weights, func(r models.DrawRecord) bool {
		return models.ContextWeekday(r) == target
	})
	matched := 0.0
	for _, r := range records {
		if models.ContextWeekday(r) == target {
			matched++
		}
	}
	if matched == 0 {
		cond = global
	}

	mix := 0.0
	if matched+p.ShrinkBeta > 0 {
		mix = matched / (matched + math.Max(0, p.ShrinkBeta))
	}
	return models.Probabilities{
		Primary:   models.Mix(cond.Primary, global.Primary, mix),
		Secondary: models.Mix(cond.Secondary, global.Secondary, mix),
	}
}

func accumulate(records []models.DrawRecord, weights []float64, keep func(models.DrawRecord) bool) models.Probabilities {
	primary := make(models.ProbabilityVector, models.PrimaryPool.Size)
	secondary := make(models.ProbabilityVector, models.SecondaryPool.Size)
	for i, r := range records {
		if keep != nil && !keep(r) {
			continue
		}
		for _, n := range r.Primary {
			if models.PrimaryPool.Contains(n) {
				primary[n-1] += weights[i]
			}
		}
		if models.SecondaryPool.Contains(r.Secondary) {
			secondary[r.Secondary-1] += weights[i]
		}
	}
	return models.Probabilities{Primary: primary.Normalize(), Secondary: secondary.Normalize()}
}

// HotSecondaries returns secondary numbers seen at least minCount times in the
// newest window records, ascending.
func HotSecondaries(records []models.DrawRecord, window, minCount int) []int {
	if len(records) == 0 {
		return nil
	}
	if window < 1 {
		window = 1
	}
	if minCount < 1 {
		minCount = 1
	}
	counts := make([]int, models.SecondaryPool.Size+1)
	for _, r := range models.Last(records, window) {
		if models.SecondaryPool.Contains(r.Secondary) {
			counts[r.Secondary]++
		}
	}
	var hot []int
	for n := 1; n <= models.SecondaryPool.Size; n++ {
		if counts[n] >= minCount {
			hot = append(hot, n)
		}
	}
	return hot
}
