package backtest

import (
	"github.com/montanaflynn/stats"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// RecallAtK is the fraction of the true primary numbers ranked within the top k.
func RecallAtK(p models.ProbabilityVector, truth []int, k int) float64 {
	if len(truth) == 0 {
		return 0
	}
	top := make(map[int]bool, k)
	for _, n := range p.TopK(k) {
		top[n] = true
	}
	hits := 0
	for _, n := range truth {
		if top[n] {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

// HitAtK is 1 when the true secondary number ranks within the top k, else 0.
func HitAtK(p models.ProbabilityVector, truth int, k int) float64 {
	for _, n := range p.TopK(k) {
		if n == truth {
			return 1
		}
	}
	return 0
}

// Accumulator collects per-step scores by variant and k. It only appends.
type Accumulator struct {
	kList          []int
	secondaryKList []int
	primary        map[string]map[int][]float64
	secondary      map[string]map[int][]float64
}

// NewAccumulator prepares empty series for every variant and k.
func NewAccumulator(variants []string, kList, secondaryKList []int) *Accumulator {
	a := &Accumulator{
		kList:          kList,
		secondaryKList: secondaryKList,
		primary:        make(map[string]map[int][]float64, len(variants)),
		secondary:      make(map[string]map[int][]float64, len(variants)),
	}
	for _, v := range variants {
		a.primary[v] = make(map[int][]float64, len(kList))
		a.secondary[v] = make(map[int][]float64, len(secondaryKList))
	}
	return a
}

// Add scores one variant's prediction against the true record.
func (a *Accumulator) Add(variant string, probs models.Probabilities, truth models.DrawRecord) {
	if _, ok := a.primary[variant]; !ok {
		a.primary[variant] = make(map[int][]float64, len(a.kList))
		a.secondary[variant] = make(map[int][]float64, len(a.secondaryKList))
	}
	for _, k := range a.kList {
		a.primary[variant][k] = append(a.primary[variant][k], RecallAtK(probs.Primary, truth.Primary, k))
	}
	for _, k := range a.secondaryKList {
		a.secondary[variant][k] = append(a.secondary[variant][k], HitAtK(probs.Secondary, truth.Secondary, k))
	}
}

// Averages returns the mean of every series; empty series average to zero.
func (a *Accumulator) Averages() (primary, secondary map[string]map[int]float64) {
	return average(a.primary), average(a.secondary)
}

func average(series map[string]map[int][]float64) map[string]map[int]float64 {
	out := make(map[string]map[int]float64, len(series))
	for variant, byK := range series {
		out[variant] = make(map[int]float64, len(byK))
		for k, values := range byK {
			mean, err := stats.Mean(values)
			if err != nil {
				mean = 0
			}
			out[variant][k] = mean
		}
	}
	return out
}
