package generator

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// minMass is the probability at or below which a number is never drawn.
const minMass = 1e-12

// SampleWithoutReplacement draws k distinct numbers (1-based) where each pick is
// proportional to the mass remaining among unchosen numbers. Numbers with near-zero
// mass are excluded; if fewer than k carry mass the rest are drawn uniformly.
func SampleWithoutReplacement(rng *rand.Rand, p models.ProbabilityVector, k int) []int {
	if k > len(p) {
		k = len(p)
	}
	weights := massWeights(p)
	w := sampleuv.NewWeighted(weights, rng)
	taken := make([]bool, len(p))
	chosen := make([]int, 0, k)
	for len(chosen) < k {
		idx := take(w, weights)
		if idx < 0 {
			idx = uniformIndex(rng, taken)
		}
		taken[idx] = true
		weights[idx] = 0
		chosen = append(chosen, idx+1)
	}
	sort.Ints(chosen)
	return chosen
}

// massWeights copies p with near-zero and non-finite entries set to zero.
func massWeights(p []float64) []float64 {
	weights := make([]float64, len(p))
	for i, v := range p {
		if v > minMass && !math.IsInf(v, 0) {
			weights[i] = v
		}
	}
	return weights
}

// take returns -1 once every remaining weight is zero. weights mirrors w and
// guards against a rounding walk landing on an excluded index.
func take(w sampleuv.Weighted, weights []float64) int {
	for {
		idx, ok := w.Take()
		if !ok {
			return -1
		}
		if weights[idx] > 0 {
			return idx
		}
	}
}

func uniformIndex(rng *rand.Rand, taken []bool) int {
	free := make([]int, 0, len(taken))
	for i, t := range taken {
		if !t {
			free = append(free, i)
		}
	}
	return free[rng.IntN(len(free))]
}

// SelectionEntropy is the Shannon entropy in bits of the chosen numbers'
// probabilities renormalized among themselves.
func SelectionEntropy(p models.ProbabilityVector, numbers []int) float64 {
	chosen := make([]float64, len(numbers))
	for i, n := range numbers {
		chosen[i] = p.Prob(n)
	}
	total := floats.Sum(chosen)
	if total <= 0 {
		return math.Log2(float64(len(numbers)))
	}
	floats.Scale(1/total, chosen)
	for i, q := range chosen {
		chosen[i] = math.Min(1, math.Max(1e-12, q))
	}
	return stat.Entropy(chosen) / math.Ln2
}

// MeanProbability averages p over numbers.
func MeanProbability(p models.ProbabilityVector, numbers []int) float64 {
	if len(numbers) == 0 {
		return 0
	}
	values := make([]float64, len(numbers))
	for i, n := range numbers {
		values[i] = p.Prob(n)
	}
	return stat.Mean(values, nil)
}

// secondaryDraw is the precomputed mixed distribution the secondary number is drawn from.
type secondaryDraw struct {
	numbers []int
	weights []float64
}

// AdaptiveTopK shrinks from 6 toward 2 as the peak sharpens.
func AdaptiveTopK(peak float64, lo, hi int) int {
	if peak <= 0 {
		return hi
	}
	k := int(math.Round(1 / peak))
	if k < lo {
		k = lo
	}
	if k > hi {
		k = hi
	}
	return k
}

// newSecondaryDraw unions the adaptive top-k with the hot set and caps the hot
// subset at hotCap of the sampling mass.
func newSecondaryDraw(p models.ProbabilityVector, hot []int, cfg Config) secondaryDraw {
	k := AdaptiveTopK(p.Peak(), cfg.MinSecondaryK, cfg.MaxSecondaryK)
	isHot := make(map[int]bool, len(hot))
	members := make(map[int]bool)
	for _, n := range p.TopK(k) {
		members[n] = true
	}
	for _, n := range hot {
		if n >= 1 && n <= len(p) {
			isHot[n] = true
			members[n] = true
		}
	}
	numbers := make([]int, 0, len(members))
	for n := range members {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	hotTotal, coldTotal, hotCount := 0.0, 0.0, 0
	for _, n := range numbers {
		if isHot[n] {
			hotTotal += p.Prob(n)
			hotCount++
		} else {
			coldTotal += p.Prob(n)
		}
	}

	weights := make([]float64, len(numbers))
	mixed := hotCount > 0 && hotCount < len(numbers)
	hotShare := math.Min(cfg.HotMassCap, float64(hotCount)/float64(len(numbers)))
	for i, n := range numbers {
		v := p.Prob(n)
		switch {
		case !mixed:
			weights[i] = v
		case isHot[n] && hotTotal > 0:
			weights[i] = v / hotTotal * hotShare
		case !isHot[n] && coldTotal > 0:
			weights[i] = v / coldTotal * (1 - hotShare)
		}
	}
	return secondaryDraw{numbers: numbers, weights: weights}
}

func (d secondaryDraw) sample(rng *rand.Rand) int {
	weights := massWeights(d.weights)
	idx := take(sampleuv.NewWeighted(weights, rng), weights)
	if idx < 0 {
		idx = rng.IntN(len(d.numbers))
	}
	return d.numbers[idx]
}
