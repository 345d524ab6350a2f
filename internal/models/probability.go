package models

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ProbabilityVector is a dense distribution over a pool; index i is number i+1.
type ProbabilityVector []float64

// Uniform returns the uniform distribution over n outcomes.
func Uniform(n int) ProbabilityVector {
	p := make(ProbabilityVector, n)
	for i := range p {
		p[i] = 1.0 / float64(n)
	}
	return p
}

// Normalize returns a copy scaled to sum 1. Negative or non-finite entries are
// treated as zero; zero total mass yields the uniform distribution.
func (p ProbabilityVector) Normalize() ProbabilityVector {
	out := make(ProbabilityVector, len(p))
	for i, v := range p {
		if v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) {
			out[i] = v
		}
	}
	total := floats.Sum(out)
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return Uniform(len(p))
	}
	floats.Scale(1/total, out)
	return out
}

// Clone copies the vector.
func (p ProbabilityVector) Clone() ProbabilityVector {
	out := make(ProbabilityVector, len(p))
	copy(out, p)
	return out
}

// Valid reports correct length, non-negative entries and unit mass within tol.
func (p ProbabilityVector) Valid(n int, tol float64) bool {
	if len(p) != n {
		return false
	}
	for _, v := range p {
		if v < 0 || math.IsNaN(v) {
			return false
		}
	}
	return math.Abs(floats.Sum(p)-1) <= tol
}

// Prob returns the probability of number (1-based), zero when out of range.
func (p ProbabilityVector) Prob(number int) float64 {
	if number < 1 || number > len(p) {
		return 0
	}
	return p[number-1]
}

// Peak returns the largest entry.
func (p ProbabilityVector) Peak() float64 {
	if len(p) == 0 {
		return 0
	}
	return floats.Max(p)
}

// Ranked returns numbers (1-based) by descending probability, ties by ascending number.
func (p ProbabilityVector) Ranked() []int {
	numbers := make([]int, len(p))
	for i := range numbers {
		numbers[i] = i + 1
	}
	sort.SliceStable(numbers, func(a, b int) bool {
		return p[numbers[a]-1] > p[numbers[b]-1]
	})
	return numbers
}

// TopK returns the k highest-ranked numbers.
func (p ProbabilityVector) TopK(k int) []int {
	ranked := p.Ranked()
	if k > len(ranked) {
		k = len(ranked)
	}
	if k < 0 {
		k = 0
	}
	return ranked[:k]
}

// Rank returns the 1-based rank of number, or 0 when out of range.
func (p ProbabilityVector) Rank(number int) int {
	for i, n := range p.Ranked() {
		if n == number {
			return i + 1
		}
	}
	return 0
}

// Mix returns w*a + (1-w)*b renormalized.
func Mix(a, b ProbabilityVector, w float64) ProbabilityVector {
	out := make(ProbabilityVector, len(a))
	for i := range a {
		out[i] = w*a[i] + (1-w)*b[i]
	}
	return out.Normalize()
}

// Probabilities pairs the distributions of both pools.
type Probabilities struct {
	Primary   ProbabilityVector `json:"primary"`
	Secondary ProbabilityVector `json:"secondary"`
}

// UniformProbabilities returns uniform vectors for both pools.
func UniformProbabilities() Probabilities {
	return Probabilities{
		Primary:   Uniform(PrimaryPool.Size),
		Secondary: Uniform(SecondaryPool.Size),
	}
}
