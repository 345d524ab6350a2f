package models

import "sort"

// Combination is a sorted set of six primary numbers.
type Combination [6]int

// NewCombination sorts numbers into a Combination.
func NewCombination(numbers []int) Combination {
	var c Combination
	copy(c[:], numbers)
	sort.Ints(c[:])
	return c
}

// Slice returns the numbers as a slice.
func (c Combination) Slice() []int {
	out := make([]int, len(c))
	copy(out, c[:])
	return out
}

// Sum of the combination.
func (c Combination) Sum() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Candidate is a sampled combination with its score.
type Candidate struct {
	Primary   Combination
	Secondary int
	Score     float64
	Entropy   float64
}

// Recommendation is a selected candidate with descriptive stats.
type Recommendation struct {
	Primary    []int   `json:"red_balls"`
	Secondary  int     `json:"blue_ball"`
	Score      float64 `json:"score"`
	Entropy    float64 `json:"entropy_bits"`
	Sum        int     `json:"sum"`
	Span       int     `json:"span"`
	OddCount   int     `json:"odd_count"`
	EvenCount  int     `json:"even_count"`
	Confidence float64 `json:"confidence"`
}
