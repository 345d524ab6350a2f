package generator

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ssq-forecast/internal/forecast"
	"github.com/yourusername/ssq-forecast/internal/models"
)

func testInput() Input {
	p := make(models.ProbabilityVector, models.PrimaryPool.Size)
	for i := range p {
		p[i] = float64(i + 1)
	}
	s := make(models.ProbabilityVector, models.SecondaryPool.Size)
	for i := range s {
		s[i] = float64(models.SecondaryPool.Size - i)
	}
	return Input{
		Probabilities: models.Probabilities{Primary: p.Normalize(), Secondary: s.Normalize()},
		Hot:           []int{12},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Trials = 600
	cfg.ShardSize = 100
	return cfg
}

func TestSampleWithoutReplacementDistinct(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 0))
	p := models.Uniform(models.PrimaryPool.Size)

	for i := 0; i < 500; i++ {
		numbers := SampleWithoutReplacement(rng, p, 6)
		require.Len(t, numbers, 6)
		for j, n := range numbers {
			assert.True(t, models.PrimaryPool.Contains(n))
			if j > 0 {
				assert.Less(t, numbers[j-1], n, "sorted and distinct")
			}
		}
	}
}

func TestSampleWithoutReplacementExcludesZeroMass(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 0))
	p := make(models.ProbabilityVector, models.PrimaryPool.Size)
	for i := 0; i < 8; i++ {
		p[i] = 1.0 / 8
	}
	p[20] = 1e-13

	for i := 0; i < 300; i++ {
		for _, n := range SampleWithoutReplacement(rng, p, 6) {
			assert.LessOrEqual(t, n, 8)
		}
	}
}

func TestSampleWithoutReplacementFillsUniformly(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 0))
	p := make(models.ProbabilityVector, models.PrimaryPool.Size)
	p[0], p[1], p[2] = 0.5, 0.3, 0.2

	numbers := SampleWithoutReplacement(rng, p, 6)
	require.Len(t, numbers, 6)
	assert.Subset(t, numbers, []int{1, 2, 3})
}

func TestSelectionEntropy(t *testing.T) {
	p := models.Uniform(models.PrimaryPool.Size)
	assert.InDelta(t, math.Log2(6), SelectionEntropy(p, []int{1, 2, 3, 4, 5, 6}), 1e-9)

	skewed := make(models.ProbabilityVector, models.PrimaryPool.Size)
	skewed[0] = 0.9
	for i := 1; i < 6; i++ {
		skewed[i] = 0.02
	}
	assert.Less(t, SelectionEntropy(skewed, []int{1, 2, 3, 4, 5, 6}), math.Log2(6))

	halves := make(models.ProbabilityVector, models.PrimaryPool.Size)
	halves[0], halves[1], halves[2] = 0.2, 0.1, 0.1
	assert.InDelta(t, 1.5, SelectionEntropy(halves, []int{1, 2, 3}), 1e-12)
}

func TestAdaptiveTopK(t *testing.T) {
	assert.Equal(t, 2, AdaptiveTopK(0.5, 2, 6))
	assert.Equal(t, 4, AdaptiveTopK(0.25, 2, 6))
	assert.Equal(t, 6, AdaptiveTopK(0.1, 2, 6))
	assert.Equal(t, 2, AdaptiveTopK(0.9, 2, 6))
	assert.Equal(t, 6, AdaptiveTopK(0, 2, 6))
}

func TestSecondaryDrawCapsHotMass(t *testing.T) {
	p := models.Uniform(models.SecondaryPool.Size)
	d := newSecondaryDraw(p, []int{10}, DefaultConfig())

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 10}, d.numbers)
	total := 0.0
	for _, w := range d.weights {
		total += w
	}
	assert.InDelta(t, 1.0, total, 1e-12)
	assert.InDelta(t, 1.0/7, d.weights[6], 1e-12)

	many := newSecondaryDraw(p, []int{7, 8, 9, 10, 11, 12}, DefaultConfig())
	hot := 0.0
	for i, n := range many.numbers {
		if n >= 7 {
			hot += many.weights[i]
		}
	}
	assert.InDelta(t, 0.40, hot, 1e-12)
}

func TestSecondaryDrawAllHotKeepsProbabilities(t *testing.T) {
	p := make(models.ProbabilityVector, models.SecondaryPool.Size)
	p[0], p[1] = 0.6, 0.4
	d := newSecondaryDraw(p, []int{1, 2}, DefaultConfig())

	assert.Equal(t, []int{1, 2}, d.numbers)
	assert.Equal(t, []float64{0.6, 0.4}, d.weights)
}

func TestGenerateDeterministicAcrossWorkers(t *testing.T) {
	in := testInput()
	cfg := testConfig()

	first, err := Generate(context.Background(), in, cfg)
	require.NoError(t, err)
	second, err := Generate(context.Background(), in, cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cfg.Workers = 1
	serial, err := Generate(context.Background(), in, cfg)
	require.NoError(t, err)
	assert.Equal(t, first.Candidates, serial.Candidates)
}

func TestGenerateUniqueAndRanked(t *testing.T) {
	in := testInput()
	bounds := forecast.SumBounds{Low: 90, High: 150}
	in.Bounds = &bounds

	res, err := Generate(context.Background(), in, testConfig())
	require.NoError(t, err)
	require.NotEmpty(t, res.Candidates)
	assert.False(t, res.Relaxed)
	assert.LessOrEqual(t, len(res.Candidates), res.Accepted)

	seen := map[models.Combination]bool{}
	for i, c := range res.Candidates {
		assert.False(t, seen[c.Primary], "duplicate combination %v", c.Primary)
		seen[c.Primary] = true
		assert.True(t, bounds.Contains(c.Primary.Sum()))
		assert.True(t, models.SecondaryPool.Contains(c.Secondary))
		if i > 0 {
			assert.GreaterOrEqual(t, res.Candidates[i-1].Score, c.Score)
		}
	}
}

func TestGenerateRelaxesImpossibleBounds(t *testing.T) {
	in := testInput()
	in.Bounds = &forecast.SumBounds{Low: 500, High: 600}

	res, err := Generate(context.Background(), in, testConfig())
	require.NoError(t, err)
	assert.True(t, res.Relaxed)
	assert.ErrorIs(t, res.Err, ErrEmptyCandidatePool)
	assert.NotEmpty(t, res.Candidates)
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, testInput(), testConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScore(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 0.7*0.05-0.3, Score(0.05, math.Log2(6), cfg), 1e-12)
}

func TestSelect(t *testing.T) {
	probs := models.UniformProbabilities()
	a := models.NewCombination([]int{1, 2, 3, 4, 5, 7})
	b := models.NewCombination([]int{10, 12, 14, 16, 18, 20})
	candidates := []models.Candidate{
		{Primary: a, Secondary: 3, Score: 0.9},
		{Primary: a, Secondary: 4, Score: 0.8},
		{Primary: b, Secondary: 5, Score: 0.7},
	}

	recs := Select(candidates, probs, 5)
	require.Len(t, recs, 2)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 7}, recs[0].Primary)
	assert.Equal(t, 3, recs[0].Secondary)
	assert.Equal(t, 22, recs[0].Sum)
	assert.Equal(t, 6, recs[0].Span)
	assert.Equal(t, 4, recs[0].OddCount)
	assert.Equal(t, 2, recs[0].EvenCount)
	assert.InDelta(t, (1.0/33)*(1.0/16), recs[0].Confidence, 1e-12)
	assert.Equal(t, 0, recs[1].OddCount)

	assert.Len(t, Select(candidates, probs, 1), 1)
	assert.Empty(t, Select(nil, probs, 5))
}

func TestSelectNonPositiveCount(t *testing.T) {
	probs := models.UniformProbabilities()
	candidates := []models.Candidate{
		{Primary: models.NewCombination([]int{1, 2, 3, 4, 5, 7}), Secondary: 3, Score: 0.9},
	}

	assert.Empty(t, Select(candidates, probs, 0))
	assert.NotPanics(t, func() {
		assert.Empty(t, Select(nil, probs, -1))
		assert.Empty(t, Select(candidates, probs, -3))
	})
}
