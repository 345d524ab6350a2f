package forecast

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ssq-forecast/internal/testutil"
)

func TestSumRangeShortHistoryFallback(t *testing.T) {
	history := testutil.FixedHistory(10, []int{1, 2, 3, 4, 5, 6}, 1)

	r := SumRange(history, DefaultConfig())
	assert.True(t, r.Fallback)
	assert.NoError(t, r.Err)
	assert.InDelta(t, 21, r.Expected, 1e-12)
	assert.InDelta(t, 1, r.Lower, 1e-12)
	assert.InDelta(t, 41, r.Upper, 1e-12)
}

func TestSumRangeEmptyHistory(t *testing.T) {
	r := SumRange(nil, DefaultConfig())
	assert.True(t, r.Fallback)
	assert.InDelta(t, 102, r.Expected, 1e-12)
}

func TestSumRangeDegenerateFitFallsBack(t *testing.T) {
	history := testutil.FixedHistory(40, []int{5, 10, 15, 20, 25, 30}, 1)

	r := SumRange(history, DefaultConfig())
	assert.True(t, r.Fallback)
	assert.ErrorIs(t, r.Err, ErrFitFailed)
	assert.InDelta(t, 105, r.Expected, 1e-12)
	assert.InDelta(t, 80, r.Lower, 1e-12)
	assert.InDelta(t, 130, r.Upper, 1e-12)
}

func TestSumRangeFitted(t *testing.T) {
	history := testutil.SyntheticHistory(120, 21)

	r := SumRange(history, DefaultConfig())
	require.False(t, r.Fallback, "fit error: %v", r.Err)
	assert.Less(t, r.Lower, r.Expected)
	assert.Greater(t, r.Upper, r.Expected)
	assert.InDelta(t, r.Expected-r.Lower, r.Upper-r.Expected, 1e-9)
	assert.False(t, math.IsNaN(r.Expected))
}

func TestFitARIMA212RecoversNoiseVariance(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	series := make([]float64, 400)
	series[0] = 100
	for i := 1; i < len(series); i++ {
		series[i] = series[i-1] + rng.NormFloat64()
	}

	fit, err := FitARIMA212(series)
	require.NoError(t, err)
	assert.True(t, admissible([]float64{fit.AR[0], fit.AR[1], fit.MA[0], fit.MA[1]}))
	assert.InDelta(t, 1.0, fit.Sigma2, 0.35)

	mu, sigma := fit.Forecast()
	assert.InDelta(t, series[len(series)-1], mu, 5)
	assert.InDelta(t, math.Sqrt(fit.Sigma2), sigma, 1e-12)
}

func TestFitARIMA212TooShort(t *testing.T) {
	_, err := FitARIMA212([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrFitFailed)
}

func TestConstrain(t *testing.T) {
	tests := []struct {
		name  string
		r     Range
		floor int
		ceil  int
		want  SumBounds
	}{
		{"widened by slack", Range{Lower: 70.7, Upper: 130.2}, 60, 180, SumBounds{65, 135}},
		{"clamped to config", Range{Lower: 40, Upper: 200}, 60, 180, SumBounds{60, 180}},
		{"clamped to domain", Range{Lower: 10, Upper: 300}, 0, 500, SumBounds{21, 183}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Constrain(5, tt.floor, tt.ceil))
		})
	}
}

func TestAdmissible(t *testing.T) {
	assert.True(t, admissible([]float64{0.1, 0, -0.5, 0}))
	assert.False(t, admissible([]float64{0.6, 0.5, 0, 0}))
	assert.False(t, admissible([]float64{0, 0, 1.2, 0.1}))
}

func TestSumBoundsContains(t *testing.T) {
	b := SumBounds{Low: 60, High: 180}
	assert.True(t, b.Contains(60))
	assert.True(t, b.Contains(180))
	assert.False(t, b.Contains(59))
}
