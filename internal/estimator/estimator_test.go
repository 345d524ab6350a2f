package estimator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ssq-forecast/internal/models"
	"github.com/yourusername/ssq-forecast/internal/testutil"
)

func assertValid(t *testing.T, p models.Probabilities) {
	t.Helper()
	require.Len(t, p.Primary, models.PrimaryPool.Size)
	require.Len(t, p.Secondary, models.SecondaryPool.Size)
	assert.True(t, p.Primary.Valid(models.PrimaryPool.Size, 1e-6))
	assert.True(t, p.Secondary.Valid(models.SecondaryPool.Size, 1e-6))
}

func TestDecayWeights(t *testing.T) {
	w := DecayWeights(5, 2)
	require.Len(t, w, 5)
	assert.InDelta(t, 1.0, w[4], 1e-12)
	assert.InDelta(t, 0.5, w[2], 1e-12)
	for i := 1; i < len(w); i++ {
		assert.Greater(t, w[i], w[i-1])
	}
}

func TestDecayWeightsMonotonicInHalfLife(t *testing.T) {
	short := DecayWeights(50, 10)
	long := DecayWeights(50, 40)
	assert.Greater(t, long[0]/long[49], short[0]/short[49])
	assert.Less(t, long[0]/long[49], 1.0)
}

func TestMarginalsEmptyIsUniform(t *testing.T) {
	wd := time.Sunday
	p := Marginals(nil, Params{HalfLife: 60, Weekday: &wd, ShrinkBeta: 40})
	assert.Equal(t, models.UniformProbabilities(), p)
}

func TestMarginalsValidAndDeterministic(t *testing.T) {
	history := testutil.SyntheticHistory(120, 11)
	wd := time.Thursday
	params := Params{HalfLife: 60, Window: 30, Weekday: &wd, ShrinkBeta: 40}

	first := Marginals(history, params)
	second := Marginals(history, params)
	assertValid(t, first)
	assert.Equal(t, first, second)
}

func TestMarginalsFixedDraws(t *testing.T) {
	history := testutil.FixedHistory(40, []int{1, 2, 3, 4, 5, 6}, 1)

	p := Marginals(history, Params{HalfLife: 60})

	for n := 1; n <= 6; n++ {
		assert.InDelta(t, 1.0/6, p.Primary.Prob(n), 1e-12)
	}
	assert.InDelta(t, 1.0, p.Secondary.Prob(1), 1e-12)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, p.Primary.TopK(6))
}

func TestMarginalsWeekdayShrinkage(t *testing.T) {
	// Tuesday draws carry secondary 1, Thursday 2, Sunday 3; a Tuesday
	// record's following draw is Thursday.
	history := testutil.FixedHistory(30, []int{1, 2, 3, 4, 5, 6}, 1)
	for i := range history {
		switch history[i].Time().Weekday() {
		case time.Thursday:
			history[i].Secondary = 2
		case time.Sunday:
			history[i].Secondary = 3
		}
	}
	wd := time.Thursday

	unshrunk := Marginals(history, Params{HalfLife: 1000, Weekday: &wd})
	assert.InDelta(t, 1.0, unshrunk.Secondary.Prob(1), 1e-12)

	shrunk := Marginals(history, Params{HalfLife: 1000, Weekday: &wd, ShrinkBeta: 1e9})
	global := Marginals(history, Params{HalfLife: 1000})
	assert.InDeltaSlice(t, global.Secondary, shrunk.Secondary, 1e-6)
}

func TestMarginalsWindow(t *testing.T) {
	history := testutil.FixedHistory(20, []int{1, 2, 3, 4, 5, 6}, 1)
	for i := 10; i < 20; i++ {
		history[i].Primary = []int{7, 8, 9, 10, 11, 12}
		history[i].Secondary = 2
	}

	p := Marginals(history, Params{HalfLife: 60, Window: 10})
	assert.Zero(t, p.Primary.Prob(1))
	assert.InDelta(t, 1.0/6, p.Primary.Prob(7), 1e-12)
	assert.InDelta(t, 1.0, p.Secondary.Prob(2), 1e-12)
}

func TestFuseConvexAndValid(t *testing.T) {
	history := testutil.SyntheticHistory(90, 12)
	f := FusionParams{HalfLife: 60, ShortWindow: 30, ShrinkBeta: 40, ShortWeight: 0.3, WeekdayWeight: 0.2}

	p := Fuse(history, time.Sunday, f)
	assertValid(t, p)

	l1, l2, l3 := f.Weights()
	assert.InDelta(t, 0.5, l3, 1e-12)
	assert.InDelta(t, 1.0, l1+l2+l3, 1e-12)
}

func TestFuseWeightsClipped(t *testing.T) {
	l1, l2, l3 := FusionParams{ShortWeight: 0.8, WeekdayWeight: 0.7}.Weights()
	assert.Equal(t, 0.8, l1)
	assert.Equal(t, 0.7, l2)
	assert.Zero(t, l3)
}

func TestHotSecondaries(t *testing.T) {
	history := testutil.FixedHistory(12, []int{1, 2, 3, 4, 5, 6}, 5)
	history[11].Secondary = 9
	history[10].Secondary = 9
	history[9].Secondary = 4

	assert.Equal(t, []int{5, 9}, HotSecondaries(history, 10, 2))
	assert.Equal(t, []int{9}, HotSecondaries(history, 2, 2))
	assert.Nil(t, HotSecondaries(nil, 10, 2))
}
