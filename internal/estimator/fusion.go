package estimator

import (
	"math"
	"time"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// FusionParams configures the three-way prior.
type FusionParams struct {
	HalfLife      float64
	ShortWindow   int
	ShrinkBeta    float64
	ShortWeight   float64
	WeekdayWeight float64
}

// Weights returns the clipped convex weights (short, weekday, global).
func (f FusionParams) Weights() (float64, float64, float64) {
	l1 := clip01(f.ShortWeight)
	l2 := clip01(f.WeekdayWeight)
	l3 := math.Max(0, 1-l1-l2)
	return l1, l2, l3
}

// Fuse blends a short-window weekday estimate, a full-history weekday estimate
// and a full-history unconditioned estimate.
func Fuse(records []models.DrawRecord, target time.Weekday, f FusionParams) models.Probabilities {
	wd := target
	short := Marginals(records, Params{HalfLife: f.HalfLife, Window: f.ShortWindow, Weekday: &wd, ShrinkBeta: f.ShrinkBeta})
	weekday := Marginals(records, Params{HalfLife: f.HalfLife, Weekday: &wd, ShrinkBeta: f.ShrinkBeta})
	global := Marginals(records, Params{HalfLife: f.HalfLife, ShrinkBeta: f.ShrinkBeta})

	l1, l2, l3 := f.Weights()
	return models.Probabilities{
		Primary:   combine(l1, short.Primary, l2, weekday.Primary, l3, global.Primary),
		Secondary: combine(l1, short.Secondary, l2, weekday.Secondary, l3, global.Secondary),
	}
}

func combine(l1 float64, a models.ProbabilityVector, l2 float64, b models.ProbabilityVector, l3 float64, c models.ProbabilityVector) models.ProbabilityVector {
	out := make(models.ProbabilityVector, len(a))
	for i := range out {
		out[i] = l1*a[i] + l2*b[i] + l3*c[i]
	}
	return out.Normalize()
}

func clip01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
