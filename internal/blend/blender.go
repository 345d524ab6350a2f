package blend

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/ssq-forecast/internal/ml"
	"github.com/yourusername/ssq-forecast/internal/models"
)

// Config holds the smoothing and trust parameters.
type Config struct {
	TauPrimary         float64
	TauSecondary       float64
	SharpnessThreshold float64
	SharpnessBump      float64
	PrimaryShare       float64
	AlphaMin           float64
	AlphaMax           float64
	WeekdayMinCount    int
	SparsityPenalty    float64
}

// DefaultConfig returns the calibrated constants.
func DefaultConfig() Config {
	return Config{
		TauPrimary:         1.3,
		TauSecondary:       1.5,
		SharpnessThreshold: 0.18,
		SharpnessBump:      0.1,
		PrimaryShare:       0.7,
		AlphaMin:           0.20,
		AlphaMax:           0.60,
		WeekdayMinCount:    8,
		SparsityPenalty:    0.85,
	}
}

// Inputs carries one blend request.
type Inputs struct {
	Prior models.Probabilities
	// Model is nil when training was skipped.
	Model *ml.Output
	Mode  Mode
	// WeekdayMatches counts recent records matching the target weekday.
	WeekdayMatches int
}

// Result is the blended distribution plus the weight that produced it.
type Result struct {
	models.Probabilities
	Alpha      float64
	Divergence float64
	ModelUsed  bool
	Sparse     bool
}

// Blend returns alpha*model + (1-alpha)*prior per pool. Without a model the prior
// is returned unchanged.
func Blend(in Inputs, cfg Config) Result {
	if in.Model == nil {
		return Result{Probabilities: in.Prior}
	}

	tauSecondary := cfg.TauSecondary
	if in.Model.Secondary.Peak() > cfg.SharpnessThreshold {
		tauSecondary += cfg.SharpnessBump
	}
	modelPrimary := TemperatureSmooth(in.Model.Primary, cfg.TauPrimary)
	modelSecondary := TemperatureSmooth(in.Model.Secondary, tauSecondary)

	res := Result{ModelUsed: true}
	if in.Mode.IsAdaptive() {
		dPrimary := SymmetricKL(modelPrimary, in.Prior.Primary)
		dSecondary := SymmetricKL(modelSecondary, in.Prior.Secondary)
		res.Divergence = cfg.PrimaryShare*dPrimary + (1-cfg.PrimaryShare)*dSecondary
		res.Alpha = AdaptiveAlpha(res.Divergence, cfg.AlphaMin, cfg.AlphaMax)
		if in.WeekdayMatches < cfg.WeekdayMinCount {
			res.Alpha *= cfg.SparsityPenalty
			res.Sparse = true
		}
	} else {
		res.Alpha = in.Mode.Alpha()
	}

	res.Primary = models.Mix(modelPrimary, in.Prior.Primary, res.Alpha)
	res.Secondary = models.Mix(modelSecondary, in.Prior.Secondary, res.Alpha)
	return res
}

// AdaptiveAlpha maps divergence d to clip(1/(1+4d), lo, hi).
func AdaptiveAlpha(d, lo, hi float64) float64 {
	alpha := 1 / (1 + 4*d)
	return math.Min(hi, math.Max(lo, alpha))
}

// TemperatureSmooth applies p^(1/tau) and renormalizes; tau > 1 flattens.
func TemperatureSmooth(p models.ProbabilityVector, tau float64) models.ProbabilityVector {
	inv := 1 / math.Max(1e-6, tau)
	out := clipped(p)
	for i, v := range out {
		out[i] = math.Pow(v, inv)
	}
	return out.Normalize()
}

// SymmetricKL returns KL(p||q) + KL(q||p) with entries clipped away from zero.
func SymmetricKL(p, q models.ProbabilityVector) float64 {
	a, b := clipped(p), clipped(q)
	return stat.KullbackLeibler(a, b) + stat.KullbackLeibler(b, a)
}

// RecentWeekdayCount counts the newest lookback records whose following draw
// falls on target.
func RecentWeekdayCount(records []models.DrawRecord, target time.Weekday, lookback int) int {
	count := 0
	for _, r := range models.Last(records, lookback) {
		if models.ContextWeekday(r) == target {
			count++
		}
	}
	return count
}

func clipped(p models.ProbabilityVector) models.ProbabilityVector {
	out := make(models.ProbabilityVector, len(p))
	for i, v := range p {
		out[i] = math.Min(1, math.Max(1e-12, v))
	}
	return out
}
