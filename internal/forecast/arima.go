// Package forecast predicts a plausible range for the next primary-pool sum.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// ErrFitFailed indicates the time-series fit did not produce usable parameters.
var ErrFitFailed = errors.New("sum series fit failed")

// Config controls the forecaster and its fallbacks.
type Config struct {
	MinHistory     int
	FallbackMargin float64
	ErrorMargin    float64
	Confidence     float64
}

// DefaultConfig returns the calibrated constants.
func DefaultConfig() Config {
	return Config{MinHistory: 30, FallbackMargin: 20, ErrorMargin: 25, Confidence: 0.80}
}

// Range is a one-step forecast of the primary sum.
type Range struct {
	Expected float64 `json:"expected"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Fallback bool    `json:"fallback"`
	Err      error   `json:"-"`
}

// SumBounds is an inclusive integer constraint on the primary sum.
type SumBounds struct {
	Low  int
	High int
}

// Contains reports whether sum lies within the bounds.
func (b SumBounds) Contains(sum int) bool {
	return sum >= b.Low && sum <= b.High
}

// Constrain widens the interval by slack and clamps it to [floor, ceiling] and the
// theoretical sum domain.
func (r Range) Constrain(slack, floor, ceiling int) SumBounds {
	low := int(math.Trunc(r.Lower)) - slack
	high := int(math.Trunc(r.Upper)) + slack
	if floor < models.MinPrimarySum {
		floor = models.MinPrimarySum
	}
	if ceiling <= 0 || ceiling > models.MaxPrimarySum {
		ceiling = models.MaxPrimarySum
	}
	if low < floor {
		low = floor
	}
	if high > ceiling {
		high = ceiling
	}
	return SumBounds{Low: low, High: high}
}

// SumSeries extracts primary sums from records sorted oldest first.
func SumSeries(records []models.DrawRecord) []float64 {
	series := make([]float64, len(records))
	for i, r := range records {
		series[i] = float64(r.PrimarySum())
	}
	return series
}

// SumRange fits ARIMA(2,1,2) to the sum series and forecasts one step ahead.
// Short histories and failed fits fall back to mean ± a fixed margin.
func SumRange(records []models.DrawRecord, cfg Config) Range {
	series := SumSeries(records)
	if len(series) < cfg.MinHistory {
		return fallback(series, cfg.FallbackMargin, nil)
	}
	fit, err := FitARIMA212(series)
	if err != nil {
		return fallback(series, cfg.ErrorMargin, err)
	}
	mu, sigma := fit.Forecast()
	conf := cfg.Confidence
	if conf <= 0 || conf >= 1 {
		conf = 0.80
	}
	z := distuv.UnitNormal.Quantile(0.5 + conf/2)
	return Range{Expected: mu, Lower: mu - z*sigma, Upper: mu + z*sigma}
}

func fallback(series []float64, margin float64, cause error) Range {
	mu, err := stats.Mean(series)
	if err != nil {
		mu = float64(models.MinPrimarySum+models.MaxPrimarySum) / 2
	}
	return Range{Expected: mu, Lower: mu - margin, Upper: mu + margin, Fallback: true, Err: cause}
}

// ARIMAFit holds a fitted ARIMA(2,1,2) on the differenced series.
type ARIMAFit struct {
	AR       [2]float64
	MA       [2]float64
	Sigma2   float64
	last     float64
	diffs    []float64
	residual []float64
}

// FitARIMA212 estimates parameters by conditional sum of squares with Nelder-Mead.
func FitARIMA212(series []float64) (*ARIMAFit, error) {
	if len(series) < 8 {
		return nil, fmt.Errorf("%w: series of %d too short", ErrFitFailed, len(series))
	}
	diffs := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		diffs[i-1] = series[i] - series[i-1]
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if !admissible(x) {
				return 1e20
			}
			sse, _ := css(diffs, x)
			return sse
		},
	}
	result, err := optimize.Minimize(problem, []float64{0.1, 0.0, -0.5, 0.0}, &optimize.Settings{
		MajorIterations: 2000,
		FuncEvaluations: 5000,
	}, &optimize.NelderMead{})
	if err != nil && result == nil {
		return nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}
	x := result.X
	if !admissible(x) || math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return nil, fmt.Errorf("%w: no admissible parameters", ErrFitFailed)
	}
	sse, residual := css(diffs, x)
	used := len(diffs) - 2
	sigma2 := sse / float64(used)
	if used <= 0 || math.IsNaN(sigma2) || sigma2 <= 0 {
		return nil, fmt.Errorf("%w: degenerate residual variance", ErrFitFailed)
	}
	return &ARIMAFit{
		AR:       [2]float64{x[0], x[1]},
		MA:       [2]float64{x[2], x[3]},
		Sigma2:   sigma2,
		last:     series[len(series)-1],
		diffs:    diffs,
		residual: residual,
	}, nil
}

// Forecast returns the next level and the one-step standard error.
func (f *ARIMAFit) Forecast() (float64, float64) {
	n := len(f.diffs)
	next := f.AR[0]*f.diffs[n-1] + f.AR[1]*f.diffs[n-2] +
		f.MA[0]*f.residual[n-1] + f.MA[1]*f.residual[n-2]
	return f.last + next, math.Sqrt(f.Sigma2)
}

// css returns the conditional sum of squared residuals with pre-sample residuals at zero.
func css(y []float64, x []float64) (float64, []float64) {
	e := make([]float64, len(y))
	sse := 0.0
	for t := 2; t < len(y); t++ {
		pred := x[0]*y[t-1] + x[1]*y[t-2] + x[2]*e[t-1] + x[3]*e[t-2]
		e[t] = y[t] - pred
		sse += e[t] * e[t]
	}
	return sse, e
}

// admissible checks AR stationarity and MA invertibility for order two.
func admissible(x []float64) bool {
	p1, p2, q1, q2 := x[0], x[1], x[2], x[3]
	stationary := math.Abs(p2) < 1 && p1+p2 < 1 && p2-p1 < 1
	invertible := math.Abs(q2) < 1 && q2+q1 > -1 && q2-q1 > -1
	return stationary && invertible
}
