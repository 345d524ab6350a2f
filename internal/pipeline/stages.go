package pipeline

import (
	"context"

	"github.com/yourusername/ssq-forecast/internal/blend"
	"github.com/yourusername/ssq-forecast/internal/estimator"
	"github.com/yourusername/ssq-forecast/internal/forecast"
	"github.com/yourusername/ssq-forecast/internal/generator"
	"github.com/yourusername/ssq-forecast/internal/ml"
	"github.com/yourusername/ssq-forecast/internal/models"
)

// Prior returns the three-way fused prior for the context's target draw.
func Prior(c Context, halfLife float64) models.Probabilities {
	params := c.Settings.Fusion
	if halfLife > 0 {
		params.HalfLife = halfLife
	}
	return estimator.Fuse(c.History, c.Target(), params)
}

// Train fits a model from scratch and returns a context carrying it. An untrained
// result leaves the context without a model.
func Train(c Context, cfg ml.TrainConfig) (Context, ml.TrainResult) {
	model, res := ml.Train(c.History, cfg)
	c.Model = nil
	if res.Trained() {
		c.Model = model
	}
	return c, res
}

// Prediction is the outcome of PredictNext.
type Prediction struct {
	blend.Result
	Prior  models.Probabilities
	Target string
	// ModelErr records why a present model could not be used.
	ModelErr error
}

// PredictNext blends the model output, when available, with the fused prior.
func PredictNext(c Context, mode blend.Mode, halfLife float64) Prediction {
	prior := Prior(c, halfLife)
	target := c.Target()
	pred := Prediction{Prior: prior, Target: target.String()}

	in := blend.Inputs{
		Prior:          prior,
		Mode:           mode,
		WeekdayMatches: blend.RecentWeekdayCount(c.History, target, c.Settings.WeekdayLookback),
	}
	if c.Model != nil {
		out, err := c.Model.Predict(c.History)
		if err != nil {
			pred.ModelErr = err
		} else {
			in.Model = &out
		}
	}
	pred.Result = blend.Blend(in, c.Settings.Blend)
	return pred
}

// Plan is the full recommendation outcome including intermediate values.
type Plan struct {
	Prediction      Prediction
	SumRange        forecast.Range
	Bounds          forecast.SumBounds
	Hot             []int
	Generation      generator.Result
	Recommendations []models.Recommendation
}

// Recommend predicts, constrains the primary sum and selects numSets candidates.
func Recommend(ctx context.Context, c Context, numSets int) (Plan, error) {
	s := c.Settings
	plan := Plan{Prediction: PredictNext(c, s.Mode, 0)}
	plan.SumRange = forecast.SumRange(c.History, s.Forecast)
	plan.Bounds = plan.SumRange.Constrain(s.Slack, s.SumFloor, s.SumCeiling)
	plan.Hot = estimator.HotSecondaries(c.History, s.HotWindow, s.HotMinCount)

	bounds := plan.Bounds
	gen, err := generator.Generate(ctx, generator.Input{
		Probabilities: plan.Prediction.Probabilities,
		Bounds:        &bounds,
		Hot:           plan.Hot,
	}, s.Generator)
	if err != nil {
		return Plan{}, err
	}
	plan.Generation = gen
	plan.Recommendations = generator.Select(gen.Candidates, plan.Prediction.Probabilities, numSets)
	return plan, nil
}
