package ml

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// TrainStatus reports whether a model was fit.
type TrainStatus string

// Training outcomes
const (
	StatusTrained   TrainStatus = "trained"
	StatusUntrained TrainStatus = "untrained"
)

// TrainConfig configures a from-scratch training run.
type TrainConfig struct {
	SeqLen       int
	Epochs       int
	LearningRate float64
	HiddenSize   int
	Dropout      float64
	BatchSize    int
	Seed         int64
}

// TrainResult is the explicit outcome of Train.
type TrainResult struct {
	Status        TrainStatus
	Samples       int
	Epochs        int
	PrimaryLoss   float64
	SecondaryLoss float64
	Duration      time.Duration
	Err           error
}

// Trained reports whether a usable model was produced.
func (r TrainResult) Trained() bool {
	return r.Status == StatusTrained
}

// Model holds the two fitted networks. It carries no state between Train calls.
type Model struct {
	seqLen    int
	primary   *network
	secondary *network
}

// SeqLen returns the window length the model was trained on.
func (m *Model) SeqLen() int {
	return m.seqLen
}

// MinTrainSamples is the fewest labeled windows a training run accepts.
const MinTrainSamples = 2

// Train fits new networks on records sorted oldest first. When the history yields
// fewer than MinTrainSamples windows the result is untrained and the model is nil.
func Train(records []models.DrawRecord, cfg TrainConfig) (*Model, TrainResult) {
	start := time.Now()
	cfg = withTrainDefaults(cfg)
	ds := BuildDataset(records, cfg.SeqLen)
	if ds.Len() < MinTrainSamples {
		return nil, TrainResult{
			Status:  StatusUntrained,
			Samples: ds.Len(),
			Err: fmt.Errorf("%w: have %d records, need at least %d",
				ErrInsufficientData, len(records), cfg.SeqLen+MinTrainSamples),
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	m := &Model{
		seqLen:    cfg.SeqLen,
		primary:   newNetwork(FeatureSize, cfg.HiddenSize, models.PrimaryPool.Size, rng),
		secondary: newNetwork(FeatureSize, cfg.HiddenSize, models.SecondaryPool.Size, rng),
	}
	primaryOpt := newAdam(len(m.primary.params), cfg.LearningRate)
	secondaryOpt := newAdam(len(m.secondary.params), cfg.LearningRate)

	n := ds.Len()
	batch := cfg.BatchSize
	if batch > n {
		batch = n
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	result := TrainResult{Status: StatusTrained, Samples: n, Epochs: cfg.Epochs}
	primaryGrad := make([]float64, len(m.primary.params))
	secondaryGrad := make([]float64, len(m.secondary.params))
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		primaryLoss, secondaryLoss := 0.0, 0.0
		batches := 0
		for s := 0; s < n; s += batch {
			e := s + batch
			if e > n {
				e = n
			}
			idx := order[s:e]
			zero(primaryGrad)
			primaryLoss += m.primaryBatch(ds, idx, cfg.Dropout, rng, primaryGrad)
			primaryOpt.step(m.primary.params, primaryGrad)

			zero(secondaryGrad)
			secondaryLoss += m.secondaryBatch(ds, idx, cfg.Dropout, rng, secondaryGrad)
			secondaryOpt.step(m.secondary.params, secondaryGrad)
			batches++
		}
		result.PrimaryLoss = primaryLoss / float64(batches)
		result.SecondaryLoss = secondaryLoss / float64(batches)
	}
	result.Duration = time.Since(start)
	return m, result
}

// primaryBatch applies mean binary cross-entropy with logits over every outcome.
func (m *Model) primaryBatch(ds *Dataset, idx []int, dropout float64, rng *rand.Rand, grad []float64) float64 {
	scale := 1 / float64(len(idx)*models.PrimaryPool.Size)
	loss := 0.0
	d := make([]float64, models.PrimaryPool.Size)
	for _, i := range idx {
		tr := m.primary.forward(ds.Inputs[i], dropout, rng)
		for j, z := range tr.logits {
			y := ds.Primary[i][j]
			loss += math.Max(z, 0) - z*y + math.Log1p(math.Exp(-math.Abs(z)))
			d[j] = (sigmoid(z) - y) * scale
		}
		m.primary.backward(tr, d, grad)
	}
	return loss * scale
}

// secondaryBatch applies mean categorical cross-entropy.
func (m *Model) secondaryBatch(ds *Dataset, idx []int, dropout float64, rng *rand.Rand, grad []float64) float64 {
	scale := 1 / float64(len(idx))
	loss := 0.0
	d := make([]float64, models.SecondaryPool.Size)
	for _, i := range idx {
		tr := m.secondary.forward(ds.Inputs[i], dropout, rng)
		probs := softmax(tr.logits)
		label := ds.Secondary[i]
		loss -= math.Log(math.Max(probs[label], 1e-12))
		for j, p := range probs {
			d[j] = p * scale
		}
		d[label] -= scale
		m.secondary.backward(tr, d, grad)
	}
	return loss * scale
}

// Output is the raw model prediction.
type Output struct {
	// Primary is renormalized from independent per-number probabilities.
	Primary models.ProbabilityVector
	// Independent are the per-number sigmoid outputs before renormalization.
	Independent []float64
	Secondary   models.ProbabilityVector
}

// Predict runs the networks on the newest window of records sorted oldest first.
func (m *Model) Predict(records []models.DrawRecord) (Output, error) {
	if m == nil {
		return Output{}, ErrUntrained
	}
	window := LastWindow(records, m.seqLen)
	if window == nil {
		return Output{}, fmt.Errorf("%w: need %d records for inference, have %d", ErrInsufficientData, m.seqLen, len(records))
	}
	pTrace := m.primary.forward(window, 0, nil)
	independent := make([]float64, len(pTrace.logits))
	for i, z := range pTrace.logits {
		independent[i] = sigmoid(z)
	}
	sTrace := m.secondary.forward(window, 0, nil)
	return Output{
		Primary:     models.ProbabilityVector(independent).Normalize(),
		Independent: independent,
		Secondary:   models.ProbabilityVector(softmax(sTrace.logits)).Normalize(),
	}, nil
}

func withTrainDefaults(cfg TrainConfig) TrainConfig {
	if cfg.SeqLen <= 0 {
		cfg.SeqLen = 10
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = 5
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 1e-3
	}
	if cfg.HiddenSize <= 0 {
		cfg.HiddenSize = 64
	}
	if cfg.Dropout < 0 || cfg.Dropout >= 1 {
		cfg.Dropout = 0
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 128
	}
	return cfg
}

func zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}
