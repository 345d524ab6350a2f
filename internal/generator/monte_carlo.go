// Package generator samples candidate combinations under the blended distributions
// and selects recommendations from them.
package generator

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/ssq-forecast/internal/forecast"
	"github.com/yourusername/ssq-forecast/internal/models"
)

// ErrEmptyCandidatePool indicates no sampled combination met the sum constraint.
var ErrEmptyCandidatePool = errors.New("no candidates satisfied the sum constraint")

// Config controls Monte Carlo generation.
type Config struct {
	Trials        int
	Workers       int
	ShardSize     int
	Seed          int64
	HotMassCap    float64
	QualityWeight float64
	EntropyWeight float64
	MinSecondaryK int
	MaxSecondaryK int
}

// DefaultConfig returns the calibrated generator settings.
func DefaultConfig() Config {
	return Config{
		Trials:        2500,
		Workers:       4,
		ShardSize:     250,
		Seed:          2025,
		HotMassCap:    0.40,
		QualityWeight: 0.7,
		EntropyWeight: 0.3,
		MinSecondaryK: 2,
		MaxSecondaryK: 6,
	}
}

// Input is one generation request.
type Input struct {
	Probabilities models.Probabilities
	// Bounds is nil for unconstrained sampling.
	Bounds *forecast.SumBounds
	// Hot lists recently frequent secondary numbers.
	Hot []int
}

// Result holds the ranked candidates.
type Result struct {
	Candidates []models.Candidate
	Accepted   int
	Relaxed    bool
	// Err records a recovered failure such as ErrEmptyCandidatePool.
	Err error
}

// Generate runs the trials and returns unique candidates by descending score.
// When nothing passes the sum constraint it retries unconstrained.
func Generate(ctx context.Context, in Input, cfg Config) (Result, error) {
	cfg = withDefaults(cfg)
	res, err := run(ctx, in, cfg)
	if err != nil {
		return Result{}, err
	}
	if len(res.Candidates) > 0 || in.Bounds == nil {
		return res, nil
	}
	relaxed := in
	relaxed.Bounds = nil
	res, err = run(ctx, relaxed, cfg)
	if err != nil {
		return Result{}, err
	}
	res.Relaxed = true
	res.Err = ErrEmptyCandidatePool
	return res, nil
}

func run(ctx context.Context, in Input, cfg Config) (Result, error) {
	primary := in.Probabilities.Primary
	second := newSecondaryDraw(in.Probabilities.Secondary, in.Hot, cfg)

	shards := (cfg.Trials + cfg.ShardSize - 1) / cfg.ShardSize
	out := make([][]models.Candidate, shards)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for s := 0; s < shards; s++ {
		trials := cfg.ShardSize
		if rem := cfg.Trials - s*cfg.ShardSize; rem < trials {
			trials = rem
		}
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(uint64(cfg.Seed+int64(s)), uint64(s)))
			shard := make([]models.Candidate, 0, trials)
			for i := 0; i < trials; i++ {
				if i%64 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				numbers := SampleWithoutReplacement(rng, primary, models.PrimaryPool.Picks)
				secondary := second.sample(rng)
				combo := models.NewCombination(numbers)
				if in.Bounds != nil && !in.Bounds.Contains(combo.Sum()) {
					continue
				}
				h := SelectionEntropy(primary, numbers)
				shard = append(shard, models.Candidate{
					Primary:   combo,
					Secondary: secondary,
					Score:     Score(MeanProbability(primary, numbers), h, cfg),
					Entropy:   h,
				})
			}
			out[s] = shard
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{}
	index := make(map[models.Combination]int)
	for _, shard := range out {
		res.Accepted += len(shard)
		for _, c := range shard {
			if i, ok := index[c.Primary]; ok {
				if c.Score > res.Candidates[i].Score {
					res.Candidates[i] = c
				}
				continue
			}
			index[c.Primary] = len(res.Candidates)
			res.Candidates = append(res.Candidates, c)
		}
	}
	sort.SliceStable(res.Candidates, func(a, b int) bool {
		return res.Candidates[a].Score > res.Candidates[b].Score
	})
	return res, nil
}

// Score rewards mean probability and penalizes entropy normalized by log2(6).
func Score(meanProb, entropy float64, cfg Config) float64 {
	return cfg.QualityWeight*meanProb - cfg.EntropyWeight*(entropy/math.Log2(float64(models.PrimaryPool.Picks)))
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Trials <= 0 {
		cfg.Trials = def.Trials
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.ShardSize <= 0 {
		cfg.ShardSize = def.ShardSize
	}
	if cfg.HotMassCap <= 0 || cfg.HotMassCap > 1 {
		cfg.HotMassCap = def.HotMassCap
	}
	if cfg.QualityWeight == 0 && cfg.EntropyWeight == 0 {
		cfg.QualityWeight, cfg.EntropyWeight = def.QualityWeight, def.EntropyWeight
	}
	if cfg.MinSecondaryK <= 0 {
		cfg.MinSecondaryK = def.MinSecondaryK
	}
	if cfg.MaxSecondaryK < cfg.MinSecondaryK {
		cfg.MaxSecondaryK = def.MaxSecondaryK
	}
	return cfg
}
