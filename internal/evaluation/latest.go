package evaluation

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// RecommendationResult scores one recommendation against the draw.
type RecommendationResult struct {
	Recommendation models.Recommendation `json:"recommendation"`
	PrimaryHits    int                   `json:"primary_hits"`
	SecondaryHit   bool                  `json:"secondary_hit"`
	Tier           PrizeTier             `json:"tier"`
	Payout         decimal.Decimal       `json:"payout"`
}

// LatestEvaluation compares a draw with the recommendations and the predicted
// distributions that produced them.
type LatestEvaluation struct {
	Period    string `json:"period"`
	Date      string `json:"date"`
	Primary   []int  `json:"red_balls"`
	Secondary int    `json:"blue_ball"`

	// Probability diagnostics, present when distributions were supplied.
	HasProbabilities bool    `json:"has_probabilities"`
	PrimaryMass      float64 `json:"primary_mass"`
	SecondaryRank    int     `json:"secondary_rank"`
	SecondaryTop3    bool    `json:"secondary_top3"`

	BestHits     int       `json:"best_primary_hits"`
	AnySecondary bool      `json:"any_secondary_hit"`
	BestTier     PrizeTier `json:"best_tier"`
	// EstimatedTier combines the best primary overlap with any secondary match.
	EstimatedTier PrizeTier              `json:"estimated_tier"`
	Results       []RecommendationResult `json:"results"`
	Cost          decimal.Decimal        `json:"cost"`
	Payout        decimal.Decimal        `json:"payout"`
	Net           decimal.Decimal        `json:"net"`
}

// EvaluateLatest scores recs against latest. probs may be nil.
func EvaluateLatest(latest models.DrawRecord, recs []models.Recommendation, probs *models.Probabilities) LatestEvaluation {
	ev := LatestEvaluation{
		Period:    latest.Period,
		Date:      latest.Date,
		Primary:   models.NewCombination(latest.Primary).Slice(),
		Secondary: latest.Secondary,
		Cost:      TicketCost.Mul(decimal.NewFromInt(int64(len(recs)))),
		Payout:    decimal.Zero,
	}

	if probs != nil {
		ev.HasProbabilities = true
		for _, n := range latest.Primary {
			ev.PrimaryMass += probs.Primary.Prob(n)
		}
		ev.SecondaryRank = probs.Secondary.Rank(latest.Secondary)
		ev.SecondaryTop3 = ev.SecondaryRank >= 1 && ev.SecondaryRank <= 3
	}

	truth := make(map[int]bool, len(latest.Primary))
	for _, n := range latest.Primary {
		truth[n] = true
	}
	for _, rec := range recs {
		hits := 0
		for _, n := range rec.Primary {
			if truth[n] {
				hits++
			}
		}
		secondaryHit := rec.Secondary == latest.Secondary
		tier := ClassifyPrize(hits, secondaryHit)
		res := RecommendationResult{
			Recommendation: rec,
			PrimaryHits:    hits,
			SecondaryHit:   secondaryHit,
			Tier:           tier,
			Payout:         tier.FixedPayout(),
		}
		ev.Results = append(ev.Results, res)
		ev.Payout = ev.Payout.Add(res.Payout)
		if hits > ev.BestHits {
			ev.BestHits = hits
		}
		if secondaryHit {
			ev.AnySecondary = true
		}
		if tier != TierNone && (ev.BestTier == TierNone || tier < ev.BestTier) {
			ev.BestTier = tier
		}
	}
	ev.EstimatedTier = ClassifyPrize(ev.BestHits, ev.AnySecondary)
	ev.Net = ev.Payout.Sub(ev.Cost)
	return ev
}
