package backtest

import (
	"encoding/json"
	"sort"

	"github.com/montanaflynn/stats"
)

// VariantScore is a variant's recall averaged across k values.
type VariantScore struct {
	Variant        string  `json:"variant"`
	PrimaryRecall  float64 `json:"primary_recall"`
	SecondaryHit   float64 `json:"secondary_hit"`
	CompositeScore float64 `json:"composite_score"`
}

// RankVariants orders variants by composite score, highest first. The composite
// weights primary recall 0.7 and secondary hit rate 0.3.
func RankVariants(s Summary) []VariantScore {
	scores := make([]VariantScore, 0, len(s.Variants))
	for _, v := range s.Variants {
		vs := VariantScore{
			Variant:       v,
			PrimaryRecall: meanOver(s.Primary[v], s.KList),
			SecondaryHit:  meanOver(s.Secondary[v], s.SecondaryKList),
		}
		vs.CompositeScore = 0.7*vs.PrimaryRecall + 0.3*vs.SecondaryHit
		scores = append(scores, vs)
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].CompositeScore > scores[j].CompositeScore
	})
	return scores
}

// ExportJSON serializes the summary with its ranking for downstream tooling.
func (s Summary) ExportJSON() (string, error) {
	data, err := json.Marshal(struct {
		Summary
		Ranking []VariantScore `json:"ranking"`
	}{Summary: s, Ranking: RankVariants(s)})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func meanOver(byK map[int]float64, ks []int) float64 {
	values := make([]float64, 0, len(ks))
	for _, k := range ks {
		values = append(values, byK[k])
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return mean
}
