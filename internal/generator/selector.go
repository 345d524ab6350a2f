package generator

import "github.com/yourusername/ssq-forecast/internal/models"

// Select keeps the first candidate per primary combination, takes the top n and
// attaches descriptive stats. Candidates are expected in descending score order.
// A non-positive n selects nothing.
func Select(candidates []models.Candidate, probs models.Probabilities, n int) []models.Recommendation {
	if n < 0 {
		n = 0
	}
	seen := make(map[models.Combination]bool, n)
	recs := make([]models.Recommendation, 0, n)
	for _, c := range candidates {
		if len(recs) >= n {
			break
		}
		if seen[c.Primary] {
			continue
		}
		seen[c.Primary] = true
		numbers := c.Primary.Slice()
		odd := models.OddCount(numbers)
		recs = append(recs, models.Recommendation{
			Primary:    numbers,
			Secondary:  c.Secondary,
			Score:      c.Score,
			Entropy:    c.Entropy,
			Sum:        c.Primary.Sum(),
			Span:       models.Span(numbers),
			OddCount:   odd,
			EvenCount:  len(numbers) - odd,
			Confidence: MeanProbability(probs.Primary, numbers) * probs.Secondary.Prob(c.Secondary),
		})
	}
	return recs
}
