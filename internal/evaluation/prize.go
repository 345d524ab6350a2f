// Package evaluation scores recommendations against a drawn result and summarizes
// historical number patterns.
package evaluation

import (
	"github.com/shopspring/decimal"
)

// PrizeTier is the official prize level; TierNone means no prize.
type PrizeTier int

// Prize tiers
const (
	TierNone PrizeTier = iota
	TierFirst
	TierSecond
	TierThird
	TierFourth
	TierFifth
	TierSixth
)

// TicketCost is the price of one set in yuan.
var TicketCost = decimal.NewFromInt(2)

var fixedPayouts = map[PrizeTier]decimal.Decimal{
	TierThird:  decimal.NewFromInt(3000),
	TierFourth: decimal.NewFromInt(200),
	TierFifth:  decimal.NewFromInt(10),
	TierSixth:  decimal.NewFromInt(5),
}

// ClassifyPrize maps primary matches and the secondary match to a tier:
// 6+1 first, 6+0 second, 5+1 third, 5+0 or 4+1 fourth, 4+0 or 3+1 fifth,
// and any secondary match with at most two primaries sixth.
func ClassifyPrize(primaryHits int, secondaryHit bool) PrizeTier {
	switch {
	case primaryHits == 6 && secondaryHit:
		return TierFirst
	case primaryHits == 6:
		return TierSecond
	case primaryHits == 5 && secondaryHit:
		return TierThird
	case primaryHits == 5 || (primaryHits == 4 && secondaryHit):
		return TierFourth
	case primaryHits == 4 || (primaryHits == 3 && secondaryHit):
		return TierFifth
	case secondaryHit:
		return TierSixth
	default:
		return TierNone
	}
}

// FixedPayout returns the fixed award in yuan. First and second prizes float
// with the pool and report zero.
func (t PrizeTier) FixedPayout() decimal.Decimal {
	if v, ok := fixedPayouts[t]; ok {
		return v
	}
	return decimal.Zero
}

// Floating reports whether the award depends on the prize pool.
func (t PrizeTier) Floating() bool {
	return t == TierFirst || t == TierSecond
}

func (t PrizeTier) String() string {
	switch t {
	case TierFirst:
		return "first"
	case TierSecond:
		return "second"
	case TierThird:
		return "third"
	case TierFourth:
		return "fourth"
	case TierFifth:
		return "fifth"
	case TierSixth:
		return "sixth"
	default:
		return "none"
	}
}

// MarshalText renders the tier name in JSON.
func (t PrizeTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
