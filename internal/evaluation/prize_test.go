package evaluation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassifyPrize(t *testing.T) {
	tests := []struct {
		hits      int
		secondary bool
		want      PrizeTier
	}{
		{6, true, TierFirst},
		{6, false, TierSecond},
		{5, true, TierThird},
		{5, false, TierFourth},
		{4, true, TierFourth},
		{4, false, TierFifth},
		{3, true, TierFifth},
		{3, false, TierNone},
		{2, true, TierSixth},
		{1, true, TierSixth},
		{0, true, TierSixth},
		{0, false, TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPrize(tt.hits, tt.secondary))
		})
	}
}

func TestPrizeTier_FixedPayout(t *testing.T) {
	assert.True(t, TierThird.FixedPayout().Equal(decimal.NewFromInt(3000)))
	assert.True(t, TierSixth.FixedPayout().Equal(decimal.NewFromInt(5)))
	assert.True(t, TierFirst.FixedPayout().IsZero())
	assert.True(t, TierFirst.Floating())
	assert.False(t, TierFifth.Floating())
}

func TestPrizeTier_MarshalText(t *testing.T) {
	b, err := TierFourth.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "fourth", string(b))
}
