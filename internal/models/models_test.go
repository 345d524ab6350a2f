package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() DrawRecord {
	return DrawRecord{Period: "2024001", Date: "2024-01-02", Primary: []int{3, 9, 14, 21, 27, 33}, Secondary: 16}
}

func TestDrawRecordValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DrawRecord)
		valid  bool
	}{
		{"valid", func(*DrawRecord) {}, true},
		{"missing period", func(d *DrawRecord) { d.Period = "" }, false},
		{"bad date", func(d *DrawRecord) { d.Date = "02/01/2024" }, false},
		{"five primaries", func(d *DrawRecord) { d.Primary = []int{1, 2, 3, 4, 5} }, false},
		{"duplicate primary", func(d *DrawRecord) { d.Primary = []int{1, 1, 3, 4, 5, 6} }, false},
		{"primary out of range", func(d *DrawRecord) { d.Primary = []int{0, 2, 3, 4, 5, 6} }, false},
		{"primary above pool", func(d *DrawRecord) { d.Primary = []int{1, 2, 3, 4, 5, 34} }, false},
		{"secondary out of range", func(d *DrawRecord) { d.Secondary = 17 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			err := r.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDraw))
		})
	}
}

func TestDrawRecordStats(t *testing.T) {
	r := validRecord()
	assert.Equal(t, 107, r.PrimarySum())
	assert.Equal(t, 30, r.Span())
	assert.Equal(t, 5, r.OddCount())
	assert.Equal(t, time.Tuesday, r.Time().Weekday())
}

func TestSortDrawsByDateThenPeriod(t *testing.T) {
	a := DrawRecord{Period: "2024002", Date: "2024-01-04"}
	b := DrawRecord{Period: "2024001", Date: "2024-01-02"}
	c := DrawRecord{Period: "2024003", Date: "2024-01-04"}
	in := []DrawRecord{c, a, b}

	sorted := SortDraws(in)
	assert.Equal(t, []DrawRecord{b, a, c}, sorted)
	assert.Equal(t, c, in[0], "input must not be reordered")
}

func TestFilterFromAndLast(t *testing.T) {
	records := []DrawRecord{
		{Period: "1", Date: "2024-01-02"},
		{Period: "2", Date: "2024-01-04"},
		{Period: "3", Date: "2024-01-07"},
	}
	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, records[1:], FilterFrom(records, start))
	assert.Equal(t, records, FilterFrom(records, time.Time{}))
	assert.Nil(t, FilterFrom(records, start.AddDate(1, 0, 0)))

	assert.Equal(t, records[2:], Last(records, 1))
	assert.Equal(t, records, Last(records, 0))
	assert.Equal(t, records, Last(records, 10))
}

func TestNextDrawWeekday(t *testing.T) {
	tests := map[time.Weekday]time.Weekday{
		time.Sunday:    time.Tuesday,
		time.Monday:    time.Tuesday,
		time.Tuesday:   time.Thursday,
		time.Wednesday: time.Thursday,
		time.Thursday:  time.Sunday,
		time.Friday:    time.Sunday,
		time.Saturday:  time.Sunday,
	}
	for from, want := range tests {
		assert.Equal(t, want, NextDrawWeekday(from), "after %s", from)
	}
}

func TestTargetWeekday(t *testing.T) {
	history := []DrawRecord{validRecord()} // Tuesday
	assert.Equal(t, time.Thursday, TargetWeekday(history, time.Now()))

	// Saturday 20:00 UTC is Sunday 04:00 in UTC+8.
	now := time.Date(2024, 1, 6, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Tuesday, TargetWeekday(nil, now))
}

func TestProbabilityVectorNormalize(t *testing.T) {
	p := ProbabilityVector{1, 3, -2, 0}.Normalize()
	assert.InDeltaSlice(t, []float64{0.25, 0.75, 0, 0}, p, 1e-12)
	assert.True(t, p.Valid(4, 1e-9))

	zero := ProbabilityVector{0, 0, 0, 0}.Normalize()
	assert.Equal(t, Uniform(4), zero)
}

func TestProbabilityVectorRanking(t *testing.T) {
	p := ProbabilityVector{0.1, 0.4, 0.1, 0.4}

	assert.Equal(t, []int{2, 4, 1, 3}, p.Ranked())
	assert.Equal(t, []int{2, 4}, p.TopK(2))
	assert.Len(t, p.TopK(10), 4)
	assert.Empty(t, p.TopK(-1))
	assert.Equal(t, 3, p.Rank(1))
	assert.Equal(t, 0, p.Rank(9))
	assert.InDelta(t, 0.4, p.Peak(), 1e-12)
	assert.Zero(t, p.Prob(0))
}

func TestCombination(t *testing.T) {
	c := NewCombination([]int{30, 2, 15, 7, 21, 9})
	assert.Equal(t, Combination{2, 7, 9, 15, 21, 30}, c)
	assert.Equal(t, 84, c.Sum())
	assert.Equal(t, []int{2, 7, 9, 15, 21, 30}, c.Slice())
}
