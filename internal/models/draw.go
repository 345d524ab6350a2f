package models

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the on-record date format.
const DateLayout = "2006-01-02"

// DrawRecord is a single historical draw.
type DrawRecord struct {
	Period    string `json:"period" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Primary   []int  `json:"red_balls" validate:"len=6,unique,dive,min=1,max=33"`
	Secondary int    `json:"blue_ball" validate:"min=1,max=16"`
}

var (
	drawValidator     *validator.Validate
	drawValidatorOnce sync.Once
)

func getDrawValidator() *validator.Validate {
	drawValidatorOnce.Do(func() {
		drawValidator = validator.New()
	})
	return drawValidator
}

// Validate checks the record shape. It is the only failure the core surfaces to callers.
func (d DrawRecord) Validate() error {
	if err := getDrawValidator().Struct(d); err != nil {
		return fmt.Errorf("%w: period %q: %v", ErrInvalidDraw, d.Period, err)
	}
	return nil
}

// Time parses the draw date.
func (d DrawRecord) Time() time.Time {
	t, err := time.Parse(DateLayout, d.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// PrimarySum returns the sum of the primary numbers.
func (d DrawRecord) PrimarySum() int {
	total := 0
	for _, n := range d.Primary {
		total += n
	}
	return total
}

// Span returns max-min of the primary numbers.
func (d DrawRecord) Span() int {
	return Span(d.Primary)
}

// OddCount returns how many primary numbers are odd.
func (d DrawRecord) OddCount() int {
	return OddCount(d.Primary)
}

// Span returns max-min of numbers, zero for an empty slice.
func Span(numbers []int) int {
	if len(numbers) == 0 {
		return 0
	}
	lo, hi := numbers[0], numbers[0]
	for _, n := range numbers[1:] {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	return hi - lo
}

// OddCount counts odd values.
func OddCount(numbers []int) int {
	odd := 0
	for _, n := range numbers {
		if n%2 == 1 {
			odd++
		}
	}
	return odd
}

// ValidateDraws validates every record.
func ValidateDraws(records []DrawRecord) error {
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// SortDraws returns a copy ordered by (date, period) ascending.
func SortDraws(records []DrawRecord) []DrawRecord {
	sorted := make([]DrawRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].Period < sorted[j].Period
	})
	return sorted
}

// FilterFrom keeps records dated on or after start. Records must be sorted.
func FilterFrom(records []DrawRecord, start time.Time) []DrawRecord {
	if start.IsZero() {
		return records
	}
	cutoff := start.Format(DateLayout)
	for i, r := range records {
		if r.Date >= cutoff {
			return records[i:]
		}
	}
	return nil
}

// Last returns the newest n records of a sorted slice.
func Last(records []DrawRecord, n int) []DrawRecord {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}
