package ml

import (
	"math"
	"time"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// engineeredSize is the number of hand-crafted scalars per draw.
const engineeredSize = 9

// FeatureSize is the encoded width of one draw.
var FeatureSize = models.PrimaryPool.Size + models.SecondaryPool.Size + engineeredSize

// Encode converts a draw into multi-hot primary, one-hot secondary and engineered features.
// Weekday features describe the draw day that follows the record.
func Encode(r models.DrawRecord) []float64 {
	vec := make([]float64, FeatureSize)
	for _, n := range r.Primary {
		if models.PrimaryPool.Contains(n) {
			vec[n-1] = 1
		}
	}
	if models.SecondaryPool.Contains(r.Secondary) {
		vec[models.PrimaryPool.Size+r.Secondary-1] = 1
	}
	copy(vec[models.PrimaryPool.Size+models.SecondaryPool.Size:], engineered(r))
	return vec
}

func engineered(r models.DrawRecord) []float64 {
	sumRange := float64(models.MaxPrimarySum - models.MinPrimarySum)
	odd := float64(r.OddCount())
	picks := float64(models.PrimaryPool.Picks)
	wd := models.ContextWeekday(r)
	// Monday-based index keeps the cyclic encoding aligned with ISO weeks.
	angle := 2 * math.Pi * float64((int(wd)+6)%7) / 7
	return []float64{
		float64(r.PrimarySum()-models.MinPrimarySum) / sumRange,
		float64(r.Span()) / models.MaxPrimarySpan,
		odd / picks,
		(picks - odd) / picks,
		math.Sin(angle),
		math.Cos(angle),
		indicator(wd == time.Tuesday),
		indicator(wd == time.Thursday),
		indicator(wd == time.Sunday),
	}
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Dataset holds overlapping windows labeled by the draw that follows them.
type Dataset struct {
	Inputs    [][][]float64
	Primary   [][]float64
	Secondary []int
}

// Len returns the sample count.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Inputs)
}

// BuildDataset windows records sorted oldest first. It returns nil when there
// are not more than seqLen records.
func BuildDataset(records []models.DrawRecord, seqLen int) *Dataset {
	if seqLen < 1 || len(records) <= seqLen {
		return nil
	}
	encoded := make([][]float64, len(records))
	for i, r := range records {
		encoded[i] = Encode(r)
	}
	ds := &Dataset{}
	for i := seqLen; i < len(records); i++ {
		ds.Inputs = append(ds.Inputs, encoded[i-seqLen:i])
		label := make([]float64, models.PrimaryPool.Size)
		for _, n := range records[i].Primary {
			if models.PrimaryPool.Contains(n) {
				label[n-1] = 1
			}
		}
		ds.Primary = append(ds.Primary, label)
		ds.Secondary = append(ds.Secondary, records[i].Secondary-1)
	}
	return ds
}

// LastWindow encodes the newest seqLen records, or nil when too few.
func LastWindow(records []models.DrawRecord, seqLen int) [][]float64 {
	if seqLen < 1 || len(records) < seqLen {
		return nil
	}
	window := make([][]float64, seqLen)
	for i, r := range records[len(records)-seqLen:] {
		window[i] = Encode(r)
	}
	return window
}
