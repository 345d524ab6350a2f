// Package testutil builds deterministic draw histories for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// FirstDrawDate is a Tuesday; generated histories follow the Tue/Thu/Sun schedule from it.
var FirstDrawDate = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

// DrawDates returns n consecutive scheduled draw dates.
func DrawDates(n int) []time.Time {
	dates := make([]time.Time, 0, n)
	d := FirstDrawDate
	for len(dates) < n {
		dates = append(dates, d)
		switch d.Weekday() {
		case time.Thursday:
			d = d.AddDate(0, 0, 3)
		default:
			d = d.AddDate(0, 0, 2)
		}
	}
	return dates
}

// SyntheticHistory returns n valid records drawn from a seeded RNG, oldest first.
func SyntheticHistory(n int, seed int64) []models.DrawRecord {
	rng := rand.New(rand.NewSource(seed))
	records := make([]models.DrawRecord, 0, n)
	for i, d := range DrawDates(n) {
		primary := rng.Perm(models.PrimaryPool.Size)[:models.PrimaryPool.Picks]
		for j := range primary {
			primary[j]++
		}
		sort.Ints(primary)
		records = append(records, newRecord(i, d, primary, 1+rng.Intn(models.SecondaryPool.Size)))
	}
	return records
}

// FixedHistory returns n records that all carry the same numbers.
func FixedHistory(n int, primary []int, secondary int) []models.DrawRecord {
	records := make([]models.DrawRecord, 0, n)
	for i, d := range DrawDates(n) {
		records = append(records, newRecord(i, d, append([]int(nil), primary...), secondary))
	}
	return records
}

func newRecord(i int, d time.Time, primary []int, secondary int) models.DrawRecord {
	return models.DrawRecord{
		Period:    fmt.Sprintf("%d%03d", d.Year(), i+1),
		Date:      d.Format(models.DateLayout),
		Primary:   primary,
		Secondary: secondary,
	}
}

// WriteHistoryFile stores records as a JSON history file in a temp dir and returns its path.
func WriteHistoryFile(t *testing.T, records []models.DrawRecord) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lottery_data.json")
	data, err := json.Marshal(records)
	require.NoError(t, err, "failed to marshal history")
	require.NoError(t, os.WriteFile(path, data, 0o600), "failed to write history file")
	return path
}
