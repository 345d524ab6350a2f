package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// DataValidator inspects draw histories for anomalies that do not make the
// records malformed.
type DataValidator struct {
	logger *logrus.Logger
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	return &DataValidator{logger: logger}
}

// ValidateRecord returns the shape errors of a single record.
func (v *DataValidator) ValidateRecord(record models.DrawRecord) []string {
	var errors []string

	if record.Period == "" {
		errors = append(errors, "period is required")
	}
	if record.Time().IsZero() {
		errors = append(errors, fmt.Sprintf("date %q is not YYYY-MM-DD", record.Date))
	}
	if len(record.Primary) != models.PrimaryPool.Picks {
		errors = append(errors, fmt.Sprintf("expected %d primary numbers, got %d", models.PrimaryPool.Picks, len(record.Primary)))
	}
	seen := map[int]bool{}
	for _, n := range record.Primary {
		if !models.PrimaryPool.Contains(n) {
			errors = append(errors, fmt.Sprintf("primary number %d out of range 1-%d", n, models.PrimaryPool.Size))
		}
		if seen[n] {
			errors = append(errors, fmt.Sprintf("primary number %d repeated", n))
		}
		seen[n] = true
	}
	if !models.SecondaryPool.Contains(record.Secondary) {
		errors = append(errors, fmt.Sprintf("secondary number %d out of range 1-%d", record.Secondary, models.SecondaryPool.Size))
	}

	return errors
}

// ValidateHistory returns warnings for a sorted history: repeated periods and
// draws dated off the Tue/Thu/Sun schedule.
func (v *DataValidator) ValidateHistory(records []models.DrawRecord) []string {
	var warnings []string

	periods := make(map[string]bool, len(records))
	for _, r := range records {
		if periods[r.Period] {
			warnings = append(warnings, fmt.Sprintf("period %s appears more than once", r.Period))
		}
		periods[r.Period] = true

		if t := r.Time(); !t.IsZero() && !models.IsDrawDay(t.Weekday()) {
			warnings = append(warnings, fmt.Sprintf("period %s dated %s falls on %s", r.Period, r.Date, t.Weekday()))
		}
	}

	if v.logger != nil {
		for _, w := range warnings {
			v.logger.WithField("component", "validator").Warn(w)
		}
	}
	return warnings
}
