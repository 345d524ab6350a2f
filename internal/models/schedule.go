package models

import "time"

// DrawDays is the fixed weekly draw schedule (Tue, Thu, Sun).
var DrawDays = []time.Weekday{time.Tuesday, time.Thursday, time.Sunday}

// drawZone is the timezone draws are published in (UTC+8).
var drawZone = time.FixedZone("UTC+8", 8*60*60)

// IsDrawDay reports whether wd is on the schedule.
func IsDrawDay(wd time.Weekday) bool {
	for _, d := range DrawDays {
		if d == wd {
			return true
		}
	}
	return false
}

// NextDrawWeekday returns the first scheduled weekday strictly after wd.
func NextDrawWeekday(wd time.Weekday) time.Weekday {
	for offset := 1; offset <= 7; offset++ {
		cand := time.Weekday((int(wd) + offset) % 7)
		if IsDrawDay(cand) {
			return cand
		}
	}
	return time.Tuesday
}

// ContextWeekday is the weekday of the draw that follows record.
func ContextWeekday(record DrawRecord) time.Weekday {
	return NextDrawWeekday(record.Time().Weekday())
}

// TargetWeekday is the weekday of the draw following the newest record of a
// sorted history. An empty history falls back to the next draw after now (UTC+8).
func TargetWeekday(history []DrawRecord, now time.Time) time.Weekday {
	if len(history) == 0 {
		return NextDrawWeekday(now.In(drawZone).Weekday())
	}
	return ContextWeekday(history[len(history)-1])
}
