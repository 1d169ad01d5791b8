// Package scheduling implements the calendar arithmetic for recurring
// schedules: next-occurrence computation per frequency, end-of-month clamping
// and weekend/holiday adjustment.
package scheduling

import (
	"fmt"
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
)

// NextRunDate computes the occurrence following the schedule's current
// NextRunDate under its frequency parameters. Weekend and holiday adjustment
// are applied separately by the caller, so the unadjusted cadence is preserved
// between occurrences.
func NextRunDate(s domain.RecurringSchedule) (time.Time, error) {
	return nextOccurrence(s.NextRunDate, s)
}

func nextOccurrence(current time.Time, s domain.RecurringSchedule) (time.Time, error) {
	interval := s.FrequencyInterval
	if interval <= 0 {
		interval = 1
	}

	switch s.Frequency {
	case domain.FrequencyDaily:
		return current.AddDate(0, 0, interval), nil

	case domain.FrequencyWeekly:
		next := current.AddDate(0, 0, 7*interval)
		if s.DayOfWeek != nil {
			next = pinDayOfWeek(next, time.Weekday(*s.DayOfWeek))
		}
		return next, nil

	case domain.FrequencyMonthly:
		day := current.Day()
		if s.DayOfMonth != nil {
			day = *s.DayOfMonth
		}
		year, month, _ := current.Date()
		// Anchor at the first of the month so AddDate cannot overflow before
		// the day is pinned.
		anchor := time.Date(year, month, 1, 0, 0, 0, 0, current.Location()).AddDate(0, interval, 0)
		if s.MonthOfYear != nil {
			anchor = advanceToMonth(anchor, time.Month(*s.MonthOfYear))
		}
		return pinDayOfMonth(anchor, day, s.EndOfMonth), nil

	default:
		return time.Time{}, fmt.Errorf("unknown schedule frequency %q", s.Frequency)
	}
}

// pinDayOfWeek moves date forward (0..6 days) to the requested weekday.
func pinDayOfWeek(date time.Time, want time.Weekday) time.Time {
	delta := (int(want) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, delta)
}

// advanceToMonth moves the anchor forward to the next occurrence of the
// requested month, staying put when it already matches.
func advanceToMonth(anchor time.Time, want time.Month) time.Time {
	for anchor.Month() != want {
		anchor = anchor.AddDate(0, 1, 0)
	}
	return anchor
}

// pinDayOfMonth places the occurrence on the requested day within the
// anchor's month. When the month is shorter than the requested day, LAST_DAY
// clamps to the month's final day; STRICT keeps plain AddDate overflow.
func pinDayOfMonth(anchor time.Time, day int, handling domain.EndOfMonthHandling) time.Time {
	last := LastDayOfMonth(anchor)
	if day > last.Day() && handling == domain.EOMLastDay {
		return last
	}
	return anchor.AddDate(0, 0, day-1)
}

// LastDayOfMonth returns midnight on the final day of the date's month.
func LastDayOfMonth(date time.Time) time.Time {
	year, month, _ := date.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, date.Location()).AddDate(0, 1, -1)
}

// IsWeekend reports whether the date is a Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AdjustForWeekends shifts weekend dates to the nearest business day per the
// policy: PREVIOUS walks back, NEXT walks forward. Weekday dates and the NONE
// policy are fixed points.
func AdjustForWeekends(date time.Time, policy domain.WeekendHandling) time.Time {
	if policy == domain.WeekendNone {
		return date
	}
	for IsWeekend(date) {
		date = step(date, policy)
	}
	return date
}

// AdjustForHolidays shifts dates landing on a holiday (or a weekend, once
// shifted onto one) in the same direction as the weekend policy. A NONE
// weekend policy defers to NEXT, matching how accrual runs roll forward.
func AdjustForHolidays(date time.Time, policy domain.WeekendHandling, holidays map[string]struct{}) time.Time {
	if len(holidays) == 0 {
		return date
	}
	if policy == domain.WeekendNone {
		policy = domain.WeekendNext
	}
	for {
		if _, hit := holidays[DateKey(date)]; !hit && !IsWeekend(date) {
			return date
		}
		date = step(date, policy)
	}
}

func step(date time.Time, policy domain.WeekendHandling) time.Time {
	if policy == domain.WeekendPrevious {
		return date.AddDate(0, 0, -1)
	}
	return date.AddDate(0, 0, 1)
}

// DateKey normalizes a date for holiday set lookups.
func DateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

// HolidaySet builds the lookup set AdjustForHolidays expects.
func HolidaySet(holidays []domain.Holiday) map[string]struct{} {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[DateKey(h.Date)] = struct{}{}
	}
	return set
}
