package analytics

import (
	"errors"
	"time"
)

// ErrUnknownPeriod is returned for a period name GetDateRange does not know.
var ErrUnknownPeriod = errors.New("unknown period")

// PeriodAll selects every receipt.
const PeriodAll = "all"

// GetDateRange returns the window for a named period relative to now.
func GetDateRange(period string, now time.Time) (DateRange, error) {
	loc := now.Location()
	startOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
	endOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, loc)
	}

	switch period {
	case "", PeriodAll:
		return DateRange{}, nil

	case "today":
		return DateRange{Start: startOfDay(now), End: endOfDay(now)}, nil

	case "this_week":
		// Weeks start on Monday
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return DateRange{Start: startOfDay(now.AddDate(0, 0, -weekday+1)), End: now}, nil

	case "this_month":
		return DateRange{Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc), End: now}, nil

	case "last_month":
		return DateRange{
			Start: time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, loc),
			End:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).Add(-time.Nanosecond),
		}, nil

	case "this_year":
		return DateRange{Start: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc), End: now}, nil

	case "last_30_days":
		return DateRange{Start: now.AddDate(0, 0, -30), End: now}, nil

	case "last_90_days":
		return DateRange{Start: now.AddDate(0, 0, -90), End: now}, nil
	}
	return DateRange{}, ErrUnknownPeriod
}

// GetMonthlyRanges splits [start, end] into calendar months.
func GetMonthlyRanges(start, end time.Time) []DateRange {
	ranges := []DateRange{}
	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())

	for !current.After(end) {
		monthEnd := current.AddDate(0, 1, 0).Add(-time.Nanosecond)
		if monthEnd.After(end) {
			monthEnd = end
		}
		ranges = append(ranges, DateRange{Start: current, End: monthEnd})
		current = current.AddDate(0, 1, 0)
	}
	return ranges
}
