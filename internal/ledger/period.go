package ledger

import "time"

// Period is the closed [Start, End] interval a billing cycle covers.
// Start is midnight, End the last millisecond of its day; both are used as
// inclusive bounds everywhere.
type Period struct {
	Start time.Time
	End   time.Time
}

// CalcPeriod computes the statement period that ends in the given month for
// an account closing on closingDay. The period ends on the closingDay of the
// target month (clamped to month length) and starts the day after the
// previous month's equivalent closing day. When the closing day is on or
// past the last day of the target month the period is the full calendar
// month. Returns ok=false for invalid input or when the computed interval
// is inverted.
func CalcPeriod(closingDay int, month time.Month, year int) (Period, bool) {
	if closingDay < 1 || closingDay > 31 || month < time.January || month > time.December {
		return Period{}, false
	}

	lastDay := daysInMonth(year, month)
	if closingDay >= lastDay {
		// The closing day always clamps, so the account effectively closes
		// at end of month: full calendar month statement.
		p := Period{
			Start: startOfDay(year, month, 1),
			End:   endOfDay(year, month, lastDay),
		}
		return p, true
	}

	end := endOfDay(year, month, closingDay)

	prevYear, prevMonth := year, month-1
	if month == time.January {
		prevYear, prevMonth = year-1, time.December
	}
	var start time.Time
	if closingDay >= daysInMonth(prevYear, prevMonth) {
		// The previous cycle closed at that month's end, so this one starts
		// on the 1st of the target month.
		start = startOfDay(year, month, 1)
	} else {
		start = startOfDay(prevYear, prevMonth, closingDay+1)
	}

	if start.After(end) {
		return Period{}, false
	}
	return Period{Start: start, End: end}, true
}

// inPeriod reports whether t falls within [start, end], both ends inclusive.
func inPeriod(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
