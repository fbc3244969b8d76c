package ledger

import "time"

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month normalizes to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDayToMonth caps day to the length of the given month. A rule or
// closing day anchored on the 29th-31st degrades to the month's last day in
// shorter months. Shared by the period calculator, the recurrence expander
// and the payment-date walk so the clamping rule lives in exactly one place.
func ClampDayToMonth(day int, month time.Month, year int) int {
	if last := daysInMonth(year, month); day > last {
		return last
	}
	return day
}

// startOfDay returns midnight UTC on the given calendar day.
func startOfDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// endOfDay returns the last representable millisecond of the given day,
// matching the inclusive end-of-day bound statements are stored with.
func endOfDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// addMonths walks a (year, month) pair forward without day normalization.
func addMonths(year int, month time.Month, n int) (int, time.Month) {
	m := int(month) - 1 + n
	return year + m/12, time.Month(m%12 + 1)
}

// sameClock preserves y/m/d while keeping the clock time of ref.
func sameClock(ref time.Time, year int, month time.Month, day int) time.Time {
	h, m, s := ref.Clock()
	return time.Date(year, month, day, h, m, s, ref.Nanosecond(), ref.Location())
}
