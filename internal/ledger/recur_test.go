package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func rule(kind RecurrenceKind, due time.Time, interval int) PlannedTransaction {
	return PlannedTransaction{
		ID:          "pt1",
		Description: "rent",
		Amount:      dec("100"),
		Nature:      Expense,
		DueDate:     due,
		Active:      true,
		Recurrence:  Recurrence{Kind: kind, Interval: interval, End: EndNever},
	}
}

func occurrenceDays(occs []Occurrence) []time.Time {
	out := make([]time.Time, len(occs))
	for i, o := range occs {
		out[i] = o.Date
	}
	return out
}

func TestExpandInactiveRule(t *testing.T) {
	t.Parallel()

	r := rule(Daily, date(2024, time.January, 1), 1)
	r.Active = false
	require.Empty(t, ExpandOccurrences(r, date(2024, time.January, 1), date(2024, time.December, 31)))
}

func TestExpandOneTime(t *testing.T) {
	t.Parallel()

	r := rule(OneTime, date(2024, time.June, 15), 1)
	got := ExpandOccurrences(r, date(2024, time.June, 1), date(2024, time.June, 30))
	require.Len(t, got, 1)
	require.Equal(t, date(2024, time.June, 15), got[0].Date)

	require.Empty(t, ExpandOccurrences(r, date(2024, time.July, 1), date(2024, time.July, 31)))
}

func TestExpandDailyInterval(t *testing.T) {
	t.Parallel()

	r := rule(Daily, date(2024, time.January, 1), 3)
	got := ExpandOccurrences(r, date(2024, time.January, 1), date(2024, time.January, 10))
	require.Equal(t, []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 4),
		date(2024, time.January, 7),
		date(2024, time.January, 10),
	}, occurrenceDays(got))
}

func TestExpandWeeklyWithoutDays(t *testing.T) {
	t.Parallel()

	r := rule(Weekly, date(2024, time.January, 2), 2)
	got := ExpandOccurrences(r, date(2024, time.January, 1), date(2024, time.February, 1))
	require.Equal(t, []time.Time{
		date(2024, time.January, 2),
		date(2024, time.January, 16),
		date(2024, time.January, 30),
	}, occurrenceDays(got))
}

func TestExpandWeeklyWithDaysOfWeek(t *testing.T) {
	t.Parallel()

	// Monday Jan 1 2024, Mon/Wed/Fri, expanded over the first two weeks.
	r := rule(Weekly, date(2024, time.January, 1), 1)
	r.Recurrence.DaysOfWeek = []time.Weekday{time.Monday, time.Wednesday, time.Friday}

	got := ExpandOccurrences(r, date(2024, time.January, 1), date(2024, time.January, 14))
	require.Equal(t, []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 3),
		date(2024, time.January, 5),
		date(2024, time.January, 8),
		date(2024, time.January, 10),
		date(2024, time.January, 12),
	}, occurrenceDays(got))
}

func TestExpandWeeklyWithDaysHonorsInterval(t *testing.T) {
	t.Parallel()

	// Every 2nd week on Mon/Fri: the week starting Jan 8 is skipped.
	r := rule(Weekly, date(2024, time.January, 1), 2)
	r.Recurrence.DaysOfWeek = []time.Weekday{time.Monday, time.Friday}

	got := ExpandOccurrences(r, date(2024, time.January, 1), date(2024, time.January, 21))
	require.Equal(t, []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 5),
		date(2024, time.January, 15),
		date(2024, time.January, 19),
	}, occurrenceDays(got))
}

func TestExpandMonthlyClampReEvaluates(t *testing.T) {
	t.Parallel()

	// Anchored on the 31st: each month clamps independently, with no
	// permanent drift to the shortest month seen so far.
	r := rule(Monthly, date(2024, time.January, 31), 1)
	got := ExpandOccurrences(r, date(2024, time.January, 1), date(2024, time.April, 30))
	require.Equal(t, []time.Time{
		date(2024, time.January, 31),
		date(2024, time.February, 29),
		date(2024, time.March, 31),
		date(2024, time.April, 30),
	}, occurrenceDays(got))
}

func TestExpandYearlyLeapAnchor(t *testing.T) {
	t.Parallel()

	r := rule(Yearly, date(2024, time.February, 29), 1)
	got := ExpandOccurrences(r, date(2024, time.January, 1), date(2028, time.December, 31))
	require.Equal(t, []time.Time{
		date(2024, time.February, 29),
		date(2025, time.February, 28),
		date(2026, time.February, 28),
		date(2027, time.February, 28),
		date(2028, time.February, 29),
	}, occurrenceDays(got))
}

func TestExpandEndsOnDate(t *testing.T) {
	t.Parallel()

	r := rule(Daily, date(2024, time.January, 1), 1)
	r.Recurrence.End = EndOnDate
	r.Recurrence.EndDate = date(2024, time.January, 3)
	got := ExpandOccurrences(r, date(2024, time.January, 1), date(2024, time.January, 31))
	require.Len(t, got, 3)
}

func TestExpandEndsAfterOccurrences(t *testing.T) {
	t.Parallel()

	r := rule(Weekly, date(2024, time.January, 1), 1)
	r.Recurrence.End = EndAfterOccurrences
	r.Recurrence.EndAfter = 4
	got := ExpandOccurrences(r, date(2024, time.January, 1), date(2024, time.December, 31))
	require.Len(t, got, 4)
	require.Equal(t, date(2024, time.January, 22), got[3].Date)
}

func TestExpandNeverPrecedesAnchor(t *testing.T) {
	t.Parallel()

	r := rule(Monthly, date(2024, time.June, 10), 1)
	require.Empty(t, ExpandOccurrences(r, date(2024, time.January, 1), date(2024, time.May, 31)))

	got := ExpandOccurrences(r, date(2024, time.May, 1), date(2024, time.July, 31))
	require.Equal(t, []time.Time{
		date(2024, time.June, 10),
		date(2024, time.July, 10),
	}, occurrenceDays(got))
}

func TestExpandUnknownKind(t *testing.T) {
	t.Parallel()

	r := rule(RecurrenceKind("fortnightly-ish"), date(2024, time.January, 1), 1)
	require.Empty(t, ExpandOccurrences(r, date(2024, time.January, 1), date(2024, time.December, 31)))
}

func TestExpandCopiesRuleFields(t *testing.T) {
	t.Parallel()

	r := rule(OneTime, date(2024, time.June, 15), 1)
	r.CategoryValue = "housing"
	r.AccountID = "bank1"
	got := ExpandOccurrences(r, date(2024, time.June, 1), date(2024, time.June, 30))
	require.Len(t, got, 1)
	require.Equal(t, "rent", got[0].Description)
	require.Equal(t, "housing", got[0].CategoryValue)
	require.Equal(t, "bank1", got[0].AccountID)
	require.Equal(t, Expense, got[0].Nature)
	require.True(t, got[0].Amount.Equal(dec("100")))
}
