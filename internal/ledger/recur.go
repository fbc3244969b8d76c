package ledger

import "time"

// maxExpandSteps bounds expansion so a misconfigured rule can never loop
// forever. Hitting the cap silently truncates the series; ten years of
// daily candidates is beyond any window the application asks for.
const maxExpandSteps = 3650

// ExpandOccurrences produces the ordered concrete occurrences of a rule
// that intersect [windowStart, windowEnd], both ends inclusive. The result
// is recomputed fresh on every call and is empty for paused rules.
//
// Candidates never precede the rule's DueDate anchor. Monthly and yearly
// candidates re-clamp the anchor's day-of-month against each target month
// independently, so a rule anchored on the 31st lands on Feb 28/29 and is
// back on the 31st in March. A weekly rule with an explicit days-of-week
// set steps day by day; a day is emitted only when its weekday is allowed
// and the number of whole weeks since the anchor (weeks starting on the
// anchor's weekday) is a multiple of the interval, so "every 2nd week on
// Mon/Fri" skips alternate weeks. When the rule ends after N occurrences,
// N counts occurrences emitted into the window, matching how the budget
// views have always behaved.
func ExpandOccurrences(rule PlannedTransaction, windowStart, windowEnd time.Time) []Occurrence {
	if !rule.Active {
		return nil
	}

	anchor := rule.DueDate
	rec := rule.Recurrence

	if rec.Kind == OneTime {
		if inPeriod(anchor, windowStart, windowEnd) {
			return []Occurrence{occurrenceAt(rule, anchor)}
		}
		return nil
	}

	interval := rec.Interval
	if interval < 1 {
		interval = 1
	}

	var allowed map[time.Weekday]bool
	if rec.Kind == Weekly && len(rec.DaysOfWeek) > 0 {
		allowed = make(map[time.Weekday]bool, len(rec.DaysOfWeek))
		for _, d := range rec.DaysOfWeek {
			allowed[d] = true
		}
	}

	candidate := func(n int) (time.Time, bool) {
		switch rec.Kind {
		case Daily:
			return anchor.AddDate(0, 0, n*interval), true
		case Weekly:
			if allowed != nil {
				return anchor.AddDate(0, 0, n), true
			}
			return anchor.AddDate(0, 0, n*7*interval), true
		case Monthly:
			y, m := addMonths(anchor.Year(), anchor.Month(), n*interval)
			return sameClock(anchor, y, m, ClampDayToMonth(anchor.Day(), m, y)), true
		case Yearly:
			y := anchor.Year() + n*interval
			return sameClock(anchor, y, anchor.Month(), ClampDayToMonth(anchor.Day(), anchor.Month(), y)), true
		default:
			return time.Time{}, false
		}
	}

	var out []Occurrence
	for n := 0; n < maxExpandSteps; n++ {
		cand, ok := candidate(n)
		if !ok || cand.After(windowEnd) {
			break
		}
		if rec.End == EndOnDate && !rec.EndDate.IsZero() && cand.After(rec.EndDate) {
			break
		}
		if rec.End == EndAfterOccurrences && rec.EndAfter > 0 && len(out) >= rec.EndAfter {
			break
		}

		if allowed != nil {
			if !allowed[cand.Weekday()] {
				continue
			}
			if !cand.Equal(anchor) {
				weeks := int(cand.Sub(anchor) / (7 * 24 * time.Hour))
				if weeks%interval != 0 {
					continue
				}
			}
		}

		if inPeriod(cand, windowStart, windowEnd) && !cand.Before(anchor) {
			out = append(out, occurrenceAt(rule, cand))
		}
	}
	return out
}

func occurrenceAt(rule PlannedTransaction, date time.Time) Occurrence {
	return Occurrence{
		Date:          date,
		Amount:        rule.Amount,
		Nature:        rule.Nature,
		Description:   rule.Description,
		CategoryValue: rule.CategoryValue,
		AccountID:     rule.AccountID,
	}
}
