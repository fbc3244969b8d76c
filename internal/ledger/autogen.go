package ledger

import (
	"fmt"
	"sort"
	"time"
)

// StatementID derives the deterministic statement identity for an account
// and the month the period ends in. The month is zero-padded and 0-indexed
// ("acc123-2024-00" is January 2024); stored data depends on this format.
func StatementID(accountID string, year int, month time.Month) string {
	return fmt.Sprintf("%s-%d-%02d", accountID, year, int(month)-1)
}

// AutoGenerate walks calendar months from appStart through one year past
// now and builds every statement the account is missing. Months that
// already have a saved statement are skipped, as are periods that end
// before appStart (nothing is generated before the user started tracking;
// a period ending exactly on appStart is kept). Returns only the newly
// created statements; idempotent given its own output merged back in.
func AutoGenerate(account Account, txs []Transaction, existing []Statement, appStart, now time.Time) []Statement {
	if account.StatementClosingDay == 0 || appStart.IsZero() {
		return nil
	}

	existingIDs := make(map[string]bool, len(existing))
	for _, s := range existing {
		existingIDs[s.ID] = true
	}

	horizon := now.AddDate(1, 0, 0)
	year, month := appStart.Year(), appStart.Month()
	maxIterations := (horizon.Year() - appStart.Year() + 2) * 12

	var out []Statement
	for i := 0; i < maxIterations; i++ {
		if startOfDay(year, month, 1).After(horizon) {
			break
		}

		id := StatementID(account.ID, year, month)
		if !existingIDs[id] {
			if period, ok := CalcPeriod(account.StatementClosingDay, month, year); ok {
				if !period.End.Before(appStart) {
					if totals := BuildStatement(&account, txs, period.Start, period.End, id); totals != nil {
						out = append(out, Statement{
							ID:                  id,
							AccountID:           account.ID,
							StartDate:           period.Start,
							EndDate:             period.End,
							OpeningBalance:      totals.OpeningBalance,
							ClosingBalance:      totals.ClosingBalance,
							Transactions:        totals.Transactions,
							TotalDebits:         totals.TotalDebits,
							TotalCredits:        totals.TotalCredits,
							TotalLinkedPayments: totals.TotalLinkedPayments,
						})
					}
				}
			}
		}

		year, month = addMonths(year, month, 1)
	}
	return out
}

// AutoGenerateAll runs AutoGenerate for every account with a closing day
// and returns the truly new statements, deduplicated by id against both
// each other and the existing set.
func AutoGenerateAll(accounts []Account, txs []Transaction, existing []Statement, appStart, now time.Time) []Statement {
	if appStart.IsZero() || len(accounts) == 0 {
		return nil
	}

	existingIDs := make(map[string]bool, len(existing))
	for _, s := range existing {
		existingIDs[s.ID] = true
	}

	seen := make(map[string]bool)
	var out []Statement
	for _, acc := range accounts {
		if acc.StatementClosingDay == 0 {
			continue
		}
		for _, s := range AutoGenerate(acc, txs, existing, appStart, now) {
			if seen[s.ID] || existingIDs[s.ID] {
				continue
			}
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	return out
}

// MergeStatements combines saved and new statements, deduplicating by id
// (first occurrence wins) and sorting descending by period end, the order
// statements are persisted and listed in.
func MergeStatements(existing, generated []Statement) []Statement {
	seen := make(map[string]bool, len(existing)+len(generated))
	merged := make([]Statement, 0, len(existing)+len(generated))
	for _, s := range append(append([]Statement{}, existing...), generated...) {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		merged = append(merged, s)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].EndDate.After(merged[j].EndDate)
	})
	return merged
}
