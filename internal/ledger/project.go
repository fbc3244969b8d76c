package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ProjectedPayment is one anticipated credit-card statement payment inside
// a budget window.
type ProjectedPayment struct {
	AccountID   string
	AccountName string
	Statement   Statement
	PaymentDate time.Time
}

// BudgetProjection is the computed content of a budget window.
type BudgetProjection struct {
	Income     []Occurrence
	Expenses   []Occurrence
	CCPayments []ProjectedPayment

	TotalIncome          decimal.Decimal
	TotalPlannedExpenses decimal.Decimal
	TotalCCExpenses      decimal.Decimal
	Net                  decimal.Decimal
}

// ProjectBudget expands every active planned transaction into the budget
// window and walks projected credit-card payment dates against saved
// statements.
//
// Income occurrences always count. Expense occurrences count toward
// TotalPlannedExpenses only when their account is not a credit card:
// card spending reaches the budget through statement payments instead, so
// it is never counted twice. For each credit-card account with both a
// closing day and a preferred payment day, candidate payment dates at the
// preferred day of each month are walked across the window; each candidate
// claims the unclaimed statement with the latest period end that has a
// negative closing balance and ended before the candidate date. A statement
// is claimed at most once per projection.
func ProjectBudget(budget Budget, planned []PlannedTransaction, accounts []Account, statements []Statement) BudgetProjection {
	p := BudgetProjection{
		TotalIncome:          decimal.Zero,
		TotalPlannedExpenses: decimal.Zero,
		TotalCCExpenses:      decimal.Zero,
	}

	accountsByID := make(map[string]*Account, len(accounts))
	for i := range accounts {
		accountsByID[accounts[i].ID] = &accounts[i]
	}

	for _, rule := range planned {
		for _, occ := range ExpandOccurrences(rule, budget.StartDate, budget.EndDate) {
			switch occ.Nature {
			case Income:
				p.Income = append(p.Income, occ)
				p.TotalIncome = p.TotalIncome.Add(occ.Amount)
			case Expense:
				acc := accountsByID[occ.AccountID]
				if acc != nil && acc.Type == AccountCreditCard {
					continue
				}
				p.Expenses = append(p.Expenses, occ)
				p.TotalPlannedExpenses = p.TotalPlannedExpenses.Add(occ.Amount)
			}
		}
	}
	sortOccurrences(p.Income)
	sortOccurrences(p.Expenses)

	claimed := make(map[string]bool)
	for i := range accounts {
		acc := &accounts[i]
		if acc.Type != AccountCreditCard || acc.PreferredPaymentDay == 0 || acc.StatementClosingDay == 0 {
			continue
		}
		for _, payDate := range paymentDates(acc.PreferredPaymentDay, budget.StartDate, budget.EndDate) {
			stmt, ok := claimNextQualifyingStatement(acc.ID, payDate, statements, claimed)
			if !ok {
				continue
			}
			p.TotalCCExpenses = p.TotalCCExpenses.Add(stmt.ClosingBalance.Abs())
			p.CCPayments = append(p.CCPayments, ProjectedPayment{
				AccountID:   acc.ID,
				AccountName: acc.Name,
				Statement:   stmt,
				PaymentDate: payDate,
			})
		}
	}
	sort.SliceStable(p.CCPayments, func(i, j int) bool {
		return p.CCPayments[i].PaymentDate.Before(p.CCPayments[j].PaymentDate)
	})

	p.Net = p.TotalIncome.Sub(p.TotalPlannedExpenses).Sub(p.TotalCCExpenses)
	return p
}

// paymentDates lists the preferred-day payment dates inside [start, end],
// one per calendar month, the day clamped to each month's length.
func paymentDates(preferredDay int, start, end time.Time) []time.Time {
	year, month := start.Year(), start.Month()
	cur := startOfDay(year, month, ClampDayToMonth(preferredDay, month, year))
	if cur.Before(start) {
		year, month = addMonths(year, month, 1)
		cur = startOfDay(year, month, ClampDayToMonth(preferredDay, month, year))
	}

	var out []time.Time
	for !cur.After(end) {
		out = append(out, cur)
		year, month = addMonths(year, month, 1)
		cur = startOfDay(year, month, ClampDayToMonth(preferredDay, month, year))
	}
	return out
}

// claimNextQualifyingStatement picks the account's unclaimed statement with
// the latest period end that carries a negative closing balance and ended
// by asOf, and marks it claimed. Shared by the budget breakdown and any
// future payment-forecast reporting.
func claimNextQualifyingStatement(accountID string, asOf time.Time, statements []Statement, claimed map[string]bool) (Statement, bool) {
	var best *Statement
	for i := range statements {
		s := &statements[i]
		if s.AccountID != accountID || claimed[s.ID] {
			continue
		}
		if !s.ClosingBalance.IsNegative() || s.EndDate.After(asOf) {
			continue
		}
		if best == nil || s.EndDate.After(best.EndDate) {
			best = s
		}
	}
	if best == nil {
		return Statement{}, false
	}
	claimed[best.ID] = true
	return *best, true
}

func sortOccurrences(occs []Occurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		return occs[i].Date.Before(occs[j].Date)
	})
}
