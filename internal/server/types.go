package server

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-app/tally/internal/ledger"
)

// Wire types. Money travels as decimal strings so clients never see float
// rounding; dates are RFC 3339.

type accountJSON struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Type                string `json:"type"`
	Balance             string `json:"balance"`
	Currency            string `json:"currency"`
	Notes               string `json:"notes,omitempty"`
	StatementClosingDay int    `json:"statementClosingDay,omitempty"`
	PreferredPaymentDay int    `json:"preferredPaymentDay,omitempty"`
}

func toAccountJSON(a ledger.Account) accountJSON {
	return accountJSON{
		ID:                  a.ID,
		Name:                a.Name,
		Type:                string(a.Type),
		Balance:             a.Balance.String(),
		Currency:            a.Currency,
		Notes:               a.Notes,
		StatementClosingDay: a.StatementClosingDay,
		PreferredPaymentDay: a.PreferredPaymentDay,
	}
}

func (j accountJSON) toLedger() (ledger.Account, error) {
	balance, err := parseAmount(j.Balance, true)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("balance: %w", err)
	}
	return ledger.Account{
		ID:                  j.ID,
		Name:                j.Name,
		Type:                ledger.AccountType(j.Type),
		Balance:             balance,
		Currency:            j.Currency,
		Notes:               j.Notes,
		StatementClosingDay: j.StatementClosingDay,
		PreferredPaymentDay: j.PreferredPaymentDay,
	}, nil
}

type transactionJSON struct {
	ID                string    `json:"id"`
	Date              time.Time `json:"date"`
	Description       string    `json:"description"`
	Amount            string    `json:"amount"`
	Nature            string    `json:"nature"`
	CategoryValue     string    `json:"categoryValue,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	AccountID         string    `json:"accountId,omitempty"`
	FromAccountID     string    `json:"fromAccountId,omitempty"`
	ToAccountID       string    `json:"toAccountId,omitempty"`
	LinkedStatementID string    `json:"linkedStatementId,omitempty"`
}

func toTransactionJSON(t ledger.Transaction) transactionJSON {
	return transactionJSON{
		ID:                t.ID,
		Date:              t.Date,
		Description:       t.Description,
		Amount:            t.Amount.String(),
		Nature:            string(t.Nature),
		CategoryValue:     t.CategoryValue,
		Notes:             t.Notes,
		AccountID:         t.AccountID,
		FromAccountID:     t.FromAccountID,
		ToAccountID:       t.ToAccountID,
		LinkedStatementID: t.LinkedStatementID,
	}
}

func (j transactionJSON) toLedger() (ledger.Transaction, error) {
	amount, err := parseAmount(j.Amount, false)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	return ledger.Transaction{
		ID:                j.ID,
		Date:              j.Date,
		Description:       j.Description,
		Amount:            amount,
		Nature:            ledger.Nature(j.Nature),
		CategoryValue:     j.CategoryValue,
		Notes:             j.Notes,
		AccountID:         j.AccountID,
		FromAccountID:     j.FromAccountID,
		ToAccountID:       j.ToAccountID,
		LinkedStatementID: j.LinkedStatementID,
	}, nil
}

type statementJSON struct {
	ID                  string            `json:"id"`
	AccountID           string            `json:"accountId"`
	StartDate           time.Time         `json:"startDate"`
	EndDate             time.Time         `json:"endDate"`
	OpeningBalance      string            `json:"openingBalance"`
	ClosingBalance      string            `json:"closingBalance"`
	Transactions        []transactionJSON `json:"transactions"`
	TotalDebits         string            `json:"totalDebits"`
	TotalCredits        string            `json:"totalCredits"`
	TotalLinkedPayments string            `json:"totalLinkedPayments"`
}

func toStatementJSON(s ledger.Statement) statementJSON {
	txs := make([]transactionJSON, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		txs = append(txs, toTransactionJSON(t))
	}
	return statementJSON{
		ID:                  s.ID,
		AccountID:           s.AccountID,
		StartDate:           s.StartDate,
		EndDate:             s.EndDate,
		OpeningBalance:      s.OpeningBalance.String(),
		ClosingBalance:      s.ClosingBalance.String(),
		Transactions:        txs,
		TotalDebits:         s.TotalDebits.String(),
		TotalCredits:        s.TotalCredits.String(),
		TotalLinkedPayments: s.TotalLinkedPayments.String(),
	}
}

type recurrenceJSON struct {
	Kind       string     `json:"kind"`
	Interval   int        `json:"interval"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty"`
	End        string     `json:"end"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	EndAfter   int        `json:"endAfter,omitempty"`
}

type plannedJSON struct {
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	Amount        string         `json:"amount"`
	Nature        string         `json:"nature"`
	CategoryValue string         `json:"categoryValue,omitempty"`
	DueDate       time.Time      `json:"dueDate"`
	Recurrence    recurrenceJSON `json:"recurrence"`
	IsActive      bool           `json:"isActive"`
	AccountID     string         `json:"accountId,omitempty"`
	FromAccountID string         `json:"fromAccountId,omitempty"`
	ToAccountID   string         `json:"toAccountId,omitempty"`
}

func toPlannedJSON(p ledger.PlannedTransaction) plannedJSON {
	rec := recurrenceJSON{
		Kind:     string(p.Recurrence.Kind),
		Interval: p.Recurrence.Interval,
		End:      string(p.Recurrence.End),
		EndAfter: p.Recurrence.EndAfter,
	}
	for _, d := range p.Recurrence.DaysOfWeek {
		rec.DaysOfWeek = append(rec.DaysOfWeek, int(d))
	}
	if !p.Recurrence.EndDate.IsZero() {
		end := p.Recurrence.EndDate
		rec.EndDate = &end
	}
	return plannedJSON{
		ID:            p.ID,
		Description:   p.Description,
		Amount:        p.Amount.String(),
		Nature:        string(p.Nature),
		CategoryValue: p.CategoryValue,
		DueDate:       p.DueDate,
		Recurrence:    rec,
		IsActive:      p.Active,
		AccountID:     p.AccountID,
		FromAccountID: p.FromAccountID,
		ToAccountID:   p.ToAccountID,
	}
}

func (j plannedJSON) toLedger() (ledger.PlannedTransaction, error) {
	amount, err := parseAmount(j.Amount, false)
	if err != nil {
		return ledger.PlannedTransaction{}, fmt.Errorf("amount: %w", err)
	}
	rec := ledger.Recurrence{
		Kind:     ledger.RecurrenceKind(j.Recurrence.Kind),
		Interval: j.Recurrence.Interval,
		End:      ledger.RecurrenceEnd(j.Recurrence.End),
		EndAfter: j.Recurrence.EndAfter,
	}
	for _, d := range j.Recurrence.DaysOfWeek {
		if d < 0 || d > 6 {
			return ledger.PlannedTransaction{}, fmt.Errorf("day of week %d out of range", d)
		}
		rec.DaysOfWeek = append(rec.DaysOfWeek, time.Weekday(d))
	}
	if j.Recurrence.EndDate != nil {
		rec.EndDate = *j.Recurrence.EndDate
	}
	return ledger.PlannedTransaction{
		ID:            j.ID,
		Description:   j.Description,
		Amount:        amount,
		Nature:        ledger.Nature(j.Nature),
		CategoryValue: j.CategoryValue,
		DueDate:       j.DueDate,
		Recurrence:    rec,
		Active:        j.IsActive,
		AccountID:     j.AccountID,
		FromAccountID: j.FromAccountID,
		ToAccountID:   j.ToAccountID,
	}, nil
}

type budgetJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

func toBudgetJSON(b ledger.Budget) budgetJSON {
	return budgetJSON{ID: b.ID, Name: b.Name, StartDate: b.StartDate, EndDate: b.EndDate}
}

func (j budgetJSON) toLedger() ledger.Budget {
	return ledger.Budget{ID: j.ID, Name: j.Name, StartDate: j.StartDate, EndDate: j.EndDate}
}

type occurrenceJSON struct {
	Date          time.Time `json:"date"`
	Amount        string    `json:"amount"`
	Nature        string    `json:"nature"`
	Description   string    `json:"description"`
	CategoryValue string    `json:"categoryValue,omitempty"`
	AccountID     string    `json:"accountId,omitempty"`
}

func toOccurrenceJSON(o ledger.Occurrence) occurrenceJSON {
	return occurrenceJSON{
		Date:          o.Date,
		Amount:        o.Amount.String(),
		Nature:        string(o.Nature),
		Description:   o.Description,
		CategoryValue: o.CategoryValue,
		AccountID:     o.AccountID,
	}
}

func toOccurrenceListJSON(occs []ledger.Occurrence) []occurrenceJSON {
	out := make([]occurrenceJSON, 0, len(occs))
	for _, o := range occs {
		out = append(out, toOccurrenceJSON(o))
	}
	return out
}

type ccPaymentJSON struct {
	AccountID   string    `json:"accountId"`
	AccountName string    `json:"accountName"`
	StatementID string    `json:"statementId"`
	PaymentDate time.Time `json:"paymentDate"`
	Amount      string    `json:"amount"`
}

type projectionJSON struct {
	Income               []occurrenceJSON `json:"income"`
	Expenses             []occurrenceJSON `json:"expenses"`
	CCPayments           []ccPaymentJSON  `json:"ccPayments"`
	TotalIncome          string           `json:"totalIncome"`
	TotalPlannedExpenses string           `json:"totalPlannedExpenses"`
	TotalCCExpenses      string           `json:"totalCCExpenses"`
	Net                  string           `json:"net"`
}

func toProjectionJSON(p ledger.BudgetProjection) projectionJSON {
	out := projectionJSON{
		Income:               toOccurrenceListJSON(p.Income),
		Expenses:             toOccurrenceListJSON(p.Expenses),
		CCPayments:           make([]ccPaymentJSON, 0, len(p.CCPayments)),
		TotalIncome:          p.TotalIncome.String(),
		TotalPlannedExpenses: p.TotalPlannedExpenses.String(),
		TotalCCExpenses:      p.TotalCCExpenses.String(),
		Net:                  p.Net.String(),
	}
	for _, pay := range p.CCPayments {
		out.CCPayments = append(out.CCPayments, ccPaymentJSON{
			AccountID:   pay.AccountID,
			AccountName: pay.AccountName,
			StatementID: pay.Statement.ID,
			PaymentDate: pay.PaymentDate,
			Amount:      pay.Statement.ClosingBalance.Abs().String(),
		})
	}
	return out
}

func parseAmount(s string, allowEmpty bool) (decimal.Decimal, error) {
	if s == "" {
		if allowEmpty {
			return decimal.Zero, nil
		}
		return decimal.Decimal{}, fmt.Errorf("required")
	}
	return decimal.NewFromString(s)
}
