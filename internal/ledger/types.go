// Package ledger holds the statement and recurrence engine. Everything in
// this package is a pure function over snapshots passed in by the caller:
// no I/O, no clocks, no shared state. The service layer assembles inputs
// from the repositories, calls in, and persists whatever comes back.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account.
type AccountType string

const (
	AccountBank       AccountType = "bank"
	AccountCreditCard AccountType = "credit_card"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
)

// Account is the snapshot the engine needs. Balance is the running balance
// maintained by the transaction service, not derived here.
type Account struct {
	ID       string
	Name     string
	Type     AccountType
	Balance  decimal.Decimal
	Currency string
	Notes    string

	// StatementClosingDay is the calendar day (1-31) a billing cycle closes
	// on; 0 means the account has no statements.
	StatementClosingDay int
	// PreferredPaymentDay (1-31) is used for credit-card payment-date
	// projection only; 0 means unset. Meaningful only for credit cards.
	PreferredPaymentDay int
}

// Nature is the direction class of a transaction.
type Nature string

const (
	Income   Nature = "income"
	Expense  Nature = "expense"
	Transfer Nature = "transfer"
)

// Transaction is a single recorded movement. Amount is always positive;
// sign is derived from Nature and which side of an account it touches.
// AccountID is set for income/expense, FromAccountID/ToAccountID for
// transfers. LinkedStatementID tags a transfer into a credit-card account
// as a payment toward a specific statement, independent of its date.
type Transaction struct {
	ID                string
	Date              time.Time
	Description       string
	Amount            decimal.Decimal
	Nature            Nature
	CategoryValue     string
	Notes             string
	AccountID         string
	FromAccountID     string
	ToAccountID       string
	LinkedStatementID string
}

// Statement is one billing-cycle record. Transactions is a frozen snapshot
// of the in-period subset, not a live query. TotalLinkedPayments sums every
// transfer anywhere in time linked to this statement's id.
type Statement struct {
	ID                  string
	AccountID           string
	StartDate           time.Time
	EndDate             time.Time
	OpeningBalance      decimal.Decimal
	ClosingBalance      decimal.Decimal
	Transactions        []Transaction
	TotalDebits         decimal.Decimal
	TotalCredits        decimal.Decimal
	TotalLinkedPayments decimal.Decimal
}

// RecurrenceKind is the repetition unit of a planned-transaction rule.
type RecurrenceKind string

const (
	OneTime RecurrenceKind = "one-time"
	Daily   RecurrenceKind = "daily"
	Weekly  RecurrenceKind = "weekly"
	Monthly RecurrenceKind = "monthly"
	Yearly  RecurrenceKind = "yearly"
)

// RecurrenceEnd says how a recurring rule terminates.
type RecurrenceEnd string

const (
	EndNever            RecurrenceEnd = "never"
	EndOnDate           RecurrenceEnd = "onDate"
	EndAfterOccurrences RecurrenceEnd = "afterOccurrences"
)

// Recurrence carries the repetition rule. DaysOfWeek applies to Weekly only;
// EndDate applies when End is EndOnDate, EndAfter when End is
// EndAfterOccurrences.
type Recurrence struct {
	Kind       RecurrenceKind
	Interval   int
	DaysOfWeek []time.Weekday
	End        RecurrenceEnd
	EndDate    time.Time
	EndAfter   int
}

// PlannedTransaction is a recurrence rule, not a materialized list.
// Occurrences are computed on demand for a window and never persisted.
// DueDate anchors the series: it is the first occurrence.
type PlannedTransaction struct {
	ID            string
	Description   string
	Amount        decimal.Decimal
	Nature        Nature
	CategoryValue string
	DueDate       time.Time
	Recurrence    Recurrence
	Active        bool
	AccountID     string
	FromAccountID string
	ToAccountID   string
}

// Occurrence is one concrete dated instance produced by expanding a rule.
type Occurrence struct {
	Date          time.Time
	Amount        decimal.Decimal
	Nature        Nature
	Description   string
	CategoryValue string
	AccountID     string
}

// Budget is purely a reporting window; its contents are projected at read
// time from planned transactions and credit-card statements.
type Budget struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
}
