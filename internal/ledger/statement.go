package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// StatementTotals is the computed body of a statement: everything except its
// identity and period.
type StatementTotals struct {
	OpeningBalance      decimal.Decimal
	ClosingBalance      decimal.Decimal
	Transactions        []Transaction
	TotalDebits         decimal.Decimal
	TotalCredits        decimal.Decimal
	TotalLinkedPayments decimal.Decimal
}

// BuildStatement computes opening/closing balances, the in-period transaction
// snapshot and the period-local debit/credit totals for one account.
//
// statementID is the id of the statement being built. It only matters for
// credit-card accounts: an in-period transfer into the card whose
// LinkedStatementID points at a different statement still appears in the
// returned snapshot (so the UI can show payments destined elsewhere) but is
// excluded from TotalCredits and therefore from the closing balance.
// TotalLinkedPayments sums transfers into the card linked to statementID
// across the whole transaction history, not just the period.
//
// Returns nil only when the account is missing or the bounds are zero.
func BuildStatement(account *Account, txs []Transaction, start, end time.Time, statementID string) *StatementTotals {
	if account == nil || start.IsZero() || end.IsZero() {
		return nil
	}

	opening := decimal.Zero
	for _, tx := range txs {
		if !tx.Date.Before(start) {
			continue
		}
		switch {
		case tx.Nature == Income && tx.AccountID == account.ID:
			opening = opening.Add(tx.Amount)
		case tx.Nature == Expense && tx.AccountID == account.ID:
			opening = opening.Sub(tx.Amount)
		case tx.Nature == Transfer && tx.ToAccountID == account.ID:
			opening = opening.Add(tx.Amount)
		case tx.Nature == Transfer && tx.FromAccountID == account.ID:
			opening = opening.Sub(tx.Amount)
		}
	}

	var inPeriodTxs []Transaction
	debits := decimal.Zero
	credits := decimal.Zero
	for _, tx := range txs {
		if !inPeriod(tx.Date, start, end) {
			continue
		}
		include := false
		switch {
		case tx.AccountID == account.ID:
			include = true
			if tx.Nature == Income {
				credits = credits.Add(tx.Amount)
			} else if tx.Nature == Expense {
				debits = debits.Add(tx.Amount)
			}
		case tx.Nature == Transfer && tx.FromAccountID == account.ID:
			include = true
			debits = debits.Add(tx.Amount)
		case tx.Nature == Transfer && tx.ToAccountID == account.ID:
			include = true
			if account.Type == AccountCreditCard && statementID != "" &&
				tx.LinkedStatementID != "" && tx.LinkedStatementID != statementID {
				// Payment for a different statement: listed, not counted.
			} else {
				credits = credits.Add(tx.Amount)
			}
		}
		if include {
			inPeriodTxs = append(inPeriodTxs, tx)
		}
	}

	sort.SliceStable(inPeriodTxs, func(i, j int) bool {
		return inPeriodTxs[i].Date.Before(inPeriodTxs[j].Date)
	})

	linked := decimal.Zero
	if account.Type == AccountCreditCard && statementID != "" {
		for _, tx := range txs {
			if tx.Nature == Transfer && tx.ToAccountID == account.ID && tx.LinkedStatementID == statementID {
				linked = linked.Add(tx.Amount)
			}
		}
	}

	return &StatementTotals{
		OpeningBalance:      opening,
		ClosingBalance:      opening.Add(credits).Sub(debits),
		Transactions:        inPeriodTxs,
		TotalDebits:         debits,
		TotalCredits:        credits,
		TotalLinkedPayments: linked,
	}
}
