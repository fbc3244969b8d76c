package ledger

import "fmt"

// RegenResult carries the statement set after a change-reactive rebuild.
// When nothing changed, Statements is the exact input slice so callers can
// detect a no-op without comparing contents.
type RegenResult struct {
	Statements []Statement
	// ChangedIDs lists the statements that were actually replaced, in
	// slice order, so callers persist only those.
	ChangedIDs []string
	Messages   []string
	Changed    bool
}

// RegenerateAffected rebuilds every saved statement a changed transaction
// can influence and reports which ones actually moved.
//
// A statement is a candidate when its account is among involvedAccountIDs
// and either the transaction's date falls inside the statement period, or
// the transaction is a transfer into the statement's credit-card account
// explicitly linked to this statement (a payment dated outside the period
// still reduces it). Candidates are rebuilt with the same period and id; a
// statement is replaced only when its financial fingerprint differs, so
// re-running with unchanged inputs is a no-op.
func RegenerateAffected(changed Transaction, involvedAccountIDs []string, txs []Transaction, accounts []Account, statements []Statement) RegenResult {
	involved := make(map[string]bool, len(involvedAccountIDs))
	for _, id := range involvedAccountIDs {
		involved[id] = true
	}
	accountsByID := make(map[string]*Account, len(accounts))
	for i := range accounts {
		accountsByID[accounts[i].ID] = &accounts[i]
	}

	updated := make([]Statement, len(statements))
	copy(updated, statements)
	var messages []string
	var changedIDs []string
	anyChanged := false

	for i := range updated {
		stmt := &updated[i]
		if !involved[stmt.AccountID] {
			continue
		}

		account := accountsByID[stmt.AccountID]
		if account == nil {
			continue
		}

		relevant := inPeriod(changed.Date, stmt.StartDate, stmt.EndDate)
		if !relevant &&
			changed.Nature == Transfer &&
			changed.ToAccountID == stmt.AccountID &&
			account.Type == AccountCreditCard &&
			changed.LinkedStatementID == stmt.ID {
			relevant = true
		}
		if !relevant {
			continue
		}

		totals := BuildStatement(account, txs, stmt.StartDate, stmt.EndDate, stmt.ID)
		if totals == nil || fingerprintEqual(*stmt, totals) {
			continue
		}

		updated[i] = Statement{
			ID:                  stmt.ID,
			AccountID:           stmt.AccountID,
			StartDate:           stmt.StartDate,
			EndDate:             stmt.EndDate,
			OpeningBalance:      totals.OpeningBalance,
			ClosingBalance:      totals.ClosingBalance,
			Transactions:        totals.Transactions,
			TotalDebits:         totals.TotalDebits,
			TotalCredits:        totals.TotalCredits,
			TotalLinkedPayments: totals.TotalLinkedPayments,
		}
		anyChanged = true
		changedIDs = append(changedIDs, stmt.ID)
		messages = append(messages, fmt.Sprintf("Statement for %s (%s-%s) was updated.",
			account.Name,
			stmt.StartDate.Format("Jan 2, 06"),
			stmt.EndDate.Format("Jan 2, 06")))
	}

	if !anyChanged {
		return RegenResult{Statements: statements}
	}
	return RegenResult{Statements: updated, ChangedIDs: changedIDs, Messages: messages, Changed: true}
}

// fingerprintEqual compares the financial fields that decide whether a
// rebuilt statement replaces the stored one. Transaction snapshots are
// compared by count only, mirroring how statements have always been diffed.
func fingerprintEqual(s Statement, t *StatementTotals) bool {
	return s.OpeningBalance.Equal(t.OpeningBalance) &&
		s.ClosingBalance.Equal(t.ClosingBalance) &&
		s.TotalDebits.Equal(t.TotalDebits) &&
		s.TotalCredits.Equal(t.TotalCredits) &&
		s.TotalLinkedPayments.Equal(t.TotalLinkedPayments) &&
		len(s.Transactions) == len(t.Transactions)
}
