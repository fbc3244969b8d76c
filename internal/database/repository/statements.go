package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tally-app/tally/internal/ledger"
)

// StatementRepo handles saved statements.
type StatementRepo struct {
	db *sql.DB
}

func NewStatementRepo(db *sql.DB) *StatementRepo { return &StatementRepo{db: db} }

// Upsert inserts or replaces a statement. Statement ids are deterministic
// per account and period, so replacement is the regeneration path.
func (r *StatementRepo) Upsert(ctx context.Context, s ledger.Statement) error {
	txsJSON, err := encodeStatementTxs(s.Transactions)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO statements(
	 id, account_id, start_date, end_date, opening_balance, closing_balance,
	 total_debits, total_credits, total_linked_payments, transactions_json, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 opening_balance = excluded.opening_balance,
	 closing_balance = excluded.closing_balance,
	 total_debits = excluded.total_debits,
	 total_credits = excluded.total_credits,
	 total_linked_payments = excluded.total_linked_payments,
	 transactions_json = excluded.transactions_json,
	 updated_at = CURRENT_TIMESTAMP;
	`,
		s.ID, s.AccountID, s.StartDate, s.EndDate, s.OpeningBalance.String(), s.ClosingBalance.String(),
		s.TotalDebits.String(), s.TotalCredits.String(), s.TotalLinkedPayments.String(), txsJSON)
	return err
}

func (r *StatementRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM statements WHERE id = ?`, id)
	return err
}

func (r *StatementRepo) Get(ctx context.Context, id string) (ledger.Statement, error) {
	row := r.db.QueryRowContext(ctx, statementSelect+` WHERE id = ?`, id)
	return scanStatement(row)
}

// List returns statements sorted descending by period end, the display
// order. accountID narrows to one account when non-empty.
func (r *StatementRepo) List(ctx context.Context, accountID string) ([]ledger.Statement, error) {
	query := statementSelect
	var args []any
	if accountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY end_date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Statement
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const statementSelect = `SELECT id, account_id, start_date, end_date, opening_balance, closing_balance, total_debits, total_credits, total_linked_payments, transactions_json FROM statements`

func scanStatement(row rowScanner) (ledger.Statement, error) {
	var (
		s                                ledger.Statement
		opening, closing, debits         string
		credits, linkedPayments, txsJSON string
	)
	if err := row.Scan(&s.ID, &s.AccountID, &s.StartDate, &s.EndDate,
		&opening, &closing, &debits, &credits, &linkedPayments, &txsJSON); err != nil {
		return ledger.Statement{}, err
	}
	var err error
	if s.OpeningBalance, err = scanDecimal(opening); err != nil {
		return ledger.Statement{}, fmt.Errorf("statement %s: %w", s.ID, err)
	}
	if s.ClosingBalance, err = scanDecimal(closing); err != nil {
		return ledger.Statement{}, fmt.Errorf("statement %s: %w", s.ID, err)
	}
	if s.TotalDebits, err = scanDecimal(debits); err != nil {
		return ledger.Statement{}, fmt.Errorf("statement %s: %w", s.ID, err)
	}
	if s.TotalCredits, err = scanDecimal(credits); err != nil {
		return ledger.Statement{}, fmt.Errorf("statement %s: %w", s.ID, err)
	}
	if s.TotalLinkedPayments, err = scanDecimal(linkedPayments); err != nil {
		return ledger.Statement{}, fmt.Errorf("statement %s: %w", s.ID, err)
	}
	if s.Transactions, err = decodeStatementTxs(txsJSON); err != nil {
		return ledger.Statement{}, fmt.Errorf("statement %s: %w", s.ID, err)
	}
	return s, nil
}
