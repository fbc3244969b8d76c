package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tally-app/tally/internal/ledger"
)

// TransactionFilters defines list filters.
type TransactionFilters struct {
	AccountID string    // matches any of account_id/from_account_id/to_account_id
	Nature    string
	Month     time.Time // use first day of month; zero time = no month filter
	Search    string
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

func (r *TransactionRepo) Insert(ctx context.Context, t ledger.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, date, description, amount, nature, category_value, notes,
	 account_id, from_account_id, to_account_id, linked_statement_id, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		t.ID, t.Date, t.Description, t.Amount.String(), string(t.Nature), t.CategoryValue, nullStr(t.Notes),
		nullStr(t.AccountID), nullStr(t.FromAccountID), nullStr(t.ToAccountID), nullStr(t.LinkedStatementID))
	return err
}

func (r *TransactionRepo) Update(ctx context.Context, t ledger.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE transactions SET date = ?, description = ?, amount = ?, nature = ?, category_value = ?, notes = ?,
	 account_id = ?, from_account_id = ?, to_account_id = ?, linked_statement_id = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`,
		t.Date, t.Description, t.Amount.String(), string(t.Nature), t.CategoryValue, nullStr(t.Notes),
		nullStr(t.AccountID), nullStr(t.FromAccountID), nullStr(t.ToAccountID), nullStr(t.LinkedStatementID), t.ID)
	return err
}

func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	return err
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (ledger.Transaction, error) {
	row := r.db.QueryRowContext(ctx, transactionSelect+` WHERE id = ?`, id)
	return scanTransaction(row)
}

func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]ledger.Transaction, error) {
	var where []string
	var args []any

	if f.AccountID != "" {
		where = append(where, "(account_id = ? OR from_account_id = ? OR to_account_id = ?)")
		args = append(args, f.AccountID, f.AccountID, f.AccountID)
	}
	if f.Nature != "" {
		where = append(where, "nature = ?")
		args = append(args, f.Nature)
	}
	if !f.Month.IsZero() {
		start := time.Date(f.Month.Year(), f.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		where = append(where, "date >= ? AND date < ?")
		args = append(args, start, end)
	}
	if f.Search != "" {
		where = append(where, "description LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	query := transactionSelect
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY date ASC, created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const transactionSelect = `SELECT id, date, description, amount, nature, category_value, notes, account_id, from_account_id, to_account_id, linked_statement_id FROM transactions`

func scanTransaction(row rowScanner) (ledger.Transaction, error) {
	var (
		t                    ledger.Transaction
		amount, nature       string
		notes, accID, fromID sql.NullString
		toID, linkedID       sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Date, &t.Description, &amount, &nature, &t.CategoryValue,
		&notes, &accID, &fromID, &toID, &linkedID); err != nil {
		return ledger.Transaction{}, err
	}
	amt, err := scanDecimal(amount)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Amount = amt
	t.Nature = ledger.Nature(nature)
	t.Notes = notes.String
	t.AccountID = accID.String
	t.FromAccountID = fromID.String
	t.ToAccountID = toID.String
	t.LinkedStatementID = linkedID.String
	return t, nil
}
