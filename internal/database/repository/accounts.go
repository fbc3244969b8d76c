package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tally-app/tally/internal/ledger"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

func (r *AccountRepo) Insert(ctx context.Context, a ledger.Account) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(
	 id, name, account_type, balance, currency, notes,
	 statement_closing_day, preferred_payment_day, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		a.ID, a.Name, string(a.Type), a.Balance.String(), a.Currency, nullStr(a.Notes),
		nullInt(a.StatementClosingDay), nullInt(a.PreferredPaymentDay))
	return err
}

func (r *AccountRepo) Update(ctx context.Context, a ledger.Account) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE accounts SET name = ?, account_type = ?, balance = ?, currency = ?, notes = ?,
	 statement_closing_day = ?, preferred_payment_day = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`,
		a.Name, string(a.Type), a.Balance.String(), a.Currency, nullStr(a.Notes),
		nullInt(a.StatementClosingDay), nullInt(a.PreferredPaymentDay), a.ID)
	return err
}

// UpdateBalance writes only the running balance, used by the transaction
// service's synchronous balance upkeep.
func (r *AccountRepo) UpdateBalance(ctx context.Context, id string, balance string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, balance, id)
	return err
}

// Delete removes the account; its statements cascade via the foreign key.
// Transactions referencing the account are left in place.
func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	return err
}

func (r *AccountRepo) Get(ctx context.Context, id string) (ledger.Account, error) {
	row := r.db.QueryRowContext(ctx, accountSelect+` WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *AccountRepo) List(ctx context.Context) ([]ledger.Account, error) {
	rows, err := r.db.QueryContext(ctx, accountSelect+` ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const accountSelect = `SELECT id, name, account_type, balance, currency, notes, statement_closing_day, preferred_payment_day FROM accounts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (ledger.Account, error) {
	var (
		a          ledger.Account
		accType    string
		balance    string
		notes      sql.NullString
		closingDay sql.NullInt64
		paymentDay sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.Name, &accType, &balance, &a.Currency, &notes, &closingDay, &paymentDay); err != nil {
		return ledger.Account{}, err
	}
	bal, err := scanDecimal(balance)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("account %s: %w", a.ID, err)
	}
	a.Type = ledger.AccountType(accType)
	a.Balance = bal
	a.Notes = notes.String
	a.StatementClosingDay = int(closingDay.Int64)
	a.PreferredPaymentDay = int(paymentDay.Int64)
	return a, nil
}
