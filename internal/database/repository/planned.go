package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tally-app/tally/internal/ledger"
)

// PlannedRepo handles planned-transaction rules. Only rules are stored;
// occurrences are expanded on demand and never persisted.
type PlannedRepo struct {
	db *sql.DB
}

func NewPlannedRepo(db *sql.DB) *PlannedRepo { return &PlannedRepo{db: db} }

func (r *PlannedRepo) Insert(ctx context.Context, p ledger.PlannedTransaction) error {
	days, err := encodeWeekdays(p.Recurrence.DaysOfWeek)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO planned_transactions(
	 id, description, amount, nature, category_value, due_date,
	 recurrence_kind, recurrence_interval, recurrence_days, recurrence_end,
	 recurrence_end_date, recurrence_end_after, is_active,
	 account_id, from_account_id, to_account_id, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		p.ID, p.Description, p.Amount.String(), string(p.Nature), p.CategoryValue, p.DueDate,
		string(p.Recurrence.Kind), p.Recurrence.Interval, nullStr(days), string(p.Recurrence.End),
		nullTime(p.Recurrence.EndDate), nullInt(p.Recurrence.EndAfter), p.Active,
		nullStr(p.AccountID), nullStr(p.FromAccountID), nullStr(p.ToAccountID))
	return err
}

func (r *PlannedRepo) Update(ctx context.Context, p ledger.PlannedTransaction) error {
	days, err := encodeWeekdays(p.Recurrence.DaysOfWeek)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
	UPDATE planned_transactions SET description = ?, amount = ?, nature = ?, category_value = ?, due_date = ?,
	 recurrence_kind = ?, recurrence_interval = ?, recurrence_days = ?, recurrence_end = ?,
	 recurrence_end_date = ?, recurrence_end_after = ?, is_active = ?,
	 account_id = ?, from_account_id = ?, to_account_id = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`,
		p.Description, p.Amount.String(), string(p.Nature), p.CategoryValue, p.DueDate,
		string(p.Recurrence.Kind), p.Recurrence.Interval, nullStr(days), string(p.Recurrence.End),
		nullTime(p.Recurrence.EndDate), nullInt(p.Recurrence.EndAfter), p.Active,
		nullStr(p.AccountID), nullStr(p.FromAccountID), nullStr(p.ToAccountID), p.ID)
	return err
}

func (r *PlannedRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM planned_transactions WHERE id = ?`, id)
	return err
}

func (r *PlannedRepo) Get(ctx context.Context, id string) (ledger.PlannedTransaction, error) {
	row := r.db.QueryRowContext(ctx, plannedSelect+` WHERE id = ?`, id)
	return scanPlanned(row)
}

func (r *PlannedRepo) List(ctx context.Context) ([]ledger.PlannedTransaction, error) {
	rows, err := r.db.QueryContext(ctx, plannedSelect+` ORDER BY due_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.PlannedTransaction
	for rows.Next() {
		p, err := scanPlanned(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const plannedSelect = `SELECT id, description, amount, nature, category_value, due_date, recurrence_kind, recurrence_interval, recurrence_days, recurrence_end, recurrence_end_date, recurrence_end_after, is_active, account_id, from_account_id, to_account_id FROM planned_transactions`

func scanPlanned(row rowScanner) (ledger.PlannedTransaction, error) {
	var (
		p                   ledger.PlannedTransaction
		amount, kind, end   string
		days                sql.NullString
		endDate             sql.NullTime
		endAfter            sql.NullInt64
		accID, fromID, toID sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Description, &amount, (*string)(&p.Nature), &p.CategoryValue, &p.DueDate,
		&kind, &p.Recurrence.Interval, &days, &end, &endDate, &endAfter, &p.Active,
		&accID, &fromID, &toID); err != nil {
		return ledger.PlannedTransaction{}, err
	}
	amt, err := scanDecimal(amount)
	if err != nil {
		return ledger.PlannedTransaction{}, fmt.Errorf("planned transaction %s: %w", p.ID, err)
	}
	weekdays, err := decodeWeekdays(days.String)
	if err != nil {
		return ledger.PlannedTransaction{}, fmt.Errorf("planned transaction %s: %w", p.ID, err)
	}
	p.Amount = amt
	p.Recurrence.Kind = ledger.RecurrenceKind(kind)
	p.Recurrence.DaysOfWeek = weekdays
	p.Recurrence.End = ledger.RecurrenceEnd(end)
	p.Recurrence.EndDate = endDate.Time
	p.Recurrence.EndAfter = int(endAfter.Int64)
	p.AccountID = accID.String
	p.FromAccountID = fromID.String
	p.ToAccountID = toID.String
	return p, nil
}
