package repository

import (
	"context"
	"database/sql"

	"github.com/tally-app/tally/internal/ledger"
)

// BudgetRepo handles budget windows.
type BudgetRepo struct {
	db *sql.DB
}

func NewBudgetRepo(db *sql.DB) *BudgetRepo { return &BudgetRepo{db: db} }

func (r *BudgetRepo) Insert(ctx context.Context, b ledger.Budget) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO budgets(id, name, start_date, end_date, created_at)
	VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, b.ID, b.Name, b.StartDate, b.EndDate)
	return err
}

func (r *BudgetRepo) Update(ctx context.Context, b ledger.Budget) error {
	_, err := r.db.ExecContext(ctx, `UPDATE budgets SET name = ?, start_date = ?, end_date = ? WHERE id = ?`,
		b.Name, b.StartDate, b.EndDate, b.ID)
	return err
}

func (r *BudgetRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	return err
}

func (r *BudgetRepo) Get(ctx context.Context, id string) (ledger.Budget, error) {
	var b ledger.Budget
	err := r.db.QueryRowContext(ctx, `SELECT id, name, start_date, end_date FROM budgets WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.StartDate, &b.EndDate)
	return b, err
}

func (r *BudgetRepo) List(ctx context.Context) ([]ledger.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, start_date, end_date FROM budgets ORDER BY start_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Budget
	for rows.Next() {
		var b ledger.Budget
		if err := rows.Scan(&b.ID, &b.Name, &b.StartDate, &b.EndDate); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
