// Package repository persists the ledger domain types in sqlite. Amounts
// and balances are stored as decimal strings; statement transaction
// snapshots are stored as a JSON column because they are frozen copies,
// not live queries.
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-app/tally/internal/ledger"
)

func scanDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse stored amount %q: %w", s, err)
	}
	return d, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// statementTxJSON is the wire shape of one frozen statement transaction.
type statementTxJSON struct {
	ID                string    `json:"id"`
	Date              time.Time `json:"date"`
	Description       string    `json:"description,omitempty"`
	Amount            string    `json:"amount"`
	Nature            string    `json:"nature"`
	CategoryValue     string    `json:"categoryValue,omitempty"`
	AccountID         string    `json:"accountId,omitempty"`
	FromAccountID     string    `json:"fromAccountId,omitempty"`
	ToAccountID       string    `json:"toAccountId,omitempty"`
	LinkedStatementID string    `json:"linkedStatementId,omitempty"`
}

func encodeStatementTxs(txs []ledger.Transaction) (string, error) {
	out := make([]statementTxJSON, len(txs))
	for i, tx := range txs {
		out[i] = statementTxJSON{
			ID:                tx.ID,
			Date:              tx.Date,
			Description:       tx.Description,
			Amount:            tx.Amount.String(),
			Nature:            string(tx.Nature),
			CategoryValue:     tx.CategoryValue,
			AccountID:         tx.AccountID,
			FromAccountID:     tx.FromAccountID,
			ToAccountID:       tx.ToAccountID,
			LinkedStatementID: tx.LinkedStatementID,
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode statement transactions: %w", err)
	}
	return string(b), nil
}

func decodeStatementTxs(raw string) ([]ledger.Transaction, error) {
	if raw == "" {
		return nil, nil
	}
	var rows []statementTxJSON
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("decode statement transactions: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]ledger.Transaction, len(rows))
	for i, r := range rows {
		amount, err := scanDecimal(r.Amount)
		if err != nil {
			return nil, err
		}
		out[i] = ledger.Transaction{
			ID:                r.ID,
			Date:              r.Date,
			Description:       r.Description,
			Amount:            amount,
			Nature:            ledger.Nature(r.Nature),
			CategoryValue:     r.CategoryValue,
			AccountID:         r.AccountID,
			FromAccountID:     r.FromAccountID,
			ToAccountID:       r.ToAccountID,
			LinkedStatementID: r.LinkedStatementID,
		}
	}
	return out, nil
}

func encodeWeekdays(days []time.Weekday) (string, error) {
	if len(days) == 0 {
		return "", nil
	}
	nums := make([]int, len(days))
	for i, d := range days {
		nums[i] = int(d)
	}
	b, err := json.Marshal(nums)
	if err != nil {
		return "", fmt.Errorf("encode recurrence days: %w", err)
	}
	return string(b), nil
}

func decodeWeekdays(raw string) ([]time.Weekday, error) {
	if raw == "" {
		return nil, nil
	}
	var nums []int
	if err := json.Unmarshal([]byte(raw), &nums); err != nil {
		return nil, fmt.Errorf("decode recurrence days: %w", err)
	}
	if len(nums) == 0 {
		return nil, nil
	}
	out := make([]time.Weekday, len(nums))
	for i, n := range nums {
		out[i] = time.Weekday(n)
	}
	return out, nil
}
