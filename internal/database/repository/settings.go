package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"
)

// Setting keys.
const (
	SettingAppStartDate       = "app_start_date"
	SettingLastStatementCheck = "last_statement_check"
)

// SettingsRepo handles the key/value settings table.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO settings(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP;
	`, key, value)
	return err
}

func (r *SettingsRepo) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// AppStartDate returns the configured tracking start date, or a zero time
// when the user has not set one yet.
func (r *SettingsRepo) AppStartDate(ctx context.Context) (time.Time, error) {
	raw, ok, err := r.get(ctx, SettingAppStartDate)
	if err != nil || !ok {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func (r *SettingsRepo) SetAppStartDate(ctx context.Context, t time.Time) error {
	return r.set(ctx, SettingAppStartDate, t.UTC().Format(time.RFC3339))
}

// LastStatementCheck returns when statement coverage was last verified, or
// a zero time when it never ran.
func (r *SettingsRepo) LastStatementCheck(ctx context.Context) (time.Time, error) {
	raw, ok, err := r.get(ctx, SettingLastStatementCheck)
	if err != nil || !ok {
		return time.Time{}, err
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix, 0).UTC(), nil
}

func (r *SettingsRepo) SetLastStatementCheck(ctx context.Context, t time.Time) error {
	return r.set(ctx, SettingLastStatementCheck, strconv.FormatInt(t.Unix(), 10))
}
