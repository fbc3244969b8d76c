package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tally-app/tally/internal/database"
	"github.com/tally-app/tally/internal/database/repository"
)

type testEnv struct {
	accounts     *repository.AccountRepo
	transactions *repository.TransactionRepo
	statements   *repository.StatementRepo
	planned      *repository.PlannedRepo
	budgets      *repository.BudgetRepo
	settings     *repository.SettingsRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &testEnv{
		accounts:     repository.NewAccountRepo(db),
		transactions: repository.NewTransactionRepo(db),
		statements:   repository.NewStatementRepo(db),
		planned:      repository.NewPlannedRepo(db),
		budgets:      repository.NewBudgetRepo(db),
		settings:     repository.NewSettingsRepo(db),
	}
}

func (e *testEnv) transactionService() *TransactionService {
	return &TransactionService{
		Transactions: e.transactions,
		Accounts:     e.accounts,
		Statements:   e.statements,
		Log:          zerolog.Nop(),
	}
}

func (e *testEnv) statementService(now time.Time) *StatementService {
	return &StatementService{
		Accounts:     e.accounts,
		Transactions: e.transactions,
		Statements:   e.statements,
		Settings:     e.settings,
		Log:          zerolog.Nop(),
		Now:          func() time.Time { return now },
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func utc(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
