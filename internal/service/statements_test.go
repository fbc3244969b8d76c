package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tally-app/tally/internal/ledger"
)

func TestEnsureCoverageGeneratesStatements(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	seedAccount(t, env, "bank", "Checking", ledger.AccountBank, "0", 15)
	require.NoError(t, env.settings.SetAppStartDate(ctx, utc(2024, time.January, 1)))

	now := utc(2024, time.March, 1)
	svc := env.statementService(now)

	generated, err := svc.EnsureCoverage(ctx)
	require.NoError(t, err)
	// Jan 2024 through Mar 2025: every month whose first day is within one
	// year of now gets a statement.
	require.Len(t, generated, 15)
	require.Equal(t, "bank-2024-00", generated[0].ID)
	t.Log("coverage generated")

	saved, err := env.statements.List(ctx, "bank")
	require.NoError(t, err)
	require.Len(t, saved, 15)

	last, err := env.settings.LastStatementCheck(ctx)
	require.NoError(t, err)
	require.True(t, last.Equal(now), "last check = %s", last)

	// already covered, second run creates nothing
	generated, err = svc.EnsureCoverage(ctx)
	require.NoError(t, err)
	require.Empty(t, generated)
}

func TestEnsureCoverageNoopWithoutStartDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	seedAccount(t, env, "bank", "Checking", ledger.AccountBank, "0", 15)

	svc := env.statementService(utc(2024, time.March, 1))
	generated, err := svc.EnsureCoverage(ctx)
	require.NoError(t, err)
	require.Empty(t, generated)

	saved, err := env.statements.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, saved)
}

func TestCheckDueHonorsInterval(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	seedAccount(t, env, "bank", "Checking", ledger.AccountBank, "0", 15)
	require.NoError(t, env.settings.SetAppStartDate(ctx, utc(2024, time.January, 1)))

	now := utc(2024, time.March, 1)
	svc := env.statementService(now)
	svc.Now = func() time.Time { return now }

	_, ran, err := svc.CheckDue(ctx)
	require.NoError(t, err)
	require.True(t, ran)

	_, ran, err = svc.CheckDue(ctx)
	require.NoError(t, err)
	require.False(t, ran, "second check within the interval must be skipped")

	now = now.Add(25 * time.Hour)
	_, ran, err = svc.CheckDue(ctx)
	require.NoError(t, err)
	require.True(t, ran, "check past the interval must run")
}

func TestSetStartDateGeneratesImmediately(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	seedAccount(t, env, "bank", "Checking", ledger.AccountBank, "0", 15)

	svc := env.statementService(utc(2024, time.March, 1))
	generated, err := svc.SetStartDate(ctx, utc(2024, time.February, 1))
	require.NoError(t, err)
	require.NotEmpty(t, generated)

	start, err := svc.StartDate(ctx)
	require.NoError(t, err)
	require.True(t, start.Equal(utc(2024, time.February, 1)))
}

func TestGenerateBuildsTotals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	seedAccount(t, env, "bank", "Checking", ledger.AccountBank, "0", 15)
	require.NoError(t, env.transactions.Insert(ctx, ledger.Transaction{
		ID: "t1", Date: utc(2024, time.March, 1), Description: "Groceries",
		Amount: dec(t, "50"), Nature: ledger.Expense, AccountID: "bank",
	}))

	svc := env.statementService(utc(2024, time.March, 20))
	stmt, err := svc.Generate(ctx, "bank", 2024, time.March)
	require.NoError(t, err)
	require.Equal(t, "bank-2024-02", stmt.ID)
	require.True(t, stmt.TotalDebits.Equal(dec(t, "50")), "debits = %s", stmt.TotalDebits)
	require.True(t, stmt.ClosingBalance.Equal(dec(t, "-50")), "closing = %s", stmt.ClosingBalance)

	saved, err := env.statements.Get(ctx, stmt.ID)
	require.NoError(t, err)
	require.Len(t, saved.Transactions, 1)
	require.Equal(t, "Groceries", saved.Transactions[0].Description)
}

func TestGenerateRequiresClosingDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	seedAccount(t, env, "cash", "Wallet", ledger.AccountCash, "0", 0)

	svc := env.statementService(utc(2024, time.March, 20))
	_, err := svc.Generate(ctx, "cash", 2024, time.March)
	require.Error(t, err)
}
