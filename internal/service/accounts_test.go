package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tally-app/tally/internal/ledger"
)

func TestAccountValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	svc := &AccountService{Accounts: env.accounts, Log: zerolog.Nop()}

	cases := []ledger.Account{
		{Name: "", Type: ledger.AccountBank},
		{Name: "Checking", Type: "brokerage"},
		{Name: "Checking", Type: ledger.AccountBank, StatementClosingDay: 32},
		{Name: "Checking", Type: ledger.AccountBank, PreferredPaymentDay: 25},
	}
	for _, a := range cases {
		_, err := svc.Create(ctx, a)
		require.Error(t, err, "account %+v", a)
	}
}

func TestCreateAccountEnsuresCoverage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.settings.SetAppStartDate(ctx, utc(2024, time.February, 1)))

	svc := &AccountService{
		Accounts:   env.accounts,
		Statements: env.statementService(utc(2024, time.March, 1)),
		Log:        zerolog.Nop(),
	}

	created, err := svc.Create(ctx, ledger.Account{
		Name: "Visa", Type: ledger.AccountCreditCard,
		StatementClosingDay: 15, PreferredPaymentDay: 25,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "USD", created.Currency)

	// Feb 2024 through Mar 2025
	saved, err := env.statements.List(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, saved, 14)
}

func TestDeleteAccountCascadesStatements(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.settings.SetAppStartDate(ctx, utc(2024, time.February, 1)))

	svc := &AccountService{
		Accounts:   env.accounts,
		Statements: env.statementService(utc(2024, time.March, 1)),
		Log:        zerolog.Nop(),
	}
	created, err := svc.Create(ctx, ledger.Account{
		Name: "Visa", Type: ledger.AccountCreditCard, StatementClosingDay: 15,
	})
	require.NoError(t, err)

	saved, err := env.statements.List(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, saved)

	require.NoError(t, svc.Delete(ctx, created.ID))

	saved, err = env.statements.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, saved, "statements must go with their account")

	_, err = env.accounts.Get(ctx, created.ID)
	require.Error(t, err)
}
