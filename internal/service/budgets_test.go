package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tally-app/tally/internal/ledger"
)

func budgetService(env *testEnv) *BudgetService {
	return &BudgetService{
		Budgets:    env.budgets,
		Planned:    env.planned,
		Accounts:   env.accounts,
		Statements: env.statements,
	}
}

func TestBudgetValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	svc := budgetService(env)

	_, err := svc.Create(ctx, ledger.Budget{Name: "", StartDate: utc(2024, time.March, 1), EndDate: utc(2024, time.March, 31)})
	require.Error(t, err)

	_, err = svc.Create(ctx, ledger.Budget{Name: "March", StartDate: utc(2024, time.March, 31), EndDate: utc(2024, time.March, 1)})
	require.Error(t, err)
}

func TestBreakdownProjectsIncomeAndExpenses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	seedAccount(t, env, "bank", "Checking", ledger.AccountBank, "0", 0)
	plannedSvc := &PlannedService{Planned: env.planned}
	svc := budgetService(env)

	_, err := plannedSvc.Create(ctx, ledger.PlannedTransaction{
		Description: "Salary", Amount: dec(t, "4000"), Nature: ledger.Income,
		DueDate: utc(2024, time.January, 1), AccountID: "bank", Active: true,
		Recurrence: ledger.Recurrence{Kind: ledger.Monthly, Interval: 1, End: ledger.EndNever},
	})
	require.NoError(t, err)
	_, err = plannedSvc.Create(ctx, ledger.PlannedTransaction{
		Description: "Rent", Amount: dec(t, "1200"), Nature: ledger.Expense,
		DueDate: utc(2024, time.January, 15), AccountID: "bank", Active: true,
		Recurrence: ledger.Recurrence{Kind: ledger.Monthly, Interval: 1, End: ledger.EndNever},
	})
	require.NoError(t, err)

	budget, err := svc.Create(ctx, ledger.Budget{
		Name: "March", StartDate: utc(2024, time.March, 1), EndDate: utc(2024, time.March, 31),
	})
	require.NoError(t, err)

	breakdown, err := svc.Breakdown(ctx, budget.ID)
	require.NoError(t, err)
	require.True(t, breakdown.TotalIncome.Equal(dec(t, "4000")), "income = %s", breakdown.TotalIncome)
	require.True(t, breakdown.TotalPlannedExpenses.Equal(dec(t, "1200")), "expenses = %s", breakdown.TotalPlannedExpenses)
	require.True(t, breakdown.Net.Equal(dec(t, "2800")), "net = %s", breakdown.Net)
	require.Len(t, breakdown.Income, 1)
	require.Len(t, breakdown.Expenses, 1)
}

func TestBreakdownClaimsCreditCardStatement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.accounts.Insert(ctx, ledger.Account{
		ID: "cc", Name: "Visa", Type: ledger.AccountCreditCard, Balance: dec(t, "0"),
		Currency: "USD", StatementClosingDay: 15, PreferredPaymentDay: 25,
	}))
	require.NoError(t, env.statements.Upsert(ctx, ledger.Statement{
		ID:             ledger.StatementID("cc", 2024, time.March),
		AccountID:      "cc",
		StartDate:      utc(2024, time.February, 16),
		EndDate:        time.Date(2024, time.March, 15, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		OpeningBalance: dec(t, "0"), ClosingBalance: dec(t, "-350"),
		TotalDebits: dec(t, "350"), TotalCredits: dec(t, "0"), TotalLinkedPayments: dec(t, "0"),
	}))

	plannedSvc := &PlannedService{Planned: env.planned}
	// card spending never counts as a planned expense
	_, err := plannedSvc.Create(ctx, ledger.PlannedTransaction{
		Description: "Streaming", Amount: dec(t, "20"), Nature: ledger.Expense,
		DueDate: utc(2024, time.March, 10), AccountID: "cc", Active: true,
	})
	require.NoError(t, err)

	svc := budgetService(env)
	budget, err := svc.Create(ctx, ledger.Budget{
		Name: "March", StartDate: utc(2024, time.March, 1), EndDate: utc(2024, time.March, 31),
	})
	require.NoError(t, err)

	breakdown, err := svc.Breakdown(ctx, budget.ID)
	require.NoError(t, err)
	require.True(t, breakdown.TotalPlannedExpenses.IsZero(), "planned = %s", breakdown.TotalPlannedExpenses)
	require.True(t, breakdown.TotalCCExpenses.Equal(dec(t, "350")), "cc = %s", breakdown.TotalCCExpenses)
	require.Len(t, breakdown.CCPayments, 1)
	require.True(t, breakdown.CCPayments[0].PaymentDate.Equal(utc(2024, time.March, 25)))
	require.True(t, breakdown.Net.Equal(dec(t, "-350")), "net = %s", breakdown.Net)
}
