package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func ccStatement(id, accountID string, endYear int, endMonth time.Month, endDay int, closing string) Statement {
	return Statement{
		ID:             id,
		AccountID:      accountID,
		StartDate:      startOfDay(endYear, endMonth, 1),
		EndDate:        endOfDay(endYear, endMonth, endDay),
		ClosingBalance: dec(closing),
	}
}

func TestProjectBudgetAvoidsCreditCardDoubleCount(t *testing.T) {
	t.Parallel()

	budget := Budget{ID: "b1", StartDate: date(2024, time.March, 1), EndDate: date(2024, time.March, 31)}
	bank := Account{ID: "bank1", Type: AccountBank}
	cc := Account{ID: "cc1", Name: "Visa", Type: AccountCreditCard, StatementClosingDay: 15, PreferredPaymentDay: 25}

	salary := rule(Monthly, date(2024, time.January, 1), 1)
	salary.Nature = Income
	salary.Amount = dec("4000")

	groceries := rule(Weekly, date(2024, time.March, 4), 1)
	groceries.Amount = dec("100")
	groceries.AccountID = "bank1"

	ccSpend := rule(Monthly, date(2024, time.March, 10), 1)
	ccSpend.Amount = dec("999")
	ccSpend.AccountID = "cc1"

	stmts := []Statement{ccStatement("cc1-2024-01", "cc1", 2024, time.February, 15, "-350")}

	p := ProjectBudget(budget, []PlannedTransaction{salary, groceries, ccSpend}, []Account{bank, cc}, stmts)

	require.True(t, p.TotalIncome.Equal(dec("4000")), "income = %s", p.TotalIncome)
	// four Mondays in March 2024 within the window: 4, 11, 18, 25
	require.True(t, p.TotalPlannedExpenses.Equal(dec("400")), "planned = %s", p.TotalPlannedExpenses)
	for _, occ := range p.Expenses {
		require.NotEqual(t, "cc1", occ.AccountID, "credit-card expense leaked into planned expenses")
	}

	// the card's spending reaches the budget via the statement payment
	require.Len(t, p.CCPayments, 1)
	require.Equal(t, "cc1-2024-01", p.CCPayments[0].Statement.ID)
	require.Equal(t, date(2024, time.March, 25), p.CCPayments[0].PaymentDate)
	require.True(t, p.TotalCCExpenses.Equal(dec("350")))
	require.True(t, p.Net.Equal(dec("3250")), "net = %s", p.Net)
}

func TestProjectBudgetClaimsEachStatementOnce(t *testing.T) {
	t.Parallel()

	// two payment dates fall in the window but only one qualifying
	// statement exists: the second date claims nothing
	budget := Budget{ID: "b1", StartDate: date(2024, time.March, 1), EndDate: date(2024, time.April, 30)}
	cc := Account{ID: "cc1", Name: "Visa", Type: AccountCreditCard, StatementClosingDay: 15, PreferredPaymentDay: 20}
	stmts := []Statement{ccStatement("cc1-2024-01", "cc1", 2024, time.February, 15, "-200")}

	p := ProjectBudget(budget, nil, []Account{cc}, stmts)
	require.Len(t, p.CCPayments, 1)
	require.True(t, p.TotalCCExpenses.Equal(dec("200")))
}

func TestProjectBudgetPrefersLatestQualifyingStatement(t *testing.T) {
	t.Parallel()

	budget := Budget{ID: "b1", StartDate: date(2024, time.April, 1), EndDate: date(2024, time.May, 31)}
	cc := Account{ID: "cc1", Name: "Visa", Type: AccountCreditCard, StatementClosingDay: 15, PreferredPaymentDay: 20}
	older := ccStatement("cc1-2024-01", "cc1", 2024, time.February, 15, "-100")
	newer := ccStatement("cc1-2024-02", "cc1", 2024, time.March, 15, "-250")

	p := ProjectBudget(budget, nil, []Account{cc}, []Statement{older, newer})
	require.Len(t, p.CCPayments, 2)
	// the April payment date claims the March statement; the older one is
	// picked up by the May date
	require.Equal(t, "cc1-2024-02", p.CCPayments[0].Statement.ID)
	require.Equal(t, "cc1-2024-01", p.CCPayments[1].Statement.ID)
	require.True(t, p.TotalCCExpenses.Equal(dec("350")))
}

func TestProjectBudgetIgnoresPositiveBalances(t *testing.T) {
	t.Parallel()

	budget := Budget{ID: "b1", StartDate: date(2024, time.March, 1), EndDate: date(2024, time.March, 31)}
	cc := Account{ID: "cc1", Name: "Visa", Type: AccountCreditCard, StatementClosingDay: 15, PreferredPaymentDay: 20}
	overpaid := ccStatement("cc1-2024-01", "cc1", 2024, time.February, 15, "120")

	p := ProjectBudget(budget, nil, []Account{cc}, []Statement{overpaid})
	require.Empty(t, p.CCPayments)
	require.True(t, p.TotalCCExpenses.IsZero())
}

func TestPaymentDatesClampAndAdvance(t *testing.T) {
	t.Parallel()

	// preferred day 31 clamps to each month's length
	got := paymentDates(31, date(2024, time.January, 1), date(2024, time.April, 30))
	require.Equal(t, []time.Time{
		date(2024, time.January, 31),
		date(2024, time.February, 29),
		date(2024, time.March, 31),
		date(2024, time.April, 30),
	}, got)

	// a first candidate before the window start moves to the next month
	got = paymentDates(5, date(2024, time.January, 10), date(2024, time.March, 10))
	require.Equal(t, []time.Time{
		date(2024, time.February, 5),
		date(2024, time.March, 5),
	}, got)
}

func TestProjectBudgetEmptyInputs(t *testing.T) {
	t.Parallel()

	budget := Budget{ID: "b1", StartDate: date(2024, time.March, 1), EndDate: date(2024, time.March, 31)}
	p := ProjectBudget(budget, nil, nil, nil)
	require.Empty(t, p.Income)
	require.Empty(t, p.Expenses)
	require.Empty(t, p.CCPayments)
	require.True(t, p.Net.Equal(decimal.Zero))
}
