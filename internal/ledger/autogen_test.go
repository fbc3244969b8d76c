package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatementIDFormat(t *testing.T) {
	t.Parallel()

	// month is zero-padded and 0-indexed; persisted ids depend on this
	require.Equal(t, "acc123-2024-00", StatementID("acc123", 2024, time.January))
	require.Equal(t, "acc123-2024-11", StatementID("acc123", 2024, time.December))
	require.Equal(t, "acc123-2023-09", StatementID("acc123", 2023, time.October))
}

func TestAutoGenerateRequiresClosingDayAndStart(t *testing.T) {
	t.Parallel()

	now := date(2024, time.June, 1)
	noDay := Account{ID: "a1", Type: AccountBank}
	require.Empty(t, AutoGenerate(noDay, nil, nil, date(2024, time.January, 1), now))

	withDay := Account{ID: "a1", Type: AccountBank, StatementClosingDay: 15}
	require.Empty(t, AutoGenerate(withDay, nil, nil, time.Time{}, now))
}

func TestAutoGenerateCoverageAndHorizon(t *testing.T) {
	t.Parallel()

	acc := Account{ID: "a1", Type: AccountBank, StatementClosingDay: 15}
	appStart := date(2024, time.January, 10)
	now := date(2024, time.June, 1)

	got := AutoGenerate(acc, nil, nil, appStart, now)
	require.NotEmpty(t, got)

	// first month considered is January 2024; horizon is June 2025, so the
	// last generated period ends in June 2025
	require.Equal(t, "a1-2024-00", got[0].ID)
	last := got[len(got)-1]
	require.Equal(t, "a1-2025-05", last.ID)
	require.Len(t, got, 18)

	for _, s := range got {
		require.Equal(t, "a1", s.AccountID)
		require.False(t, s.EndDate.Before(appStart))
	}
}

func TestAutoGenerateSkipsPeriodsEndingBeforeStart(t *testing.T) {
	t.Parallel()

	acc := Account{ID: "a1", Type: AccountBank, StatementClosingDay: 15}
	// app starts on the 20th: January's period ends Jan 15, before the
	// start, so the first statement is February's
	appStart := date(2024, time.January, 20)
	now := date(2024, time.March, 1)

	got := AutoGenerate(acc, nil, nil, appStart, now)
	require.NotEmpty(t, got)
	require.Equal(t, "a1-2024-01", got[0].ID)
}

func TestAutoGenerateIdempotent(t *testing.T) {
	t.Parallel()

	acc := Account{ID: "a1", Type: AccountBank, StatementClosingDay: 15}
	appStart := date(2024, time.January, 1)
	now := date(2024, time.June, 1)
	txs := []Transaction{
		income("t1", "a1", date(2024, time.February, 2), "100"),
	}

	first := AutoGenerate(acc, txs, nil, appStart, now)
	require.NotEmpty(t, first)

	second := AutoGenerate(acc, txs, first, appStart, now)
	require.Empty(t, second)
}

func TestAutoGenerateAllDeduplicates(t *testing.T) {
	t.Parallel()

	a1 := Account{ID: "a1", Type: AccountBank, StatementClosingDay: 15}
	a2 := Account{ID: "a2", Type: AccountCreditCard, StatementClosingDay: 28}
	noDay := Account{ID: "a3", Type: AccountCash}
	appStart := date(2024, time.April, 1)
	now := date(2024, time.April, 20)

	got := AutoGenerateAll([]Account{a1, a2, noDay}, nil, nil, appStart, now)
	require.NotEmpty(t, got)

	seen := map[string]bool{}
	for _, s := range got {
		require.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
		require.NotEqual(t, "a3", s.AccountID)
	}
}

func TestMergeStatementsSortsAndDeduplicates(t *testing.T) {
	t.Parallel()

	older := Statement{ID: "a1-2024-00", EndDate: endOfDay(2024, time.January, 15)}
	newer := Statement{ID: "a1-2024-01", EndDate: endOfDay(2024, time.February, 15)}
	dupe := Statement{ID: "a1-2024-00", EndDate: endOfDay(2024, time.January, 15)}

	merged := MergeStatements([]Statement{older}, []Statement{newer, dupe})
	require.Len(t, merged, 2)
	require.Equal(t, "a1-2024-01", merged[0].ID)
	require.Equal(t, "a1-2024-00", merged[1].ID)
}
