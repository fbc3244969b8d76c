package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tally-app/tally/internal/database"
	"github.com/tally-app/tally/internal/database/repository"
	"github.com/tally-app/tally/internal/ledger"
)

// Statement coverage is re-verified at most this often by CheckDue; the
// daily scheduler and every app start both route through it.
const statementCheckInterval = 24 * time.Hour

// StatementService keeps saved statements covering every closed billing
// period from the tracking start date up to one year ahead.
type StatementService struct {
	Accounts     *repository.AccountRepo
	Transactions *repository.TransactionRepo
	Statements   *repository.StatementRepo
	Settings     *repository.SettingsRepo
	Log          zerolog.Logger

	// Now is overridable in tests; nil means database.Now.
	Now func() time.Time

	mu sync.Mutex
}

func (s *StatementService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return database.Now()
}

// EnsureCoverage fills every statement gap for every account with a closing
// day, persists the new statements, and stamps the last-check time. It is a
// no-op until the user sets a tracking start date.
func (s *StatementService) EnsureCoverage(ctx context.Context) ([]ledger.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureCoverage(ctx)
}

func (s *StatementService) ensureCoverage(ctx context.Context) ([]ledger.Statement, error) {
	appStart, err := s.Settings.AppStartDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("load start date: %w", err)
	}
	if appStart.IsZero() {
		return nil, nil
	}

	accounts, err := s.Accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	txs, err := s.Transactions.List(ctx, repository.TransactionFilters{})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	existing, err := s.Statements.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load statements: %w", err)
	}

	now := s.now()
	generated := ledger.AutoGenerateAll(accounts, txs, existing, appStart, now)
	for _, stmt := range generated {
		if err := s.Statements.Upsert(ctx, stmt); err != nil {
			return nil, fmt.Errorf("save statement %s: %w", stmt.ID, err)
		}
	}
	if err := s.Settings.SetLastStatementCheck(ctx, now); err != nil {
		return nil, fmt.Errorf("stamp statement check: %w", err)
	}
	if len(generated) > 0 {
		s.Log.Info().Int("count", len(generated)).Msg("generated statements")
	}
	return generated, nil
}

// CheckDue runs EnsureCoverage only when the last check is older than the
// check interval. It reports whether the check actually ran.
func (s *StatementService) CheckDue(ctx context.Context) ([]ledger.Statement, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.Settings.LastStatementCheck(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load last statement check: %w", err)
	}
	if !last.IsZero() && s.now().Sub(last) < statementCheckInterval {
		return nil, false, nil
	}
	generated, err := s.ensureCoverage(ctx)
	if err != nil {
		return nil, false, err
	}
	return generated, true, nil
}

// Generate builds (or rebuilds) one statement for an account and target
// month on demand, regardless of coverage state.
func (s *StatementService) Generate(ctx context.Context, accountID string, year int, month time.Month) (ledger.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.Accounts.Get(ctx, accountID)
	if err != nil {
		return ledger.Statement{}, fmt.Errorf("load account %s: %w", accountID, err)
	}
	if account.StatementClosingDay == 0 {
		return ledger.Statement{}, fmt.Errorf("account %s has no statement closing day", account.Name)
	}
	period, ok := ledger.CalcPeriod(account.StatementClosingDay, month, year)
	if !ok {
		return ledger.Statement{}, fmt.Errorf("invalid statement period for %s %d-%02d", accountID, year, month)
	}
	txs, err := s.Transactions.List(ctx, repository.TransactionFilters{})
	if err != nil {
		return ledger.Statement{}, fmt.Errorf("load transactions: %w", err)
	}

	id := ledger.StatementID(accountID, year, month)
	totals := ledger.BuildStatement(&account, txs, period.Start, period.End, id)
	if totals == nil {
		return ledger.Statement{}, fmt.Errorf("build statement %s", id)
	}
	stmt := ledger.Statement{
		ID:                  id,
		AccountID:           accountID,
		StartDate:           period.Start,
		EndDate:             period.End,
		OpeningBalance:      totals.OpeningBalance,
		ClosingBalance:      totals.ClosingBalance,
		Transactions:        totals.Transactions,
		TotalDebits:         totals.TotalDebits,
		TotalCredits:        totals.TotalCredits,
		TotalLinkedPayments: totals.TotalLinkedPayments,
	}
	if err := s.Statements.Upsert(ctx, stmt); err != nil {
		return ledger.Statement{}, fmt.Errorf("save statement %s: %w", id, err)
	}
	return stmt, nil
}

func (s *StatementService) List(ctx context.Context, accountID string) ([]ledger.Statement, error) {
	return s.Statements.List(ctx, accountID)
}

func (s *StatementService) Get(ctx context.Context, id string) (ledger.Statement, error) {
	return s.Statements.Get(ctx, id)
}

func (s *StatementService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Statements.Delete(ctx, id)
}

// StartDate reads the tracking start date; zero means unset.
func (s *StatementService) StartDate(ctx context.Context) (time.Time, error) {
	return s.Settings.AppStartDate(ctx)
}

// SetStartDate stores the tracking start date and immediately re-verifies
// coverage, since the date decides how far back statements reach.
func (s *StatementService) SetStartDate(ctx context.Context, t time.Time) ([]ledger.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.IsZero() {
		return nil, fmt.Errorf("start date is required")
	}
	if err := s.Settings.SetAppStartDate(ctx, t); err != nil {
		return nil, fmt.Errorf("save start date: %w", err)
	}
	return s.ensureCoverage(ctx)
}
