package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tally-app/tally/internal/database/repository"
	"github.com/tally-app/tally/internal/ledger"
)

// AccountService owns account mutations. Setting or changing a statement
// closing day re-verifies statement coverage; every mutation also pushes
// balances to the spreadsheet webhook when one is configured.
type AccountService struct {
	Accounts   *repository.AccountRepo
	Statements *StatementService
	Sync       *SheetSync
	Log        zerolog.Logger

	mu sync.Mutex
}

func (s *AccountService) Create(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateAccount(a); err != nil {
		return ledger.Account{}, err
	}
	a.ID = uuid.NewString()
	if a.Currency == "" {
		a.Currency = "USD"
	}
	if err := s.Accounts.Insert(ctx, a); err != nil {
		return ledger.Account{}, fmt.Errorf("insert account: %w", err)
	}

	s.afterChange(ctx, a.StatementClosingDay != 0)
	return a, nil
}

func (s *AccountService) Update(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateAccount(a); err != nil {
		return ledger.Account{}, err
	}
	old, err := s.Accounts.Get(ctx, a.ID)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("load account %s: %w", a.ID, err)
	}
	if err := s.Accounts.Update(ctx, a); err != nil {
		return ledger.Account{}, fmt.Errorf("update account %s: %w", a.ID, err)
	}

	s.afterChange(ctx, a.StatementClosingDay != old.StatementClosingDay)
	return a, nil
}

// Delete removes the account. Its statements cascade away with it;
// transactions that referenced it are kept as history.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Accounts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	s.afterChange(ctx, false)
	return nil
}

func (s *AccountService) Get(ctx context.Context, id string) (ledger.Account, error) {
	return s.Accounts.Get(ctx, id)
}

func (s *AccountService) List(ctx context.Context) ([]ledger.Account, error) {
	return s.Accounts.List(ctx)
}

// afterChange runs the post-mutation hooks. Both are best-effort.
func (s *AccountService) afterChange(ctx context.Context, coverageStale bool) {
	if coverageStale && s.Statements != nil {
		if _, err := s.Statements.EnsureCoverage(ctx); err != nil {
			s.Log.Warn().Err(err).Msg("statement coverage after account change")
		}
	}
	if s.Sync != nil {
		go s.Sync.Push(context.WithoutCancel(ctx))
	}
}

func validateAccount(a ledger.Account) error {
	if a.Name == "" {
		return fmt.Errorf("account name is required")
	}
	switch a.Type {
	case ledger.AccountBank, ledger.AccountCreditCard, ledger.AccountCash, ledger.AccountInvestment:
	default:
		return fmt.Errorf("unknown account type %q", a.Type)
	}
	if a.StatementClosingDay < 0 || a.StatementClosingDay > 31 {
		return fmt.Errorf("statement closing day must be between 1 and 31")
	}
	if a.PreferredPaymentDay < 0 || a.PreferredPaymentDay > 31 {
		return fmt.Errorf("preferred payment day must be between 1 and 31")
	}
	if a.PreferredPaymentDay != 0 && a.Type != ledger.AccountCreditCard {
		return fmt.Errorf("preferred payment day applies to credit cards only")
	}
	return nil
}
