package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tally-app/tally/internal/database/repository"
	"github.com/tally-app/tally/internal/ledger"
)

// BudgetService owns budget windows and projects their breakdowns at read
// time; nothing about a breakdown is persisted.
type BudgetService struct {
	Budgets    *repository.BudgetRepo
	Planned    *repository.PlannedRepo
	Accounts   *repository.AccountRepo
	Statements *repository.StatementRepo

	mu sync.Mutex
}

func (s *BudgetService) Create(ctx context.Context, b ledger.Budget) (ledger.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateBudget(b); err != nil {
		return ledger.Budget{}, err
	}
	b.ID = uuid.NewString()
	if err := s.Budgets.Insert(ctx, b); err != nil {
		return ledger.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	return b, nil
}

func (s *BudgetService) Update(ctx context.Context, b ledger.Budget) (ledger.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateBudget(b); err != nil {
		return ledger.Budget{}, err
	}
	if err := s.Budgets.Update(ctx, b); err != nil {
		return ledger.Budget{}, fmt.Errorf("update budget %s: %w", b.ID, err)
	}
	return b, nil
}

func (s *BudgetService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Budgets.Delete(ctx, id)
}

func (s *BudgetService) Get(ctx context.Context, id string) (ledger.Budget, error) {
	return s.Budgets.Get(ctx, id)
}

func (s *BudgetService) List(ctx context.Context) ([]ledger.Budget, error) {
	return s.Budgets.List(ctx)
}

// Breakdown projects a budget window from the current rules, accounts, and
// saved statements.
func (s *BudgetService) Breakdown(ctx context.Context, id string) (ledger.BudgetProjection, error) {
	budget, err := s.Budgets.Get(ctx, id)
	if err != nil {
		return ledger.BudgetProjection{}, fmt.Errorf("load budget %s: %w", id, err)
	}
	planned, err := s.Planned.List(ctx)
	if err != nil {
		return ledger.BudgetProjection{}, fmt.Errorf("load planned transactions: %w", err)
	}
	accounts, err := s.Accounts.List(ctx)
	if err != nil {
		return ledger.BudgetProjection{}, fmt.Errorf("load accounts: %w", err)
	}
	statements, err := s.Statements.List(ctx, "")
	if err != nil {
		return ledger.BudgetProjection{}, fmt.Errorf("load statements: %w", err)
	}
	return ledger.ProjectBudget(budget, planned, accounts, statements), nil
}

func validateBudget(b ledger.Budget) error {
	if b.Name == "" {
		return fmt.Errorf("budget name is required")
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return fmt.Errorf("budget start and end dates are required")
	}
	if !b.StartDate.Before(b.EndDate) {
		return fmt.Errorf("budget start date must precede its end date")
	}
	return nil
}
