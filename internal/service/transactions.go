// Package service orchestrates the ledger engine over the repositories:
// it loads snapshots, calls into internal/ledger, and persists results.
// Mutating methods serialize on a per-service mutex; reads go straight
// through.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tally-app/tally/internal/database/repository"
	"github.com/tally-app/tally/internal/ledger"
)

// TransactionService owns transaction mutations. Every create/update/delete
// synchronously adjusts the running balances of the touched accounts, then
// runs the change-reactive statement rebuild over the involved accounts and
// persists only statements that actually moved. Statement upkeep is
// best-effort: a rebuild failure is logged, never surfaced as a mutation
// error, because the transaction itself already committed.
type TransactionService struct {
	Transactions *repository.TransactionRepo
	Accounts     *repository.AccountRepo
	Statements   *repository.StatementRepo
	Log          zerolog.Logger

	mu sync.Mutex
}

// Create records a new transaction and returns it with its assigned id,
// plus any statement-update notices.
func (s *TransactionService) Create(ctx context.Context, t ledger.Transaction) (ledger.Transaction, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateTransaction(t); err != nil {
		return ledger.Transaction{}, nil, err
	}
	t.ID = uuid.NewString()
	if err := s.Transactions.Insert(ctx, t); err != nil {
		return ledger.Transaction{}, nil, fmt.Errorf("insert transaction: %w", err)
	}
	if err := s.applyBalance(ctx, t, false); err != nil {
		return ledger.Transaction{}, nil, err
	}

	msgs := s.rebuildStatements(ctx, t, involvedAccounts(t, nil))
	return t, msgs, nil
}

// Update rewrites an existing transaction. The old row's balance effect is
// reversed before the new one is applied, so moving a transaction between
// accounts keeps both balances right.
func (s *TransactionService) Update(ctx context.Context, t ledger.Transaction) (ledger.Transaction, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateTransaction(t); err != nil {
		return ledger.Transaction{}, nil, err
	}
	old, err := s.Transactions.Get(ctx, t.ID)
	if err != nil {
		return ledger.Transaction{}, nil, fmt.Errorf("load transaction %s: %w", t.ID, err)
	}
	if err := s.applyBalance(ctx, old, true); err != nil {
		return ledger.Transaction{}, nil, err
	}
	if err := s.Transactions.Update(ctx, t); err != nil {
		return ledger.Transaction{}, nil, fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	if err := s.applyBalance(ctx, t, false); err != nil {
		return ledger.Transaction{}, nil, err
	}

	msgs := s.rebuildStatements(ctx, t, involvedAccounts(t, &old))
	return t, msgs, nil
}

// Delete removes a transaction and reverses its balance effect.
func (s *TransactionService) Delete(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.Transactions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load transaction %s: %w", id, err)
	}
	if err := s.applyBalance(ctx, old, true); err != nil {
		return nil, err
	}
	if err := s.Transactions.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete transaction %s: %w", id, err)
	}

	msgs := s.rebuildStatements(ctx, old, involvedAccounts(old, nil))
	return msgs, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (ledger.Transaction, error) {
	return s.Transactions.Get(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, f repository.TransactionFilters) ([]ledger.Transaction, error) {
	return s.Transactions.List(ctx, f)
}

// applyBalance adjusts running balances for t. invert reverses the effect,
// used when a transaction is edited or removed.
func (s *TransactionService) applyBalance(ctx context.Context, t ledger.Transaction, invert bool) error {
	amount := t.Amount
	if invert {
		amount = amount.Neg()
	}
	switch t.Nature {
	case ledger.Income:
		return s.shiftBalance(ctx, t.AccountID, amount)
	case ledger.Expense:
		return s.shiftBalance(ctx, t.AccountID, amount.Neg())
	case ledger.Transfer:
		if err := s.shiftBalance(ctx, t.FromAccountID, amount.Neg()); err != nil {
			return err
		}
		return s.shiftBalance(ctx, t.ToAccountID, amount)
	}
	return fmt.Errorf("unknown transaction nature %q", t.Nature)
}

func (s *TransactionService) shiftBalance(ctx context.Context, accountID string, delta decimal.Decimal) error {
	account, err := s.Accounts.Get(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load account %s: %w", accountID, err)
	}
	return s.Accounts.UpdateBalance(ctx, accountID, account.Balance.Add(delta).String())
}

// rebuildStatements runs the change-reactive regenerator and persists the
// statements that moved. Failures are logged and swallowed.
func (s *TransactionService) rebuildStatements(ctx context.Context, changed ledger.Transaction, involved []string) []string {
	accounts, err := s.Accounts.List(ctx)
	if err != nil {
		s.Log.Warn().Err(err).Msg("statement rebuild: load accounts")
		return nil
	}
	txs, err := s.Transactions.List(ctx, repository.TransactionFilters{})
	if err != nil {
		s.Log.Warn().Err(err).Msg("statement rebuild: load transactions")
		return nil
	}
	statements, err := s.Statements.List(ctx, "")
	if err != nil {
		s.Log.Warn().Err(err).Msg("statement rebuild: load statements")
		return nil
	}

	res := ledger.RegenerateAffected(changed, involved, txs, accounts, statements)
	if !res.Changed {
		return nil
	}

	changedSet := make(map[string]bool, len(res.ChangedIDs))
	for _, id := range res.ChangedIDs {
		changedSet[id] = true
	}
	for _, stmt := range res.Statements {
		if !changedSet[stmt.ID] {
			continue
		}
		if err := s.Statements.Upsert(ctx, stmt); err != nil {
			s.Log.Warn().Err(err).Str("statement", stmt.ID).Msg("statement rebuild: persist")
		}
	}
	s.Log.Info().Int("updated", len(res.ChangedIDs)).Msg("statements regenerated after transaction change")
	return res.Messages
}

// involvedAccounts collects the distinct account ids a transaction touches,
// including the previous version's accounts when editing.
func involvedAccounts(t ledger.Transaction, old *ledger.Transaction) []string {
	seen := make(map[string]bool, 4)
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	add(t.AccountID)
	add(t.FromAccountID)
	add(t.ToAccountID)
	if old != nil {
		add(old.AccountID)
		add(old.FromAccountID)
		add(old.ToAccountID)
	}
	return out
}

func validateTransaction(t ledger.Transaction) error {
	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date is required")
	}
	switch t.Nature {
	case ledger.Income, ledger.Expense:
		if t.AccountID == "" {
			return fmt.Errorf("%s transaction needs an account", t.Nature)
		}
	case ledger.Transfer:
		if t.FromAccountID == "" || t.ToAccountID == "" {
			return fmt.Errorf("transfer needs both a source and a destination account")
		}
		if t.FromAccountID == t.ToAccountID {
			return fmt.Errorf("transfer source and destination must differ")
		}
	default:
		return fmt.Errorf("unknown transaction nature %q", t.Nature)
	}
	return nil
}
