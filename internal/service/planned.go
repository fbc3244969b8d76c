package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tally-app/tally/internal/database/repository"
	"github.com/tally-app/tally/internal/ledger"
)

// PlannedService owns planned-transaction rules. Rules are the only thing
// stored; occurrence lists are expanded per request.
type PlannedService struct {
	Planned *repository.PlannedRepo

	mu sync.Mutex
}

func (s *PlannedService) Create(ctx context.Context, p ledger.PlannedTransaction) (ledger.PlannedTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalizeRecurrence(&p)
	if err := validatePlanned(p); err != nil {
		return ledger.PlannedTransaction{}, err
	}
	p.ID = uuid.NewString()
	if err := s.Planned.Insert(ctx, p); err != nil {
		return ledger.PlannedTransaction{}, fmt.Errorf("insert planned transaction: %w", err)
	}
	return p, nil
}

func (s *PlannedService) Update(ctx context.Context, p ledger.PlannedTransaction) (ledger.PlannedTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalizeRecurrence(&p)
	if err := validatePlanned(p); err != nil {
		return ledger.PlannedTransaction{}, err
	}
	if err := s.Planned.Update(ctx, p); err != nil {
		return ledger.PlannedTransaction{}, fmt.Errorf("update planned transaction %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *PlannedService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Planned.Delete(ctx, id)
}

func (s *PlannedService) Get(ctx context.Context, id string) (ledger.PlannedTransaction, error) {
	return s.Planned.Get(ctx, id)
}

func (s *PlannedService) List(ctx context.Context) ([]ledger.PlannedTransaction, error) {
	return s.Planned.List(ctx)
}

// Preview expands one rule over [start, end].
func (s *PlannedService) Preview(ctx context.Context, id string, start, end time.Time) ([]ledger.Occurrence, error) {
	rule, err := s.Planned.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load planned transaction %s: %w", id, err)
	}
	return ledger.ExpandOccurrences(rule, start, end), nil
}

// Window expands every stored rule over [start, end] and returns the merged
// occurrences in date order, the upcoming-payments view.
func (s *PlannedService) Window(ctx context.Context, start, end time.Time) ([]ledger.Occurrence, error) {
	rules, err := s.Planned.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load planned transactions: %w", err)
	}
	var out []ledger.Occurrence
	for _, rule := range rules {
		out = append(out, ledger.ExpandOccurrences(rule, start, end)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// normalizeRecurrence fills the defaults the engine assumes: interval 1,
// end "never", one-time rules carry no recurrence baggage.
func normalizeRecurrence(p *ledger.PlannedTransaction) {
	if p.Recurrence.Kind == "" {
		p.Recurrence.Kind = ledger.OneTime
	}
	if p.Recurrence.Interval < 1 {
		p.Recurrence.Interval = 1
	}
	if p.Recurrence.End == "" {
		p.Recurrence.End = ledger.EndNever
	}
	if p.Recurrence.Kind != ledger.Weekly {
		p.Recurrence.DaysOfWeek = nil
	}
	if p.Recurrence.Kind == ledger.OneTime {
		p.Recurrence.End = ledger.EndNever
		p.Recurrence.EndDate = time.Time{}
		p.Recurrence.EndAfter = 0
	}
}

func validatePlanned(p ledger.PlannedTransaction) error {
	if !p.Amount.IsPositive() {
		return fmt.Errorf("planned amount must be positive")
	}
	if p.DueDate.IsZero() {
		return fmt.Errorf("planned due date is required")
	}
	switch p.Nature {
	case ledger.Income, ledger.Expense:
		if p.AccountID == "" {
			return fmt.Errorf("planned %s needs an account", p.Nature)
		}
	case ledger.Transfer:
		if p.FromAccountID == "" || p.ToAccountID == "" {
			return fmt.Errorf("planned transfer needs both a source and a destination account")
		}
	default:
		return fmt.Errorf("unknown transaction nature %q", p.Nature)
	}
	switch p.Recurrence.Kind {
	case ledger.OneTime, ledger.Daily, ledger.Weekly, ledger.Monthly, ledger.Yearly:
	default:
		return fmt.Errorf("unknown recurrence kind %q", p.Recurrence.Kind)
	}
	switch p.Recurrence.End {
	case ledger.EndNever:
	case ledger.EndOnDate:
		if p.Recurrence.EndDate.IsZero() {
			return fmt.Errorf("recurrence end date is required")
		}
	case ledger.EndAfterOccurrences:
		if p.Recurrence.EndAfter < 1 {
			return fmt.Errorf("recurrence occurrence count must be at least 1")
		}
	default:
		return fmt.Errorf("unknown recurrence end %q", p.Recurrence.End)
	}
	return nil
}
