package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tally-app/tally/internal/database/repository"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// fail maps an error to a status: missing rows are 404, everything else is
// the caller's fallback.
func (s *Server) fail(w http.ResponseWriter, err error, fallback int) {
	if errors.Is(err, sql.ErrNoRows) {
		s.writeError(w, http.StatusNotFound, errors.New("not found"))
		return
	}
	if fallback >= 500 {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.writeError(w, fallback, err)
}

func decode[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(&v)
	return v, err
}

// parseDate accepts RFC 3339 or a bare calendar date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func windowParams(r *http.Request) (start, end time.Time, err error) {
	if start, err = parseDate(r.URL.Query().Get("start")); err != nil {
		return start, end, errors.New("start: expected an RFC 3339 timestamp or YYYY-MM-DD")
	}
	if end, err = parseDate(r.URL.Query().Get("end")); err != nil {
		return start, end, errors.New("end: expected an RFC 3339 timestamp or YYYY-MM-DD")
	}
	return start, end, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- accounts ---

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	out := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountJSON(a))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	body, err := decode[accountJSON](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	account, err := body.toLedger()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := s.accounts.Create(r.Context(), account)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusCreated, toAccountJSON(created))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, toAccountJSON(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	body, err := decode[accountJSON](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	account, err := body.toLedger()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	account.ID = chi.URLParam(r, "id")
	updated, err := s.accounts.Update(r.Context(), account)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, toAccountJSON(updated))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- transactions ---

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := repository.TransactionFilters{
		AccountID: q.Get("accountId"),
		Nature:    q.Get("nature"),
		Search:    q.Get("search"),
	}
	if m := q.Get("month"); m != "" {
		month, err := time.Parse("2006-01", m)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, errors.New("month: expected YYYY-MM"))
			return
		}
		filters.Month = month
	}

	txs, err := s.transactions.List(r.Context(), filters)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	s.writeJSON(w, http.StatusOK, out)
}

type transactionResponse struct {
	Transaction transactionJSON `json:"transaction"`
	Messages    []string        `json:"messages,omitempty"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := decode[transactionJSON](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := body.toLedger()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	created, msgs, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusCreated, transactionResponse{Transaction: toTransactionJSON(created), Messages: msgs})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.transactions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, toTransactionJSON(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := decode[transactionJSON](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := body.toLedger()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	tx.ID = chi.URLParam(r, "id")
	updated, msgs, err := s.transactions.Update(r.Context(), tx)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, transactionResponse{Transaction: toTransactionJSON(updated), Messages: msgs})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.transactions.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// --- planned transactions ---

func (s *Server) handleListPlanned(w http.ResponseWriter, r *http.Request) {
	rules, err := s.planned.List(r.Context())
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	out := make([]plannedJSON, 0, len(rules))
	for _, p := range rules {
		out = append(out, toPlannedJSON(p))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePlanned(w http.ResponseWriter, r *http.Request) {
	body, err := decode[plannedJSON](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	rule, err := body.toLedger()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := s.planned.Create(r.Context(), rule)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusCreated, toPlannedJSON(created))
}

func (s *Server) handleGetPlanned(w http.ResponseWriter, r *http.Request) {
	rule, err := s.planned.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, toPlannedJSON(rule))
}

func (s *Server) handleUpdatePlanned(w http.ResponseWriter, r *http.Request) {
	body, err := decode[plannedJSON](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	rule, err := body.toLedger()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	rule.ID = chi.URLParam(r, "id")
	updated, err := s.planned.Update(r.Context(), rule)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, toPlannedJSON(updated))
}

func (s *Server) handleDeletePlanned(w http.ResponseWriter, r *http.Request) {
	if err := s.planned.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlannedPreview(w http.ResponseWriter, r *http.Request) {
	start, end, err := windowParams(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	occs, err := s.planned.Preview(r.Context(), chi.URLParam(r, "id"), start, end)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, toOccurrenceListJSON(occs))
}

func (s *Server) handlePlannedWindow(w http.ResponseWriter, r *http.Request) {
	start, end, err := windowParams(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	occs, err := s.planned.Window(r.Context(), start, end)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, toOccurrenceListJSON(occs))
}

// --- budgets ---

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.List(r.Context())
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetJSON(b))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	body, err := decode[budgetJSON](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := s.budgets.Create(r.Context(), body.toLedger())
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusCreated, toBudgetJSON(created))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := s.budgets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, toBudgetJSON(budget))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	body, err := decode[budgetJSON](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	budget := body.toLedger()
	budget.ID = chi.URLParam(r, "id")
	updated, err := s.budgets.Update(r.Context(), budget)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, toBudgetJSON(updated))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.budgets.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.budgets.Breakdown(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, toProjectionJSON(breakdown))
}

// --- statements ---

func (s *Server) handleListStatements(w http.ResponseWriter, r *http.Request) {
	statements, err := s.statements.List(r.Context(), r.URL.Query().Get("accountId"))
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	out := make([]statementJSON, 0, len(statements))
	for _, stmt := range statements {
		out = append(out, toStatementJSON(stmt))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGenerateStatement(w http.ResponseWriter, r *http.Request) {
	body, err := decode[struct {
		AccountID string `json:"accountId"`
		Year      int    `json:"year"`
		Month     int    `json:"month"` // 1-12
	}](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Month < 1 || body.Month > 12 {
		s.writeError(w, http.StatusBadRequest, errors.New("month must be between 1 and 12"))
		return
	}
	stmt, err := s.statements.Generate(r.Context(), body.AccountID, body.Year, time.Month(body.Month))
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusCreated, toStatementJSON(stmt))
}

func (s *Server) handleStatementCheck(w http.ResponseWriter, r *http.Request) {
	generated, ran, err := s.statements.CheckDue(r.Context())
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	out := make([]statementJSON, 0, len(generated))
	for _, stmt := range generated {
		out = append(out, toStatementJSON(stmt))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ran": ran, "generated": out})
}

func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	stmt, err := s.statements.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, toStatementJSON(stmt))
}

func (s *Server) handleDeleteStatement(w http.ResponseWriter, r *http.Request) {
	if err := s.statements.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- settings ---

func (s *Server) handleGetStartDate(w http.ResponseWriter, r *http.Request) {
	start, err := s.statements.StartDate(r.Context())
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	if start.IsZero() {
		s.writeJSON(w, http.StatusOK, map[string]any{"startDate": nil})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"startDate": start})
}

func (s *Server) handleSetStartDate(w http.ResponseWriter, r *http.Request) {
	body, err := decode[struct {
		StartDate string `json:"startDate"`
	}](r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	start, err := parseDate(body.StartDate)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("startDate: expected an RFC 3339 timestamp or YYYY-MM-DD"))
		return
	}
	generated, err := s.statements.SetStartDate(r.Context(), start)
	if err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"startDate": start, "generated": len(generated)})
}
