package http

import (
	"net/http"

	"github.com/victor-uk/expense-tracker/internal/query"
	"github.com/victor-uk/expense-tracker/internal/services"
)

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var in services.BudgetInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	budget, err := s.svc.Budgets.Create(r.Context(), claimsFrom(r.Context()).UserID(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, budget)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	spec, err := query.Parse(r.URL.Query(), query.CategoryExact)
	if err != nil {
		writeError(w, err)
		return
	}

	budgets, err := s.svc.Budgets.List(r.Context(), claimsFrom(r.Context()).UserID(), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, len(budgets), project(budgets, spec.Fields))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := s.svc.Budgets.Get(r.Context(), claimsFrom(r.Context()).UserID(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, budget)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var in services.BudgetUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	budget, err := s.svc.Budgets.Update(r.Context(), claimsFrom(r.Context()).UserID(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, budget)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Budgets.Delete(r.Context(), claimsFrom(r.Context()).UserID(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}
