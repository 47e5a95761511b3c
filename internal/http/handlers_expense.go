package http

import (
	"net/http"

	"github.com/victor-uk/expense-tracker/internal/query"
	"github.com/victor-uk/expense-tracker/internal/services"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	expense, err := s.svc.Expenses.Create(r.Context(), claimsFrom(r.Context()).UserID(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	spec, err := query.Parse(r.URL.Query(), query.CategoryInAllocation)
	if err != nil {
		writeError(w, err)
		return
	}

	expenses, err := s.svc.Expenses.List(r.Context(), claimsFrom(r.Context()).UserID(), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, len(expenses), project(expenses, spec.Fields))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.svc.Expenses.Get(r.Context(), claimsFrom(r.Context()).UserID(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	expense, err := s.svc.Expenses.Update(r.Context(), claimsFrom(r.Context()).UserID(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Expenses.Delete(r.Context(), claimsFrom(r.Context()).UserID(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}
