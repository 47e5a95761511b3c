package http

import (
	"net/http"

	"github.com/victor-uk/expense-tracker/internal/query"
	"github.com/victor-uk/expense-tracker/internal/services"
)

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var in services.IncomeInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	income, err := s.svc.Incomes.Create(r.Context(), claimsFrom(r.Context()).UserID(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, income)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	spec, err := query.Parse(r.URL.Query(), query.CategoryExact)
	if err != nil {
		writeError(w, err)
		return
	}

	incomes, err := s.svc.Incomes.List(r.Context(), claimsFrom(r.Context()).UserID(), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, len(incomes), project(incomes, spec.Fields))
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	income, err := s.svc.Incomes.Get(r.Context(), claimsFrom(r.Context()).UserID(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, income)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var in services.IncomeUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	income, err := s.svc.Incomes.Update(r.Context(), claimsFrom(r.Context()).UserID(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, income)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Incomes.Delete(r.Context(), claimsFrom(r.Context()).UserID(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}
