package http

import (
	"net/http"

	"github.com/victor-uk/expense-tracker/internal/services"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, len(users), users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in services.UserUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.svc.Users.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Users.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}

type categoryRequest struct {
	Category string `json:"category"`
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	categories, err := s.svc.Users.AddCategory(r.Context(), r.PathValue("id"), in.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	report, err := s.svc.Users.RemoveCategory(r.Context(), r.PathValue("id"), in.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, report)
}
