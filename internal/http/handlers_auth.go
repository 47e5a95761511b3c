package http

import (
	"net/http"

	"github.com/victor-uk/expense-tracker/internal/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := s.svc.Users.Signup(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := s.svc.Users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, authResponse{Token: token, User: user})
}
