package api

import (
	"errors"
	"net/http"

	"github.com/tallerhq/backoffice/internal/auth"
	"github.com/tallerhq/backoffice/internal/migration"
	"github.com/tallerhq/backoffice/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is what both login and register return. Migration carries
// the post-login check so the client can prompt immediately; it is nil when
// the check could not run.
type sessionResponse struct {
	Token     string                 `json:"token"`
	User      *models.User           `json:"user"`
	Migration *migration.CheckResult `json:"migration,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "errors.invalid_request")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			s.respondError(w, http.StatusBadRequest, "errors.weak_password")
		case errors.Is(err, auth.ErrAccountExists):
			s.respondError(w, http.StatusConflict, "errors.account_exists")
		default:
			s.log.Error("registration failed", "error", err)
			s.respondError(w, http.StatusInternalServerError, "errors.internal")
		}
		return
	}

	s.respondSession(w, r, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "errors.invalid_request")
		return
	}

	user, err := s.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "errors.invalid_credentials")
		return
	}

	s.respondSession(w, r, http.StatusOK, user)
}

// respondSession issues a session token and runs the migration check for the
// fresh identity. A failing check never blocks the login.
func (s *Server) respondSession(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := s.jwt.Generate(user)
	if err != nil {
		s.log.Error("failed to issue session token", "error", err)
		s.respondError(w, http.StatusInternalServerError, "errors.internal")
		return
	}

	check, err := s.orch.Check(r.Context(), user.ID)
	if err != nil {
		s.log.Warn("migration check failed on login", "user_id", user.ID, "error", err)
		check = nil
	}

	respondJSON(w, status, sessionResponse{Token: token, User: user, Migration: check})
}

// handleLogout drops all cached reads so nothing carries into the next
// session on this process.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.gw.Teardown()
	w.WriteHeader(http.StatusNoContent)
}
