package api

import (
	"errors"
	"net/http"

	"github.com/tallerhq/backoffice/internal/migration"
)

func (s *Server) handleMigrationCheck(w http.ResponseWriter, r *http.Request) {
	check, err := s.orch.Check(r.Context(), UserID(r.Context()))
	if err != nil {
		s.log.Error("migration check failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "migration.failed")
		return
	}

	resp := struct {
		*migration.CheckResult
		Message string `json:"message,omitempty"`
	}{CheckResult: check}
	if check.State == migration.StatePendingDecision {
		resp.Message = s.tr.T("migration.prompt", nil)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMigrationRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.orch.Run(r.Context(), UserID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, migration.ErrInFlight):
			s.respondError(w, http.StatusConflict, "migration.in_progress")
		case errors.Is(err, migration.ErrAlreadyDone):
			s.respondError(w, http.StatusConflict, "migration.already_done")
		default:
			s.log.Error("migration run failed", "error", err)
			s.respondError(w, http.StatusInternalServerError, "migration.failed")
		}
		return
	}

	resp := struct {
		*migration.Result
		Message string `json:"message"`
	}{
		Result: result,
		Message: s.tr.T("migration.summary", map[string]any{
			"Migrated": result.Migrated,
			"Total":    result.Total,
		}),
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMigrationSkip(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.Skip(r.Context(), UserID(r.Context())); err != nil {
		s.log.Error("migration skip failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "migration.failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
