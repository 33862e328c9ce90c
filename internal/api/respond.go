package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tallerhq/backoffice/internal/storage"
)

// errorResponse is the uniform error body: a machine code plus a localized
// message for direct display.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError writes a localized error. messageID doubles as the machine
// code so clients can branch without parsing prose.
func (s *Server) respondError(w http.ResponseWriter, status int, messageID string) {
	respondJSON(w, status, errorResponse{Code: messageID, Message: s.tr.T(messageID, nil)})
}

// respondStoreError maps a storage failure to a response. Not-found keeps its
// own status; everything else is an opaque 500 with the operation's message.
func (s *Server) respondStoreError(w http.ResponseWriter, err error, messageID string) {
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "errors.not_found")
		return
	}
	s.respondError(w, http.StatusInternalServerError, messageID)
}

// decode parses a JSON request body into v.
func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
