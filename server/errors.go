package server

import (
	"errors"
	"net/http"

	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, core.ErrTranscription):
		return http.StatusBadGateway, "transcription"
	case errors.Is(err, core.ErrEmbedding):
		return http.StatusBadGateway, "embedding"
	case errors.Is(err, core.ErrSynthesis):
		return http.StatusBadGateway, "synthesis"
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrPersistence):
		return http.StatusInternalServerError, "persistence"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "kind", kind, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "kind", kind, "err", err)
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Storage errors can carry connection details.
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}
