package api

import (
	"context"
	"net/http"

	"github.com/diogoX451/synthctl/internal/api/dto"
)

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		respondError(w, http.StatusNotImplemented, "NO_STORE", "transcript store is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), sessionTimeout)
	defer cancel()

	id := s.session.ID()
	entries, err := s.repo.Transcript(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_FAILED", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, dto.TranscriptResponse{
		SessionID: string(id),
		Entries:   entries,
	})
}
