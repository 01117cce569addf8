package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/diogoX451/synthctl/internal/api/dto"
	"github.com/diogoX451/synthctl/internal/registry"
	"github.com/diogoX451/synthctl/internal/session"
	"github.com/go-chi/chi/v5"
)

const sessionTimeout = 5 * time.Second

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (session.Snapshot, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), sessionTimeout)
	defer cancel()

	snap, err := s.session.Snapshot(ctx)
	if errors.Is(err, session.ErrClosed) {
		respondError(w, http.StatusServiceUnavailable, "SESSION_CLOSED", err.Error())
		return snap, false
	}
	if err != nil {
		respondError(w, http.StatusGatewayTimeout, "SESSION_BUSY", err.Error())
		return snap, false
	}
	return snap, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, dto.StatusResponse{
		SessionID:     string(snap.SessionID),
		Queued:        snap.Scheduler.Queued,
		Busy:          snap.Scheduler.Busy,
		EndOfInput:    snap.Scheduler.EndOfInput,
		Sent:          snap.Scheduler.Sent,
		Pending:       snap.Pending,
		Aliases:       len(snap.Aliases),
		Registrations: snap.Registrations,
		Rules:         snap.Rules,
	})
}

func (s *Server) handleListAliases(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	out := make([]dto.AliasResponse, 0, len(snap.Aliases))
	for _, a := range snap.Aliases {
		out = append(out, toAliasResponse(a))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAlias(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	for _, a := range snap.Aliases {
		if a.Name == name {
			respondJSON(w, http.StatusOK, toAliasResponse(a))
			return
		}
	}
	respondError(w, http.StatusNotFound, "ALIAS_NOT_FOUND", "alias not found: "+name)
}

func (s *Server) handleSubmitCommand(w http.ResponseWriter, r *http.Request) {
	var req dto.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if strings.ContainsAny(req.Line, "\n\r") {
		respondError(w, http.StatusBadRequest, "INVALID_COMMAND", "line must not contain newlines")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), sessionTimeout)
	defer cancel()

	if err := s.session.Submit(ctx, req.Line); err != nil {
		if errors.Is(err, session.ErrClosed) {
			respondError(w, http.StatusServiceUnavailable, "SESSION_CLOSED", err.Error())
			return
		}
		respondError(w, http.StatusGatewayTimeout, "SUBMIT_FAILED", err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, dto.CommandAccepted{
		SessionID:  string(s.session.ID()),
		Line:       req.Line,
		AcceptedAt: time.Now(),
	})
}

func toAliasResponse(a registry.Alias) dto.AliasResponse {
	return dto.AliasResponse{
		Name:    a.Name,
		UUID:    a.UUID,
		Inputs:  a.Inputs,
		Outputs: a.Outputs,
	}
}
