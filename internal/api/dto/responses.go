package dto

import (
	"time"

	"github.com/diogoX451/synthctl/internal/registry"
	"github.com/diogoX451/synthctl/pkg/types"
)

type StatusResponse struct {
	SessionID     string                      `json:"session_id"`
	Queued        int                         `json:"queued"`
	Busy          bool                        `json:"busy"`
	EndOfInput    bool                        `json:"end_of_input"`
	Sent          uint64                      `json:"sent"`
	Pending       int                         `json:"pending_responses"`
	Aliases       int                         `json:"aliases"`
	Registrations []registry.RegistrationInfo `json:"registrations"`
	Rules         []string                    `json:"rules"`
}

type AliasResponse struct {
	Name    string            `json:"name"`
	UUID    string            `json:"uuid"`
	Inputs  map[string]string `json:"inputs"`
	Outputs map[string]string `json:"outputs"`
}

type CommandAccepted struct {
	SessionID  string    `json:"session_id"`
	Line       string    `json:"line"`
	AcceptedAt time.Time `json:"accepted_at"`
}

type TranscriptResponse struct {
	SessionID string                  `json:"session_id"`
	Entries   []types.TranscriptEntry `json:"entries"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
