package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-member-gate/internal/application/verification"
	"github.com/go-member-gate/internal/domain"
)

// MessageEnvelope is the generic response wrapper. Code is a stable identifier the
// gateway maps to a user-facing message.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// JoinEnvelope wraps the result of a member join.
type JoinEnvelope struct {
	*verification.JoinResult
	RoleAssignError string `json:"role_assign_error,omitempty"`
}

// ResultEnvelope wraps the result of every post-join verification action.
type ResultEnvelope struct {
	*verification.Result
}

// SettingsEnvelope wraps a settings snapshot together with what is still missing for the active tier.
type SettingsEnvelope struct {
	Settings domain.GuildSettings `json:"settings"`
	Missing  []string             `json:"missing,omitempty"`
}

// ListEnvelope wraps list responses.
type ListEnvelope[T any] struct {
	Data []T `json:"data"`
}

type setValueRequest struct {
	Value string `json:"value" validate:"required"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, Code: code})
}
