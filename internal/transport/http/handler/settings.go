package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-member-gate/internal/application/settings"
	"github.com/go-member-gate/internal/domain"
	"github.com/go-member-gate/internal/pkg/validate"
	"github.com/go-member-gate/internal/transport/http/middleware"
)

// SettingsHandler serves the administrator settings commands.
type SettingsHandler struct {
	svc settings.Service
}

func NewSettingsHandler(svc settings.Service) *SettingsHandler { return &SettingsHandler{svc: svc} }

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	s, err := h.svc.Get(r.Context(), actor)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsEnvelope(s))
}

func (h *SettingsHandler) SetLevel(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	var req domain.SetLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	s, err := h.svc.SetLevel(r.Context(), actor, req.Level)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsEnvelope(s))
}

// Set handles PUT /v1/settings/{key}.
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation", err.Error())
		return
	}
	s, err := h.svc.Set(r.Context(), actor, chi.URLParam(r, "key"), req.Value)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsEnvelope(s))
}

func settingsEnvelope(s domain.GuildSettings) SettingsEnvelope {
	env := SettingsEnvelope{Settings: s}
	var cfgErr *domain.ConfigurationError
	if errors.As(s.Validate(), &cfgErr) {
		env.Missing = cfgErr.Missing
	}
	return env
}
