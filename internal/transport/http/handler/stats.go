package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-member-gate/internal/application/stats"
	"github.com/go-member-gate/internal/domain"
	"github.com/go-member-gate/internal/transport/http/middleware"
)

const defaultStatsDays = 7

// StatsHandler serves the statistics commands.
type StatsHandler struct {
	svc stats.Service
}

func NewStatsHandler(svc stats.Service) *StatsHandler { return &StatsHandler{svc: svc} }

func (h *StatsHandler) Period(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	days, ok := queryInt(w, r, "days", defaultStatsDays)
	if !ok {
		return
	}
	st, err := h.svc.Period(r.Context(), actor, days)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *StatsHandler) Moderators(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	mods, err := h.svc.TopModerators(r.Context(), actor, limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope[domain.ModeratorCount]{Data: mods})
}

func (h *StatsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	recent, err := h.svc.Recent(r.Context(), actor, limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope[domain.RecentVerification]{Data: recent})
}

func (h *StatsHandler) Member(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	memberID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid member id")
		return
	}
	hist, err := h.svc.MemberHistory(r.Context(), actor, memberID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// queryInt reads an optional integer query parameter, writing a 400 when it is malformed.
func queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid "+name)
		return 0, false
	}
	return n, true
}
