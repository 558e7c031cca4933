package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-member-gate/internal/application/verification"
	"github.com/go-member-gate/internal/domain"
	"github.com/go-member-gate/internal/pkg/validate"
	"github.com/go-member-gate/internal/transport/http/middleware"
)

// VerificationHandler forwards platform events to the verification engine.
type VerificationHandler struct {
	svc verification.Service
	now func() time.Time
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc, now: time.Now}
}

// MemberJoin handles POST /v1/events/member-join. The body is the joining member.
func (h *VerificationHandler) MemberJoin(w http.ResponseWriter, r *http.Request) {
	var m domain.Member
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if err := validate.Struct(m); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation", err.Error())
		return
	}
	res, err := h.svc.OnMemberJoin(r.Context(), m)
	if err != nil {
		httpError(w, err)
		return
	}
	env := JoinEnvelope{JoinResult: res}
	if res.RoleAssignErr != nil {
		env.RoleAssignError = res.RoleAssignErr.Error()
	}
	writeJSON(w, http.StatusOK, env)
}

// Command handles POST /v1/verification/command on behalf of the calling member.
func (h *VerificationHandler) Command(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	res, err := h.svc.SubmitCommandVerification(r.Context(), actor.ID)
	h.respond(w, res, err)
}

// Code handles POST /v1/verification/code.
func (h *VerificationHandler) Code(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	var req domain.SubmitCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation", err.Error())
		return
	}
	res, err := h.svc.SubmitCode(r.Context(), actor.ID, req.Code, h.now())
	h.respond(w, res, err)
}

// Resend handles POST /v1/verification/resend.
func (h *VerificationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	res, err := h.svc.ResendCode(r.Context(), actor.ID, h.now())
	h.respond(w, res, err)
}

// Decide handles POST /v1/decisions from a moderator's button press.
func (h *VerificationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	var req domain.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation", err.Error())
		return
	}
	req.Moderator = actor
	res, err := h.svc.ResolveManualDecision(r.Context(), req)
	h.respond(w, res, err)
}

func (h *VerificationHandler) respond(w http.ResponseWriter, res *verification.Result, err error) {
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ResultEnvelope{Result: res})
}
