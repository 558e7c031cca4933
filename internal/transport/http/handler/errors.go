package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-member-gate/internal/domain"
)

// httpError maps service errors onto status codes. Order matters: a role-inconsistent
// error also wraps the platform error that caused it.
func httpError(w http.ResponseWriter, err error) {
	var cfgErr *domain.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		writeError(w, http.StatusServiceUnavailable, "configuration_error", err.Error())
	case errors.Is(err, domain.ErrRoleInconsistent):
		slog.Error("member left with inconsistent roles", "err", err)
		writeError(w, http.StatusInternalServerError, "role_inconsistent", err.Error())
	case errors.Is(err, domain.ErrPlatformPermission):
		writeError(w, http.StatusBadGateway, "platform_permission", err.Error())
	case errors.Is(err, domain.ErrChallengeExpired):
		writeError(w, http.StatusUnprocessableEntity, "challenge_expired", err.Error())
	case errors.Is(err, domain.ErrChallengeMismatch):
		writeError(w, http.StatusUnprocessableEntity, "challenge_mismatch", err.Error())
	case errors.Is(err, domain.ErrNoActiveChallenge):
		writeError(w, http.StatusUnprocessableEntity, "no_active_challenge", err.Error())
	case errors.Is(err, domain.ErrWrongTier):
		writeError(w, http.StatusConflict, "wrong_tier", err.Error())
	case errors.Is(err, domain.ErrInvalidLevel):
		writeError(w, http.StatusBadRequest, "invalid_level", err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "already_resolved", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	default:
		slog.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
