package domain

import (
	"errors"
	"strings"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Verification flow errors. The challenge errors are user-correctable and never corrupt state.
var (
	ErrNoActiveChallenge  = errors.New("no active challenge")
	ErrChallengeExpired   = errors.New("challenge expired")
	ErrChallengeMismatch  = errors.New("challenge mismatch")
	ErrWrongTier          = errors.New("operation not available for the active verification tier")
	ErrInvalidLevel       = errors.New("verification level must be between 1 and 3")
	ErrPlatformPermission = errors.New("platform denied the mutation")
	ErrRoleInconsistent   = errors.New("member left with inconsistent roles")
)

// ConfigurationError reports guild settings that are missing for the active tier
// or stored in a form that cannot be parsed.
// It is fatal to the triggering operation and is never retried.
type ConfigurationError struct {
	Missing   []string
	Malformed []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required configuration: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Malformed) > 0 {
		parts = append(parts, "malformed configuration: "+strings.Join(e.Malformed, ", "))
	}
	return strings.Join(parts, "; ")
}
