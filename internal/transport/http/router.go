package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-member-gate/internal/application/settings"
	"github.com/go-member-gate/internal/application/stats"
	"github.com/go-member-gate/internal/application/verification"
	"github.com/go-member-gate/internal/config"
	"github.com/go-member-gate/internal/domain"
	jwtinfra "github.com/go-member-gate/internal/infrastructure/jwt"
	"github.com/go-member-gate/internal/pkg/qrcode"
	"github.com/go-member-gate/internal/pkg/token"
	"github.com/go-member-gate/internal/transport/http/handler"
	appmiddleware "github.com/go-member-gate/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
// With no Alerters, operator alerts are only logged.
type Deps struct {
	Settings    SettingsStore
	Pending     PendingStore
	Platform    Platform
	Recorder    Recorder
	Alerters    []Alerter
	JWTProvider *jwtinfra.Provider
	// Now overrides the engine clock in tests.
	Now func() time.Time
}

// NewRouter builds and returns the application router. ctx bounds the rate limiter's cleanup goroutine.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// Code guessing and resend spam are limited per member.
	perMinute := max(cfg.RateLimitPerMinute, 1)
	memberRL := appmiddleware.NewRateLimiter(ctx, rate.Every(time.Minute/time.Duration(perMinute)), cfg.RateLimitBurst)

	vDeps := verification.ServiceDeps{
		Settings:      deps.Settings,
		Pending:       deps.Pending,
		Platform:      deps.Platform,
		Recorder:      deps.Recorder,
		Encoder:       qrcode.NewEncoder(cfg.QRBaseURL, cfg.QRSize),
		NewToken:      token.NewChallenge,
		Now:           deps.Now,
		AlertInterval: cfg.AlertInterval,
	}
	if len(deps.Alerters) > 0 {
		vDeps.Alerter = fanout(deps.Alerters)
	}
	verificationSvc := verification.NewService(vDeps)
	settingsSvc := settings.NewService(deps.Settings)
	statsSvc := stats.NewService(deps.Recorder, deps.Settings, deps.Now)

	healthH := handler.NewHealthHandler()
	verificationH := handler.NewVerificationHandler(verificationSvc)
	settingsH := handler.NewSettingsHandler(settingsSvc)
	statsH := handler.NewStatsHandler(statsSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)

		// ── Gateway-authenticated routes ─────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/events/member-join", verificationH.MemberJoin)
			r.Post("/verification/command", verificationH.Command)
			r.With(memberRL.Limit).Post("/verification/code", verificationH.Code)
			r.With(memberRL.Limit).Post("/verification/resend", verificationH.Resend)

			// The engine checks the exact capability for the chosen action.
			r.With(appmiddleware.RequireCapability(domain.CapabilityManageRoles, domain.CapabilityKickMembers)).
				Post("/decisions", verificationH.Decide)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireCapability(domain.CapabilityAdministrator))

				r.Get("/settings", settingsH.Get)
				r.Put("/settings/level", settingsH.SetLevel)
				r.Put("/settings/{key}", settingsH.Set)
			})

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireCapability(domain.CapabilityManageGuild))

				r.Get("/stats", statsH.Period)
				r.Get("/stats/moderators", statsH.Moderators)
				r.Get("/stats/recent", statsH.Recent)
			})
			r.With(appmiddleware.RequireCapability(domain.CapabilityManageRoles)).
				Get("/stats/members/{id}", statsH.Member)
		})
	})

	return r
}
