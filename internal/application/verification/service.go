package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-member-gate/internal/domain"
	"github.com/go-member-gate/internal/pkg/id"
)

const defaultRecordTimeout = 3 * time.Second

type Service interface {
	OnMemberJoin(ctx context.Context, member domain.Member) (*JoinResult, error)
	SubmitCommandVerification(ctx context.Context, memberID int64) (*Result, error)
	SubmitCode(ctx context.Context, memberID int64, code string, now time.Time) (*Result, error)
	ResendCode(ctx context.Context, memberID int64, now time.Time) (*Result, error)
	ResolveManualDecision(ctx context.Context, req domain.DecisionRequest) (*Result, error)
}

type settingsProvider interface {
	GetAll(ctx context.Context) (domain.GuildSettings, error)
}

type pendingStore interface {
	Put(ctx context.Context, p *domain.PendingVerification) error
	Get(ctx context.Context, memberID int64, now time.Time) (*domain.PendingVerification, error)
	Delete(ctx context.Context, memberID int64) error
}

type platform interface {
	GetMember(ctx context.Context, guildID, memberID int64) (*domain.Member, error)
	AddRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error
	RemoveRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error
	Kick(ctx context.Context, guildID, memberID int64, reason string) error
}

type outcomeRecorder interface {
	Record(ctx context.Context, o *domain.Outcome) error
	RecordJoin(ctx context.Context, j *domain.MemberJoin) error
	RecordAttempt(ctx context.Context, a *domain.Attempt) error
}

type operatorAlerter interface {
	Alert(ctx context.Context, subject, message string) error
}

type challengeEncoder interface {
	Encode(text string) string
}

type service struct {
	settings      settingsProvider
	pending       pendingStore
	platform      platform
	recorder      outcomeRecorder
	alerter       operatorAlerter
	encoder       challengeEncoder
	newToken      func() (string, error)
	now           func() time.Time
	recordTimeout time.Duration
	locks         *memberLocks
	configAlerts  *alertGate
}

// ServiceDeps wires the engine. Alerter may be nil; Now defaults to time.Now.
// AlertInterval bounds how often the same misconfiguration is reported.
type ServiceDeps struct {
	Settings      settingsProvider
	Pending       pendingStore
	Platform      platform
	Recorder      outcomeRecorder
	Alerter       operatorAlerter
	Encoder       challengeEncoder
	NewToken      func() (string, error)
	Now           func() time.Time
	RecordTimeout time.Duration
	AlertInterval time.Duration
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		settings:      deps.Settings,
		pending:       deps.Pending,
		platform:      deps.Platform,
		recorder:      deps.Recorder,
		alerter:       deps.Alerter,
		encoder:       deps.Encoder,
		newToken:      deps.NewToken,
		now:           deps.Now,
		recordTimeout: deps.RecordTimeout,
		locks:         newMemberLocks(),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.recordTimeout <= 0 {
		s.recordTimeout = defaultRecordTimeout
	}
	interval := deps.AlertInterval
	if interval <= 0 {
		interval = defaultAlertInterval
	}
	s.configAlerts = newAlertGate(interval)
	return s
}

func (s *service) OnMemberJoin(ctx context.Context, member domain.Member) (*JoinResult, error) {
	cfg, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.lock(member.ID)
	defer unlock()

	now := s.now()
	if member.JoinedAt.IsZero() {
		member.JoinedAt = now
	}
	s.recordJoin(ctx, &domain.MemberJoin{
		MemberID:       member.ID,
		Username:       member.Username,
		GuildID:        cfg.GuildID,
		AccountAgeDays: member.AccountAgeDays(),
		Timestamp:      now,
	})

	res := &JoinResult{Tier: cfg.Level, WelcomeChannelID: cfg.WelcomeChannelID}
	if err := s.ensureUnverified(ctx, cfg, member.ID); err != nil {
		slog.Warn("could not assign unverified role", "member_id", member.ID, "err", err)
		res.RoleAssignErr = err
	}

	switch cfg.Level {
	case domain.TierCommand:
		res.Status = StatusAwaitingCommand
	case domain.TierQRCode:
		ch, err := s.issueChallenge(ctx, member.ID, now)
		if err != nil {
			return nil, err
		}
		res.Status = StatusChallengeIssued
		res.Challenge = ch
	case domain.TierManualApproval:
		res.Status = StatusAwaitingModerator
		res.ApprovalRequest = &domain.ManualApprovalRequest{
			ID:                 id.NewAt(now),
			GuildID:            cfg.GuildID,
			ModeratorChannelID: cfg.ModeratorChannelID,
			MemberID:           member.ID,
			Username:           member.Username,
			AccountCreatedAt:   member.CreatedAt,
			Actions: []domain.DecisionAffordance{
				{Action: domain.DecisionApprove, MemberID: member.ID},
				{Action: domain.DecisionDeny, MemberID: member.ID},
			},
		}
	}
	return res, nil
}

func (s *service) SubmitCommandVerification(ctx context.Context, memberID int64) (*Result, error) {
	cfg, err := s.snapshotForTier(ctx, domain.TierCommand)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.lock(memberID)
	defer unlock()

	m, err := s.platform.GetMember(ctx, cfg.GuildID, memberID)
	if err != nil {
		return nil, fmt.Errorf("get member %d: %w", memberID, err)
	}
	if !m.HasRole(cfg.UnverifiedRoleID) {
		return &Result{Status: StatusAlreadyVerified, LogChannelID: cfg.LogChannelID}, nil
	}
	return s.swapRoles(ctx, cfg, m, domain.MethodCommand, nil)
}

func (s *service) SubmitCode(ctx context.Context, memberID int64, code string, now time.Time) (*Result, error) {
	cfg, err := s.snapshotForTier(ctx, domain.TierQRCode)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.lock(memberID)
	defer unlock()

	p, err := s.pending.Get(ctx, memberID, now)
	switch {
	case errors.Is(err, domain.ErrChallengeExpired):
		return nil, err
	case errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("member %d: %w", memberID, domain.ErrNoActiveChallenge)
	case err != nil:
		return nil, fmt.Errorf("load challenge: %w", err)
	}

	if !codeMatches(p.Token, code) {
		s.recordAttempt(ctx, &domain.Attempt{MemberID: memberID, GuildID: cfg.GuildID, Success: false, Timestamp: now})
		return nil, fmt.Errorf("member %d: %w", memberID, domain.ErrChallengeMismatch)
	}

	// Exactly one consumer can win the delete; a concurrent winner leaves nothing behind.
	if err := s.pending.Delete(ctx, memberID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("member %d: %w", memberID, domain.ErrNoActiveChallenge)
		}
		return nil, fmt.Errorf("consume challenge: %w", err)
	}
	s.recordAttempt(ctx, &domain.Attempt{MemberID: memberID, GuildID: cfg.GuildID, Success: true, Timestamp: now})

	m, err := s.platform.GetMember(ctx, cfg.GuildID, memberID)
	if err != nil {
		return nil, fmt.Errorf("get member %d: %w", memberID, err)
	}
	if !m.HasRole(cfg.UnverifiedRoleID) {
		return &Result{Status: StatusAlreadyVerified, LogChannelID: cfg.LogChannelID}, nil
	}
	return s.swapRoles(ctx, cfg, m, domain.MethodQRCode, nil)
}

func (s *service) ResendCode(ctx context.Context, memberID int64, now time.Time) (*Result, error) {
	cfg, err := s.snapshotForTier(ctx, domain.TierQRCode)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.lock(memberID)
	defer unlock()

	m, err := s.platform.GetMember(ctx, cfg.GuildID, memberID)
	if err != nil {
		return nil, fmt.Errorf("get member %d: %w", memberID, err)
	}
	if !m.HasRole(cfg.UnverifiedRoleID) {
		return &Result{Status: StatusAlreadyVerified, LogChannelID: cfg.LogChannelID}, nil
	}

	p, err := s.pending.Get(ctx, memberID, now)
	if err == nil {
		return &Result{
			Status: StatusChallengeIssued,
			Challenge: &domain.Challenge{
				Token:     p.Token,
				QRCodeURL: s.encoder.Encode(p.Token),
				IssuedAt:  p.IssuedAt,
				Reused:    true,
			},
			LogChannelID: cfg.LogChannelID,
		}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrChallengeExpired) {
		return nil, fmt.Errorf("load challenge: %w", err)
	}

	ch, err := s.issueChallenge(ctx, memberID, now)
	if err != nil {
		return nil, err
	}
	return &Result{Status: StatusChallengeIssued, Challenge: ch, LogChannelID: cfg.LogChannelID}, nil
}

func (s *service) ResolveManualDecision(ctx context.Context, req domain.DecisionRequest) (*Result, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("unknown action %q: %w", req.Action, domain.ErrBadRequest)
	}
	cfg, err := s.snapshotForTier(ctx, domain.TierManualApproval)
	if err != nil {
		return nil, err
	}
	if !req.Moderator.Can(req.Action.RequiredCapability()) {
		return nil, fmt.Errorf("%s requires %s: %w", req.Action, req.Action.RequiredCapability(), domain.ErrForbidden)
	}
	unlock := s.locks.lock(req.MemberID)
	defer unlock()

	// The decision carries no local state; the platform view is the only source of truth.
	m, err := s.platform.GetMember(ctx, cfg.GuildID, req.MemberID)
	if err != nil {
		return nil, fmt.Errorf("get member %d: %w", req.MemberID, err)
	}
	if !m.HasRole(cfg.UnverifiedRoleID) {
		return nil, fmt.Errorf("member %d already resolved: %w", req.MemberID, domain.ErrConflict)
	}

	moderator := req.Moderator
	if req.Action == domain.DecisionApprove {
		return s.swapRoles(ctx, cfg, m, domain.MethodManual, &moderator)
	}

	reason := fmt.Sprintf("verification denied by %s", moderator.Name)
	if err := s.platform.Kick(ctx, cfg.GuildID, m.ID, reason); err != nil {
		return nil, fmt.Errorf("kick member %d: %w", m.ID, err)
	}
	o := s.newOutcome(cfg, m, domain.OutcomeRejected, domain.MethodManual, &moderator)
	s.record(ctx, o)
	return &Result{Status: StatusRejected, Outcome: o, LogChannelID: cfg.LogChannelID}, nil
}

// snapshot reads the full settings set once per operation and validates it.
// Unparseable and missing settings both surface as a *ConfigurationError.
func (s *service) snapshot(ctx context.Context) (domain.GuildSettings, error) {
	cfg, err := s.settings.GetAll(ctx)
	if err == nil {
		err = cfg.Validate()
	}
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		s.alertMisconfigured(ctx, cfgErr)
		return cfg, err
	}
	if err != nil {
		return cfg, fmt.Errorf("load settings: %w", err)
	}
	return cfg, nil
}

// alertMisconfigured reports each distinct misconfiguration at most once per alert interval.
func (s *service) alertMisconfigured(ctx context.Context, cfgErr *domain.ConfigurationError) {
	msg := cfgErr.Error()
	if !s.configAlerts.allow(msg, s.now()) {
		slog.Debug("misconfiguration alert suppressed", "err", msg)
		return
	}
	s.alert(ctx, "Verification is misconfigured", msg)
}

func (s *service) snapshotForTier(ctx context.Context, want domain.Tier) (domain.GuildSettings, error) {
	cfg, err := s.snapshot(ctx)
	if err != nil {
		return cfg, err
	}
	if cfg.Level != want {
		return cfg, fmt.Errorf("active tier is %s, not %s: %w", cfg.Level, want, domain.ErrWrongTier)
	}
	return cfg, nil
}

func (s *service) ensureUnverified(ctx context.Context, cfg domain.GuildSettings, memberID int64) error {
	m, err := s.platform.GetMember(ctx, cfg.GuildID, memberID)
	if err != nil {
		return fmt.Errorf("get member %d: %w", memberID, err)
	}
	if m.HasRole(cfg.UnverifiedRoleID) {
		return nil
	}
	if err := s.platform.AddRole(ctx, cfg.GuildID, memberID, cfg.UnverifiedRoleID, "new member awaiting verification"); err != nil {
		return fmt.Errorf("assign unverified role: %w", err)
	}
	return nil
}

func (s *service) issueChallenge(ctx context.Context, memberID int64, now time.Time) (*domain.Challenge, error) {
	tok, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate challenge: %w", err)
	}
	// Put replaces any prior entry, so a member never holds two live tokens.
	if err := s.pending.Put(ctx, domain.NewPendingVerification(memberID, tok, now)); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}
	return &domain.Challenge{Token: tok, QRCodeURL: s.encoder.Encode(tok), IssuedAt: now}, nil
}

// swapRoles removes the unverified role and then adds the verified one.
// If removal fails nothing has changed. If the add fails the member is left
// with neither role; that is recorded as an error and raised to operators.
func (s *service) swapRoles(ctx context.Context, cfg domain.GuildSettings, m *domain.Member, method domain.Method, moderator *domain.Actor) (*Result, error) {
	reason := "member verified via " + string(method)
	if moderator != nil {
		reason = fmt.Sprintf("verification approved by %s", moderator.Name)
	}
	if err := s.platform.RemoveRole(ctx, cfg.GuildID, m.ID, cfg.UnverifiedRoleID, reason); err != nil {
		return nil, fmt.Errorf("remove unverified role: %w", err)
	}
	if err := s.platform.AddRole(ctx, cfg.GuildID, m.ID, cfg.VerifiedRoleID, reason); err != nil {
		o := s.newOutcome(cfg, m, domain.OutcomeError, method, moderator)
		s.record(ctx, o)
		slog.Error("member left without verification roles", "member_id", m.ID, "err", err)
		s.alert(ctx, "Member left without verification roles",
			fmt.Sprintf("member %d (%s) lost role %d but could not be given role %d: %v",
				m.ID, m.Username, cfg.UnverifiedRoleID, cfg.VerifiedRoleID, err))
		return &Result{Status: StatusError, Outcome: o, LogChannelID: cfg.LogChannelID},
			fmt.Errorf("assign verified role: %w: %w", domain.ErrRoleInconsistent, err)
	}

	o := s.newOutcome(cfg, m, domain.OutcomeApproved, method, moderator)
	s.record(ctx, o)
	return &Result{Status: StatusApproved, Outcome: o, LogChannelID: cfg.LogChannelID}, nil
}

func (s *service) newOutcome(cfg domain.GuildSettings, m *domain.Member, status domain.OutcomeStatus, method domain.Method, moderator *domain.Actor) *domain.Outcome {
	now := s.now()
	o := &domain.Outcome{
		ID:        id.NewAt(now),
		MemberID:  m.ID,
		Username:  m.Username,
		GuildID:   cfg.GuildID,
		Status:    status,
		Method:    method,
		Tier:      cfg.Level,
		Timestamp: now,
	}
	if moderator != nil {
		modID := moderator.ID
		o.ModeratorID = &modID
		o.ModeratorName = moderator.Name
	}
	return o
}

// Recorder failures are logged and never change the decision.

func (s *service) record(ctx context.Context, o *domain.Outcome) {
	ctx, cancel := s.recordCtx(ctx)
	defer cancel()
	if err := s.recorder.Record(ctx, o); err != nil {
		slog.Warn("failed to record verification outcome", "member_id", o.MemberID, "status", o.Status, "err", err)
	}
}

func (s *service) recordJoin(ctx context.Context, j *domain.MemberJoin) {
	ctx, cancel := s.recordCtx(ctx)
	defer cancel()
	if err := s.recorder.RecordJoin(ctx, j); err != nil {
		slog.Warn("failed to record member join", "member_id", j.MemberID, "err", err)
	}
}

func (s *service) recordAttempt(ctx context.Context, a *domain.Attempt) {
	ctx, cancel := s.recordCtx(ctx)
	defer cancel()
	if err := s.recorder.RecordAttempt(ctx, a); err != nil {
		slog.Warn("failed to record verification attempt", "member_id", a.MemberID, "err", err)
	}
}

func (s *service) recordCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.recordTimeout)
}

func (s *service) alert(ctx context.Context, subject, message string) {
	if s.alerter == nil {
		return
	}
	if err := s.alerter.Alert(context.WithoutCancel(ctx), subject, message); err != nil {
		slog.Error("failed to alert operators", "subject", subject, "err", err)
	}
}

// codeMatches compares a submission with the issued token, ignoring case,
// surrounding whitespace and spoiler markers.
func codeMatches(token, submitted string) bool {
	submitted = strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(submitted), "||", ""))
	return submitted != "" && strings.EqualFold(token, submitted)
}
