package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-member-gate/internal/domain"
)

const (
	DefaultModeratorLimit = 5
	DefaultRecentLimit    = 10
	MaxRecentLimit        = 25
	MaxDays               = 365
	memberHistoryLimit    = 5
)

type Service interface {
	Period(ctx context.Context, actor domain.Actor, days int) (*domain.PeriodStats, error)
	TopModerators(ctx context.Context, actor domain.Actor, limit int) ([]domain.ModeratorCount, error)
	Recent(ctx context.Context, actor domain.Actor, limit int) ([]domain.RecentVerification, error)
	MemberHistory(ctx context.Context, actor domain.Actor, memberID int64) (*domain.MemberHistory, error)
}

type statsStore interface {
	PeriodStats(ctx context.Context, guildID int64, since time.Time) (*domain.PeriodStats, error)
	TopModerators(ctx context.Context, guildID int64, limit int) ([]domain.ModeratorCount, error)
	Recent(ctx context.Context, guildID int64, limit int) ([]domain.RecentVerification, error)
	MemberHistory(ctx context.Context, guildID, memberID int64, limit int) (*domain.MemberHistory, error)
}

type settingsProvider interface {
	GetAll(ctx context.Context) (domain.GuildSettings, error)
}

type service struct {
	store    statsStore
	settings settingsProvider
	now      func() time.Time
}

// NewService reads statistics for the guild named in the settings, which is the
// guild every outcome is recorded under.
func NewService(store statsStore, settings settingsProvider, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{store: store, settings: settings, now: now}
}

func (s *service) Period(ctx context.Context, actor domain.Actor, days int) (*domain.PeriodStats, error) {
	if !actor.Can(domain.CapabilityManageGuild) {
		return nil, fmt.Errorf("manage_guild capability required: %w", domain.ErrForbidden)
	}
	if days < 1 || days > MaxDays {
		return nil, fmt.Errorf("days must be between 1 and %d: %w", MaxDays, domain.ErrBadRequest)
	}
	guildID, err := s.guild(ctx, actor)
	if err != nil {
		return nil, err
	}
	st, err := s.store.PeriodStats(ctx, guildID, s.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	st.Days = days
	st.AvgAccountAgeDays = round1(st.AvgAccountAgeDays)
	if st.TotalVerifications > 0 {
		st.SuccessRate = round1(float64(st.Approved) / float64(st.TotalVerifications) * 100)
	} else {
		st.SuccessRate = 0
	}
	return st, nil
}

func (s *service) TopModerators(ctx context.Context, actor domain.Actor, limit int) ([]domain.ModeratorCount, error) {
	if !actor.Can(domain.CapabilityManageGuild) {
		return nil, fmt.Errorf("manage_guild capability required: %w", domain.ErrForbidden)
	}
	if limit == 0 {
		limit = DefaultModeratorLimit
	}
	if limit < 1 || limit > MaxRecentLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d: %w", MaxRecentLimit, domain.ErrBadRequest)
	}
	guildID, err := s.guild(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.store.TopModerators(ctx, guildID, limit)
}

func (s *service) Recent(ctx context.Context, actor domain.Actor, limit int) ([]domain.RecentVerification, error) {
	if !actor.Can(domain.CapabilityManageGuild) {
		return nil, fmt.Errorf("manage_guild capability required: %w", domain.ErrForbidden)
	}
	if limit == 0 {
		limit = DefaultRecentLimit
	}
	if limit < 1 || limit > MaxRecentLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d: %w", MaxRecentLimit, domain.ErrBadRequest)
	}
	guildID, err := s.guild(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.store.Recent(ctx, guildID, limit)
}

func (s *service) MemberHistory(ctx context.Context, actor domain.Actor, memberID int64) (*domain.MemberHistory, error) {
	if !actor.Can(domain.CapabilityManageRoles) {
		return nil, fmt.Errorf("manage_roles capability required: %w", domain.ErrForbidden)
	}
	if memberID <= 0 {
		return nil, fmt.Errorf("member id: %w", domain.ErrBadRequest)
	}
	guildID, err := s.guild(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.store.MemberHistory(ctx, guildID, memberID, memberHistoryLimit)
}

// guild resolves the configured guild. Stats need only the guild ID, not a complete
// tier configuration. Tokens minted for some other guild are refused.
func (s *service) guild(ctx context.Context, actor domain.Actor) (int64, error) {
	cfg, err := s.settings.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}
	if cfg.GuildID == 0 {
		return 0, &domain.ConfigurationError{Missing: []string{domain.KeyGuildID}}
	}
	if actor.GuildID != 0 && actor.GuildID != cfg.GuildID {
		return 0, fmt.Errorf("actor guild %d is not the configured guild: %w", actor.GuildID, domain.ErrForbidden)
	}
	return cfg.GuildID, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
