package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-member-gate/internal/domain"
	"github.com/go-member-gate/internal/pkg/validate"
)

type Service interface {
	Get(ctx context.Context, actor domain.Actor) (domain.GuildSettings, error)
	SetLevel(ctx context.Context, actor domain.Actor, level int) (domain.GuildSettings, error)
	Set(ctx context.Context, actor domain.Actor, key, value string) (domain.GuildSettings, error)
}

type settingsStore interface {
	GetAll(ctx context.Context) (domain.GuildSettings, error)
	Set(ctx context.Context, key, value string) error
}

type service struct {
	store settingsStore
}

func NewService(store settingsStore) Service {
	return &service{store: store}
}

func (s *service) Get(ctx context.Context, actor domain.Actor) (domain.GuildSettings, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.GuildSettings{}, err
	}
	return s.store.GetAll(ctx)
}

// SetLevel switches the active tier. Pending state from the previous tier is left as is.
func (s *service) SetLevel(ctx context.Context, actor domain.Actor, level int) (domain.GuildSettings, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.GuildSettings{}, err
	}
	tier, err := domain.ParseTier(level)
	if err != nil {
		return domain.GuildSettings{}, err
	}
	if err := s.store.Set(ctx, domain.KeyVerificationLevel, strconv.Itoa(int(tier))); err != nil {
		return domain.GuildSettings{}, fmt.Errorf("set verification level: %w", err)
	}
	slog.Info("verification level changed", "level", int(tier), "tier", tier.String(), "actor_id", actor.ID)
	return s.store.GetAll(ctx)
}

// Set stores one identifier setting. The level goes through SetLevel's range check.
func (s *service) Set(ctx context.Context, actor domain.Actor, key, value string) (domain.GuildSettings, error) {
	if key == domain.KeyVerificationLevel {
		level, err := strconv.Atoi(value)
		if err != nil {
			return domain.GuildSettings{}, fmt.Errorf("level %q: %w", value, domain.ErrInvalidLevel)
		}
		return s.SetLevel(ctx, actor, level)
	}
	if err := requireAdmin(actor); err != nil {
		return domain.GuildSettings{}, err
	}
	if !domain.IsSettingKey(key) {
		return domain.GuildSettings{}, fmt.Errorf("unknown setting %q: %w", key, domain.ErrNotFound)
	}
	if err := validate.Var(key, value, "required,number"); err != nil {
		return domain.GuildSettings{}, fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
	}
	// Stored values must round-trip through the snapshot parser or every later read fails.
	if _, err := strconv.ParseInt(value, 10, 64); err != nil {
		return domain.GuildSettings{}, fmt.Errorf("%s=%q is not an identifier: %w", key, value, domain.ErrBadRequest)
	}
	if err := s.store.Set(ctx, key, value); err != nil {
		return domain.GuildSettings{}, fmt.Errorf("set %s: %w", key, err)
	}
	slog.Info("guild setting changed", "key", key, "actor_id", actor.ID)
	return s.store.GetAll(ctx)
}

func requireAdmin(actor domain.Actor) error {
	if !actor.Can(domain.CapabilityAdministrator) {
		return fmt.Errorf("administrator capability required: %w", domain.ErrForbidden)
	}
	return nil
}
