package http

import (
	"context"
	"errors"
	"time"

	"github.com/go-member-gate/internal/domain"
)

// SettingsStore is the minimal interface the router requires from the guild settings store.
type SettingsStore interface {
	GetAll(ctx context.Context) (domain.GuildSettings, error)
	Set(ctx context.Context, key, value string) error
}

// PendingStore is the minimal interface the router requires from a pending-challenge store.
type PendingStore interface {
	Put(ctx context.Context, p *domain.PendingVerification) error
	Get(ctx context.Context, memberID int64, now time.Time) (*domain.PendingVerification, error)
	Delete(ctx context.Context, memberID int64) error
}

// Platform is the minimal interface the router requires from the chat-platform client.
type Platform interface {
	GetMember(ctx context.Context, guildID, memberID int64) (*domain.Member, error)
	AddRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error
	RemoveRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error
	Kick(ctx context.Context, guildID, memberID int64, reason string) error
}

// Recorder is the minimal interface the router requires from the outcome ledger.
// The same store answers the statistics queries.
type Recorder interface {
	Record(ctx context.Context, o *domain.Outcome) error
	RecordJoin(ctx context.Context, j *domain.MemberJoin) error
	RecordAttempt(ctx context.Context, a *domain.Attempt) error

	PeriodStats(ctx context.Context, guildID int64, since time.Time) (*domain.PeriodStats, error)
	TopModerators(ctx context.Context, guildID int64, limit int) ([]domain.ModeratorCount, error)
	Recent(ctx context.Context, guildID int64, limit int) ([]domain.RecentVerification, error)
	MemberHistory(ctx context.Context, guildID, memberID int64, limit int) (*domain.MemberHistory, error)
}

// Alerter is the minimal interface the router requires from the operator alert channel.
type Alerter interface {
	Alert(ctx context.Context, subject, message string) error
}

// fanout delivers each alert to every channel and reports all failures.
type fanout []Alerter

func (f fanout) Alert(ctx context.Context, subject, message string) error {
	var errs []error
	for _, a := range f {
		if err := a.Alert(ctx, subject, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
