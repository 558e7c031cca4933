// Package sqlite stores verification outcomes, joins and attempts in SQLite and
// answers the statistics queries over them.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/go-member-gate/internal/domain"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite file at path and migrates the ledger tables.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(gormsqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&verificationRow{}, &memberJoinRow{}, &attemptRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

// Recorder is append-only: rows are inserted and never updated.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Record(ctx context.Context, o *domain.Outcome) error {
	row := verificationRow{
		ID:            o.ID,
		MemberID:      o.MemberID,
		Username:      o.Username,
		GuildID:       o.GuildID,
		Status:        string(o.Status),
		Method:        string(o.Method),
		Tier:          int(o.Tier),
		ModeratorID:   o.ModeratorID,
		ModeratorName: o.ModeratorName,
		RecordedAt:    o.Timestamp.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

func (r *Recorder) RecordJoin(ctx context.Context, j *domain.MemberJoin) error {
	row := memberJoinRow{
		MemberID:       j.MemberID,
		Username:       j.Username,
		GuildID:        j.GuildID,
		AccountAgeDays: j.AccountAgeDays,
		JoinedAt:       j.Timestamp.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert member join: %w", err)
	}
	return nil
}

func (r *Recorder) RecordAttempt(ctx context.Context, a *domain.Attempt) error {
	row := attemptRow{
		MemberID:    a.MemberID,
		GuildID:     a.GuildID,
		Success:     a.Success,
		AttemptedAt: a.Timestamp.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// PeriodStats aggregates everything recorded for guildID since the given instant.
// Rates are left for the caller to derive.
func (r *Recorder) PeriodStats(ctx context.Context, guildID int64, since time.Time) (*domain.PeriodStats, error) {
	since = since.UTC()
	var groups []struct {
		Status string
		Method string
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&verificationRow{}).
		Select("status, method, count(*) AS n").
		Where("guild_id = ? AND recorded_at >= ?", guildID, since).
		Group("status, method").
		Scan(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate verifications: %w", err)
	}

	st := &domain.PeriodStats{ByMethod: map[domain.Method]int{}}
	for _, g := range groups {
		st.TotalVerifications += g.N
		st.ByMethod[domain.Method(g.Method)] += int(g.N)
		switch domain.OutcomeStatus(g.Status) {
		case domain.OutcomeApproved:
			st.Approved += g.N
		case domain.OutcomeRejected:
			st.Rejected += g.N
		}
	}

	var joins struct {
		N   int64
		Avg float64
	}
	err = r.db.WithContext(ctx).Model(&memberJoinRow{}).
		Select("count(*) AS n, coalesce(avg(account_age_days), 0) AS avg").
		Where("guild_id = ? AND joined_at >= ?", guildID, since).
		Scan(&joins).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate joins: %w", err)
	}
	st.NewMembers = joins.N
	st.AvgAccountAgeDays = joins.Avg
	return st, nil
}

func (r *Recorder) TopModerators(ctx context.Context, guildID int64, limit int) ([]domain.ModeratorCount, error) {
	var out []domain.ModeratorCount
	err := r.db.WithContext(ctx).Model(&verificationRow{}).
		Select("moderator_id, max(moderator_name) AS moderator_name, count(*) AS count").
		Where("guild_id = ? AND moderator_id IS NOT NULL", guildID).
		Group("moderator_id").
		Order("count DESC, moderator_id").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("top moderators: %w", err)
	}
	return out, nil
}

func (r *Recorder) Recent(ctx context.Context, guildID int64, limit int) ([]domain.RecentVerification, error) {
	var rows []verificationRow
	err := r.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recent verifications: %w", err)
	}
	return toRecent(rows), nil
}

func (r *Recorder) MemberHistory(ctx context.Context, guildID, memberID int64, limit int) (*domain.MemberHistory, error) {
	var rows []verificationRow
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND member_id = ?", guildID, memberID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("member verifications: %w", err)
	}

	var attempts int64
	err = r.db.WithContext(ctx).Model(&attemptRow{}).
		Where("guild_id = ? AND member_id = ?", guildID, memberID).
		Count(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("member attempts: %w", err)
	}

	return &domain.MemberHistory{MemberID: memberID, Verifications: toRecent(rows), Attempts: attempts}, nil
}

func toRecent(rows []verificationRow) []domain.RecentVerification {
	out := make([]domain.RecentVerification, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.RecentVerification{
			Username:  row.Username,
			Status:    domain.OutcomeStatus(row.Status),
			Method:    domain.Method(row.Method),
			Timestamp: row.RecordedAt,
		})
	}
	return out
}
