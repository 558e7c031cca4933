package sqlite

import "time"

type verificationRow struct {
	ID            string `gorm:"primaryKey;size:26"`
	MemberID      int64  `gorm:"index"`
	Username      string
	GuildID       int64 `gorm:"index:idx_verifications_guild_time,priority:1"`
	Status        string
	Method        string
	Tier          int
	ModeratorID   *int64
	ModeratorName string
	RecordedAt    time.Time `gorm:"index:idx_verifications_guild_time,priority:2"`
}

func (verificationRow) TableName() string { return "verifications" }

type memberJoinRow struct {
	ID             int   `gorm:"primaryKey;autoincrement"`
	MemberID       int64 `gorm:"index"`
	Username       string
	GuildID        int64 `gorm:"index:idx_member_joins_guild_time,priority:1"`
	AccountAgeDays int
	JoinedAt       time.Time `gorm:"index:idx_member_joins_guild_time,priority:2"`
}

func (memberJoinRow) TableName() string { return "member_joins" }

type attemptRow struct {
	ID          int   `gorm:"primaryKey;autoincrement"`
	MemberID    int64 `gorm:"index:idx_attempts_guild_member,priority:2"`
	GuildID     int64 `gorm:"index:idx_attempts_guild_member,priority:1"`
	Success     bool
	AttemptedAt time.Time
}

func (attemptRow) TableName() string { return "verification_attempts" }
