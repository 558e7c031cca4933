package domain

import "time"

type OutcomeStatus string

const (
	OutcomeApproved OutcomeStatus = "approved"
	OutcomeRejected OutcomeStatus = "rejected"
	OutcomeError    OutcomeStatus = "error"
)

type Method string

const (
	MethodCommand Method = "command"
	MethodQRCode  Method = "qr_code"
	MethodManual  Method = "manual"
)

// Outcome is the immutable record of one completed verification attempt.
// It is produced exactly once per attempt and only ever appended.
type Outcome struct {
	ID            string        `json:"id"`
	MemberID      int64         `json:"member_id,string"`
	Username      string        `json:"username"`
	GuildID       int64         `json:"guild_id,string"`
	Status        OutcomeStatus `json:"status"`
	Method        Method        `json:"method"`
	Tier          Tier          `json:"tier"`
	ModeratorID   *int64        `json:"moderator_id,string,omitempty"`
	ModeratorName string        `json:"moderator_name,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// MemberJoin is the join-ledger entry appended for every member join.
type MemberJoin struct {
	MemberID       int64     `json:"member_id,string"`
	Username       string    `json:"username"`
	GuildID        int64     `json:"guild_id,string"`
	AccountAgeDays int       `json:"account_age_days"`
	Timestamp      time.Time `json:"timestamp"`
}

// Attempt is one code submission, successful or not.
type Attempt struct {
	MemberID  int64
	GuildID   int64
	Success   bool
	Timestamp time.Time
}
