package domain

import "time"

// PeriodStats aggregates outcomes and joins for one guild over a trailing window.
type PeriodStats struct {
	Days               int            `json:"days"`
	TotalVerifications int64          `json:"total_verifications"`
	Approved           int64          `json:"approved"`
	Rejected           int64          `json:"rejected"`
	ByMethod           map[Method]int `json:"by_method"`
	NewMembers         int64          `json:"new_members"`
	AvgAccountAgeDays  float64        `json:"avg_account_age_days"`
	SuccessRate        float64        `json:"success_rate"`
}

type ModeratorCount struct {
	ModeratorID   int64  `json:"moderator_id,string"`
	ModeratorName string `json:"moderator_name"`
	Count         int64  `json:"count"`
}

type RecentVerification struct {
	Username  string        `json:"username"`
	Status    OutcomeStatus `json:"status"`
	Method    Method        `json:"method"`
	Timestamp time.Time     `json:"timestamp"`
}

// MemberHistory is what moderators see when they look a member up.
type MemberHistory struct {
	MemberID      int64                `json:"member_id,string"`
	Verifications []RecentVerification `json:"verifications"`
	Attempts      int64                `json:"attempts"`
}
