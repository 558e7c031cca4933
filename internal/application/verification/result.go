package verification

import "github.com/go-member-gate/internal/domain"

// Status is the informational result of an engine operation that did not fail.
type Status string

const (
	StatusApproved          Status = "approved"
	StatusRejected          Status = "rejected"
	StatusAlreadyVerified   Status = "already_verified"
	StatusChallengeIssued   Status = "challenge_issued"
	StatusAwaitingCommand   Status = "awaiting_command"
	StatusAwaitingModerator Status = "awaiting_moderator"
	StatusError             Status = "error"
)

// Result is returned by every action after a join.
type Result struct {
	Status       Status            `json:"status"`
	Outcome      *domain.Outcome   `json:"outcome,omitempty"`
	Challenge    *domain.Challenge `json:"challenge,omitempty"`
	LogChannelID int64             `json:"log_channel_id,string,omitempty"`
}

// JoinResult tells the gateway what to render after a member joined.
type JoinResult struct {
	Status           Status                        `json:"status"`
	Tier             domain.Tier                   `json:"tier"`
	WelcomeChannelID int64                         `json:"welcome_channel_id,string,omitempty"`
	Challenge        *domain.Challenge             `json:"challenge,omitempty"`
	ApprovalRequest  *domain.ManualApprovalRequest `json:"approval_request,omitempty"`
	// RoleAssignErr is set when the unverified role could not be granted. The join flow
	// continues regardless.
	RoleAssignErr error `json:"-"`
}
