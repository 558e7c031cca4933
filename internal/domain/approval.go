package domain

import "time"

type DecisionAction string

const (
	DecisionApprove DecisionAction = "approve"
	DecisionDeny    DecisionAction = "deny"
)

func (a DecisionAction) Valid() bool {
	return a == DecisionApprove || a == DecisionDeny
}

// RequiredCapability is the platform capability a moderator must hold to take the action.
func (a DecisionAction) RequiredCapability() Capability {
	if a == DecisionDeny {
		return CapabilityKickMembers
	}
	return CapabilityManageRoles
}

// DecisionAffordance is one moderator-facing button. MemberID travels inside it so the
// decision stays resolvable after a restart without any local state.
type DecisionAffordance struct {
	Action   DecisionAction `json:"action"`
	MemberID int64          `json:"member_id,string"`
}

// ManualApprovalRequest is emitted on join under the manual tier for the gateway to render
// into the moderator channel. The engine keeps no copy of it.
type ManualApprovalRequest struct {
	ID                 string               `json:"id"`
	GuildID            int64                `json:"guild_id,string"`
	ModeratorChannelID int64                `json:"moderator_channel_id,string"`
	MemberID           int64                `json:"member_id,string"`
	Username           string               `json:"username"`
	AccountCreatedAt   time.Time            `json:"account_created_at"`
	Actions            []DecisionAffordance `json:"actions"`
}

// DecisionRequest is a structured moderator decision as it arrives from the platform.
type DecisionRequest struct {
	MemberID  int64          `json:"member_id,string" validate:"required"`
	Action    DecisionAction `json:"action" validate:"required,oneof=approve deny"`
	Moderator Actor          `json:"-"`
}
