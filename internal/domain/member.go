package domain

import (
	"slices"
	"time"
)

// Member is a platform member as seen at the moment it was fetched. It is owned by the
// platform; the service only references it by ID and never caches it between operations.
type Member struct {
	ID        int64     `json:"id,string" validate:"required"`
	GuildID   int64     `json:"guild_id,string"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	JoinedAt  time.Time `json:"joined_at"`
	RoleIDs   []int64   `json:"role_ids"`
}

func (m *Member) HasRole(roleID int64) bool {
	return slices.Contains(m.RoleIDs, roleID)
}

// AccountAgeDays is the number of whole days between account creation and joining.
func (m *Member) AccountAgeDays() int {
	if m.CreatedAt.IsZero() || m.JoinedAt.Before(m.CreatedAt) {
		return 0
	}
	return int(m.JoinedAt.Sub(m.CreatedAt) / (24 * time.Hour))
}

// Capability is a platform permission held by an acting user.
type Capability string

const (
	CapabilityAdministrator Capability = "administrator"
	CapabilityManageRoles   Capability = "manage_roles"
	CapabilityKickMembers   Capability = "kick_members"
	CapabilityManageGuild   Capability = "manage_guild"
)

// Actor is the user on whose behalf an action runs. Capabilities are asserted by the
// platform gateway, not computed here.
type Actor struct {
	ID           int64
	Name         string
	GuildID      int64
	Capabilities []Capability
}

func (a Actor) Can(c Capability) bool {
	return slices.Contains(a.Capabilities, c) || slices.Contains(a.Capabilities, CapabilityAdministrator)
}
