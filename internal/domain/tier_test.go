package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	for _, level := range []int{1, 2, 3} {
		tier, err := ParseTier(level)
		require.NoError(t, err)
		assert.Equal(t, Tier(level), tier)
	}
	for _, level := range []int{0, 4, -1} {
		_, err := ParseTier(level)
		assert.ErrorIs(t, err, ErrInvalidLevel)
	}
}

func TestTier_Method(t *testing.T) {
	assert.Equal(t, MethodCommand, TierCommand.Method())
	assert.Equal(t, MethodQRCode, TierQRCode.Method())
	assert.Equal(t, MethodManual, TierManualApproval.Method())
}

func TestDecisionAction(t *testing.T) {
	assert.True(t, DecisionApprove.Valid())
	assert.False(t, DecisionAction("ban").Valid())
	assert.Equal(t, CapabilityManageRoles, DecisionApprove.RequiredCapability())
	assert.Equal(t, CapabilityKickMembers, DecisionDeny.RequiredCapability())
}

func TestActor_Can(t *testing.T) {
	mod := Actor{Capabilities: []Capability{CapabilityManageRoles}}
	assert.True(t, mod.Can(CapabilityManageRoles))
	assert.False(t, mod.Can(CapabilityKickMembers))

	admin := Actor{Capabilities: []Capability{CapabilityAdministrator}}
	assert.True(t, admin.Can(CapabilityKickMembers))
}

func TestMember_AccountAgeDays(t *testing.T) {
	joined := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	m := Member{CreatedAt: joined.Add(-(10*24*time.Hour + time.Hour)), JoinedAt: joined}
	assert.Equal(t, 10, m.AccountAgeDays())

	assert.Equal(t, 0, (&Member{JoinedAt: joined}).AccountAgeDays())
	assert.Equal(t, 0, (&Member{CreatedAt: joined.Add(time.Hour), JoinedAt: joined}).AccountAgeDays())
}

func TestPendingVerification_ExpiresAfterTTL(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := NewPendingVerification(42, "AB12CD34", issued)

	assert.False(t, p.Expired(issued.Add(ChallengeTTL)))
	assert.True(t, p.Expired(issued.Add(ChallengeTTL+time.Millisecond)))
	assert.Equal(t, issued.Add(ChallengeTTL).Unix(), p.ExpiresAt)
}
