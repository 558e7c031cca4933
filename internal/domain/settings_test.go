package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func complete(level Tier) GuildSettings {
	return GuildSettings{GuildID: 1, Level: level, UnverifiedRoleID: 2, VerifiedRoleID: 3}
}

func missingKeys(t *testing.T, err error) []string {
	t.Helper()
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "expected *ConfigurationError, got %v", err)
	return cfgErr.Missing
}

func TestValidate_CompletePerTier(t *testing.T) {
	assert.NoError(t, complete(TierCommand).Validate())
	assert.NoError(t, complete(TierQRCode).Validate())

	manual := complete(TierManualApproval)
	manual.ModeratorChannelID = 4
	assert.NoError(t, manual.Validate())
}

func TestValidate_ReportsEveryMissingKey(t *testing.T) {
	err := GuildSettings{Level: TierCommand}.Validate()
	assert.Equal(t, []string{KeyGuildID, KeyUnverifiedRoleID, KeyVerifiedRoleID}, missingKeys(t, err))
}

func TestValidate_ModeratorChannelOnlyForManual(t *testing.T) {
	assert.Equal(t, []string{KeyModeratorChannelID}, missingKeys(t, complete(TierManualApproval).Validate()))
}

func TestValidate_InvalidLevel(t *testing.T) {
	assert.Equal(t, []string{KeyVerificationLevel}, missingKeys(t, complete(Tier(7)).Validate()))
}

func TestParseGuildSettings(t *testing.T) {
	s, err := ParseGuildSettings(map[string]string{
		KeyVerificationLevel:  "3",
		KeyGuildID:            "1000",
		KeyUnverifiedRoleID:   "2000",
		KeyVerifiedRoleID:     "3000",
		KeyModeratorChannelID: "4000",
		KeyLogChannelID:       "",
	})

	require.NoError(t, err)
	assert.Equal(t, GuildSettings{
		GuildID: 1000, Level: TierManualApproval, UnverifiedRoleID: 2000, VerifiedRoleID: 3000, ModeratorChannelID: 4000,
	}, s)
	assert.NoError(t, s.Validate())
}

func malformedKeys(t *testing.T, err error) []string {
	t.Helper()
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "expected *ConfigurationError, got %v", err)
	return cfgErr.Malformed
}

func TestParseGuildSettings_MalformedID(t *testing.T) {
	_, err := ParseGuildSettings(map[string]string{KeyVerifiedRoleID: "role"})
	assert.Equal(t, []string{KeyVerifiedRoleID}, malformedKeys(t, err))
}

func TestParseGuildSettings_MalformedLevel(t *testing.T) {
	_, err := ParseGuildSettings(map[string]string{KeyVerificationLevel: "two"})
	assert.Equal(t, []string{KeyVerificationLevel}, malformedKeys(t, err))
}

func TestParseGuildSettings_ReportsEveryMalformedKey(t *testing.T) {
	_, err := ParseGuildSettings(map[string]string{
		KeyVerificationLevel: "1",
		KeyGuildID:           "1000",
		KeyVerifiedRoleID:    "99999999999999999999",
		KeyLogChannelID:      "general",
	})
	assert.Equal(t, []string{KeyVerifiedRoleID, KeyLogChannelID}, malformedKeys(t, err))
	assert.EqualError(t, err, "malformed configuration: VERIFIED_ROLE_ID, LOG_CHANNEL_ID")
}

func TestConfigurationError_MissingAndMalformed(t *testing.T) {
	err := &ConfigurationError{Missing: []string{KeyGuildID}, Malformed: []string{KeyLogChannelID}}
	assert.EqualError(t, err, "missing required configuration: GUILD_ID; malformed configuration: LOG_CHANNEL_ID")
}

func TestParseGuildSettings_OutOfRangeLevelLeftForValidate(t *testing.T) {
	s, err := ParseGuildSettings(map[string]string{KeyVerificationLevel: "9"})
	require.NoError(t, err)
	assert.Contains(t, missingKeys(t, s.Validate()), KeyVerificationLevel)
}

func TestIsSettingKey(t *testing.T) {
	assert.True(t, IsSettingKey(KeyLogChannelID))
	assert.False(t, IsSettingKey("log_channel_id"))
}
