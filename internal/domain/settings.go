package domain

import (
	"slices"
	"strconv"
)

// Guild setting keys as stored by the settings provider.
const (
	KeyVerificationLevel  = "VERIFICATION_LEVEL"
	KeyUnverifiedRoleID   = "UNVERIFIED_ROLE_ID"
	KeyVerifiedRoleID     = "VERIFIED_ROLE_ID"
	KeyGuildID            = "GUILD_ID"
	KeyWelcomeChannelID   = "WELCOME_CHANNEL_ID"
	KeyModeratorChannelID = "MODERATOR_CHANNEL_ID"
	KeyLogChannelID       = "LOG_CHANNEL_ID"
)

// SettingKeys lists every key the provider accepts in Set.
var SettingKeys = []string{
	KeyVerificationLevel,
	KeyUnverifiedRoleID,
	KeyVerifiedRoleID,
	KeyGuildID,
	KeyWelcomeChannelID,
	KeyModeratorChannelID,
	KeyLogChannelID,
}

// GuildSettings is an immutable point-in-time snapshot of a guild's verification settings.
// Zero IDs mean "not configured".
type GuildSettings struct {
	GuildID            int64 `json:"guild_id,string"`
	Level              Tier  `json:"verification_level"`
	UnverifiedRoleID   int64 `json:"unverified_role_id,string"`
	VerifiedRoleID     int64 `json:"verified_role_id,string"`
	WelcomeChannelID   int64 `json:"welcome_channel_id,string,omitempty"`
	ModeratorChannelID int64 `json:"moderator_channel_id,string,omitempty"`
	LogChannelID       int64 `json:"log_channel_id,string,omitempty"`
}

// Validate checks the keys required by the active tier and returns a *ConfigurationError
// listing all of the missing ones.
func (s GuildSettings) Validate() error {
	var missing []string
	if !s.Level.Valid() {
		missing = append(missing, KeyVerificationLevel)
	}
	if s.GuildID == 0 {
		missing = append(missing, KeyGuildID)
	}
	if s.UnverifiedRoleID == 0 {
		missing = append(missing, KeyUnverifiedRoleID)
	}
	if s.VerifiedRoleID == 0 {
		missing = append(missing, KeyVerifiedRoleID)
	}
	if s.Level == TierManualApproval && s.ModeratorChannelID == 0 {
		missing = append(missing, KeyModeratorChannelID)
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// ParseGuildSettings builds a snapshot from stored string values. Absent keys stay zero
// so Validate can report them. Present but unparseable values are reported together
// as a *ConfigurationError listing the malformed keys.
func ParseGuildSettings(values map[string]string) (GuildSettings, error) {
	var s GuildSettings
	targets := map[string]*int64{
		KeyGuildID:            &s.GuildID,
		KeyUnverifiedRoleID:   &s.UnverifiedRoleID,
		KeyVerifiedRoleID:     &s.VerifiedRoleID,
		KeyWelcomeChannelID:   &s.WelcomeChannelID,
		KeyModeratorChannelID: &s.ModeratorChannelID,
		KeyLogChannelID:       &s.LogChannelID,
	}
	var malformed []string
	for _, key := range SettingKeys {
		raw, ok := values[key]
		if !ok || raw == "" {
			continue
		}
		if key == KeyVerificationLevel {
			level, err := strconv.Atoi(raw)
			if err != nil {
				malformed = append(malformed, key)
				continue
			}
			// An out-of-range stored level is left for Validate to report.
			s.Level = Tier(level)
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			malformed = append(malformed, key)
			continue
		}
		*targets[key] = v
	}
	if len(malformed) > 0 {
		return s, &ConfigurationError{Malformed: malformed}
	}
	return s, nil
}

// IsSettingKey reports whether key is a known guild setting.
func IsSettingKey(key string) bool {
	return slices.Contains(SettingKeys, key)
}

// SetLevelRequest is the body of the administrator "set level" action.
// Range checking is left to the settings service so 0 is reported as an invalid level.
type SetLevelRequest struct {
	Level int `json:"level"`
}
