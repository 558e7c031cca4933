package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/go-member-gate/internal/config"
	"github.com/go-member-gate/internal/domain"
	jwtinfra "github.com/go-member-gate/internal/infrastructure/jwt"
	"github.com/go-member-gate/internal/infrastructure/memory"
	"github.com/go-member-gate/internal/infrastructure/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID      int64 = 1000
	unverifiedID int64 = 2000
	verifiedID   int64 = 3000
	memberID     int64 = 42
)

type staticSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *staticSettings) GetAll(context.Context) (domain.GuildSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ParseGuildSettings(s.values)
}

func (s *staticSettings) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

type fakePlatform struct {
	mu      sync.Mutex
	members map[int64]*domain.Member
}

func (p *fakePlatform) GetMember(_ context.Context, _, id int64) (*domain.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.members[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	cp.RoleIDs = slices.Clone(m.RoleIDs)
	return &cp, nil
}

func (p *fakePlatform) AddRole(_ context.Context, _, id, roleID int64, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.members[id]
	if !slices.Contains(m.RoleIDs, roleID) {
		m.RoleIDs = append(m.RoleIDs, roleID)
	}
	return nil
}

func (p *fakePlatform) RemoveRole(_ context.Context, _, id, roleID int64, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.members[id]
	m.RoleIDs = slices.DeleteFunc(m.RoleIDs, func(r int64) bool { return r == roleID })
	return nil
}

func (p *fakePlatform) Kick(_ context.Context, _, id int64, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.members, id)
	return nil
}

func (p *fakePlatform) roles(id int64) []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.members[id].RoleIDs)
}

type testServer struct {
	handler  http.Handler
	jwt      *jwtinfra.Provider
	platform *fakePlatform
	settings *staticSettings
	alerts   *recordingAlerter
}

func newTestServer(t *testing.T, level string) *testServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	provider := jwtinfra.NewProviderFromKeys(key, &key.PublicKey, time.Hour)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)

	settings := &staticSettings{values: map[string]string{
		domain.KeyVerificationLevel:  level,
		domain.KeyGuildID:            "1000",
		domain.KeyUnverifiedRoleID:   "2000",
		domain.KeyVerifiedRoleID:     "3000",
		domain.KeyModeratorChannelID: "4000",
	}}
	platform := &fakePlatform{members: map[int64]*domain.Member{
		memberID: {ID: memberID, GuildID: guildID, Username: "newbie", CreatedAt: time.Now().AddDate(0, 0, -30)},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	alerts := &recordingAlerter{}
	cfg := &config.Config{AllowedOrigins: []string{"*"}, RateLimitPerMinute: 10, RateLimitBurst: 5}
	h := NewRouter(ctx, cfg, &Deps{
		Settings:    settings,
		Pending:     memory.NewPendingStore(),
		Platform:    platform,
		Recorder:    sqlite.NewRecorder(db),
		Alerters:    []Alerter{alerts},
		JWTProvider: provider,
	})
	return &testServer{handler: h, jwt: provider, platform: platform, settings: settings, alerts: alerts}
}

func (s *testServer) do(t *testing.T, method, path string, actor *domain.Actor, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		tok, err := s.jwt.Sign(*actor)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

var (
	member    = domain.Actor{ID: memberID, Name: "newbie", GuildID: guildID}
	moderator = domain.Actor{ID: 7, Name: "mod", GuildID: guildID, Capabilities: []domain.Capability{
		domain.CapabilityManageRoles, domain.CapabilityKickMembers, domain.CapabilityManageGuild,
	}}
	admin = domain.Actor{ID: 1, Name: "owner", GuildID: guildID, Capabilities: []domain.Capability{domain.CapabilityAdministrator}}
)

var joinBody = map[string]any{"id": "42", "guild_id": "1000", "username": "newbie"}

func TestRouter_HealthIsPublic(t *testing.T) {
	s := newTestServer(t, "1")
	w := s.do(t, http.MethodGet, "/v1/health-check/ping", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t, "1")
	w := s.do(t, http.MethodPost, "/v1/verification/command", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CommandFlow(t *testing.T) {
	s := newTestServer(t, "1")

	w := s.do(t, http.MethodPost, "/v1/events/member-join", &member, joinBody)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{unverifiedID}, s.platform.roles(memberID))

	w = s.do(t, http.MethodPost, "/v1/verification/command", &member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{verifiedID}, s.platform.roles(memberID))

	w = s.do(t, http.MethodGet, "/v1/stats/recent", &moderator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var recent struct {
		Data []domain.RecentVerification `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&recent))
	require.Len(t, recent.Data, 1)
	assert.Equal(t, domain.MethodCommand, recent.Data[0].Method)
}

func TestRouter_QRCodeFlow(t *testing.T) {
	s := newTestServer(t, "2")

	w := s.do(t, http.MethodPost, "/v1/events/member-join", &member, joinBody)
	require.Equal(t, http.StatusOK, w.Code)
	var join struct {
		Challenge domain.Challenge `json:"challenge"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&join))
	require.Len(t, join.Challenge.Token, 8)

	w = s.do(t, http.MethodPost, "/v1/verification/code", &member, map[string]string{"code": "wrong"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPost, "/v1/verification/code", &member, map[string]string{"code": "||" + join.Challenge.Token + "||"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{verifiedID}, s.platform.roles(memberID))

	w = s.do(t, http.MethodGet, "/v1/stats/members/42", &moderator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hist domain.MemberHistory
	require.NoError(t, json.NewDecoder(w.Body).Decode(&hist))
	assert.Equal(t, int64(2), hist.Attempts)
}

func TestRouter_CodeIsRateLimitedPerMember(t *testing.T) {
	s := newTestServer(t, "2")
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/events/member-join", &member, joinBody).Code)

	for i := 0; i < 5; i++ {
		w := s.do(t, http.MethodPost, "/v1/verification/code", &member, map[string]string{"code": "wrong"})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	}
	w := s.do(t, http.MethodPost, "/v1/verification/code", &member, map[string]string{"code": "wrong"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_ManualDecision(t *testing.T) {
	s := newTestServer(t, "3")
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/events/member-join", &member, joinBody).Code)

	decision := map[string]string{"member_id": "42", "action": "approve"}
	w := s.do(t, http.MethodPost, "/v1/decisions", &member, decision)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/v1/decisions", &moderator, decision)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{verifiedID}, s.platform.roles(memberID))

	w = s.do(t, http.MethodPost, "/v1/decisions", &moderator, decision)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_SettingsRequireAdministrator(t *testing.T) {
	s := newTestServer(t, "1")

	w := s.do(t, http.MethodPut, "/v1/settings/level", &moderator, map[string]int{"level": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/v1/settings/level", &admin, map[string]int{"level": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/v1/settings/LOG_CHANNEL_ID", &admin, map[string]string{"value": "6000"})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := s.settings.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TierQRCode, got.Level)
	assert.Equal(t, int64(6000), got.LogChannelID)
}

func TestRouter_MisconfiguredGuild(t *testing.T) {
	s := newTestServer(t, "3")
	delete(s.settings.values, domain.KeyModeratorChannelID)

	w := s.do(t, http.MethodPost, "/v1/events/member-join", &member, joinBody)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, []string{"Verification is misconfigured"}, s.alerts.subjects)
}

func TestRouter_MalformedStoredSetting(t *testing.T) {
	s := newTestServer(t, "1")
	s.settings.values[domain.KeyLogChannelID] = "99999999999999999999"

	first := s.do(t, http.MethodPost, "/v1/events/member-join", &member, joinBody)
	second := s.do(t, http.MethodPost, "/v1/events/member-join", &member, joinBody)

	assert.Equal(t, http.StatusServiceUnavailable, first.Code)
	assert.Contains(t, first.Body.String(), "configuration_error")
	assert.Contains(t, first.Body.String(), domain.KeyLogChannelID)
	assert.Equal(t, http.StatusServiceUnavailable, second.Code)
	assert.Equal(t, []string{"Verification is misconfigured"}, s.alerts.subjects)
}

type recordingAlerter struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (a *recordingAlerter) Alert(_ context.Context, subject, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subjects = append(a.subjects, subject)
	return a.err
}

func TestFanout_DeliversToEveryChannel(t *testing.T) {
	broken := &recordingAlerter{err: assert.AnError}
	ok := &recordingAlerter{}

	err := fanout{broken, ok}.Alert(context.Background(), "Verification is misconfigured", "m")

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"Verification is misconfigured"}, broken.subjects)
	assert.Equal(t, []string{"Verification is misconfigured"}, ok.subjects)
}
