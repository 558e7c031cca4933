package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-member-gate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL, Secret: "s3cret", Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func TestGetMember(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/guilds/10/members/42", r.URL.Path)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42","username":"newcomer","created_at":"2024-04-01T00:00:00Z","joined_at":"2024-05-01T00:00:00Z","roles":["200","300"]}`))
	})

	m, err := c.GetMember(context.Background(), 10, 42)

	require.NoError(t, err)
	assert.Equal(t, "newcomer", m.Username)
	assert.Equal(t, []int64{200, 300}, m.RoleIDs)
	assert.Equal(t, 30, m.AccountAgeDays())
}

func TestGetMember_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetMember(context.Background(), 10, 42)

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAddRole_SendsReason(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/guilds/10/members/42/roles/300", r.URL.Path)
		assert.Equal(t, "member%20verified", r.Header.Get("X-Audit-Log-Reason"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.AddRole(context.Background(), 10, 42, 300, "member verified"))
}

func TestRemoveRole_Forbidden(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusForbidden)
	})

	err := c.RemoveRole(context.Background(), 10, 42, 200, "")

	assert.True(t, errors.Is(err, domain.ErrPlatformPermission))
}

func TestKick_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guilds/10/members/42", r.URL.Path)
		http.Error(w, "boom", http.StatusBadGateway)
	})

	err := c.Kick(context.Background(), 10, 42, "denied")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "gateway:8081"})
	assert.Error(t, err)
}
