package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/go-member-gate/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, expiry time.Duration) *Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewProviderFromKeys(key, &key.PublicKey, expiry)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t, time.Minute)
	actor := domain.Actor{
		ID:           123456789012345678,
		Name:         "mod",
		GuildID:      987654321098765432,
		Capabilities: []domain.Capability{domain.CapabilityManageRoles, domain.CapabilityKickMembers},
	}

	tok, err := p.Sign(actor)
	require.NoError(t, err)
	claims, err := p.Verify(tok)
	require.NoError(t, err)
	got, err := claims.Actor()
	require.NoError(t, err)

	assert.Equal(t, actor, got)
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t, -time.Minute)
	tok, err := p.Sign(domain.Actor{ID: 1, GuildID: 2})
	require.NoError(t, err)

	_, err = p.Verify(tok)

	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestVerify_RejectsHMAC(t *testing.T) {
	p := newTestProvider(t, time.Minute)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ActorID: "1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = p.Verify(tok)

	assert.Error(t, err)
}

func TestVerify_OtherKey(t *testing.T) {
	signer := newTestProvider(t, time.Minute)
	verifier := newTestProvider(t, time.Minute)
	tok, err := signer.Sign(domain.Actor{ID: 1, GuildID: 2})
	require.NoError(t, err)

	_, err = verifier.Verify(tok)

	assert.Error(t, err)
}

func TestSign_WithoutPrivateKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	_, err = NewProviderFromKeys(nil, &key.PublicKey, time.Minute).Sign(domain.Actor{})

	assert.Error(t, err)
}

func TestClaimsActor_BadID(t *testing.T) {
	_, err := (&Claims{ActorID: "abc", GuildID: "1"}).Actor()
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
