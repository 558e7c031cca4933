package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-member-gate/internal/config"
	"github.com/go-member-gate/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the actor assertion the gateway signs for every forwarded event.
// IDs travel as strings because platform snowflakes overflow JSON numbers.
type Claims struct {
	ActorID      string   `json:"actor_id"`
	ActorName    string   `json:"actor_name"`
	GuildID      string   `json:"guild_id"`
	Capabilities []string `json:"capabilities"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the domain actor.
func (c *Claims) Actor() (domain.Actor, error) {
	id, err := strconv.ParseInt(c.ActorID, 10, 64)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("actor_id %q: %w", c.ActorID, domain.ErrUnauthorized)
	}
	guildID, err := strconv.ParseInt(c.GuildID, 10, 64)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("guild_id %q: %w", c.GuildID, domain.ErrUnauthorized)
	}
	caps := make([]domain.Capability, 0, len(c.Capabilities))
	for _, cp := range c.Capabilities {
		caps = append(caps, domain.Capability(cp))
	}
	return domain.Actor{ID: id, Name: c.ActorName, GuildID: guildID, Capabilities: caps}, nil
}

// Provider verifies RS256 actor tokens. It signs them too when a private key is configured,
// which the gateway and tests use.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	var privKey *rsa.PrivateKey
	if cfg.JWTPrivateKeyPath != "" {
		privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		privKey, err = jwt.ParseRSAPrivateKeyFromPEM(privBytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
	}

	return NewProviderFromKeys(privKey, pubKey, cfg.JWTExpiry), nil
}

func NewProviderFromKeys(priv *rsa.PrivateKey, pub *rsa.PublicKey, expiry time.Duration) *Provider {
	return &Provider{privateKey: priv, publicKey: pub, expiry: expiry}
}

func (p *Provider) Sign(actor domain.Actor) (string, error) {
	if p.privateKey == nil {
		return "", errors.New("no private key configured")
	}
	caps := make([]string, 0, len(actor.Capabilities))
	for _, c := range actor.Capabilities {
		caps = append(caps, string(c))
	}
	now := time.Now()
	claims := Claims{
		ActorID:      strconv.FormatInt(actor.ID, 10),
		ActorName:    actor.Name,
		GuildID:      strconv.FormatInt(actor.GuildID, 10),
		Capabilities: caps,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
