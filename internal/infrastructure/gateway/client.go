// Package gateway talks to the platform gateway, the process that holds the chat
// platform connection and applies member mutations on our behalf.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-member-gate/internal/domain"
	"golang.org/x/time/rate"
)

// Client is the platform client the verification engine mutates members through.
type Client struct {
	baseURL *url.URL
	secret  string
	http    *http.Client
	limiter *rate.Limiter
}

type Options struct {
	BaseURL string
	Secret  string
	Timeout time.Duration
	// RequestsPerSecond paces outbound calls; zero means unlimited.
	RequestsPerSecond float64
}

func NewClient(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("gateway url %q must be absolute", opts.BaseURL)
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		baseURL: u,
		secret:  opts.Secret,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

type memberPayload struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	JoinedAt  time.Time `json:"joined_at"`
	Roles     []string  `json:"roles"`
}

// GetMember returns the member as the platform sees it right now.
func (c *Client) GetMember(ctx context.Context, guildID, memberID int64) (*domain.Member, error) {
	var p memberPayload
	if err := c.do(ctx, http.MethodGet, c.memberPath(guildID, memberID), "", &p); err != nil {
		return nil, fmt.Errorf("get member %d: %w", memberID, err)
	}
	m := &domain.Member{
		ID:        memberID,
		GuildID:   guildID,
		Username:  p.Username,
		CreatedAt: p.CreatedAt,
		JoinedAt:  p.JoinedAt,
		RoleIDs:   make([]int64, 0, len(p.Roles)),
	}
	for _, r := range p.Roles {
		id, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("member %d has malformed role %q", memberID, r)
		}
		m.RoleIDs = append(m.RoleIDs, id)
	}
	return m, nil
}

func (c *Client) AddRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error {
	if err := c.do(ctx, http.MethodPut, c.rolePath(guildID, memberID, roleID), reason, nil); err != nil {
		return fmt.Errorf("add role %d to member %d: %w", roleID, memberID, err)
	}
	return nil
}

func (c *Client) RemoveRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error {
	if err := c.do(ctx, http.MethodDelete, c.rolePath(guildID, memberID, roleID), reason, nil); err != nil {
		return fmt.Errorf("remove role %d from member %d: %w", roleID, memberID, err)
	}
	return nil
}

func (c *Client) Kick(ctx context.Context, guildID, memberID int64, reason string) error {
	if err := c.do(ctx, http.MethodDelete, c.memberPath(guildID, memberID), reason, nil); err != nil {
		return fmt.Errorf("kick member %d: %w", memberID, err)
	}
	return nil
}

func (c *Client) memberPath(guildID, memberID int64) string {
	return fmt.Sprintf("/guilds/%d/members/%d", guildID, memberID)
}

func (c *Client) rolePath(guildID, memberID, roleID int64) string {
	return fmt.Sprintf("/guilds/%d/members/%d/roles/%d", guildID, memberID, roleID)
}

func (c *Client) do(ctx context.Context, method, path, reason string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), nil)
	if err != nil {
		return err
	}
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}
	if reason != "" {
		req.Header.Set("X-Audit-Log-Reason", url.PathEscape(reason))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusForbidden:
		return domain.ErrPlatformPermission
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
