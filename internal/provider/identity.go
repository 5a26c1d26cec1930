package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"event-ticketing/internal/apperr"

	"go.uber.org/zap"
)

// Identity is the delegated identity provider: it exchanges an opaque
// front-end session id for the authenticated user's profile and a long-lived
// session token. Its response is treated as ground truth for identity.
type Identity interface {
	Exchange(ctx context.Context, sessionID string) (*IdentityResult, error)
}

type IdentityResult struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Picture      *string `json:"picture,omitempty"`
	SessionToken string  `json:"session_token"`
}

type identityClient struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

func NewIdentityClient(url string, log *zap.Logger) Identity {
	return &identityClient{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log.With(zap.String("provider", "identity")),
	}
}

func (c *identityClient) Exchange(ctx context.Context, sessionID string) (*IdentityResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build identity request: %v", apperr.ErrUpstream, err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("Identity provider call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: identity provider: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("Identity provider rejected session",
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: identity provider returned status %d", apperr.ErrUpstream, resp.StatusCode)
	}

	var result IdentityResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.log.Error("Failed to decode identity response", zap.Error(err))
		return nil, fmt.Errorf("%w: decode identity response: %v", apperr.ErrUpstream, err)
	}

	if result.Email == "" || result.SessionToken == "" {
		return nil, fmt.Errorf("%w: identity response missing email or session token", apperr.ErrUpstream)
	}

	return &result, nil
}
