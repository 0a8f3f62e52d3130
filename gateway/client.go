// Package gateway is the single point through which every backend call
// passes. It stamps outbound requests with the bearer token and the resolved
// tenant, and owns the token refresh policy: no other component may call the
// refresh endpoint.
package gateway

import (
	"context"
	"net/http"

	"github.com/dashlytic/go-tenant-session/identity"
	apperrors "github.com/dashlytic/go-tenant-session/internal/errors"
	"github.com/dashlytic/go-tenant-session/session"
	"github.com/dashlytic/go-tenant-session/tenant"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// TenantHeader identifies the resolved tenant subdomain to the backend's
// tenant-resolution middleware. Never sent from the base origin.
const TenantHeader = "X-Organization-Subdomain"

var _ http.RoundTripper = (*Client)(nil)

// Client intercepts every outbound request. On a 401 it attempts exactly one
// token refresh and re-issues the original request once; a request that has
// already been retried never triggers a second refresh cycle.
type Client struct {
	base     http.RoundTripper
	store    *session.Store
	identity identity.Service
	origin   tenant.Origin
	onLogout func()

	// Concurrent requests that 401 around the same time share one refresh
	// call instead of racing the refresh token.
	refresh singleflight.Group
}

// ClientOption modifies a Client.
type ClientOption func(*Client)

// WithTransport overrides the underlying transport (primarily for testing).
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.base = rt
	}
}

// WithLogoutHandler sets the navigation hook invoked after a terminal refresh
// failure, typically a redirect to the login entry point.
func WithLogoutHandler(fn func()) ClientOption {
	return func(c *Client) {
		c.onLogout = fn
	}
}

// NewClient creates a gateway client for the current origin.
func NewClient(store *session.Store, identitySvc identity.Service, origin tenant.Origin, options ...ClientOption) (*Client, error) {
	if store == nil {
		return nil, errors.New("[gateway.NewClient] store is required")
	}
	if identitySvc == nil {
		return nil, errors.New("[gateway.NewClient] identity service is required")
	}

	c := &Client{
		base:     http.DefaultTransport,
		store:    store,
		identity: identitySvc,
		origin:   origin,
		onLogout: func() {},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// HTTPClient returns an http.Client routed through this gateway.
func (c *Client) HTTPClient() *http.Client {
	return &http.Client{Transport: c}
}

// RoundTrip implements the request/response interception contract.
func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	first := req.Clone(req.Context())
	c.decorate(first, c.store.Get().AccessToken)

	resp, err := c.base.RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	access, refreshErr := c.refreshTokens(req.Context())
	if refreshErr != nil {
		log.Warn().Err(refreshErr).Msg("token refresh failed, logging out")
		if err := c.store.Logout(); err != nil {
			log.Err(err).Msg("failed to clear session on refresh failure")
		}
		c.onLogout()
		// The original 401 is the caller's terminal failure.
		return resp, nil
	}

	resp.Body.Close()

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.Wrap(err, "[Client.RoundTrip] GetBody")
		}
		retry.Body = body
	}
	c.decorate(retry, access)

	// A second 401 here propagates as-is; the retry bound is one refresh
	// cycle per original request.
	return c.base.RoundTrip(retry)
}

// decorate attaches the auth and tenant headers for the current origin.
func (c *Client) decorate(req *http.Request, accessToken string) {
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if sub := c.origin.Tenant(); sub != "" {
		req.Header.Set(TenantHeader, sub)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

// refreshTokens performs the single-flight token refresh and persists the
// rotated pair. It returns the new access token.
func (c *Client) refreshTokens(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		refreshToken := c.store.Get().RefreshToken
		if refreshToken == "" {
			return nil, errors.Wrap(apperrors.ErrNoRefreshToken, "[Client.refreshTokens]")
		}

		pair, err := c.identity.Refresh(ctx, refreshToken)
		if err != nil {
			return nil, errors.Wrap(err, apperrors.ErrRefreshFailed.Error())
		}
		if err := c.store.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
			return nil, errors.Wrap(err, "[Client.refreshTokens] SetTokens")
		}
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
