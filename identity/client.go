package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/dashlytic/go-tenant-session/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ Service = (*Client)(nil)

// Client is the HTTP implementation of Service.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption modifies a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying http.Client (primarily for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates an identity service client rooted at baseURL
// (e.g. "https://api.example.com/api/v1/auth").
func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) Login(ctx context.Context, email, password string) (TokenPair, error) {
	body := map[string]string{"email": email, "password": password}

	var pair TokenPair
	if err := c.post(ctx, "/login", "", body, &pair); err != nil {
		return TokenPair{}, errors.Wrap(err, "[Client.Login] post")
	}
	return pair, nil
}

func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*users.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.CurrentUser] NewRequest")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.CurrentUser] Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, serviceError(resp)
	}

	var user users.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, "[Client.CurrentUser] Decode")
	}
	return &user, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var pair TokenPair
	if err := c.post(ctx, "/refresh", "", body, &pair); err != nil {
		return TokenPair{}, errors.Wrap(err, "[Client.Refresh] post")
	}
	return pair, nil
}

func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.post(ctx, "/logout", accessToken, nil, nil); err != nil {
		// Server-side invalidation is best effort; the local session is
		// cleared regardless, so log and move on.
		log.Debug().Err(err).Msg("identity logout failed")
		return errors.Wrap(err, "[Client.Logout] post")
	}
	return nil
}

func (c *Client) post(ctx context.Context, path, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "Marshal")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "NewRequest")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serviceError(resp)
	}

	if out == nil {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "Decode")
}

// serviceError extracts the service's error envelope ({"detail": "..."}) so
// the message can be surfaced verbatim.
func serviceError(resp *http.Response) error {
	detail := resp.Status
	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Detail != "" {
		detail = envelope.Detail
	}
	return &Error{StatusCode: resp.StatusCode, Detail: detail}
}
