// Package identity talks to the external authentication service. This client
// never issues or validates tokens itself; it exchanges credentials, fetches
// the user profile, and rotates token pairs on behalf of the gateway.
package identity

import (
	"context"
	"net/http"

	apperrors "github.com/dashlytic/go-tenant-session/internal/errors"
	"github.com/dashlytic/go-tenant-session/users"
)

// TokenPair is the access/refresh pair issued by the identity service.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service is the identity-service contract consumed by the rest of the
// client. Refresh must only ever be called by the gateway.
type Service interface {
	// Login exchanges credentials for a token pair
	Login(ctx context.Context, email, password string) (TokenPair, error)

	// CurrentUser fetches the authenticated user's profile, organizations included
	CurrentUser(ctx context.Context, accessToken string) (*users.User, error)

	// Refresh exchanges a refresh token for a new token pair
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)

	// Logout invalidates the session server-side
	Logout(ctx context.Context, accessToken string) error
}

// Error is a failure reported by the identity service. Detail carries the
// service's own message and is surfaced to the user verbatim.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return apperrors.ErrInvalidCredentials
	}
	return nil
}
