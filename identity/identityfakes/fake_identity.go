package identityfakes

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/dashlytic/go-tenant-session/identity"
	"github.com/dashlytic/go-tenant-session/users"
	"github.com/google/uuid"
)

var _ identity.Service = (*FakeService)(nil)

// FakeService is an in-memory identity.Service for tests. It issues opaque
// tokens, rotates them on refresh, and counts calls so tests can assert on
// the retry bound.
type FakeService struct {
	mu            sync.Mutex
	usersByEmail  map[string]fakeUser
	accessTokens  map[string]string // access token -> email
	refreshTokens map[string]string // refresh token -> email

	LoginCalls   int
	RefreshCalls int
	LogoutCalls  int

	// FailRefresh makes every Refresh call fail regardless of token validity.
	FailRefresh bool
}

type fakeUser struct {
	password string
	user     users.User
}

func NewFakeService() *FakeService {
	return &FakeService{
		usersByEmail:  make(map[string]fakeUser),
		accessTokens:  make(map[string]string),
		refreshTokens: make(map[string]string),
	}
}

// AddUser registers a user the fake will authenticate.
func (f *FakeService) AddUser(user users.User, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usersByEmail[user.Email] = fakeUser{password: password, user: user}
}

// IssueTokens mints a valid token pair for an already-registered user,
// bypassing the credential exchange. Used to seed transferred sessions.
func (f *FakeService) IssueTokens(email string) identity.TokenPair {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issue(email)
}

// ValidAccess reports whether the fake currently honors the access token.
func (f *FakeService) ValidAccess(accessToken string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.accessTokens[accessToken]
	return ok
}

// ExpireAccess invalidates an access token while leaving its refresh token
// usable, simulating access-token expiry.
func (f *FakeService) ExpireAccess(accessToken string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.accessTokens, accessToken)
}

func (f *FakeService) Login(ctx context.Context, email, password string) (identity.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++

	fu, ok := f.usersByEmail[email]
	if !ok || fu.password != password {
		return identity.TokenPair{}, &identity.Error{
			StatusCode: http.StatusUnauthorized,
			Detail:     "Incorrect email or password",
		}
	}
	return f.issue(email), nil
}

func (f *FakeService) CurrentUser(ctx context.Context, accessToken string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	email, ok := f.accessTokens[accessToken]
	if !ok {
		return nil, &identity.Error{StatusCode: http.StatusUnauthorized, Detail: "Could not validate credentials"}
	}
	user := f.usersByEmail[email].user
	return &user, nil
}

func (f *FakeService) Refresh(ctx context.Context, refreshToken string) (identity.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefreshCalls++

	if f.FailRefresh {
		return identity.TokenPair{}, &identity.Error{StatusCode: http.StatusUnauthorized, Detail: "Refresh token revoked"}
	}

	email, ok := f.refreshTokens[refreshToken]
	if !ok {
		return identity.TokenPair{}, &identity.Error{StatusCode: http.StatusUnauthorized, Detail: "Invalid refresh token"}
	}
	delete(f.refreshTokens, refreshToken)
	return f.issue(email), nil
}

func (f *FakeService) Logout(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	delete(f.accessTokens, accessToken)
	return nil
}

// issue mints a token pair. Callers hold f.mu.
func (f *FakeService) issue(email string) identity.TokenPair {
	pair := identity.TokenPair{
		AccessToken:  fmt.Sprintf("access-%s", uuid.New().String()),
		RefreshToken: fmt.Sprintf("refresh-%s", uuid.New().String()),
	}
	f.accessTokens[pair.AccessToken] = email
	f.refreshTokens[pair.RefreshToken] = email
	return pair
}
