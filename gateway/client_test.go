package gateway_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dashlytic/go-tenant-session/gateway"
	"github.com/dashlytic/go-tenant-session/identity"
	"github.com/dashlytic/go-tenant-session/identity/identityfakes"
	"github.com/dashlytic/go-tenant-session/session"
	"github.com/dashlytic/go-tenant-session/session/repofakes"
	"github.com/dashlytic/go-tenant-session/tenant"
	"github.com/dashlytic/go-tenant-session/users"
	"github.com/stretchr/testify/require"
)

var (
	acmeOrigin = tenant.Origin{Scheme: "http", Host: "acme.localhost:3000"}
	baseOrigin = tenant.Origin{Scheme: "http", Host: "localhost:3000"}
)

type fixture struct {
	fake      *identityfakes.FakeService
	store     *session.Store
	backend   *httptest.Server
	client    *gateway.Client
	loggedOut bool
}

// newFixture wires a gateway against a backend that honors the fake
// identity service's tokens.
func newFixture(t *testing.T, origin tenant.Origin, options ...gateway.ClientOption) *fixture {
	t.Helper()

	f := &fixture{fake: identityfakes.NewFakeService()}
	f.fake.AddUser(users.User{ID: "user-1", Email: "a@x.com"}, "Secret123")

	store, err := session.New(repofakes.NewFakeSessionRepo(), origin.Host)
	require.NoError(t, err)
	f.store = store

	f.backend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !f.fake.ValidAccess(token) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("X-Echo-Tenant", r.Header.Get(gateway.TenantHeader))
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	}))
	t.Cleanup(f.backend.Close)

	options = append(options, gateway.WithLogoutHandler(func() { f.loggedOut = true }))
	client, err := gateway.NewClient(store, f.fake, origin, options...)
	require.NoError(t, err)
	f.client = client
	return f
}

func (f *fixture) login(t *testing.T) identity.TokenPair {
	t.Helper()
	pair := f.fake.IssueTokens("a@x.com")
	require.NoError(t, f.store.SetTokens(pair.AccessToken, pair.RefreshToken))
	return pair
}

func (f *fixture) get(t *testing.T) *http.Response {
	t.Helper()
	resp, err := f.client.HTTPClient().Get(f.backend.URL + "/api/v1/dashboards")
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAttachesAuthAndTenantHeaders(t *testing.T) {
	f := newFixture(t, acmeOrigin)
	f.login(t)

	resp := f.get(t)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "acme", resp.Header.Get("X-Echo-Tenant"))
}

func TestNoTenantHeaderOnBaseOrigin(t *testing.T) {
	f := newFixture(t, baseOrigin)
	f.login(t)

	resp := f.get(t)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, resp.Header.Get("X-Echo-Tenant"))
}

func TestRefreshAndRetryOn401(t *testing.T) {
	f := newFixture(t, acmeOrigin)
	pair := f.login(t)

	// Simulate access token expiry; the refresh token stays valid.
	f.fake.ExpireAccess(pair.AccessToken)

	resp := f.get(t)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, f.fake.RefreshCalls)
	require.False(t, f.loggedOut)

	// The rotated pair was persisted.
	sess := f.store.Get()
	require.NotEqual(t, pair.AccessToken, sess.AccessToken)
	require.NotEqual(t, pair.RefreshToken, sess.RefreshToken)
	require.True(t, sess.Authenticated)
}

// A request that still 401s after its one refresh must not trigger a second
// refresh cycle.
func TestRetryBoundIsOneRefreshPerRequest(t *testing.T) {
	fake := identityfakes.NewFakeService()
	fake.AddUser(users.User{ID: "user-1", Email: "a@x.com"}, "Secret123")

	store, err := session.New(repofakes.NewFakeSessionRepo(), acmeOrigin.Host)
	require.NoError(t, err)
	pair := fake.IssueTokens("a@x.com")
	require.NoError(t, store.SetTokens(pair.AccessToken, pair.RefreshToken))

	// Backend rejects everything regardless of token validity.
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(backend.Close)

	client, err := gateway.NewClient(store, fake, acmeOrigin)
	require.NoError(t, err)

	resp, err := client.HTTPClient().Get(backend.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 1, fake.RefreshCalls)
}

func TestRefreshFailureLogsOutAndPropagates401(t *testing.T) {
	f := newFixture(t, acmeOrigin)
	pair := f.login(t)
	f.fake.ExpireAccess(pair.AccessToken)
	f.fake.FailRefresh = true

	resp := f.get(t)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 1, f.fake.RefreshCalls)
	require.True(t, f.loggedOut)
	require.False(t, f.store.Get().Authenticated)
}

func TestMissingRefreshTokenLogsOut(t *testing.T) {
	f := newFixture(t, acmeOrigin)
	require.NoError(t, f.store.SetTokens("stale-access", ""))

	resp := f.get(t)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 0, f.fake.RefreshCalls)
	require.True(t, f.loggedOut)
}

func TestNon401ResponsesPassThrough(t *testing.T) {
	fake := identityfakes.NewFakeService()
	store, err := session.New(repofakes.NewFakeSessionRepo(), acmeOrigin.Host)
	require.NoError(t, err)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(backend.Close)

	client, err := gateway.NewClient(store, fake, acmeOrigin)
	require.NoError(t, err)

	resp, err := client.HTTPClient().Get(backend.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, 0, fake.RefreshCalls)
}

// slowService stretches the refresh call so concurrently failing requests
// overlap inside the single-flight window.
type slowService struct {
	identity.Service
	delay time.Duration
}

func (s *slowService) Refresh(ctx context.Context, refreshToken string) (identity.TokenPair, error) {
	time.Sleep(s.delay)
	return s.Service.Refresh(ctx, refreshToken)
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	const workers = 5

	fake := identityfakes.NewFakeService()
	fake.AddUser(users.User{ID: "user-1", Email: "a@x.com"}, "Secret123")

	store, err := session.New(repofakes.NewFakeSessionRepo(), acmeOrigin.Host)
	require.NoError(t, err)
	pair := fake.IssueTokens("a@x.com")
	require.NoError(t, store.SetTokens(pair.AccessToken, pair.RefreshToken))
	fake.ExpireAccess(pair.AccessToken)

	// Hold every first attempt at the backend until all workers have sent
	// theirs, so the 401s land together.
	var barrier sync.WaitGroup
	barrier.Add(workers)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !fake.ValidAccess(token) {
			barrier.Done()
			barrier.Wait()
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(backend.Close)

	client, err := gateway.NewClient(store, &slowService{Service: fake, delay: 300 * time.Millisecond}, acmeOrigin)
	require.NoError(t, err)

	var wg sync.WaitGroup
	statuses := make([]int, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.HTTPClient().Get(backend.URL)
			if err != nil {
				errs[i] = err
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, http.StatusOK, statuses[i])
	}
	require.Equal(t, 1, fake.RefreshCalls)
}
