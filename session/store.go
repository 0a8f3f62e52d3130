package session

import (
	"sync"

	apperrors "github.com/dashlytic/go-tenant-session/internal/errors"
	"github.com/dashlytic/go-tenant-session/users"
	"github.com/pkg/errors"
)

// Store holds the session of one origin over a Repo. Reads are served from
// memory and never block; every mutation is flushed through the repo before
// it returns.
type Store struct {
	repo   Repo
	origin string

	mu         sync.RWMutex
	cur        Session
	lastTenant string
}

// New rehydrates a Store from the origin's persisted record. A persisted
// access token marks the session authenticated immediately, before any
// profile refetch; this is an optimistic hint so protected-route checks do
// not block, not a confirmed session.
func New(repo Repo, origin string) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[session.New] repo is required")
	}

	s := &Store{repo: repo, origin: origin}

	rec, err := repo.Load(origin)
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		// fresh origin, empty session
	case err != nil:
		return nil, errors.Wrap(err, "[session.New] repo.Load")
	default:
		s.cur = Session{
			AccessToken:   rec.AccessToken,
			RefreshToken:  rec.RefreshToken,
			User:          rec.User,
			Authenticated: rec.AccessToken != "",
		}
	}

	if last, err := repo.LoadLastTenant(origin); err == nil {
		s.lastTenant = last
	}

	return s, nil
}

// Origin returns the origin host this store is bound to.
func (s *Store) Origin() string {
	return s.origin
}

// Get returns the current session.
func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// SetTokens replaces the token pair and marks the session authenticated.
func (s *Store) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.AccessToken = access
	s.cur.RefreshToken = refresh
	s.cur.Authenticated = access != ""
	return errors.Wrap(s.flush(), "[Store.SetTokens] flush")
}

// SetUser caches the fetched user profile on the session.
func (s *Store) SetUser(user *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.User = user
	return errors.Wrap(s.flush(), "[Store.SetUser] flush")
}

// Logout clears the session in memory and in durable storage. Safe to call
// when no session is present.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Session{}
	return errors.Wrap(s.repo.Delete(s.origin), "[Store.Logout] repo.Delete")
}

// LastTenant returns the last known tenant subdomain for this origin.
// UI convenience only, never security-relevant.
func (s *Store) LastTenant() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTenant
}

// SetLastTenant records the last known tenant subdomain.
func (s *Store) SetLastTenant(subdomain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTenant = subdomain
	return errors.Wrap(s.repo.SaveLastTenant(s.origin, subdomain), "[Store.SetLastTenant] repo.SaveLastTenant")
}

// flush writes the current session through to the repo. Callers hold s.mu.
func (s *Store) flush() error {
	return s.repo.Save(s.origin, &Record{
		AccessToken:   s.cur.AccessToken,
		RefreshToken:  s.cur.RefreshToken,
		User:          s.cur.User,
		Authenticated: s.cur.Authenticated,
	})
}
