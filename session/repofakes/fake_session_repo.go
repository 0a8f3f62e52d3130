package repofakes

import (
	"sync"

	apperrors "github.com/dashlytic/go-tenant-session/internal/errors"
	"github.com/dashlytic/go-tenant-session/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session.Repo for tests.
type FakeSessionRepo struct {
	mu          sync.RWMutex
	records     map[string]*session.Record
	lastTenants map[string]string
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		records:     make(map[string]*session.Record),
		lastTenants: make(map[string]string),
	}
}

func (r *FakeSessionRepo) Load(origin string) (*session.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[origin]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *FakeSessionRepo) Save(origin string, record *session.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *record
	r.records[origin] = &cp
	return nil
}

func (r *FakeSessionRepo) Delete(origin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, origin)
	return nil
}

func (r *FakeSessionRepo) LoadLastTenant(origin string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastTenants[origin], nil
}

func (r *FakeSessionRepo) SaveLastTenant(origin, subdomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastTenants[origin] = subdomain
	return nil
}
