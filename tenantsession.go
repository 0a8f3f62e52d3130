// Package tenantsession wires the multi-tenant session propagation subsystem
// for a single origin: tenant resolution, the per-origin session store, the
// authenticated gateway, login orchestration, and the transfer handoff.
// Consumers construct one App per origin and route all backend traffic
// through App.Gateway.
package tenantsession

import (
	"net/http"

	"github.com/dashlytic/go-tenant-session/gateway"
	"github.com/dashlytic/go-tenant-session/guard"
	"github.com/dashlytic/go-tenant-session/identity"
	"github.com/dashlytic/go-tenant-session/internal/config"
	"github.com/dashlytic/go-tenant-session/login"
	"github.com/dashlytic/go-tenant-session/orgselect"
	"github.com/dashlytic/go-tenant-session/session"
	"github.com/dashlytic/go-tenant-session/session/filerepo"
	"github.com/dashlytic/go-tenant-session/tenant"
	"github.com/dashlytic/go-tenant-session/transfer"
	"github.com/pkg/errors"
)

// Config is what an App needs from configuration.
type Config interface {
	config.EnvConfig
	config.TransferConfig
}

// NewConfig returns the environment-backed configuration.
func NewConfig() Config {
	return config.New()
}

// App is the assembled subsystem for one origin.
type App struct {
	Origin   tenant.Origin
	Store    *session.Store
	Identity identity.Service
	Gateway  *gateway.Client
	Login    *login.Orchestrator
	Handoff  *transfer.Handoff
	Selector *orgselect.Selector
	Guard    *guard.Guard
}

// Option modifies App construction.
type Option func(*options)

type options struct {
	identity identity.Service
	repo     session.Repo
	onLogout func()
}

// WithIdentityService overrides the HTTP identity client (for testing).
func WithIdentityService(svc identity.Service) Option {
	return func(o *options) {
		o.identity = svc
	}
}

// WithSessionRepo overrides the file-backed session storage (for testing).
func WithSessionRepo(repo session.Repo) Option {
	return func(o *options) {
		o.repo = repo
	}
}

// WithLogoutHandler sets the navigation hook invoked when the gateway logs
// the session out after a terminal refresh failure.
func WithLogoutHandler(fn func()) Option {
	return func(o *options) {
		o.onLogout = fn
	}
}

// New assembles the subsystem for the origin the application was loaded from.
func New(cfg Config, origin tenant.Origin, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	repo := o.repo
	if repo == nil {
		fr, err := filerepo.New(cfg.GetDataFolder())
		if err != nil {
			return nil, errors.Wrap(err, "[tenantsession.New] filerepo.New")
		}
		repo = fr
	}

	store, err := session.New(repo, origin.Host)
	if err != nil {
		return nil, errors.Wrap(err, "[tenantsession.New] session.New")
	}

	identitySvc := o.identity
	if identitySvc == nil {
		identitySvc = identity.NewClient(cfg.GetIdentityURL())
	}

	handoff := transfer.New(cfg, origin)

	gatewayOpts := []gateway.ClientOption{}
	if o.onLogout != nil {
		gatewayOpts = append(gatewayOpts, gateway.WithLogoutHandler(o.onLogout))
	}
	gw, err := gateway.NewClient(store, identitySvc, origin, gatewayOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "[tenantsession.New] gateway.NewClient")
	}

	orch, err := login.New(identitySvc, store, origin, handoff)
	if err != nil {
		return nil, errors.Wrap(err, "[tenantsession.New] login.New")
	}

	selector, err := orgselect.New(store, handoff)
	if err != nil {
		return nil, errors.Wrap(err, "[tenantsession.New] orgselect.New")
	}

	return &App{
		Origin:   origin,
		Store:    store,
		Identity: identitySvc,
		Gateway:  gw,
		Login:    orch,
		Handoff:  handoff,
		Selector: selector,
		Guard:    guard.New(store, origin),
	}, nil
}

// ReceiveHandler serves this origin's dedicated transfer-receiving route.
func (a *App) ReceiveHandler() http.HandlerFunc {
	return transfer.ReceiveHandler(a.Handoff, a.Store, login.EntryPath)
}
