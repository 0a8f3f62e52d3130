package orgselect_test

import (
	"strings"
	"testing"
	"time"

	apperrors "github.com/dashlytic/go-tenant-session/internal/errors"
	"github.com/dashlytic/go-tenant-session/login"
	"github.com/dashlytic/go-tenant-session/orgselect"
	"github.com/dashlytic/go-tenant-session/session"
	"github.com/dashlytic/go-tenant-session/session/repofakes"
	"github.com/dashlytic/go-tenant-session/tenant"
	"github.com/dashlytic/go-tenant-session/transfer"
	"github.com/dashlytic/go-tenant-session/users"
	"github.com/stretchr/testify/require"
)

type testConfig struct{}

func (testConfig) GetTransferKey() []byte        { return []byte("test-transfer-key") }
func (testConfig) GetTransferTTL() time.Duration { return 60 * time.Second }
func (testConfig) GetTransferRoute() string      { return "/session/receive" }

func newSelector(t *testing.T, authenticated bool) (*orgselect.Selector, *session.Store) {
	t.Helper()

	origin := tenant.Origin{Scheme: "http", Host: "localhost:3000"}
	store, err := session.New(repofakes.NewFakeSessionRepo(), origin.Host)
	require.NoError(t, err)
	if authenticated {
		require.NoError(t, store.SetTokens("access-1", "refresh-1"))
	}

	selector, err := orgselect.New(store, transfer.New(testConfig{}, origin))
	require.NoError(t, err)
	return selector, store
}

func TestChooseWithSubdomainTransfers(t *testing.T) {
	selector, _ := newSelector(t, true)

	decision, err := selector.Choose(users.OrganizationMembership{
		OrganizationID: "org-1", OrganizationName: "Acme", TenantSubdomain: "acme", Role: "admin",
	})
	require.NoError(t, err)
	require.Equal(t, login.DecisionTransfer, decision.Kind)
	require.True(t, strings.HasPrefix(decision.URL, "http://acme.localhost:3000/session/receive?"))
}

func TestChooseWithoutSubdomainStaysOnBase(t *testing.T) {
	selector, _ := newSelector(t, true)

	decision, err := selector.Choose(users.OrganizationMembership{
		OrganizationID: "org-3", OrganizationName: "Initech", Role: "member",
	})
	require.NoError(t, err)
	require.Equal(t, login.DecisionStay, decision.Kind)
	require.Equal(t, "/home", decision.Path)
}

func TestChooseWithoutSessionFails(t *testing.T) {
	selector, _ := newSelector(t, false)

	_, err := selector.Choose(users.OrganizationMembership{TenantSubdomain: "acme"})
	require.True(t, apperrors.Is(err, apperrors.ErrMissingTokens))
}

func TestSkipLandsOnBaseHome(t *testing.T) {
	selector, _ := newSelector(t, true)

	decision := selector.Skip()
	require.Equal(t, login.DecisionStay, decision.Kind)
	require.Equal(t, "/home", decision.Path)
}
