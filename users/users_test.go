package users_test

import (
	"testing"

	"github.com/dashlytic/go-tenant-session/users"
	"github.com/stretchr/testify/require"
)

func TestMembershipLookups(t *testing.T) {
	user := &users.User{
		ID:    "user-1",
		Email: "a@x.com",
		Organizations: []users.OrganizationMembership{
			{OrganizationID: "org-1", OrganizationName: "Acme", TenantSubdomain: "acme", Role: "admin"},
			{OrganizationID: "org-2", OrganizationName: "Globex", TenantSubdomain: "", Role: "member"},
		},
	}

	require.True(t, user.HasTenant("acme"))
	require.False(t, user.HasTenant("globex"))
	require.False(t, user.HasTenant(""))

	m := user.MembershipFor("acme")
	require.NotNil(t, m)
	require.Equal(t, "org-1", m.OrganizationID)

	primary := user.PrimaryMembership()
	require.NotNil(t, primary)
	require.Equal(t, "Acme", primary.OrganizationName)
}

func TestMembershipLookupsNilSafe(t *testing.T) {
	var user *users.User
	require.False(t, user.HasTenant("acme"))
	require.Nil(t, user.MembershipFor("acme"))
	require.Nil(t, user.PrimaryMembership())

	empty := &users.User{}
	require.Nil(t, empty.PrimaryMembership())
}
