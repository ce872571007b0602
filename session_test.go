package auth_test

import (
	"testing"
	"time"

	auth "github.com/Raghul-K-N/sunrisers-property-listing-assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionObjectAccessors(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session := &auth.SessionObject{
		UserID:   42,
		Subject:  "alice",
		Audience: []string{"test-audience"},
		Issuer:   "test-issuer",
		IssuedAt: &issuedAt,
		Data:     map[string]any{"role": "agent"},
	}

	assert.Equal(t, int64(42), session.GetUserID())
	assert.Equal(t, "alice", session.GetSubject())
	assert.Equal(t, []string{"test-audience"}, session.GetAudience())
	assert.Equal(t, "test-issuer", session.GetIssuer())
	assert.Equal(t, &issuedAt, session.GetIssuedAt())
	assert.Equal(t, "agent", session.GetData()["role"])
}

func TestSessionObjectRoles(t *testing.T) {
	t.Run("role from session data", func(t *testing.T) {
		session := &auth.SessionObject{Data: map[string]any{"role": "admin"}}

		assert.True(t, session.HasRole("admin"))
		assert.False(t, session.HasRole("client"))
		assert.True(t, session.IsAtLeast(auth.RoleAgent))
	})

	t.Run("missing role falls back to client", func(t *testing.T) {
		session := &auth.SessionObject{}

		assert.True(t, session.HasRole("client"))
		assert.True(t, session.IsAtLeast(auth.RoleClient))
		assert.False(t, session.IsAtLeast(auth.RoleAgent))
	})

	t.Run("unparseable role falls back to client", func(t *testing.T) {
		session := &auth.SessionObject{Data: map[string]any{"role": "superuser"}}

		assert.True(t, session.HasRole("client"))
		assert.False(t, session.IsAtLeast(auth.RoleAgent))
	})
}

func TestSessionObjectString(t *testing.T) {
	session := auth.SessionObject{UserID: 7, Subject: "bob"}
	out := session.String()

	assert.Contains(t, out, "user=7")
	assert.Contains(t, out, "sub=bob")
}

func TestSessionRoundTripThroughToken(t *testing.T) {
	provider := &MockIdentityProvider{}
	authenticator := newTestAuthenticator(provider)

	identity := TestIdentity{id: 9, username: "carol", email: "carol@example.com", role: "admin", active: true}

	token, err := authenticator.TokenService().Generate(identity)
	require.NoError(t, err)

	session, err := authenticator.SessionFromToken(token)
	require.NoError(t, err)

	assert.Equal(t, int64(9), session.GetUserID())
	assert.Equal(t, "carol", session.GetSubject())

	obj, ok := session.(*auth.SessionObject)
	require.True(t, ok)
	assert.True(t, obj.HasRole("admin"))
	assert.True(t, obj.IsAtLeast(auth.RoleAgent))
	require.NotNil(t, obj.ExpirationDate)
	assert.True(t, obj.ExpirationDate.After(time.Now()))
}
