package auth_test

import (
	"context"
	"testing"
	"time"

	auth "github.com/Raghul-K-N/sunrisers-property-listing-assistant"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(provider auth.IdentityProvider) *auth.Auther {
	return auth.NewAuthenticator(provider, newMockConfig())
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	alice := TestIdentity{
		id:       1,
		username: "alice",
		email:    "alice@example.com",
		role:     "client",
		active:   true,
	}

	t.Run("successful login returns a signed token", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "alice", "s3cret").Return(alice, nil).Once()

		authenticator := newTestAuthenticator(provider)

		token, err := authenticator.Login(ctx, "alice", "s3cret")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		parsed, err := jwt.ParseWithClaims(token, &auth.JWTClaims{}, func(token *jwt.Token) (any, error) {
			return []byte("test-signing-key"), nil
		})
		require.NoError(t, err)
		claims := parsed.Claims.(*auth.JWTClaims)

		assert.Equal(t, "alice", claims.Subject())
		assert.Equal(t, int64(1), claims.UserID())
		assert.Equal(t, "client", claims.Role())

		provider.AssertExpectations(t)
	})

	t.Run("login by email works the same as by username", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "alice@example.com", "s3cret").Return(alice, nil).Once()

		authenticator := newTestAuthenticator(provider)

		token, err := authenticator.Login(ctx, "alice@example.com", "s3cret")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		provider.AssertExpectations(t)
	})

	t.Run("unknown identifier and wrong password are the same rejection", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "ghost", "whatever").Return(nil, auth.ErrInvalidCredentials).Once()
		provider.On("VerifyIdentity", ctx, "alice", "wrong").Return(nil, auth.ErrInvalidCredentials).Once()

		authenticator := newTestAuthenticator(provider)

		_, unknownErr := authenticator.Login(ctx, "ghost", "whatever")
		_, wrongPassErr := authenticator.Login(ctx, "alice", "wrong")

		assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, wrongPassErr, auth.ErrInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongPassErr.Error())

		provider.AssertExpectations(t)
	})

	t.Run("disabled account is rejected after the password matched", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "alice", "s3cret").Return(nil, auth.ErrAccountDisabled).Once()

		authenticator := newTestAuthenticator(provider)

		_, err := authenticator.Login(ctx, "alice", "s3cret")
		assert.ErrorIs(t, err, auth.ErrAccountDisabled)

		provider.AssertExpectations(t)
	})

	t.Run("nil identity from provider is an error", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "alice", "s3cret").Return(nil, nil).Once()

		authenticator := newTestAuthenticator(provider)

		_, err := authenticator.Login(ctx, "alice", "s3cret")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})

	t.Run("login emits activity events", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "alice", "s3cret").Return(alice, nil).Once()
		provider.On("VerifyIdentity", ctx, "alice", "wrong").Return(nil, auth.ErrInvalidCredentials).Once()

		sink := &CapturingActivitySink{}
		authenticator := newTestAuthenticator(provider).WithActivitySink(sink)

		_, err := authenticator.Login(ctx, "alice", "s3cret")
		require.NoError(t, err)

		_, err = authenticator.Login(ctx, "alice", "wrong")
		require.Error(t, err)

		events := sink.Events()
		require.Len(t, events, 2)
		assert.Equal(t, auth.ActivityEventLoginSuccess, events[0].EventType)
		assert.Equal(t, int64(1), events[0].UserID)
		assert.Equal(t, auth.ActivityEventLoginFailure, events[1].EventType)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a fresh token for an active identity", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		authenticator := newTestAuthenticator(provider)

		identity := TestIdentity{id: 1, username: "alice", role: "client", active: true}

		token, err := authenticator.Refresh(ctx, identity)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("rejects a deactivated identity", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		authenticator := newTestAuthenticator(provider)

		identity := TestIdentity{id: 1, username: "alice", role: "client", active: false}

		_, err := authenticator.Refresh(ctx, identity)
		assert.ErrorIs(t, err, auth.ErrAccountDisabled)
	})

	t.Run("rejects a nil identity", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		authenticator := newTestAuthenticator(provider)

		_, err := authenticator.Refresh(ctx, nil)
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	alice := TestIdentity{
		id:       1,
		username: "alice",
		email:    "alice@example.com",
		role:     "client",
		active:   true,
	}

	pinnedService := func(now time.Time) *auth.TokenServiceImpl {
		return auth.NewTokenService(
			[]byte("test-signing-key"),
			30*time.Minute,
			"test-issuer",
			jwt.ClaimStrings{"test-audience"},
			nil,
		).WithNow(func() time.Time { return now })
	}

	mintAt := func(t *testing.T, at time.Time) string {
		t.Helper()
		token, err := pinnedService(at).Generate(alice)
		require.NoError(t, err)
		return token
	}

	t.Run("valid token resolves to a reloaded identity", func(t *testing.T) {
		token := mintAt(t, issuedAt)

		provider := &MockRecordingProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "alice").Return(alice, nil).Once()
		provider.On("RecordLastSeen", ctx, alice).Return(nil).Once()

		authenticator := newTestAuthenticator(provider).
			WithTokenService(pinnedService(issuedAt.Add(10 * time.Minute)))

		identity, err := authenticator.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, int64(1), identity.ID())
		assert.Equal(t, "alice", identity.Username())

		provider.AssertExpectations(t)
	})

	t.Run("token past its TTL no longer resolves", func(t *testing.T) {
		token := mintAt(t, issuedAt)

		provider := &MockRecordingProvider{}
		authenticator := newTestAuthenticator(provider).
			WithTokenService(pinnedService(issuedAt.Add(31 * time.Minute)))

		_, err := authenticator.Resolve(ctx, token)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)

		provider.AssertNotCalled(t, "FindIdentityByIdentifier", mock.Anything, mock.Anything)
	})

	t.Run("valid token for a vanished identity reports it gone", func(t *testing.T) {
		token := mintAt(t, issuedAt)

		provider := &MockRecordingProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "alice").Return(nil, auth.ErrIdentityNotFound).Once()

		authenticator := newTestAuthenticator(provider).
			WithTokenService(pinnedService(issuedAt.Add(5 * time.Minute)))

		_, err := authenticator.Resolve(ctx, token)
		assert.ErrorIs(t, err, auth.ErrIdentityGone)
	})

	t.Run("storage failures are not a vanished identity", func(t *testing.T) {
		token := mintAt(t, issuedAt)

		provider := &MockRecordingProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "alice").Return(nil, assert.AnError).Once()

		authenticator := newTestAuthenticator(provider).
			WithTokenService(pinnedService(issuedAt.Add(5 * time.Minute)))

		_, err := authenticator.Resolve(ctx, token)
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrIdentityGone)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("failed last-seen write does not fail resolution", func(t *testing.T) {
		token := mintAt(t, issuedAt)

		provider := &MockRecordingProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "alice").Return(alice, nil).Once()
		provider.On("RecordLastSeen", ctx, alice).Return(assert.AnError).Once()

		authenticator := newTestAuthenticator(provider).
			WithTokenService(pinnedService(issuedAt.Add(5 * time.Minute)))

		identity, err := authenticator.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "alice", identity.Username())
	})

	t.Run("provider without last-seen support still resolves", func(t *testing.T) {
		token := mintAt(t, issuedAt)

		provider := &MockIdentityProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "alice").Return(alice, nil).Once()

		authenticator := newTestAuthenticator(provider).
			WithTokenService(pinnedService(issuedAt.Add(5 * time.Minute)))

		identity, err := authenticator.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "alice", identity.Username())
	})
}

func TestSessionFromToken(t *testing.T) {
	provider := &MockIdentityProvider{}
	authenticator := newTestAuthenticator(provider)

	alice := TestIdentity{id: 1, username: "alice", role: "agent", active: true}

	t.Run("decodes a valid token into a session", func(t *testing.T) {
		token, err := authenticator.TokenService().Generate(alice)
		require.NoError(t, err)

		session, err := authenticator.SessionFromToken(token)
		require.NoError(t, err)

		assert.Equal(t, int64(1), session.GetUserID())
		assert.Equal(t, "alice", session.GetSubject())
		assert.Equal(t, "test-issuer", session.GetIssuer())
		assert.Equal(t, []string{"test-audience"}, session.GetAudience())
		assert.Equal(t, "agent", session.GetData()["role"])
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := authenticator.SessionFromToken("garbage")
		assert.Error(t, err)
	})
}

func TestIdentityFromSession(t *testing.T) {
	ctx := context.Background()
	alice := TestIdentity{id: 1, username: "alice", role: "client", active: true}

	t.Run("resolves the session subject", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "alice").Return(alice, nil).Once()

		authenticator := newTestAuthenticator(provider)

		identity, err := authenticator.IdentityFromSession(ctx, &auth.SessionObject{Subject: "alice"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), identity.ID())
	})

	t.Run("propagates lookup failures", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "ghost").Return(nil, auth.ErrIdentityNotFound).Once()

		authenticator := newTestAuthenticator(provider)

		_, err := authenticator.IdentityFromSession(ctx, &auth.SessionObject{Subject: "ghost"})
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}
