package auth_test

import (
	"context"
	"testing"

	auth "github.com/Raghul-K-N/sunrisers-property-listing-assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	t.Run("round trips a user", func(t *testing.T) {
		user := &auth.User{ID: 1, Username: "alice"}
		ctx := auth.WithContext(context.Background(), user)

		got, ok := auth.FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, user, got)
	})

	t.Run("empty context has no user", func(t *testing.T) {
		_, ok := auth.FromContext(context.Background())
		assert.False(t, ok)
	})
}

func TestClaimsContext(t *testing.T) {
	t.Run("round trips claims", func(t *testing.T) {
		claims := newTestClaims()
		ctx := auth.WithClaimsContext(context.Background(), claims)

		got, ok := auth.GetClaims(ctx)
		require.True(t, ok)
		assert.Equal(t, "alice", got.Subject())
		assert.Equal(t, int64(42), got.UserID())
	})

	t.Run("empty context has no claims", func(t *testing.T) {
		_, ok := auth.GetClaims(context.Background())
		assert.False(t, ok)
	})
}

func TestGetRouterClaims(t *testing.T) {
	t.Run("reads claims from the default key", func(t *testing.T) {
		claims := newTestClaims()

		mockCtx := &MockContext{}
		mockCtx.On("Locals", "user").Return(claims)

		got, ok := auth.GetRouterClaims(mockCtx, "")
		require.True(t, ok)
		assert.Equal(t, int64(42), got.UserID())
	})

	t.Run("reads claims from a custom key", func(t *testing.T) {
		claims := newTestClaims()

		mockCtx := &MockContext{}
		mockCtx.On("Locals", "caller").Return(claims)

		got, ok := auth.GetRouterClaims(mockCtx, "caller")
		require.True(t, ok)
		assert.Equal(t, "alice", got.Subject())
	})

	t.Run("missing local answers false", func(t *testing.T) {
		mockCtx := &MockContext{}
		mockCtx.On("Locals", "user").Return(nil)

		_, ok := auth.GetRouterClaims(mockCtx, "")
		assert.False(t, ok)
	})

	t.Run("wrong local type answers false", func(t *testing.T) {
		mockCtx := &MockContext{}
		mockCtx.On("Locals", "user").Return("not-claims")

		_, ok := auth.GetRouterClaims(mockCtx, "")
		assert.False(t, ok)
	})
}

func TestHasRole(t *testing.T) {
	claims := newTestClaims() // role: agent

	t.Run("matches any of the given roles", func(t *testing.T) {
		ctx := auth.WithClaimsContext(context.Background(), claims)

		assert.True(t, auth.HasRole(ctx, auth.RoleAgent))
		assert.True(t, auth.HasRole(ctx, auth.RoleClient, auth.RoleAgent))
		assert.False(t, auth.HasRole(ctx, auth.RoleAdmin))
	})

	t.Run("missing claims always answer false", func(t *testing.T) {
		assert.False(t, auth.HasRole(context.Background(), auth.RoleAgent))
	})
}

func TestHasRoleFromRouter(t *testing.T) {
	claims := newTestClaims() // role: agent

	mockCtx := &MockContext{}
	mockCtx.On("Locals", "user").Return(claims)

	assert.True(t, auth.HasRoleFromRouter(mockCtx, auth.RoleAgent, auth.RoleAdmin))
	assert.False(t, auth.HasRoleFromRouter(mockCtx, auth.RoleAdmin))
}
