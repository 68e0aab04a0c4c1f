package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sellersoft/shopauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("access claims carry scope and type", func(t *testing.T) {
		c := jwtx.NewClaims("alice@test.com", jwtx.AccessPayload{Scope: "ROLE_USER READ"}, 15*time.Minute, now)

		require.Equal(t, "alice@test.com", c.Subject)
		require.Equal(t, jwtx.TokenTypeAccess, c.Type)
		require.Equal(t, "ROLE_USER READ", c.Scope)
		require.Equal(t, now, c.IssuedAt.Time)
		require.Equal(t, now.Add(15*time.Minute), c.ExpiresAt.Time)
		require.NotEmpty(t, c.ID)
	})

	t.Run("refresh claims carry no scope", func(t *testing.T) {
		c := jwtx.NewClaims("alice@test.com", jwtx.RefreshPayload{}, time.Hour, now)

		require.Equal(t, jwtx.TokenTypeRefresh, c.Type)
		require.Empty(t, c.Scope)
	})

	t.Run("jti is unique per issuance", func(t *testing.T) {
		a := jwtx.NewClaims("a@test.com", jwtx.RefreshPayload{}, time.Hour, now)
		b := jwtx.NewClaims("a@test.com", jwtx.RefreshPayload{}, time.Hour, now)
		require.NotEqual(t, a.ID, b.ID)
	})
}

func TestClaimsPayload(t *testing.T) {
	now := time.Now().UTC()

	t.Run("round trips the access variant", func(t *testing.T) {
		c := jwtx.NewClaims("a@test.com", jwtx.AccessPayload{Scope: "ROLE_ADMIN"}, time.Minute, now)

		p, ok := c.Payload()
		require.True(t, ok)
		require.Equal(t, jwtx.AccessPayload{Scope: "ROLE_ADMIN"}, p)
	})

	t.Run("round trips the refresh variant", func(t *testing.T) {
		c := jwtx.NewClaims("a@test.com", jwtx.RefreshPayload{}, time.Minute, now)

		p, ok := c.Payload()
		require.True(t, ok)
		require.Equal(t, jwtx.RefreshPayload{}, p)
	})

	t.Run("rejects unknown token types", func(t *testing.T) {
		c := jwtx.Claims{Type: "session"}
		_, ok := c.Payload()
		require.False(t, ok)
	})
}

func TestClaimsExpired(t *testing.T) {
	now := time.Now().UTC()

	t.Run("not expired before exp", func(t *testing.T) {
		c := jwtx.NewClaims("a@test.com", jwtx.RefreshPayload{}, time.Minute, now)
		require.False(t, c.Expired(now))
	})

	t.Run("expired exactly at exp", func(t *testing.T) {
		c := jwtx.NewClaims("a@test.com", jwtx.RefreshPayload{}, time.Minute, now)
		require.True(t, c.Expired(now.Add(time.Minute)))
	})

	t.Run("expired after exp", func(t *testing.T) {
		c := jwtx.NewClaims("a@test.com", jwtx.RefreshPayload{}, time.Minute, now)
		require.True(t, c.Expired(now.Add(2*time.Minute)))
	})

	t.Run("missing exp counts as expired", func(t *testing.T) {
		c := jwtx.Claims{}
		require.True(t, c.Expired(now))
	})
}

func TestScopeList(t *testing.T) {
	t.Run("splits on spaces", func(t *testing.T) {
		c := jwtx.Claims{Scope: "ROLE_USER READ WRITE"}
		require.Equal(t, []string{"ROLE_USER", "READ", "WRITE"}, c.ScopeList())
	})

	t.Run("preserves duplicates", func(t *testing.T) {
		c := jwtx.Claims{Scope: "ROLE_USER READ ROLE_ADMIN READ"}
		require.Equal(t, []string{"ROLE_USER", "READ", "ROLE_ADMIN", "READ"}, c.ScopeList())
	})

	t.Run("nil for empty scope", func(t *testing.T) {
		c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "a@test.com"}}
		require.Nil(t, c.ScopeList())
	})
}
