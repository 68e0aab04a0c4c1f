package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/sellersoft/shopauth/internal/auth/service"
	"github.com/sellersoft/shopauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newSessionService(t *testing.T) (*service.SessionService, *service.TokenService) {
	t.Helper()

	st := newTestStore(t)
	tokens := newTokenService(t, st)
	seedUser(t, st, "alice@test.com", "USER", "READ")

	return &service.SessionService{Store: st, Tokens: tokens}, tokens
}

func TestSessionRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the refresh token", func(t *testing.T) {
		sessions, tokens := newSessionService(t)

		user, err := (&service.UserService{Store: sessions.Store}).GetUserByEmail(ctx, "alice@test.com")
		require.NoError(t, err)

		pair, err := tokens.IssuePair(user)
		require.NoError(t, err)

		rotated, err := sessions.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, "ROLE_USER READ", rotated.Scope)
		require.True(t, tokens.IsValid(ctx, rotated.AccessToken))
		require.True(t, tokens.IsValid(ctx, rotated.RefreshToken))

		// The presented refresh token must not be honoured twice.
		require.False(t, tokens.IsValid(ctx, pair.RefreshToken))
		_, err = sessions.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrTokenRevoked)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		sessions, tokens := newSessionService(t)

		user, err := (&service.UserService{Store: sessions.Store}).GetUserByEmail(ctx, "alice@test.com")
		require.NoError(t, err)

		access, err := tokens.IssueAccessToken(user)
		require.NoError(t, err)

		_, err = sessions.Refresh(ctx, access)
		require.ErrorIs(t, err, service.ErrWrongTokenType)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		sessions, _ := newSessionService(t)

		_, err := sessions.Refresh(ctx, "not.a.token")
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("rejects an expired refresh token", func(t *testing.T) {
		sessions, tokens := newSessionService(t)

		past := time.Now().UTC().Add(-48 * time.Hour)
		claims := jwtx.NewClaims("alice@test.com", jwtx.RefreshPayload{}, 24*time.Hour, past)
		token, err := tokens.Codec.Sign(claims)
		require.NoError(t, err)

		_, err = sessions.Refresh(ctx, token)
		require.ErrorIs(t, err, service.ErrTokenExpired)
	})

	t.Run("rejects a subject that no longer exists", func(t *testing.T) {
		sessions, tokens := newSessionService(t)

		claims := jwtx.NewClaims("ghost@test.com", jwtx.RefreshPayload{}, 24*time.Hour, time.Now().UTC())
		token, err := tokens.Codec.Sign(claims)
		require.NoError(t, err)

		_, err = sessions.Refresh(ctx, token)
		require.ErrorIs(t, err, service.ErrUnknownSubject)
	})
}

func TestSessionRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("revoked token stops validating immediately", func(t *testing.T) {
		sessions, tokens := newSessionService(t)

		user, err := (&service.UserService{Store: sessions.Store}).GetUserByEmail(ctx, "alice@test.com")
		require.NoError(t, err)

		token, err := tokens.IssueAccessToken(user)
		require.NoError(t, err)
		require.True(t, tokens.IsValid(ctx, token))

		require.NoError(t, sessions.Revoke(ctx, token))
		require.False(t, tokens.IsValid(ctx, token))

		// Revoking again is a no-op success.
		require.NoError(t, sessions.Revoke(ctx, token))
	})

	t.Run("revoking garbage or an expired token succeeds", func(t *testing.T) {
		sessions, tokens := newSessionService(t)

		require.NoError(t, sessions.Revoke(ctx, "not.a.token"))
		require.NoError(t, sessions.Revoke(ctx, ""))

		past := time.Now().UTC().Add(-2 * time.Hour)
		claims := jwtx.NewClaims("alice@test.com", jwtx.AccessPayload{}, time.Hour, past)
		expired, err := tokens.Codec.Sign(claims)
		require.NoError(t, err)
		require.NoError(t, sessions.Revoke(ctx, expired))
	})
}
