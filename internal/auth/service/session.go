package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sellersoft/shopauth/internal/auth/domain"
	"github.com/sellersoft/shopauth/internal/auth/store"
	"github.com/sellersoft/shopauth/pkg/slogx"
)

var ErrUnknownSubject = errors.New("unknown_subject")

// SessionService implements the session grants built on top of
// TokenService: the refresh_token exchange and logout-style revocation.
type SessionService struct {
	Store  store.Store
	Tokens *TokenService
}

// Refresh implements the refresh_token grant. The presented refresh token
// must verify as a live refresh token; the subject's roles are re-read so
// the new access token carries current scope, not the scope at login time.
// Refresh tokens rotate: the presented token's jti is revoked before the
// new pair is returned, so a replayed refresh token is rejected.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.Tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("load subject: %w", err)
	}

	// Revoke before issuing. If the insert fails the exchange fails and the
	// old token stays live, which is safe; the reverse order could leave
	// both the old and new refresh tokens honoured.
	if err := s.revokeClaims(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, err
	}

	pair, err := s.Tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("refresh token rotated",
		"subject", claims.Subject,
		"old_jti", claims.ID,
	)

	return pair, nil
}

// Revoke implements RFC 7009 semantics for logout: revoking a token that is
// malformed, expired, or already revoked is a no-op success, because the
// caller's goal (the token must not work afterwards) is already met. Only a
// revocation-store failure surfaces as an error.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	claims, err := s.Tokens.decode(token)
	if err != nil {
		return nil
	}

	if claims.ExpiresAt == nil || claims.Expired(time.Now().UTC()) {
		return nil
	}

	if err := s.revokeClaims(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("token revoked",
		"subject", claims.Subject,
		"jti", claims.ID,
		"type", claims.Type,
	)

	return nil
}

func (s *SessionService) revokeClaims(ctx context.Context, jti string, expiresAt time.Time) error {
	rt := domain.RevokedToken{
		JTI:       jti,
		ExpiresAt: expiresAt,
		RevokedAt: time.Now().UTC(),
	}
	if err := s.Tokens.Revoked.Insert(ctx, rt); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return nil
}
