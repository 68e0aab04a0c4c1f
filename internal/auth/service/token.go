package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sellersoft/shopauth/internal/auth/domain"
	"github.com/sellersoft/shopauth/internal/auth/store"
	"github.com/sellersoft/shopauth/pkg/jwtx"
	"github.com/sellersoft/shopauth/pkg/slogx"
)

var (
	// ErrInvalidToken covers decode failures (bad signature, malformed
	// structure) surfaced from the extraction accessors.
	ErrInvalidToken = errors.New("invalid_token")

	ErrTokenExpired   = errors.New("token_expired")
	ErrTokenRevoked   = errors.New("token_revoked")
	ErrWrongTokenType = errors.New("wrong_token_type")

	// ErrRevocationUnavailable means the revocation store could not answer.
	// Policy is fail closed: the token is rejected as if revoked, because an
	// outage must never grant access a healthy store would have denied.
	ErrRevocationUnavailable = errors.New("revocation_store_unavailable")
)

// TokenService owns the token life cycle: issuance of signed access and
// refresh tokens, validation against expiry and the revocation set, and
// claim extraction. It holds no mutable state; every call is a
// self-contained computation plus at most one revocation-store read, so
// concurrent use needs no locking.
type TokenService struct {
	Codec      *jwtx.HS256Codec
	Revoked    store.RevokedTokens
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssueAccessToken signs an access token for the user, embedding the scope
// computed from their current roles and permissions.
func (s *TokenService) IssueAccessToken(user domain.User) (string, error) {
	claims := jwtx.NewClaims(
		user.Email,
		jwtx.AccessPayload{Scope: BuildScope(user)},
		s.AccessTTL,
		time.Now().UTC(),
	)
	return s.Codec.Sign(claims)
}

// IssueRefreshToken signs a refresh token for the user. Refresh tokens
// carry no scope; authorization is recomputed when they are redeemed.
func (s *TokenService) IssueRefreshToken(user domain.User) (string, error) {
	claims := jwtx.NewClaims(user.Email, jwtx.RefreshPayload{}, s.RefreshTTL, time.Now().UTC())
	return s.Codec.Sign(claims)
}

// IssuePair issues a matching access + refresh token pair.
func (s *TokenService) IssuePair(user domain.User) (*domain.TokenPair, error) {
	access, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := s.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
		Scope:        BuildScope(user),
	}, nil
}

// IsValid is the boundary the rest of the application calls before
// honouring a bearer token. Every failure mode collapses to false here:
// unparseable token, bad signature, unknown type, expiry, revocation,
// even an unreachable revocation store. Callers get a clean boolean;
// an unreachable store must never admit a token a healthy store would have
// rejected.
func (s *TokenService) IsValid(ctx context.Context, token string) bool {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return false
	}

	if err := s.checkActive(ctx, claims); err != nil {
		if errors.Is(err, ErrRevocationUnavailable) {
			slogx.FromContext(ctx).Warn("revocation store unreachable, rejecting token", "err", err)
		}
		return false
	}

	return true
}

// VerifyAccess validates a token the way IsValid does but additionally
// requires it to be an access token, returning its claims for the caller
// (authn middleware, introspection) to use.
func (s *TokenService) VerifyAccess(ctx context.Context, token string) (*jwtx.Claims, error) {
	return s.verify(ctx, token, jwtx.TokenTypeAccess)
}

// VerifyRefresh is VerifyAccess for refresh tokens; the refresh grant uses
// it before rotating.
func (s *TokenService) VerifyRefresh(ctx context.Context, token string) (*jwtx.Claims, error) {
	return s.verify(ctx, token, jwtx.TokenTypeRefresh)
}

func (s *TokenService) verify(ctx context.Context, token string, want jwtx.TokenType) (*jwtx.Claims, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Type != want {
		return nil, ErrWrongTokenType
	}

	if err := s.checkActive(ctx, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// checkActive applies the post-decode validity rules: the type must be one
// we issue, the token must be unexpired, and its jti must not be in the
// revocation set. A store error fails closed as ErrRevocationUnavailable.
func (s *TokenService) checkActive(ctx context.Context, claims *jwtx.Claims) error {
	if _, ok := claims.Payload(); !ok {
		return ErrWrongTokenType
	}

	if claims.Expired(time.Now().UTC()) {
		return ErrTokenExpired
	}

	revoked, err := s.Revoked.Exists(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	if revoked {
		return ErrTokenRevoked
	}

	return nil
}

// The extraction accessors below work on any well-signed token regardless
// of expiry or revocation: callers inspecting a token (diagnostics, the
// logout path) need the claims even when the token is no longer honoured.
// Decode failure surfaces as ErrInvalidToken, since here the caller asked
// for a specific field and has no sensible default.

// DecodeClaims returns the full claim set of a well-signed token without
// judging expiry or revocation. Introspection uses it to report claims
// alongside the separate active flag.
func (s *TokenService) DecodeClaims(token string) (*jwtx.Claims, error) {
	return s.decode(token)
}

func (s *TokenService) ExtractSubject(token string) (string, error) {
	claims, err := s.decode(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *TokenService) ExtractTokenType(token string) (jwtx.TokenType, error) {
	claims, err := s.decode(token)
	if err != nil {
		return "", err
	}
	return claims.Type, nil
}

func (s *TokenService) ExtractScope(token string) ([]string, error) {
	claims, err := s.decode(token)
	if err != nil {
		return nil, err
	}
	return claims.ScopeList(), nil
}

func (s *TokenService) ExtractTokenID(token string) (string, error) {
	claims, err := s.decode(token)
	if err != nil {
		return "", err
	}
	return claims.ID, nil
}

func (s *TokenService) ExtractExpiration(token string) (time.Time, error) {
	claims, err := s.decode(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

func (s *TokenService) decode(token string) (*jwtx.Claims, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
