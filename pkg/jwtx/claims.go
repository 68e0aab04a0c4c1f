package jwtx

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType discriminates the two token shapes we issue.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Payload is the tagged variant behind a token's extra claims. Access tokens
// carry a scope string, refresh tokens carry nothing. Keeping this as a
// closed set means refresh-token code paths can't accidentally read a scope
// that was never issued.
type Payload interface {
	tokenType() TokenType
	scope() string
}

// AccessPayload is the payload of an access token: the space-delimited
// authorization scope computed from the user's roles at issuance time.
type AccessPayload struct {
	Scope string
}

func (p AccessPayload) tokenType() TokenType { return TokenTypeAccess }
func (p AccessPayload) scope() string        { return p.Scope }

// RefreshPayload is the (empty) payload of a refresh token.
type RefreshPayload struct{}

func (p RefreshPayload) tokenType() TokenType { return TokenTypeRefresh }
func (p RefreshPayload) scope() string        { return "" }

// Claims is the wire shape of every token we sign:
//
//	sub   user email
//	jti   unique id per issuance, revocation lookups key off this
//	iat   issue time (epoch seconds)
//	exp   expiry (epoch seconds)
//	type  "access" or "refresh"
//	scope space-delimited authorization strings, access tokens only
type Claims struct {
	jwt.RegisteredClaims

	Type  TokenType `json:"type"`
	Scope string    `json:"scope,omitempty"`
}

// NewClaims builds claims for the given subject and payload variant. The jti
// is a fresh UUID per call, so two tokens issued in the same instant for the
// same user are still distinct for revocation purposes.
func NewClaims(subject string, p Payload, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Type:  p.tokenType(),
		Scope: p.scope(),
	}
}

// Payload reconstructs the tagged variant from decoded claims. Unknown types
// report false; callers should treat those tokens as invalid.
func (c *Claims) Payload() (Payload, bool) {
	switch c.Type {
	case TokenTypeAccess:
		return AccessPayload{Scope: c.Scope}, true
	case TokenTypeRefresh:
		return RefreshPayload{}, true
	default:
		return nil, false
	}
}

// Expired reports whether the token is past its exp claim at the given
// instant. A token with exp == now is already expired. Claims without an exp
// are never accepted by the codec, but treat them as expired anyway.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !now.Before(c.ExpiresAt.Time)
}

// ScopeList splits the scope claim into its individual authorization
// strings. Nil for refresh tokens or an empty scope.
func (c *Claims) ScopeList() []string {
	if c.Scope == "" {
		return nil
	}
	return strings.Fields(c.Scope)
}
