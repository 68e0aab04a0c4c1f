package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
)

// HS256Codec signs and verifies compact tokens with a single shared
// HMAC-SHA256 key. It holds no mutable state, so one codec is safe to share
// across all concurrent issuance and validation calls.
type HS256Codec struct {
	key SigningKey
}

// NewHS256Codec wraps an already-validated SigningKey. Keys come from
// KeyFromSecret so length and encoding have been checked by the time we get
// here, but guard against a nil key anyway.
func NewHS256Codec(key SigningKey) (*HS256Codec, error) {
	if len(key) == 0 {
		return nil, ErrMissingSecret
	}
	return &HS256Codec{key: key}, nil
}

// Sign serialises the claims into a signed compact token string.
func (c *HS256Codec) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(c.key))
}

// Decode parses the token and verifies its signature. It does NOT check
// expiry: exp is surfaced as a claim for the caller to judge, so an expired
// but well-formed token stays decodable for inspection. Errors distinguish
// a structurally broken token (ErrMalformed) from one signed with the wrong
// key (ErrInvalidSig) or an unexpected algorithm (ErrAlgMismatch).
func (c *HS256Codec) Decode(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(c.key), nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrMalformed
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrAlgMismatch, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
