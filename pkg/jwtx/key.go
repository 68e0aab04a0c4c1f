package jwtx

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// MinHMACKeySize is the smallest key we accept for HMAC-SHA256. RFC 2104
// wants the key to be at least the hash output size, so 32 bytes.
const MinHMACKeySize = 32

var (
	ErrMissingSecret = errors.New("jwtx: signing secret is not configured")
	ErrInvalidSecret = errors.New("jwtx: signing secret is not valid base64")
	ErrWeakSecret    = errors.New("jwtx: signing secret is too short for HMAC-SHA256")
)

// SigningKey is raw symmetric key material for HMAC-SHA256. It is loaded
// once at startup and shared read-only by every signer and verifier.
type SigningKey []byte

// KeyFromSecret decodes a base64 (standard encoding) secret into a
// SigningKey. Any failure here is a configuration error and should be
// treated as fatal at startup rather than recovered per request.
func KeyFromSecret(secret string) (SigningKey, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	raw, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}

	if len(raw) < MinHMACKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrWeakSecret, len(raw), MinHMACKeySize)
	}

	return SigningKey(raw), nil
}
