// Package redis provides a Redis-backed revocation set. Unlike the sqlite
// driver it is not a full Store: only revoked-token lookups live here, for
// deployments that want revocation visible across replicas without sharing
// the sqlite file.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sellersoft/shopauth/internal/auth/domain"
)

const keyPrefix = "revoked"

// ErrUnavailable wraps any Redis transport failure. Callers treat it as
// "assume revoked"; an unreachable revocation set must never admit a token.
var ErrUnavailable = errors.New("redis: revocation store unavailable")

// RevokedTokens implements store.RevokedTokens on a Redis client. Each
// revoked jti becomes a key with a TTL matching the token's own expiry, so
// Redis reclaims records itself and DeleteExpired is a no-op.
type RevokedTokens struct {
	client *redis.Client
}

func NewRevokedTokens(client *redis.Client) *RevokedTokens {
	return &RevokedTokens{client: client}
}

func (s *RevokedTokens) key(jti string) string {
	return keyPrefix + ":" + jti
}

func (s *RevokedTokens) Insert(ctx context.Context, rt domain.RevokedToken) error {
	ttl := time.Until(rt.ExpiresAt)
	if ttl <= 0 {
		// Already past expiry; validation rejects it on the exp claim alone.
		return nil
	}

	// The revocation instant rides along as the value so an operator
	// inspecting the key can see when the token was pulled.
	if err := s.client.Set(ctx, s.key(rt.JTI), rt.RevokedAt.UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

func (s *RevokedTokens) Exists(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

// DeleteExpired is a no-op: Redis expires revocation keys natively.
func (s *RevokedTokens) DeleteExpired(ctx context.Context) error {
	return nil
}
