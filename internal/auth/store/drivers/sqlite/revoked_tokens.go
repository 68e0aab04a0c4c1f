package sqlite

import (
	"context"
	"time"

	"github.com/sellersoft/shopauth/internal/auth/domain"
)

type revokedTokensRepo struct {
	db dbtx
}

// Insert persists the revocation record. INSERT OR IGNORE keeps revocation
// idempotent: revoking twice (double logout) is not an error and never
// un-revokes.
func (r *revokedTokensRepo) Insert(ctx context.Context, rt domain.RevokedToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at, revoked_at) VALUES (?, ?, ?)`,
		rt.JTI, rt.ExpiresAt.UTC(), rt.RevokedAt.UTC(),
	)
	return err
}

func (r *revokedTokensRepo) Exists(ctx context.Context, jti string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = ?)`,
		jti,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *revokedTokensRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at <= ?`,
		time.Now().UTC(),
	)
	return err
}
