package store

import (
	"context"
	"errors"

	"github.com/sellersoft/shopauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. Sub-repositories keep concerns tidy and
// let services depend on exactly the slice of storage they use.
type Store interface {
	Users() Users
	Roles() Roles
	RevokedTokens() RevokedTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction; fn returning an error rolls
	// back, nil commits. Prefer this over Tx for multi-step writes.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByEmail returns a user projection with roles and permissions
	// loaded in a deterministic (name-sorted) order.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user row (id is provided by the app via
	// ULID). Roles on the passed user are ignored; use AssignRole.
	CreateUser(ctx context.Context, u domain.User) error

	// AssignRole links an existing role to a user. Idempotent.
	AssignRole(ctx context.Context, userID, roleID string) error

	// DeleteUser cascades to user_roles per schema.
	DeleteUser(ctx context.Context, userID string) error
}

type Roles interface {
	// GetRoleByName fetches a role and its permissions by unique name.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// CreateRole inserts a role together with its permissions. Permissions
	// that already exist by name are linked rather than duplicated.
	CreateRole(ctx context.Context, r domain.Role) error

	// ListAll returns every role with permissions loaded, name-sorted.
	ListAll(ctx context.Context) ([]domain.Role, error)
}

// RevokedTokens is the authoritative "is this jti still honoured" set.
// Validation only reads it; the logout path writes. A driver error on
// Exists must surface to the caller, never be swallowed; validation fails
// closed on it.
type RevokedTokens interface {
	// Insert persists the revocation record. Its ExpiresAt mirrors the
	// token's own expiry so the record can be reclaimed once the token
	// would have died anyway. Revocation is permanent; re-inserting a
	// revoked jti is a no-op.
	Insert(ctx context.Context, rt domain.RevokedToken) error

	// Exists reports whether the jti has been revoked.
	Exists(ctx context.Context, jti string) (bool, error)

	// DeleteExpired reclaims rows for tokens past their expiry. Housekeeping
	// only; backends with native TTLs make this a no-op.
	DeleteExpired(ctx context.Context) error
}
