package service_test

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/sellersoft/shopauth/internal/auth/domain"
	"github.com/sellersoft/shopauth/internal/auth/service"
	"github.com/sellersoft/shopauth/internal/auth/store/drivers/sqlite"
	"github.com/sellersoft/shopauth/pkg/idx"
	"github.com/sellersoft/shopauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 bytes pre-encoding

func newTestCodec(t *testing.T, secret string) *jwtx.HS256Codec {
	t.Helper()

	key, err := jwtx.KeyFromSecret(base64.StdEncoding.EncodeToString([]byte(secret)))
	require.NoError(t, err)

	codec, err := jwtx.NewHS256Codec(key)
	require.NoError(t, err)
	return codec
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTokenService(t *testing.T, st *sqlite.Store) *service.TokenService {
	t.Helper()

	return &service.TokenService{
		Codec:      newTestCodec(t, testSecret),
		Revoked:    st.RevokedTokens(),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}
}

// seedUser creates a user with a single role carrying the given
// permissions, returning the full projection.
func seedUser(t *testing.T, st *sqlite.Store, email, roleName string, perms ...string) domain.User {
	t.Helper()
	ctx := context.Background()

	role := domain.Role{ID: idx.New().String(), Name: roleName}
	for _, p := range perms {
		role.Permissions = append(role.Permissions, domain.Permission{Name: p})
	}
	require.NoError(t, st.Roles().CreateRole(ctx, role))

	created, err := st.Roles().GetRoleByName(ctx, roleName)
	require.NoError(t, err)

	u := domain.User{ID: idx.New().String(), Email: email}
	require.NoError(t, st.Users().CreateUser(ctx, u))
	require.NoError(t, st.Users().AssignRole(ctx, u.ID, created.ID))

	full, err := st.Users().GetUserByEmail(ctx, email)
	require.NoError(t, err)
	return full
}
