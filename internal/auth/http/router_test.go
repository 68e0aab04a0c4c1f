package http_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sellersoft/shopauth/internal/auth/domain"
	authhttp "github.com/sellersoft/shopauth/internal/auth/http"
	"github.com/sellersoft/shopauth/internal/auth/service"
	"github.com/sellersoft/shopauth/internal/auth/store/drivers/sqlite"
	"github.com/sellersoft/shopauth/pkg/idx"
	"github.com/sellersoft/shopauth/pkg/jwtx"
	"github.com/sellersoft/shopauth/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const testMintToken = "test-mint-token"

func newTestRouter(t *testing.T) *authhttp.Router {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	role := domain.Role{
		ID:          idx.New().String(),
		Name:        "USER",
		Permissions: []domain.Permission{{Name: "READ"}},
	}
	require.NoError(t, st.Roles().CreateRole(ctx, role))
	created, err := st.Roles().GetRoleByName(ctx, "USER")
	require.NoError(t, err)

	u := domain.User{ID: idx.New().String(), Email: "alice@test.com"}
	require.NoError(t, st.Users().CreateUser(ctx, u))
	require.NoError(t, st.Users().AssignRole(ctx, u.ID, created.ID))

	// A role with no permissions, for exercising scope checks.
	guestRole := domain.Role{ID: idx.New().String(), Name: "GUEST"}
	require.NoError(t, st.Roles().CreateRole(ctx, guestRole))
	guest := domain.User{ID: idx.New().String(), Email: "guest@test.com"}
	require.NoError(t, st.Users().CreateUser(ctx, guest))
	require.NoError(t, st.Users().AssignRole(ctx, guest.ID, guestRole.ID))

	key, err := jwtx.KeyFromSecret(base64.StdEncoding.EncodeToString(
		[]byte("0123456789abcdef0123456789abcdef")))
	require.NoError(t, err)
	codec, err := jwtx.NewHS256Codec(key)
	require.NoError(t, err)

	tokens := &service.TokenService{
		Codec:      codec,
		Revoked:    st.RevokedTokens(),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}

	r := authhttp.NewRouter("test", testMintToken, st, slogx.New(slogx.Config{
		Service: "shopauth-test",
		Format:  "text",
	}))
	r.TokenService = tokens
	r.SessionService = &service.SessionService{Store: st, Tokens: tokens}
	r.UserService = &service.UserService{Store: st}
	r.ApplyRoutes()

	return r
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func issuePairFor(t *testing.T, r *authhttp.Router, email string) domain.TokenPair {
	t.Helper()

	rec := postForm(t, r, "/v1/token/issue",
		url.Values{"email": {email}},
		http.Header{"X-Mint-Token": {testMintToken}},
	)
	require.Equal(t, http.StatusOK, rec.Code)

	var pair domain.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}

func issuePair(t *testing.T, r *authhttp.Router) domain.TokenPair {
	t.Helper()
	return issuePairFor(t, r, "alice@test.com")
}

func TestIssueEndpoint(t *testing.T) {
	r := newTestRouter(t)

	t.Run("issues a pair for a known user", func(t *testing.T) {
		pair := issuePair(t, r)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, int64(900), pair.ExpiresIn)
		require.Equal(t, "ROLE_USER READ", pair.Scope)
	})

	t.Run("rejects a missing or wrong mint token", func(t *testing.T) {
		rec := postForm(t, r, "/v1/token/issue",
			url.Values{"email": {"alice@test.com"}}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = postForm(t, r, "/v1/token/issue",
			url.Values{"email": {"alice@test.com"}},
			http.Header{"X-Mint-Token": {"wrong"}},
		)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects an unknown subject", func(t *testing.T) {
		rec := postForm(t, r, "/v1/token/issue",
			url.Values{"email": {"ghost@test.com"}},
			http.Header{"X-Mint-Token": {testMintToken}},
		)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var errResp struct {
			Code string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
		require.Equal(t, "invalid_grant", errResp.Code)
	})

	t.Run("requires an email", func(t *testing.T) {
		rec := postForm(t, r, "/v1/token/issue", url.Values{},
			http.Header{"X-Mint-Token": {testMintToken}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	r := newTestRouter(t)

	t.Run("rotates the refresh token", func(t *testing.T) {
		pair := issuePair(t, r)

		rec := postForm(t, r, "/v1/token/refresh",
			url.Values{"refresh_token": {pair.RefreshToken}}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var rotated domain.TokenPair
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
		require.NotEmpty(t, rotated.AccessToken)
		require.Equal(t, "ROLE_USER READ", rotated.Scope)

		// Replay of the old refresh token must fail.
		rec = postForm(t, r, "/v1/token/refresh",
			url.Values{"refresh_token": {pair.RefreshToken}}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		pair := issuePair(t, r)

		rec := postForm(t, r, "/v1/token/refresh",
			url.Values{"refresh_token": {pair.AccessToken}}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects garbage with invalid_grant", func(t *testing.T) {
		rec := postForm(t, r, "/v1/token/refresh",
			url.Values{"refresh_token": {"not.a.token"}}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var errResp struct {
			Code string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
		require.Equal(t, "invalid_grant", errResp.Code)
	})
}

func TestRevokeEndpoint(t *testing.T) {
	r := newTestRouter(t)

	t.Run("revoked access token stops introspecting as active", func(t *testing.T) {
		pair := issuePair(t, r)

		rec := postForm(t, r, "/v1/token/revoke",
			url.Values{"token": {pair.AccessToken}}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		// Introspecting with the revoked token itself must now 401.
		rec = postForm(t, r, "/v1/token/introspect",
			url.Values{"token": {pair.AccessToken}},
			http.Header{"Authorization": {"Bearer " + pair.AccessToken}},
		)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns 200 for garbage tokens", func(t *testing.T) {
		rec := postForm(t, r, "/v1/token/revoke",
			url.Values{"token": {"not.a.token"}}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, "{}", rec.Body.String())
	})

	t.Run("requires a token parameter", func(t *testing.T) {
		rec := postForm(t, r, "/v1/token/revoke", url.Values{}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestIntrospectEndpoint(t *testing.T) {
	r := newTestRouter(t)

	t.Run("requires bearer authentication", func(t *testing.T) {
		pair := issuePair(t, r)

		rec := postForm(t, r, "/v1/token/introspect",
			url.Values{"token": {pair.AccessToken}}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("reports an active token with claims", func(t *testing.T) {
		pair := issuePair(t, r)

		rec := postForm(t, r, "/v1/token/introspect",
			url.Values{"token": {pair.AccessToken}},
			http.Header{"Authorization": {"Bearer " + pair.AccessToken}},
		)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp authhttp.IntrospectionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.Active)
		require.Equal(t, "alice@test.com", resp.Sub)
		require.Equal(t, "access", resp.TokenType)
		require.Equal(t, "ROLE_USER READ", resp.Scope)
		require.NotZero(t, resp.Exp)
		require.NotEmpty(t, resp.Jti)
	})

	t.Run("rejects a caller without the read scope", func(t *testing.T) {
		guest := issuePairFor(t, r, "guest@test.com")
		target := issuePair(t, r)

		rec := postForm(t, r, "/v1/token/introspect",
			url.Values{"token": {target.AccessToken}},
			http.Header{"Authorization": {"Bearer " + guest.AccessToken}},
		)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "insufficient_scope")
	})

	t.Run("reports a revoked token as inactive only", func(t *testing.T) {
		pair := issuePair(t, r)
		dead := issuePair(t, r)

		rec := postForm(t, r, "/v1/token/revoke",
			url.Values{"token": {dead.AccessToken}}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = postForm(t, r, "/v1/token/introspect",
			url.Values{"token": {dead.AccessToken}},
			http.Header{"Authorization": {"Bearer " + pair.AccessToken}},
		)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"active": false}`, rec.Body.String())
	})
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t)

	t.Run("livez", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/livez", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp authhttp.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "ok", resp.Status)
		require.Equal(t, "test", resp.Version)
	})

	t.Run("readyz with healthy dependencies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp authhttp.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "ok", resp.Status)
		require.NotNil(t, resp.Checks)
		require.Equal(t, "ok", resp.Checks.Database)
		require.Equal(t, "ok", resp.Checks.Revocation)
	})
}
