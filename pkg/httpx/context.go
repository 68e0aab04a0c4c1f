package httpx

import (
	"context"

	"github.com/sellersoft/shopauth/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeySubject ctxKey = "subject"
	CtxKeyScopes  ctxKey = "scopes"
	CtxKeyClaims  ctxKey = "claims"
)

// SubjectFromContext returns the authenticated subject (user email) set by
// the authn middleware, or "" when the request is unauthenticated.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}

// ScopesFromContext returns the authorization scopes of the authenticated
// token, or nil.
func ScopesFromContext(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}

// ClaimsFromContext returns the full claim set of the authenticated token,
// or nil when the request is unauthenticated.
func ClaimsFromContext(ctx context.Context) *jwtx.Claims {
	if v, ok := ctx.Value(CtxKeyClaims).(*jwtx.Claims); ok {
		return v
	}
	return nil
}
