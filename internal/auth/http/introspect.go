package http

import (
	"net/http"
	"strings"

	"github.com/sellersoft/shopauth/internal/auth/service"
	"github.com/sellersoft/shopauth/pkg/httpx"
	"github.com/sellersoft/shopauth/pkg/slogx"
)

// IntrospectionResponse is the RFC 7662 introspection response. When a
// token is inactive only the "active" field is returned.
type IntrospectionResponse struct {
	Active bool `json:"active"`

	// Optional fields, only present when active=true
	Scope     string `json:"scope,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
	Sub       string `json:"sub,omitempty"`
	Jti       string `json:"jti,omitempty"`
}

// IntrospectHandler serves POST /v1/token/introspect following RFC 7662.
// The route is behind bearer authentication; anonymous callers cannot use
// it to probe token validity.
type IntrospectHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Token Introspection Endpoint
//	@Description	Reports whether a token is active and, if so, its claims (RFC 7662)
//	@Tags			Token
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Security		BearerAuth
//	@Param			token	formData	string					true	"The token to introspect"
//	@Success		200		{object}	IntrospectionResponse	"Token introspection result"
//	@Failure		400		{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		403		{string}	string					"insufficient_scope"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/v1/token/introspect [post].
func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unsupported content type")
		return
	}

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	token := r.Form.Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	// Attribute every introspection to the authenticated caller.
	logAttrs := []any{"requester", httpx.SubjectFromContext(ctx)}
	if rc := httpx.ClaimsFromContext(ctx); rc != nil {
		logAttrs = append(logAttrs, "requester_jti", rc.ID)
	}

	if !h.TokenService.IsValid(ctx, token) {
		log.Info("token introspected", append(logAttrs, "active", false)...)
		httpx.WriteJSON(w, http.StatusOK, IntrospectionResponse{Active: false})
		return
	}

	claims, err := h.TokenService.DecodeClaims(token)
	if err != nil {
		// IsValid just decoded this token, so a failure here is a bug.
		httpx.WriteJSON(w, http.StatusOK, IntrospectionResponse{Active: false})
		return
	}

	resp := IntrospectionResponse{
		Active:    true,
		Scope:     claims.Scope,
		TokenType: string(claims.Type),
		Sub:       claims.Subject,
		Jti:       claims.ID,
	}
	if claims.ExpiresAt != nil {
		resp.Exp = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		resp.Iat = claims.IssuedAt.Unix()
	}

	log.Info("token introspected", append(logAttrs, "active", true, "jti", claims.ID)...)
	httpx.WriteJSON(w, http.StatusOK, resp)
}
