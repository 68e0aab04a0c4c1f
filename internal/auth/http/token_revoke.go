package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sellersoft/shopauth/internal/auth/service"
	"github.com/sellersoft/shopauth/pkg/httpx"
	"github.com/sellersoft/shopauth/pkg/slogx"
)

// RevokeHandler serves POST /v1/token/revoke following RFC 7009. Revoking a
// malformed, expired, or already-revoked token returns 200 OK so the
// endpoint cannot be used to probe which tokens exist. Only a revocation
// store outage fails, because then the token genuinely was not revoked.
type RevokeHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Token Revocation Endpoint
//	@Description	Revokes a previously issued token (RFC 7009). Applies to both access and refresh tokens.
//	@Description	Idempotent; returns 200 OK even for invalid or unknown tokens to prevent token scanning attacks.
//	@Tags			Token
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			token	formData	string	true	"The token to revoke"
//	@Success		200		"Token revoked (or was already dead)"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		503		{object}	httpx.ErrorResponse	"error, error_description"
//	@Header			200		{string}	Cache-Control		"no-store"
//	@Router			/v1/token/revoke [post].
func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	if err := h.SessionService.Revoke(ctx, token); err != nil {
		if errors.Is(err, service.ErrRevocationUnavailable) {
			log.Error("revoke: revocation store unavailable", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "")
			return
		}
		log.Error("revoke failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}
