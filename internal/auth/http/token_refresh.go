package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sellersoft/shopauth/internal/auth/service"
	"github.com/sellersoft/shopauth/pkg/httpx"
	"github.com/sellersoft/shopauth/pkg/slogx"
)

// RefreshHandler serves POST /v1/token/refresh, the refresh_token grant.
// The presented refresh token is rotated: it stops working the moment the
// new pair is issued.
type RefreshHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Token Refresh Endpoint
//	@Description	Exchanges a live refresh token for a new access + refresh token pair.
//	@Description	Scope is recomputed from the subject's current roles, and the presented refresh token is revoked (rotation).
//	@Tags			Token
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			refresh_token	formData	string				true	"The refresh token to exchange"
//	@Success		200				{object}	domain.TokenPair	"access_token, refresh_token, token_type, expires_in, scope"
//	@Failure		400				{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		503				{object}	httpx.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control		"no-store"
//	@Router			/v1/token/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	token := r.Form.Get("refresh_token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	pair, err := h.SessionService.Refresh(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRevocationUnavailable):
			log.Error("refresh: revocation store unavailable", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "")
		case errors.Is(err, service.ErrInvalidToken),
			errors.Is(err, service.ErrWrongTokenType),
			errors.Is(err, service.ErrTokenExpired),
			errors.Is(err, service.ErrTokenRevoked),
			errors.Is(err, service.ErrUnknownSubject):
			// One opaque code for every rejection so callers can't probe
			// which check failed.
			httpx.WriteError(w, http.StatusBadRequest, "invalid_grant", "refresh token rejected")
		default:
			log.Error("refresh failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
