package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/sellersoft/shopauth/internal/auth/service"
	"github.com/sellersoft/shopauth/pkg/httpx"
	"github.com/sellersoft/shopauth/pkg/slogx"
)

// IssueHandler serves POST /v1/token/issue. Authentication of the principal
// happens upstream (the shop API's login flow); this endpoint mints a token
// pair for an already-verified subject and is guarded by a static service
// credential so only the shop API can call it.
type IssueHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService
	MintToken    string
}

// ServeHTTP godoc
//
//	@Summary		Token Issuance Endpoint
//	@Description	Issues an access + refresh token pair for a known user.
//	@Description	Guarded by the X-Mint-Token service credential; not a public login endpoint.
//	@Tags			Token
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			X-Mint-Token	header		string				true	"Static service credential"
//	@Param			email			formData	string				true	"Subject to mint tokens for"
//	@Success		200				{object}	domain.TokenPair	"access_token, refresh_token, token_type, expires_in, scope"
//	@Failure		400				{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	httpx.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control		"no-store"
//	@Router			/v1/token/issue [post].
func (h *IssueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	presented := r.Header.Get("X-Mint-Token")
	if h.MintToken == "" ||
		subtle.ConstantTimeCompare([]byte(presented), []byte(h.MintToken)) != 1 {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid service credential")
		return
	}

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unsupported content type")
		return
	}

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	email := r.Form.Get("email")
	if email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	user, err := h.UserService.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_grant", "unknown subject")
			return
		}
		log.Error("issue: load user failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	pair, err := h.TokenService.IssuePair(user)
	if err != nil {
		log.Error("issue: signing failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	log.Info("token pair issued", "subject", email)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
