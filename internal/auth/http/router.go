package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sellersoft/shopauth/internal/auth/service"
	"github.com/sellersoft/shopauth/internal/auth/store"
	"github.com/sellersoft/shopauth/pkg/httpx"
	"github.com/sellersoft/shopauth/pkg/slogx"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	mintToken    string

	store          store.Store
	TokenService   *service.TokenService
	SessionService *service.SessionService
	UserService    *service.UserService
}

func NewRouter(buildVersion, mintToken string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		mintToken:    mintToken,
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerToken()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			ShopAuth Token Service API
//	@version		0.1.0
//	@description	Session token management for the shop API: issuance, refresh, revocation,
//	@description	and introspection of HMAC-SHA256 signed JWTs.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerToken() {
	issueHandler := &IssueHandler{
		UserService:  r.UserService,
		TokenService: r.TokenService,
		MintToken:    r.mintToken,
	}
	r.Mux.Handle("POST /v1/token/issue", issueHandler)

	refreshHandler := &RefreshHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /v1/token/refresh", refreshHandler)

	revokeHandler := &RevokeHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /v1/token/revoke", revokeHandler)

	// Introspection (RFC 7662) requires an authenticated caller holding
	// the READ permission or an admin role.
	introspectHandler := &IntrospectHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/token/introspect",
		httpx.Chain(introspectHandler,
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RequireAnyScope("READ", "ROLE_ADMIN"),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.TokenService))
}
