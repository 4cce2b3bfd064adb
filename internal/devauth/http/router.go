package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/safescrow/dashboard/internal/devauth/service"
	"github.com/safescrow/dashboard/internal/devauth/store"
	"github.com/safescrow/dashboard/pkg/httpx"
	"github.com/safescrow/dashboard/pkg/jwtx"
	"github.com/safescrow/dashboard/pkg/slogx"

	_ "github.com/safescrow/dashboard/api/devauth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits groups the per-route-class limits.
type RateLimits struct {
	Credentials httpx.RateLimitConfig // login, register
	Refresh     httpx.RateLimitConfig
	API         httpx.RateLimitConfig // bearer-authenticated routes
}

// RateLimitsFromEnv reads RATELIMIT_AUTH_*, RATELIMIT_REFRESH_* and
// RATELIMIT_API_* over the defaults.
func RateLimitsFromEnv() RateLimits {
	return RateLimits{
		Credentials: httpx.RateLimitFromEnv("AUTH", httpx.StrictLimit),
		Refresh:     httpx.RateLimitFromEnv("REFRESH", httpx.StrictLimit),
		API:         httpx.RateLimitFromEnv("API", httpx.ModerateLimit),
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Limits        RateLimits
	AuthService   *service.AuthService
	EscrowService *service.EscrowService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       RateLimitsFromEnv(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerEscrow()
	r.registerUser()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SafeScrow Development Backend API
//	@version		0.1.0
//	@description	Local stand-in for the escrow dashboard backend: account sign-in with rotating refresh tokens and escrow management.
//	@description
//	@description				Access tokens are EdDSA-signed JWTs. Refresh tokens are opaque and single use.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
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

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints: strict, login keyed by IP and email so one
	// address cannot lock out everyone behind a NAT.
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndField(r.Limits.Credentials, "email"),
		),
	)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.Limits.Credentials),
		),
	)
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.Limits.Refresh),
		),
	)

	r.Mux.Handle("GET /auth/profile", r.secured(h.HandleProfile))
	r.Mux.Handle("POST /auth/logout", r.secured(h.HandleLogout))
}

func (r *Router) registerEscrow() {
	h := &EscrowHandler{EscrowService: r.EscrowService}

	r.Mux.Handle("GET /escrow", r.secured(h.HandleList))
	r.Mux.Handle("POST /escrow", r.secured(h.HandleCreate))
	r.Mux.Handle("GET /escrow/{id}", r.secured(h.HandleGet))
	r.Mux.Handle("PUT /escrow/{id}", r.secured(h.HandleUpdate))
	r.Mux.Handle("POST /escrow/{id}/release", r.secured(h.HandleRelease))
	r.Mux.Handle("POST /escrow/{id}/cancel", r.secured(h.HandleCancel))
	r.Mux.Handle("GET /user/escrows", r.secured(h.HandleUserEscrows))
}

func (r *Router) registerUser() {
	h := &UserHandler{AuthService: r.AuthService}

	r.Mux.Handle("PUT /user/profile", r.secured(h.HandleUpdateProfile))
	r.Mux.Handle("PUT /user/password", r.secured(h.HandleChangePassword))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}

// secured requires a valid access token and rate limits per user.
func (r *Router) secured(fn http.HandlerFunc) http.Handler {
	return httpx.Chain(fn,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(r.Limits.API),
	)
}
