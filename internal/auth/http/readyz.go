package http

import (
	"net/http"
	"time"

	"github.com/sellersoft/shopauth/internal/auth/service"
	"github.com/sellersoft/shopauth/internal/auth/store"
	"github.com/sellersoft/shopauth/pkg/httpx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the database and the revocation backend
//	@Description	Returns 503 when either dependency is unreachable, since validation fails closed without them
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	tokens *service.TokenService,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{
			Database:   "ok",
			Revocation: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// The revocation backend may be a separate system (redis). Probe it
		// with a read; an unreachable backend means every validation will
		// fail closed, so the instance should not take traffic.
		if _, err := tokens.Revoked.Exists(r.Context(), "readyz-probe"); err != nil {
			checks.Revocation = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
