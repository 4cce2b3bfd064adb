package http

import (
	"context"
	"net/http"
	"time"

	"github.com/safescrow/dashboard/internal/devauth/store"
	"github.com/safescrow/dashboard/pkg/authapi"
	"github.com/safescrow/dashboard/pkg/httpx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness check. Returns 503 while the store cannot be reached.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version"
//	@Failure		503	{object}	httpx.ErrorBody	"Store unavailable"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			httpx.WriteError(w, http.StatusServiceUnavailable, authapi.ErrorCodeServerError, "store unavailable")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ready",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
