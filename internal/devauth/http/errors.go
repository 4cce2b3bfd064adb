package http

import (
	"errors"
	"net/http"

	"github.com/safescrow/dashboard/internal/devauth/service"
	"github.com/safescrow/dashboard/pkg/authapi"
	"github.com/safescrow/dashboard/pkg/httpx"
	"github.com/safescrow/dashboard/pkg/slogx"
)

// writeServiceError maps service errors onto the backend's error responses.
// Anything unrecognised is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteError(w, http.StatusBadRequest, authapi.ErrorCodeInvalidRequest, verr.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, authapi.ErrorCodeInvalidCredentials, "invalid email or password")
	case errors.Is(err, service.ErrInvalidRefresh):
		httpx.WriteError(w, http.StatusUnauthorized, authapi.ErrorCodeInvalidGrant, "refresh token is invalid, expired or revoked")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusUnauthorized, authapi.ErrorCodeInvalidToken, "unknown subject")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, authapi.ErrorCodeConflict, "email already registered")
	case errors.Is(err, service.ErrEscrowNotFound):
		httpx.WriteError(w, http.StatusNotFound, authapi.ErrorCodeNotFound, "escrow not found")
	case errors.Is(err, service.ErrNotEscrowSender):
		httpx.WriteError(w, http.StatusForbidden, authapi.ErrorCodeForbidden, "only the sender can change an escrow")
	case errors.Is(err, service.ErrEscrowNotPending):
		httpx.WriteError(w, http.StatusConflict, authapi.ErrorCodeConflict, "escrow is no longer pending")
	case errors.Is(err, service.ErrInsufficientFunds):
		httpx.WriteError(w, http.StatusConflict, authapi.ErrorCodeConflict, "insufficient wallet balance")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, authapi.ErrorCodeServerError, "internal error")
	}
}

func writeBadBody(w http.ResponseWriter, err error) {
	httpx.WriteError(w, http.StatusBadRequest, authapi.ErrorCodeInvalidRequest, err.Error())
}
