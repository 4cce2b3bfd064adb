package http

import (
	"net/http"

	"github.com/safescrow/dashboard/internal/devauth/service"
	"github.com/safescrow/dashboard/pkg/authapi"
	"github.com/safescrow/dashboard/pkg/httpx"
)

// UserHandler serves account settings for the signed-in user.
type UserHandler struct {
	AuthService *service.AuthService
}

// HandleUpdateProfile godoc
//
//	@Summary		Update profile
//	@Tags			User
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authapi.UpdateProfileRequest	true	"New details"
//	@Success		200		{object}	authapi.Profile
//	@Failure		400		{object}	httpx.ErrorBody	"Validation failed"
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router			/user/profile [put].
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req authapi.UpdateProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	p, err := h.AuthService.UpdateProfile(r.Context(), httpx.UserID(r.Context()), service.UpdateProfileInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profileResponse(p))
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Requires the current password. Existing sessions stay signed in.
//	@Tags			User
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	authapi.ChangePasswordRequest	true	"Current and new password"
//	@Success		204		"Password changed"
//	@Failure		400		{object}	httpx.ErrorBody	"Wrong current password or new password too short"
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router			/user/password [put].
func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req authapi.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	err := h.AuthService.ChangePassword(r.Context(), httpx.UserID(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
