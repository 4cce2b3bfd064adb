package http

import (
	"net/http"
	"time"

	"github.com/safescrow/dashboard/internal/devauth/domain"
	"github.com/safescrow/dashboard/internal/devauth/service"
	"github.com/safescrow/dashboard/pkg/authapi"
	"github.com/safescrow/dashboard/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleLogin godoc
//
//	@Summary		Sign in
//	@Description	Exchanges email and password for an access token and a refresh token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authapi.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authapi.TokenResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Malformed request"
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid credentials"
//	@Failure		429		{object}	httpx.ErrorBody	"Rate limit exceeded"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authapi.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleRegister godoc
//
//	@Summary		Create an account
//	@Description	Registers a user and signs them in. New wallets start with the configured balance.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authapi.RegisterRequest	true	"Registration details"
//	@Success		201		{object}	authapi.TokenResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Validation failed"
//	@Failure		409		{object}	httpx.ErrorBody	"Email already registered"
//	@Failure		429		{object}	httpx.ErrorBody	"Rate limit exceeded"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authapi.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	pair, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		NIN:         req.NIN,
		Password:    req.Password,
		Password2:   req.Password2,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tokenResponse(pair))
}

// HandleRefresh godoc
//
//	@Summary		Renew an access token
//	@Description	Exchanges a refresh token for a new pair. The presented refresh token is revoked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authapi.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authapi.TokenResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Malformed request"
//	@Failure		401		{object}	httpx.ErrorBody	"Refresh token invalid, expired or revoked"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authapi.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleProfile godoc
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authapi.Profile
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router			/auth/profile [get].
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.AuthService.Profile(r.Context(), httpx.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profileResponse(p))
}

// HandleLogout godoc
//
//	@Summary		Sign out
//	@Description	Revokes every refresh token the user holds. Issued access tokens run to expiry.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"Signed out"
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), httpx.UserID(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

func profileResponse(p *service.Profile) authapi.Profile {
	return authapi.Profile{
		ID:                  p.ID,
		Email:               p.Email,
		FullName:            p.FullName,
		PhoneNumber:         p.PhoneNumber,
		CreatedAt:           p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           p.UpdatedAt.Format(time.RFC3339),
		WalletBalance:       formatMinor(p.WalletBalance),
		EscrowBalance:       formatMinor(p.EscrowBalance),
		PendingTransactions: p.PendingTransactions,
	}
}

func tokenResponse(p *domain.TokenPair) authapi.TokenResponse {
	return authapi.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
	}
}
