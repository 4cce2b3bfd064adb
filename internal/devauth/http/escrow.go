package http

import (
	"net/http"

	"github.com/safescrow/dashboard/internal/devauth/domain"
	"github.com/safescrow/dashboard/internal/devauth/service"
	"github.com/safescrow/dashboard/pkg/apiclient"
	"github.com/safescrow/dashboard/pkg/httpx"
)

type EscrowHandler struct {
	EscrowService *service.EscrowService
}

// HandleList godoc
//
//	@Summary		Escrows created by the user
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		apiclient.Escrow
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router			/escrow [get].
func (h *EscrowHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	escrows, err := h.EscrowService.List(r.Context(), httpx.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, escrowList(escrows))
}

// HandleUserEscrows godoc
//
//	@Summary		Escrows the user sends or receives
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		apiclient.Escrow
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router			/user/escrows [get].
func (h *EscrowHandler) HandleUserEscrows(w http.ResponseWriter, r *http.Request) {
	escrows, err := h.EscrowService.UserEscrows(r.Context(), httpx.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, escrowList(escrows))
}

// HandleGet godoc
//
//	@Summary		Escrow details
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Escrow ID"
//	@Success		200	{object}	apiclient.Escrow
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Failure		404	{object}	httpx.ErrorBody	"Unknown escrow or not a party to it"
//	@Router			/escrow/{id} [get].
func (h *EscrowHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	e, err := h.EscrowService.Get(r.Context(), httpx.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, escrowResponse(e))
}

// HandleCreate godoc
//
//	@Summary		Create an escrow
//	@Description	Moves the amount from the wallet into escrow for the recipient.
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		apiclient.CreateEscrowRequest	true	"Escrow terms"
//	@Success		201		{object}	apiclient.Escrow
//	@Failure		400		{object}	httpx.ErrorBody	"Validation failed"
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Failure		409		{object}	httpx.ErrorBody	"Insufficient wallet balance"
//	@Router			/escrow [post].
func (h *EscrowHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req apiclient.CreateEscrowRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	e, err := h.EscrowService.Create(r.Context(), httpx.UserID(r.Context()), service.CreateEscrowInput{
		Amount:         toMinor(req.Amount),
		RecipientEmail: req.RecipientEmail,
		Description:    req.Description,
		Conditions:     req.Conditions,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, escrowResponse(e))
}

// HandleUpdate godoc
//
//	@Summary		Edit an escrow
//	@Description	Changes the description or conditions of a pending escrow. Sender only.
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Escrow ID"
//	@Param			body	body		apiclient.UpdateEscrowRequest	true	"Fields to change"
//	@Success		200		{object}	apiclient.Escrow
//	@Failure		400		{object}	httpx.ErrorBody	"Malformed request"
//	@Failure		403		{object}	httpx.ErrorBody	"Not the sender"
//	@Failure		404		{object}	httpx.ErrorBody	"Unknown escrow"
//	@Failure		409		{object}	httpx.ErrorBody	"Escrow is not pending"
//	@Router			/escrow/{id} [put].
func (h *EscrowHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req apiclient.UpdateEscrowRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	e, err := h.EscrowService.Update(r.Context(), httpx.UserID(r.Context()), r.PathValue("id"), service.UpdateEscrowInput{
		Description: req.Description,
		Conditions:  req.Conditions,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, escrowResponse(e))
}

// HandleRelease godoc
//
//	@Summary		Release an escrow
//	@Description	Pays a pending escrow out to its recipient. Sender only.
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Escrow ID"
//	@Success		200	{object}	apiclient.Escrow
//	@Failure		403	{object}	httpx.ErrorBody	"Not the sender"
//	@Failure		404	{object}	httpx.ErrorBody	"Unknown escrow"
//	@Failure		409	{object}	httpx.ErrorBody	"Escrow is not pending"
//	@Router			/escrow/{id}/release [post].
func (h *EscrowHandler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	e, err := h.EscrowService.Release(r.Context(), httpx.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, escrowResponse(e))
}

// HandleCancel godoc
//
//	@Summary		Cancel an escrow
//	@Description	Returns a pending escrow's funds to the sender's wallet. Sender only.
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Escrow ID"
//	@Success		200	{object}	apiclient.Escrow
//	@Failure		403	{object}	httpx.ErrorBody	"Not the sender"
//	@Failure		404	{object}	httpx.ErrorBody	"Unknown escrow"
//	@Failure		409	{object}	httpx.ErrorBody	"Escrow is not pending"
//	@Router			/escrow/{id}/cancel [post].
func (h *EscrowHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	e, err := h.EscrowService.Cancel(r.Context(), httpx.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, escrowResponse(e))
}

func escrowResponse(e domain.Escrow) apiclient.Escrow {
	return apiclient.Escrow{
		ID:             e.ID,
		Amount:         toMajor(e.Amount),
		SenderEmail:    e.SenderEmail,
		RecipientEmail: e.RecipientEmail,
		Description:    e.Description,
		Conditions:     e.Conditions,
		Status:         apiclient.EscrowStatus(e.Status),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func escrowList(in []domain.Escrow) []apiclient.Escrow {
	out := make([]apiclient.Escrow, 0, len(in))
	for _, e := range in {
		out = append(out, escrowResponse(e))
	}
	return out
}
