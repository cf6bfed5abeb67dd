package transactions

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/internal/dto"
	"github.com/avoronov/bankcards/internal/handlers/httperr"
	"github.com/avoronov/bankcards/pkg/auth"
	"github.com/avoronov/bankcards/pkg/paging"
	"github.com/avoronov/bankcards/pkg/utils"

	"github.com/shopspring/decimal"
)

type Service interface {
	Transfer(ctx context.Context, identity domain.Identity, senderCardID, receiverCardID int64, amount decimal.Decimal) (*domain.Transaction, error)
	ListSent(ctx context.Context, p paging.Params, userID int64) (*paging.Page[domain.Transaction], error)
	ListReceived(ctx context.Context, p paging.Params, userID int64) (*paging.Page[domain.Transaction], error)
	ListOwn(ctx context.Context, identity domain.Identity, p paging.Params) (*paging.Page[domain.Transaction], error)
	ListAll(ctx context.Context, p paging.Params) (*paging.Page[domain.Transaction], error)
}

type TransactionHandler struct {
	transferService Service
}

func New(transferService Service) *TransactionHandler {
	return &TransactionHandler{
		transferService: transferService,
	}
}

// Transfer godoc
//
//	@Summary		Transfer between own cards
//	@Description	Move money from one of the user's cards to another, atomically.
//	@Tags			Transactions
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.TransferRequestDTO	true	"Transfer request body"
//	@Success		201	{object}	dto.TransactionDTO
//	@Failure		400	{object}	utils.Response	"Validation failure, inactive card or insufficient funds"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Card not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/transactions [post]
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}
	var req dto.TransferRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx, err := h.transferService.Transfer(r.Context(), identity, req.SenderCardID, req.ReceiverCardID, req.Amount)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewTransactionDTO(tx))
}

// ListSent godoc
//
//	@Summary		List transfers sent by a user
//	@Description	Return a page of transfers sent from any card of the given user. Admin only.
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			userId	path		int	true	"User id"
//	@Param			page	query		int	false	"Page number (0-based)"
//	@Param			size	query		int	false	"Page size"
//	@Success		200	{object}	paging.Page[dto.TransactionDTO]
//	@Router			/api/transactions/sent/{userId} [get]
func (h *TransactionHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	page, err := h.transferService.ListSent(r.Context(), paging.FromQuery(r.URL.Query()), userID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	respondPage(w, page)
}

// ListReceived godoc
//
//	@Summary		List transfers received by a user
//	@Description	Return a page of transfers received on any card of the given user. Admin only.
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			userId	path		int	true	"User id"
//	@Param			page	query		int	false	"Page number (0-based)"
//	@Param			size	query		int	false	"Page size"
//	@Success		200	{object}	paging.Page[dto.TransactionDTO]
//	@Router			/api/transactions/received/{userId} [get]
func (h *TransactionHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	page, err := h.transferService.ListReceived(r.Context(), paging.FromQuery(r.URL.Query()), userID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	respondPage(w, page)
}

// ListOwn godoc
//
//	@Summary		List own transfers
//	@Description	Return a page of transfers touching any card of the authenticated user.
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page	query		int	false	"Page number (0-based)"
//	@Param			size	query		int	false	"Page size"
//	@Success		200	{object}	paging.Page[dto.TransactionDTO]
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/transactions/own [get]
func (h *TransactionHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}
	page, err := h.transferService.ListOwn(r.Context(), identity, paging.FromQuery(r.URL.Query()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	respondPage(w, page)
}

// ListAll godoc
//
//	@Summary		List all transfers
//	@Description	Return a page of the full transfer ledger. Admin only.
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page	query		int	false	"Page number (0-based)"
//	@Param			size	query		int	false	"Page size"
//	@Success		200	{object}	paging.Page[dto.TransactionDTO]
//	@Router			/api/transactions/all [get]
func (h *TransactionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, err := h.transferService.ListAll(r.Context(), paging.FromQuery(r.URL.Query()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	respondPage(w, page)
}

func respondPage(w http.ResponseWriter, page *paging.Page[domain.Transaction]) {
	utils.RespondWithJSON(w, http.StatusOK, paging.Map(page, func(tx domain.Transaction) dto.TransactionDTO {
		return dto.NewTransactionDTO(&tx)
	}))
}

func pathUserID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
}
