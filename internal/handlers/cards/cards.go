package cards

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/internal/dto"
	"github.com/avoronov/bankcards/internal/handlers/httperr"
	"github.com/avoronov/bankcards/pkg/auth"
	"github.com/avoronov/bankcards/pkg/paging"
	"github.com/avoronov/bankcards/pkg/utils"
)

type Service interface {
	Create(ctx context.Context, userID int64, expiration *time.Time) (*domain.Card, error)
	GetByID(ctx context.Context, identity domain.Identity, id int64) (*domain.Card, error)
	GetBalance(ctx context.Context, identity domain.Identity, id int64) (decimal.Decimal, error)
	Block(ctx context.Context, identity domain.Identity, id int64) (*domain.Card, error)
	Activate(ctx context.Context, id int64) (*domain.Card, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context, p paging.Params, ownerUsername *string) (*paging.Page[domain.Card], error)
	ListOwn(ctx context.Context, identity domain.Identity, p paging.Params, status *string) (*paging.Page[domain.Card], error)
}

type CardHandler struct {
	cardService Service
}

func New(cardService Service) *CardHandler {
	return &CardHandler{
		cardService: cardService,
	}
}

// Create godoc
//
//	@Summary		Issue a new card
//	@Description	Create a card for the given user. Admin only.
//	@Tags			Cards
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.CreateCardRequestDTO	true	"Card owner"
//	@Success		201	{object}	dto.CardDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		404	{object}	utils.Response	"Owner not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/cards [post]
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCardRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var expiration *time.Time
	if req.ExpirationDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.ExpirationDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid expiration date")
			return
		}
		expiration = &parsed
	}
	card, err := h.cardService.Create(r.Context(), req.UserID, expiration)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewCardDTO(card))
}

// ListAll godoc
//
//	@Summary		List all cards
//	@Description	Return a page of every card, optionally narrowed to one owner. Admin only.
//	@Tags			Cards
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	query		string	false	"Owner username filter"
//	@Param			page		query		int		false	"Page number (0-based)"
//	@Param			size		query		int		false	"Page size"
//	@Success		200	{object}	paging.Page[dto.CardDTO]
//	@Failure		404	{object}	utils.Response	"Owner not found"
//	@Router			/api/cards/all [get]
func (h *CardHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	var ownerUsername *string
	if username := r.URL.Query().Get("username"); username != "" {
		ownerUsername = &username
	}
	page, err := h.cardService.ListAll(r.Context(), paging.FromQuery(r.URL.Query()), ownerUsername)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, paging.Map(page, func(c domain.Card) dto.CardDTO {
		return dto.NewCardDTO(&c)
	}))
}

// ListOwn godoc
//
//	@Summary		List own cards
//	@Description	Return a page of the authenticated user's cards, optionally filtered by status.
//	@Tags			Cards
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status	query		string	false	"Card status filter (ACTIVE, BLOCKED, EXPIRED)"
//	@Param			page	query		int		false	"Page number (0-based)"
//	@Param			size	query		int		false	"Page size"
//	@Success		200	{object}	paging.Page[dto.CardDTO]
//	@Failure		400	{object}	utils.Response	"Unknown status"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/cards/own [get]
func (h *CardHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}
	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}
	page, err := h.cardService.ListOwn(r.Context(), identity, paging.FromQuery(r.URL.Query()), status)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, paging.Map(page, func(c domain.Card) dto.CardDTO {
		return dto.NewCardDTO(&c)
	}))
}

// GetByID godoc
//
//	@Summary		Get card by id
//	@Description	Return one card. Owners see their own cards, admins see any.
//	@Tags			Cards
//	@Produce		json
//	@Security		BearerAuth
//	@Param			cardId	path		int	true	"Card id"
//	@Success		200	{object}	dto.CardDTO
//	@Failure		403	{object}	utils.Response	"Foreign card"
//	@Failure		404	{object}	utils.Response	"Card not found"
//	@Router			/api/cards/{cardId} [get]
func (h *CardHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := h.identityAndID(w, r)
	if !ok {
		return
	}
	card, err := h.cardService.GetByID(r.Context(), identity, id)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCardDTO(card))
}

// GetBalance godoc
//
//	@Summary		Get card balance
//	@Description	Return the card's balance. Owners see their own cards, admins see any.
//	@Tags			Cards
//	@Produce		json
//	@Security		BearerAuth
//	@Param			cardId	path		int	true	"Card id"
//	@Success		200	{object}	dto.BalanceResponseDTO
//	@Failure		403	{object}	utils.Response	"Foreign card"
//	@Failure		404	{object}	utils.Response	"Card not found"
//	@Router			/api/cards/{cardId}/balance [get]
func (h *CardHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := h.identityAndID(w, r)
	if !ok {
		return
	}
	balance, err := h.cardService.GetBalance(r.Context(), identity, id)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{CardID: id, Balance: balance})
}

// Block godoc
//
//	@Summary		Block card
//	@Description	Move the card to BLOCKED. Owners block their own cards, admins block any.
//	@Tags			Cards
//	@Produce		json
//	@Security		BearerAuth
//	@Param			cardId	path		int	true	"Card id"
//	@Success		200	{object}	dto.CardDTO
//	@Failure		403	{object}	utils.Response	"Foreign card"
//	@Failure		404	{object}	utils.Response	"Card not found"
//	@Router			/api/cards/{cardId}/block [patch]
func (h *CardHandler) Block(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := h.identityAndID(w, r)
	if !ok {
		return
	}
	card, err := h.cardService.Block(r.Context(), identity, id)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCardDTO(card))
}

// Activate godoc
//
//	@Summary		Activate card
//	@Description	Move the card back to ACTIVE. Admin only.
//	@Tags			Cards
//	@Produce		json
//	@Security		BearerAuth
//	@Param			cardId	path		int	true	"Card id"
//	@Success		200	{object}	dto.CardDTO
//	@Failure		404	{object}	utils.Response	"Card not found"
//	@Router			/api/cards/{cardId}/activate [patch]
func (h *CardHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid card id")
		return
	}
	card, err := h.cardService.Activate(r.Context(), id)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCardDTO(card))
}

// Delete godoc
//
//	@Summary		Delete card
//	@Description	Delete the card. Past transfers stay in the ledger. Admin only.
//	@Tags			Cards
//	@Produce		json
//	@Security		BearerAuth
//	@Param			cardId	path		int	true	"Card id"
//	@Success		204
//	@Failure		404	{object}	utils.Response	"Card not found"
//	@Router			/api/cards/{cardId} [delete]
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid card id")
		return
	}
	if err := h.cardService.Delete(r.Context(), id); err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusNoContent, nil)
}

func (h *CardHandler) identityAndID(w http.ResponseWriter, r *http.Request) (domain.Identity, int64, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return domain.Identity{}, 0, false
	}
	id, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid card id")
		return domain.Identity{}, 0, false
	}
	return identity, id, true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "cardId"), 10, 64)
}
