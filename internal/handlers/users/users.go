package users

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/internal/dto"
	"github.com/avoronov/bankcards/internal/handlers/httperr"
	"github.com/avoronov/bankcards/internal/service/userservice"
	"github.com/avoronov/bankcards/pkg/auth"
	"github.com/avoronov/bankcards/pkg/paging"
	"github.com/avoronov/bankcards/pkg/utils"
)

type Service interface {
	GetInfo(ctx context.Context, identity domain.Identity) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, p paging.Params) (*paging.Page[domain.User], error)
	Update(ctx context.Context, id int64, req userservice.UpdateRequest) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type UserHandler struct {
	userService Service
}

func New(userService Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetInfo godoc
//
//	@Summary		Get own profile
//	@Description	Return the profile of the authenticated user
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.UserDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Router			/api/users/info [get]
func (h *UserHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}
	user, err := h.userService.GetInfo(r.Context(), identity)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserDTO(user))
}

// List godoc
//
//	@Summary		List users
//	@Description	Return a page of all users. Admin only.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page	query		int		false	"Page number (0-based)"
//	@Param			size	query		int		false	"Page size"
//	@Param			sort	query		string	false	"Sort column, optionally with ,desc"
//	@Success		200	{object}	paging.Page[dto.UserDTO]
//	@Failure		403	{object}	utils.Response	"Admin role required"
//	@Router			/api/users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.userService.List(r.Context(), paging.FromQuery(r.URL.Query()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, paging.Map(page, func(u domain.User) dto.UserDTO {
		return dto.NewUserDTO(&u)
	}))
}

// GetByID godoc
//
//	@Summary		Get user by id
//	@Description	Return one user. Admin only.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			userId	path		int	true	"User id"
//	@Success		200	{object}	dto.UserDTO
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Router			/api/users/{userId} [get]
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserDTO(user))
}

// Update godoc
//
//	@Summary		Update user
//	@Description	Partially update username, password or role. Admin only.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			userId	path		int						true	"User id"
//	@Param			request	body		dto.UpdateUserRequestDTO	true	"Fields to update"
//	@Success		200	{object}	dto.UserDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		409	{object}	utils.Response	"Username already taken"
//	@Router			/api/users/{userId} [patch]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var req dto.UpdateUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.userService.Update(r.Context(), id, userservice.UpdateRequest{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserDTO(user))
}

// Delete godoc
//
//	@Summary		Delete user
//	@Description	Delete a user together with their cards. Admin only.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			userId	path		int	true	"User id"
//	@Success		204
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Router			/api/users/{userId} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if err := h.userService.Delete(r.Context(), id); err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusNoContent, nil)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
