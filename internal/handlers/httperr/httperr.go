// Package httperr maps service errors onto HTTP status codes so every
// handler responds to the same failure the same way.
package httperr

import (
	"errors"
	"net/http"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/pkg/utils"
)

// Respond writes the error as a JSON message with the status code its type
// calls for. Unrecognized errors become a generic 500 so internals never
// leak to clients.
func Respond(w http.ResponseWriter, err error) {
	var (
		notActive    *domain.CardNotActiveError
		insufficient *domain.InsufficientFundsError
	)
	switch {
	case domain.IsNotFound(err):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorizedOperation):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case domain.IsValidation(err), domain.IsInvalidArgument(err),
		errors.As(err, &notActive), errors.As(err, &insufficient):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case domain.IsConflict(err):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
