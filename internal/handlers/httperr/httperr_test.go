package httperr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avoronov/bankcards/internal/domain"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "not found",
			err:        domain.NewNotFoundError("card with id = 1 not found"),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unauthorized operation",
			err:        domain.ErrUnauthorizedOperation,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "validation",
			err:        domain.NewValidationError("transfer amount must be positive"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid argument",
			err:        domain.NewInvalidArgumentError("invalid card status: FROZEN"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "card not active",
			err:        &domain.CardNotActiveError{CardID: 1},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "insufficient funds",
			err:        &domain.InsufficientFundsError{CardID: 1},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "conflict",
			err:        domain.NewConflictError("username 'alice' is already taken"),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown error",
			err:        errors.New("database error"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Respond(rec, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}
