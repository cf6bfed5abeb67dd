package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/avoronov/bankcards/internal/domain"
)

type CreateCardRequestDTO struct {
	UserID int64 `json:"userId" validate:"required"`
	// ExpirationDate is an optional "2006-01-02" date. When absent the
	// service applies its default term.
	ExpirationDate *string `json:"expirationDate,omitempty"`
}

// CardDTO exposes the card with its number masked down to the last four
// digits. Plaintext numbers never leave the service.
type CardDTO struct {
	ID         int64           `json:"id"`
	Number     string          `json:"number"`
	UserID     int64           `json:"userId"`
	Balance    decimal.Decimal `json:"balance"`
	Expiration time.Time       `json:"expiration"`
	Status     string          `json:"status"`
}

func NewCardDTO(card *domain.Card) CardDTO {
	return CardDTO{
		ID:         card.ID,
		Number:     "**** **** **** " + card.NumberLast4,
		UserID:     card.UserID,
		Balance:    card.Balance,
		Expiration: card.Expiration,
		Status:     string(card.Status),
	}
}

type BalanceResponseDTO struct {
	CardID  int64           `json:"cardId"`
	Balance decimal.Decimal `json:"balance"`
}
