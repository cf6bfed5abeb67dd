package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/avoronov/bankcards/internal/domain"
)

type TransferRequestDTO struct {
	SenderCardID   int64           `json:"senderCardId" validate:"required"`
	ReceiverCardID int64           `json:"receiverCardId" validate:"required"`
	Amount         decimal.Decimal `json:"amount" validate:"required"`
}

type TransactionDTO struct {
	ID             int64           `json:"id"`
	SenderCardID   int64           `json:"senderCardId"`
	ReceiverCardID int64           `json:"receiverCardId"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func NewTransactionDTO(tx *domain.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:             tx.ID,
		SenderCardID:   tx.SenderCardID,
		ReceiverCardID: tx.ReceiverCardID,
		Amount:         tx.Amount,
		Status:         string(tx.Status),
		CreatedAt:      tx.CreatedAt,
	}
}
