package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", NewInvalidArgumentError("invalid role: %s", s)
}

type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	CardStatusExpired CardStatus = "EXPIRED"
)

func ParseCardStatus(s string) (CardStatus, error) {
	switch CardStatus(s) {
	case CardStatusActive, CardStatusBlocked, CardStatusExpired:
		return CardStatus(s), nil
	}
	return "", NewInvalidArgumentError("invalid card status: %s", s)
}

type TransactionStatus string

const (
	TransactionInProcess TransactionStatus = "IN_PROCESS"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
)

type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Role         Role   `db:"role"`
}

type Card struct {
	ID              int64           `db:"id"`
	NumberEncrypted string          `db:"number_encrypted"`
	NumberLast4     string          `db:"number_last4"`
	UserID          int64           `db:"user_id"`
	Balance         decimal.Decimal `db:"balance"`
	Expiration      time.Time       `db:"expiration"`
	Status          CardStatus      `db:"status"`
}

type Transaction struct {
	ID             int64             `db:"id"`
	SenderCardID   int64             `db:"sender_card_id"`
	ReceiverCardID int64             `db:"receiver_card_id"`
	Amount         decimal.Decimal   `db:"amount"`
	Status         TransactionStatus `db:"status"`
	CreatedAt      time.Time         `db:"created_at"`
}

// Identity is the authenticated principal acting on a request. Services take
// it as an explicit argument instead of reading it from ambient request state.
type Identity struct {
	UserID   int64
	Username string
	Role     Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
