package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorizedOperation is returned when the acting identity is neither an
// admin nor the owner of the touched card.
var ErrUnauthorizedOperation = errors.New("operation is not permitted for this user")

type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

func NewNotFoundError(format string, args ...any) *NotFoundError {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

type InvalidArgumentError struct {
	msg string
}

func (e *InvalidArgumentError) Error() string { return e.msg }

func NewInvalidArgumentError(format string, args ...any) *InvalidArgumentError {
	return &InvalidArgumentError{msg: fmt.Sprintf(format, args...)}
}

func IsInvalidArgument(err error) bool {
	var e *InvalidArgumentError
	return errors.As(err, &e)
}

type ConflictError struct {
	msg string
}

func (e *ConflictError) Error() string { return e.msg }

func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{msg: fmt.Sprintf(format, args...)}
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// CardNotActiveError rejects an operation touching a card that is not in the
// ACTIVE status. CardID names the offending card.
type CardNotActiveError struct {
	CardID int64
}

func (e *CardNotActiveError) Error() string {
	return fmt.Sprintf("card with id = %d is not active", e.CardID)
}

// InsufficientFundsError rejects a transfer whose amount exceeds the sender
// card balance.
type InsufficientFundsError struct {
	CardID int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on card with id = %d", e.CardID)
}
