package transferservice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/internal/pg"
	"github.com/avoronov/bankcards/pkg/paging"
)

type CardRepo interface {
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Card, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error
}

type TransactionRepo interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	ListBySenderOwner(ctx context.Context, p paging.Params, userID int64) ([]domain.Transaction, int64, error)
	ListByReceiverOwner(ctx context.Context, p paging.Params, userID int64) ([]domain.Transaction, int64, error)
	ListByOwner(ctx context.Context, p paging.Params, userID int64) ([]domain.Transaction, int64, error)
	ListAll(ctx context.Context, p paging.Params) ([]domain.Transaction, int64, error)
}

type Service struct {
	cardRepo        CardRepo
	transactionRepo TransactionRepo
	txManager       pg.TXManager
}

func New(cardRepo CardRepo, transactionRepo TransactionRepo, txManager pg.TXManager) *Service {
	return &Service{
		cardRepo:        cardRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
	}
}

// Transfer moves amount between two cards of the acting identity inside a
// single storage transaction. Both card rows are locked for the duration,
// lower id first, so concurrent transfers over the same cards serialize
// instead of losing updates.
func (s *Service) Transfer(ctx context.Context, identity domain.Identity, senderCardID, receiverCardID int64, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, domain.NewValidationError("transfer amount must be positive")
	}
	if senderCardID == receiverCardID {
		return nil, domain.NewValidationError("sender and receiver cards must differ")
	}

	var transaction *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		sender, receiver, err := s.lockCards(ctx, senderCardID, receiverCardID)
		if err != nil {
			return err
		}
		if sender.UserID != identity.UserID || receiver.UserID != identity.UserID {
			return domain.NewValidationError("transfer is not permitted between cards of different users")
		}
		if receiver.Status != domain.CardStatusActive {
			return &domain.CardNotActiveError{CardID: receiver.ID}
		}
		if sender.Status != domain.CardStatusActive {
			return &domain.CardNotActiveError{CardID: sender.ID}
		}
		if sender.Balance.LessThan(amount) {
			return &domain.InsufficientFundsError{CardID: sender.ID}
		}

		if err := s.cardRepo.UpdateBalance(ctx, sender.ID, sender.Balance.Sub(amount)); err != nil {
			return err
		}
		if err := s.cardRepo.UpdateBalance(ctx, receiver.ID, receiver.Balance.Add(amount)); err != nil {
			return err
		}

		transaction, err = s.transactionRepo.Create(ctx, &domain.Transaction{
			SenderCardID:   sender.ID,
			ReceiverCardID: receiver.ID,
			Amount:         amount,
			Status:         domain.TransactionCompleted,
			CreatedAt:      time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		zap.L().Warn("transfer rejected",
			zap.Int64("senderCardID", senderCardID),
			zap.Int64("receiverCardID", receiverCardID),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("transfer completed",
		zap.Int64("transactionID", transaction.ID),
		zap.Int64("senderCardID", senderCardID),
		zap.Int64("receiverCardID", receiverCardID),
		zap.String("amount", amount.String()))
	return transaction, nil
}

// lockCards acquires row locks on both cards in ascending id order and
// reports a missing sender before a missing receiver.
func (s *Service) lockCards(ctx context.Context, senderCardID, receiverCardID int64) (sender, receiver *domain.Card, err error) {
	firstID, secondID := senderCardID, receiverCardID
	if receiverCardID < senderCardID {
		firstID, secondID = receiverCardID, senderCardID
	}

	first, err := s.cardRepo.FindByIDForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := s.cardRepo.FindByIDForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}

	sender, receiver = first, second
	if firstID != senderCardID {
		sender, receiver = second, first
	}
	if sender == nil {
		return nil, nil, domain.NewNotFoundError("card with id = %d not found", senderCardID)
	}
	if receiver == nil {
		return nil, nil, domain.NewNotFoundError("card with id = %d not found", receiverCardID)
	}
	return sender, receiver, nil
}

// ListSent returns transfers sent from any card of the given user.
func (s *Service) ListSent(ctx context.Context, p paging.Params, userID int64) (*paging.Page[domain.Transaction], error) {
	items, total, err := s.transactionRepo.ListBySenderOwner(ctx, p, userID)
	return page(items, p, total, err)
}

// ListReceived returns transfers received by any card of the given user.
func (s *Service) ListReceived(ctx context.Context, p paging.Params, userID int64) (*paging.Page[domain.Transaction], error) {
	items, total, err := s.transactionRepo.ListByReceiverOwner(ctx, p, userID)
	return page(items, p, total, err)
}

// ListOwn returns every transfer touching a card of the acting identity.
func (s *Service) ListOwn(ctx context.Context, identity domain.Identity, p paging.Params) (*paging.Page[domain.Transaction], error) {
	items, total, err := s.transactionRepo.ListByOwner(ctx, p, identity.UserID)
	return page(items, p, total, err)
}

// ListAll returns the full ledger. Admin only.
func (s *Service) ListAll(ctx context.Context, p paging.Params) (*paging.Page[domain.Transaction], error) {
	items, total, err := s.transactionRepo.ListAll(ctx, p)
	return page(items, p, total, err)
}

func page(items []domain.Transaction, p paging.Params, total int64, err error) (*paging.Page[domain.Transaction], error) {
	if err != nil {
		zap.L().Error("can't list transactions", zap.Error(err))
		return nil, err
	}
	return paging.NewPage(items, p, total), nil
}
