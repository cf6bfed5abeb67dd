package cardservice

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/pkg/cardnum"
	"github.com/avoronov/bankcards/pkg/paging"
)

type CardRepo interface {
	FindByID(ctx context.Context, id int64) (*domain.Card, error)
	ExistsByNumberEncrypted(ctx context.Context, numberEncrypted string) (bool, error)
	Create(ctx context.Context, card *domain.Card) (*domain.Card, error)
	UpdateStatus(ctx context.Context, id int64, status domain.CardStatus) (*domain.Card, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context, p paging.Params, userID *int64) ([]domain.Card, int64, error)
	ListByUser(ctx context.Context, p paging.Params, userID int64, status *domain.CardStatus) ([]domain.Card, int64, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

type Guard interface {
	Authorize(identity domain.Identity, card *domain.Card) error
}

const (
	// expirationYears is how far from issuance a new card stays valid.
	expirationYears = 4
	// maxGenerateAttempts bounds the unique number search on Create.
	maxGenerateAttempts = 10
)

var ErrCardNumberExhausted = errors.New("can't allocate a unique card number")

type Service struct {
	cardRepo CardRepo
	userRepo UserRepo
	guard    Guard
	vault    *cardnum.Vault

	generate func() (string, error)
}

func New(cardRepo CardRepo, userRepo UserRepo, guard Guard, vault *cardnum.Vault) *Service {
	return &Service{
		cardRepo: cardRepo,
		userRepo: userRepo,
		guard:    guard,
		vault:    vault,
		generate: cardnum.Generate,
	}
}

// Create issues a new card for the given owner. The card number is generated
// and re-rolled until its ciphertext is unseen, so uniqueness holds without
// ever storing plaintext numbers. A nil expiration defaults to now plus
// expirationYears.
func (s *Service) Create(ctx context.Context, userID int64, expiration *time.Time) (*domain.Card, error) {
	owner, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		zap.L().Error("can't find card owner", zap.Error(err))
		return nil, err
	}
	if owner == nil {
		return nil, domain.NewNotFoundError("user with id = %d not found", userID)
	}

	var number, encrypted string
	for attempt := 0; ; attempt++ {
		if attempt == maxGenerateAttempts {
			zap.L().Error("card number space exhausted", zap.Int("attempts", attempt))
			return nil, ErrCardNumberExhausted
		}
		number, err = s.generate()
		if err != nil {
			return nil, err
		}
		encrypted, err = s.vault.Encrypt(number)
		if err != nil {
			return nil, err
		}
		exists, err := s.cardRepo.ExistsByNumberEncrypted(ctx, encrypted)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	expiresAt := time.Now().UTC().AddDate(expirationYears, 0, 0)
	if expiration != nil {
		expiresAt = *expiration
	}

	card := &domain.Card{
		NumberEncrypted: encrypted,
		NumberLast4:     cardnum.Last4(number),
		UserID:          userID,
		Balance:         decimal.Zero,
		Expiration:      expiresAt,
		Status:          domain.CardStatusActive,
	}
	created, err := s.cardRepo.Create(ctx, card)
	if err != nil {
		zap.L().Error("can't create card", zap.Error(err))
		return nil, err
	}
	zap.L().Info("card created",
		zap.Int64("cardID", created.ID),
		zap.Int64("userID", userID))
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, identity domain.Identity, id int64) (*domain.Card, error) {
	card, err := s.findCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(identity, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *Service) GetBalance(ctx context.Context, identity domain.Identity, id int64) (decimal.Decimal, error) {
	card, err := s.GetByID(ctx, identity, id)
	if err != nil {
		return decimal.Zero, err
	}
	return card.Balance, nil
}

// Block moves the card to BLOCKED regardless of its current status. A card
// holder may only block their own cards.
func (s *Service) Block(ctx context.Context, identity domain.Identity, id int64) (*domain.Card, error) {
	card, err := s.findCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(identity, card); err != nil {
		return nil, err
	}
	return s.updateStatus(ctx, id, domain.CardStatusBlocked)
}

// Activate moves the card back to ACTIVE. The route is restricted to admins.
func (s *Service) Activate(ctx context.Context, id int64) (*domain.Card, error) {
	return s.updateStatus(ctx, id, domain.CardStatusActive)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.findCard(ctx, id); err != nil {
		return err
	}
	if err := s.cardRepo.Delete(ctx, id); err != nil {
		zap.L().Error("can't delete card", zap.Error(err))
		return err
	}
	zap.L().Info("card deleted", zap.Int64("cardID", id))
	return nil
}

// ListAll returns every card, optionally narrowed to one owner's cards by
// username. Admin only.
func (s *Service) ListAll(ctx context.Context, p paging.Params, ownerUsername *string) (*paging.Page[domain.Card], error) {
	var userID *int64
	if ownerUsername != nil {
		owner, err := s.userRepo.FindByUsername(ctx, *ownerUsername)
		if err != nil {
			return nil, err
		}
		if owner == nil {
			return nil, domain.NewNotFoundError("user with username '%s' not found", *ownerUsername)
		}
		userID = &owner.ID
	}
	cards, total, err := s.cardRepo.ListAll(ctx, p, userID)
	if err != nil {
		zap.L().Error("can't list cards", zap.Error(err))
		return nil, err
	}
	return paging.NewPage(cards, p, total), nil
}

// ListOwn returns the acting identity's cards, optionally filtered by status.
func (s *Service) ListOwn(ctx context.Context, identity domain.Identity, p paging.Params, status *string) (*paging.Page[domain.Card], error) {
	var statusFilter *domain.CardStatus
	if status != nil {
		parsed, err := domain.ParseCardStatus(*status)
		if err != nil {
			return nil, err
		}
		statusFilter = &parsed
	}
	cards, total, err := s.cardRepo.ListByUser(ctx, p, identity.UserID, statusFilter)
	if err != nil {
		zap.L().Error("can't list cards", zap.Error(err))
		return nil, err
	}
	return paging.NewPage(cards, p, total), nil
}

func (s *Service) findCard(ctx context.Context, id int64) (*domain.Card, error) {
	card, err := s.cardRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find card", zap.Error(err))
		return nil, err
	}
	if card == nil {
		return nil, domain.NewNotFoundError("card with id = %d not found", id)
	}
	return card, nil
}

func (s *Service) updateStatus(ctx context.Context, id int64, status domain.CardStatus) (*domain.Card, error) {
	card, err := s.cardRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		zap.L().Error("can't update card status", zap.Error(err))
		return nil, err
	}
	if card == nil {
		return nil, domain.NewNotFoundError("card with id = %d not found", id)
	}
	zap.L().Info("card status updated",
		zap.Int64("cardID", id),
		zap.String("status", string(status)))
	return card, nil
}
