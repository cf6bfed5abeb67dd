package cardservice

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/pkg/cardnum"
	"github.com/avoronov/bankcards/pkg/paging"
)

var testIdentity = domain.Identity{UserID: 1, Username: "alice", Role: domain.RoleUser}

func setupService(t *testing.T) (*Service, *MockCardRepo, *MockUserRepo, *MockGuard) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockCardRepo := NewMockCardRepo(ctrl)
	mockUserRepo := NewMockUserRepo(ctrl)
	mockGuard := NewMockGuard(ctrl)

	vault, err := cardnum.NewVault([]byte("0123456789abcdef"))
	require.NoError(t, err)

	svc := New(mockCardRepo, mockUserRepo, mockGuard, vault)
	return svc, mockCardRepo, mockUserRepo, mockGuard
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: 1, Username: "alice", Role: domain.RoleUser}

	t.Run("success", func(t *testing.T) {
		svc, mockCardRepo, mockUserRepo, _ := setupService(t)
		svc.generate = func() (string, error) { return "4000123456781234", nil }

		mockUserRepo.EXPECT().FindByID(ctx, int64(1)).Return(owner, nil)
		mockCardRepo.EXPECT().ExistsByNumberEncrypted(ctx, gomock.Any()).Return(false, nil)
		mockCardRepo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, card *domain.Card) (*domain.Card, error) {
				assert.Equal(t, "1234", card.NumberLast4)
				assert.Equal(t, int64(1), card.UserID)
				assert.True(t, card.Balance.IsZero())
				assert.Equal(t, domain.CardStatusActive, card.Status)
				assert.WithinDuration(t, time.Now().UTC().AddDate(4, 0, 0), card.Expiration, time.Minute)
				decrypted, err := svc.vault.Decrypt(card.NumberEncrypted)
				assert.NoError(t, err)
				assert.Equal(t, "4000123456781234", decrypted)
				card.ID = 10
				return card, nil
			})

		card, err := svc.Create(ctx, 1, nil)
		assert.NoError(t, err)
		assert.Equal(t, int64(10), card.ID)
	})

	t.Run("honors explicit expiration", func(t *testing.T) {
		svc, mockCardRepo, mockUserRepo, _ := setupService(t)
		svc.generate = func() (string, error) { return "4000123456781234", nil }
		expiration := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)

		mockUserRepo.EXPECT().FindByID(ctx, int64(1)).Return(owner, nil)
		mockCardRepo.EXPECT().ExistsByNumberEncrypted(ctx, gomock.Any()).Return(false, nil)
		mockCardRepo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, card *domain.Card) (*domain.Card, error) {
				assert.Equal(t, expiration, card.Expiration)
				return card, nil
			})

		_, err := svc.Create(ctx, 1, &expiration)
		assert.NoError(t, err)
	})

	t.Run("regenerates on collision", func(t *testing.T) {
		svc, mockCardRepo, mockUserRepo, _ := setupService(t)
		numbers := []string{"4000123456781234", "4000123456785678"}
		svc.generate = func() (string, error) {
			n := numbers[0]
			numbers = numbers[1:]
			return n, nil
		}

		mockUserRepo.EXPECT().FindByID(ctx, int64(1)).Return(owner, nil)
		gomock.InOrder(
			mockCardRepo.EXPECT().ExistsByNumberEncrypted(ctx, gomock.Any()).Return(true, nil),
			mockCardRepo.EXPECT().ExistsByNumberEncrypted(ctx, gomock.Any()).Return(false, nil),
		)
		mockCardRepo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, card *domain.Card) (*domain.Card, error) {
				assert.Equal(t, "5678", card.NumberLast4)
				return card, nil
			})

		_, err := svc.Create(ctx, 1, nil)
		assert.NoError(t, err)
	})

	t.Run("number space exhausted", func(t *testing.T) {
		svc, mockCardRepo, mockUserRepo, _ := setupService(t)
		svc.generate = cardnum.Generate

		mockUserRepo.EXPECT().FindByID(ctx, int64(1)).Return(owner, nil)
		mockCardRepo.EXPECT().ExistsByNumberEncrypted(ctx, gomock.Any()).
			Return(true, nil).Times(maxGenerateAttempts)

		card, err := svc.Create(ctx, 1, nil)
		assert.ErrorIs(t, err, ErrCardNumberExhausted)
		assert.Nil(t, card)
	})

	t.Run("owner not found", func(t *testing.T) {
		svc, _, mockUserRepo, _ := setupService(t)
		mockUserRepo.EXPECT().FindByID(ctx, int64(99)).Return(nil, nil)

		card, err := svc.Create(ctx, 99, nil)
		assert.True(t, domain.IsNotFound(err))
		assert.Nil(t, card)
	})
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	card := &domain.Card{ID: 5, UserID: 1, Status: domain.CardStatusActive}

	tests := []struct {
		name        string
		prepareMock func(mockCardRepo *MockCardRepo, mockGuard *MockGuard)
		wantCard    *domain.Card
		wantErr     error
	}{
		{
			name: "owner reads own card",
			prepareMock: func(mockCardRepo *MockCardRepo, mockGuard *MockGuard) {
				mockCardRepo.EXPECT().FindByID(ctx, int64(5)).Return(card, nil)
				mockGuard.EXPECT().Authorize(testIdentity, card).Return(nil)
			},
			wantCard: card,
		},
		{
			name: "card not found",
			prepareMock: func(mockCardRepo *MockCardRepo, mockGuard *MockGuard) {
				mockCardRepo.EXPECT().FindByID(ctx, int64(5)).Return(nil, nil)
			},
			wantErr: domain.NewNotFoundError("card with id = 5 not found"),
		},
		{
			name: "foreign card rejected",
			prepareMock: func(mockCardRepo *MockCardRepo, mockGuard *MockGuard) {
				mockCardRepo.EXPECT().FindByID(ctx, int64(5)).Return(card, nil)
				mockGuard.EXPECT().Authorize(testIdentity, card).Return(domain.ErrUnauthorizedOperation)
			},
			wantErr: domain.ErrUnauthorizedOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockCardRepo, _, mockGuard := setupService(t)
			tt.prepareMock(mockCardRepo, mockGuard)

			got, err := svc.GetByID(ctx, testIdentity, 5)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCard, got)
		})
	}
}

func TestService_GetBalance(t *testing.T) {
	ctx := context.Background()
	card := &domain.Card{ID: 5, UserID: 1, Balance: decimal.NewFromFloat(250.50)}

	svc, mockCardRepo, _, mockGuard := setupService(t)
	mockCardRepo.EXPECT().FindByID(ctx, int64(5)).Return(card, nil)
	mockGuard.EXPECT().Authorize(testIdentity, card).Return(nil)

	balance, err := svc.GetBalance(ctx, testIdentity, 5)
	assert.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromFloat(250.50)))
}

func TestService_Block(t *testing.T) {
	ctx := context.Background()
	card := &domain.Card{ID: 5, UserID: 1, Status: domain.CardStatusActive}
	blocked := &domain.Card{ID: 5, UserID: 1, Status: domain.CardStatusBlocked}

	t.Run("success", func(t *testing.T) {
		svc, mockCardRepo, _, mockGuard := setupService(t)
		mockCardRepo.EXPECT().FindByID(ctx, int64(5)).Return(card, nil)
		mockGuard.EXPECT().Authorize(testIdentity, card).Return(nil)
		mockCardRepo.EXPECT().UpdateStatus(ctx, int64(5), domain.CardStatusBlocked).Return(blocked, nil)

		got, err := svc.Block(ctx, testIdentity, 5)
		assert.NoError(t, err)
		assert.Equal(t, domain.CardStatusBlocked, got.Status)
	})

	t.Run("foreign card rejected", func(t *testing.T) {
		svc, mockCardRepo, _, mockGuard := setupService(t)
		mockCardRepo.EXPECT().FindByID(ctx, int64(5)).Return(card, nil)
		mockGuard.EXPECT().Authorize(testIdentity, card).Return(domain.ErrUnauthorizedOperation)

		got, err := svc.Block(ctx, testIdentity, 5)
		assert.ErrorIs(t, err, domain.ErrUnauthorizedOperation)
		assert.Nil(t, got)
	})
}

func TestService_Activate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, mockCardRepo, _, _ := setupService(t)
		active := &domain.Card{ID: 5, UserID: 1, Status: domain.CardStatusActive}
		mockCardRepo.EXPECT().UpdateStatus(ctx, int64(5), domain.CardStatusActive).Return(active, nil)

		got, err := svc.Activate(ctx, 5)
		assert.NoError(t, err)
		assert.Equal(t, domain.CardStatusActive, got.Status)
	})

	t.Run("card not found", func(t *testing.T) {
		svc, mockCardRepo, _, _ := setupService(t)
		mockCardRepo.EXPECT().UpdateStatus(ctx, int64(5), domain.CardStatusActive).Return(nil, nil)

		got, err := svc.Activate(ctx, 5)
		assert.True(t, domain.IsNotFound(err))
		assert.Nil(t, got)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	card := &domain.Card{ID: 5, UserID: 1}

	t.Run("success", func(t *testing.T) {
		svc, mockCardRepo, _, _ := setupService(t)
		mockCardRepo.EXPECT().FindByID(ctx, int64(5)).Return(card, nil)
		mockCardRepo.EXPECT().Delete(ctx, int64(5)).Return(nil)

		assert.NoError(t, svc.Delete(ctx, 5))
	})

	t.Run("card not found", func(t *testing.T) {
		svc, mockCardRepo, _, _ := setupService(t)
		mockCardRepo.EXPECT().FindByID(ctx, int64(5)).Return(nil, nil)

		assert.True(t, domain.IsNotFound(svc.Delete(ctx, 5)))
	})
}

func TestService_ListAll(t *testing.T) {
	ctx := context.Background()
	p := paging.Default()
	cards := []domain.Card{{ID: 1, UserID: 1}, {ID: 2, UserID: 2}}

	t.Run("without owner filter", func(t *testing.T) {
		svc, mockCardRepo, _, _ := setupService(t)
		mockCardRepo.EXPECT().ListAll(ctx, p, gomock.Nil()).Return(cards, int64(2), nil)

		page, err := svc.ListAll(ctx, p, nil)
		assert.NoError(t, err)
		assert.Equal(t, cards, page.Items)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("filtered by owner username", func(t *testing.T) {
		svc, mockCardRepo, mockUserRepo, _ := setupService(t)
		username := "alice"
		ownerID := int64(1)
		mockUserRepo.EXPECT().FindByUsername(ctx, "alice").
			Return(&domain.User{ID: 1, Username: "alice"}, nil)
		mockCardRepo.EXPECT().ListAll(ctx, p, &ownerID).Return(cards[:1], int64(1), nil)

		page, err := svc.ListAll(ctx, p, &username)
		assert.NoError(t, err)
		assert.Len(t, page.Items, 1)
	})

	t.Run("unknown owner username", func(t *testing.T) {
		svc, _, mockUserRepo, _ := setupService(t)
		username := "ghost"
		mockUserRepo.EXPECT().FindByUsername(ctx, "ghost").Return(nil, nil)

		page, err := svc.ListAll(ctx, p, &username)
		assert.True(t, domain.IsNotFound(err))
		assert.Nil(t, page)
	})
}

func TestService_ListOwn(t *testing.T) {
	ctx := context.Background()
	p := paging.Default()
	cards := []domain.Card{{ID: 1, UserID: 1, Status: domain.CardStatusBlocked}}

	t.Run("with status filter", func(t *testing.T) {
		svc, mockCardRepo, _, _ := setupService(t)
		status := "BLOCKED"
		blocked := domain.CardStatusBlocked
		mockCardRepo.EXPECT().ListByUser(ctx, p, int64(1), &blocked).Return(cards, int64(1), nil)

		page, err := svc.ListOwn(ctx, testIdentity, p, &status)
		assert.NoError(t, err)
		assert.Equal(t, cards, page.Items)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc, _, _, _ := setupService(t)
		status := "FROZEN"

		page, err := svc.ListOwn(ctx, testIdentity, p, &status)
		assert.True(t, domain.IsInvalidArgument(err))
		assert.Nil(t, page)
	})

	t.Run("no filter", func(t *testing.T) {
		svc, mockCardRepo, _, _ := setupService(t)
		mockCardRepo.EXPECT().ListByUser(ctx, p, int64(1), gomock.Nil()).Return(cards, int64(1), nil)

		page, err := svc.ListOwn(ctx, testIdentity, p, nil)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})
}
