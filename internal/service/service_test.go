package service

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/avoronov/bankcards/internal/config"
	"github.com/avoronov/bankcards/internal/pg"
	"github.com/avoronov/bankcards/internal/repo"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	repos := repo.New(mockDB)
	txManager := pg.NewMockTXManager(ctrl)

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		EncryptionKey: "0123456789abcdef",
	}

	services, err := New(cfg, repos, txManager)
	require.NoError(t, err)

	assert.NotNil(t, services.AuthService)
	assert.NotNil(t, services.UserService)
	assert.NotNil(t, services.CardService)
	assert.NotNil(t, services.TransactionService)
}

func TestNew_BadEncryptionKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		EncryptionKey: "too-short",
	}

	services, err := New(cfg, repo.New(mockDB), pg.NewMockTXManager(ctrl))
	assert.Error(t, err)
	assert.Nil(t, services)
}
