package service

import (
	"github.com/avoronov/bankcards/internal/access"
	"github.com/avoronov/bankcards/internal/config"
	"github.com/avoronov/bankcards/internal/handlers/cards"
	"github.com/avoronov/bankcards/internal/handlers/transactions"
	"github.com/avoronov/bankcards/internal/handlers/users"
	"github.com/avoronov/bankcards/internal/pg"
	"github.com/avoronov/bankcards/internal/repo"
	"github.com/avoronov/bankcards/internal/service/authservice"
	"github.com/avoronov/bankcards/internal/service/cardservice"
	"github.com/avoronov/bankcards/internal/service/transferservice"
	"github.com/avoronov/bankcards/internal/service/userservice"
	pkgauth "github.com/avoronov/bankcards/pkg/auth"
	"github.com/avoronov/bankcards/pkg/cardnum"
)

type Services struct {
	AuthService        *authservice.Service
	UserService        users.Service
	CardService        cards.Service
	TransactionService transactions.Service
}

func New(cfg *config.Config, repos *repo.Repositories, txManager pg.TXManager) (*Services, error) {
	vault, err := cardnum.NewVault([]byte(cfg.EncryptionKey))
	if err != nil {
		return nil, err
	}

	hashService := &pkgauth.HashService{}
	jwtService := pkgauth.NewJWTService(cfg.JWTSecret)
	guard := access.New()

	return &Services{
		AuthService:        authservice.New(repos.UserRepo, hashService, jwtService),
		UserService:        userservice.New(repos.UserRepo, hashService),
		CardService:        cardservice.New(repos.CardRepo, repos.UserRepo, guard, vault),
		TransactionService: transferservice.New(repos.CardRepo, repos.TransactionRepo, txManager),
	}, nil
}
