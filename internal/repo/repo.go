package repo

import (
	"github.com/avoronov/bankcards/internal/pg"
	cardrepo "github.com/avoronov/bankcards/internal/repo/card-repo"
	transactionrepo "github.com/avoronov/bankcards/internal/repo/transaction-repo"
	userrepo "github.com/avoronov/bankcards/internal/repo/user-repo"
)

type Repositories struct {
	UserRepo        *userrepo.Repository
	CardRepo        *cardrepo.Repository
	TransactionRepo *transactionrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		CardRepo:        cardrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
	}
}
