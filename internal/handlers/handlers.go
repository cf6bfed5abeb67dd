package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/avoronov/bankcards/docs"
	authhandlers "github.com/avoronov/bankcards/internal/handlers/auth"
	cardhandlers "github.com/avoronov/bankcards/internal/handlers/cards"
	transactionhandlers "github.com/avoronov/bankcards/internal/handlers/transactions"
	userhandlers "github.com/avoronov/bankcards/internal/handlers/users"
	"github.com/avoronov/bankcards/internal/service"
	pkgauth "github.com/avoronov/bankcards/pkg/auth"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	GetInfo(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type CardHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ListAll(w http.ResponseWriter, r *http.Request)
	ListOwn(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
	Block(w http.ResponseWriter, r *http.Request)
	Activate(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type TransactionHandler interface {
	Transfer(w http.ResponseWriter, r *http.Request)
	ListSent(w http.ResponseWriter, r *http.Request)
	ListReceived(w http.ResponseWriter, r *http.Request)
	ListOwn(w http.ResponseWriter, r *http.Request)
	ListAll(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler        AuthHandler
	UserHandler        UserHandler
	CardHandler        CardHandler
	TransactionHandler TransactionHandler

	authMiddleware *pkgauth.Middleware
}

func New(s *service.Services, authMiddleware *pkgauth.Middleware) *Handlers {
	return &Handlers{
		AuthHandler:        authhandlers.New(s.AuthService),
		UserHandler:        userhandlers.New(s.UserService),
		CardHandler:        cardhandlers.New(s.CardService),
		TransactionHandler: transactionhandlers.New(s.TransactionService),
		authMiddleware:     authMiddleware,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.AuthHandler.Register)
			r.Post("/login", h.AuthHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Authenticate)

			r.Route("/users", func(r chi.Router) {
				r.Get("/info", h.UserHandler.GetInfo)

				r.Group(func(r chi.Router) {
					r.Use(h.authMiddleware.RequireAdmin)
					r.Get("/", h.UserHandler.List)
					r.Get("/{userId}", h.UserHandler.GetByID)
					r.Patch("/{userId}", h.UserHandler.Update)
					r.Delete("/{userId}", h.UserHandler.Delete)
				})
			})

			r.Route("/cards", func(r chi.Router) {
				r.Get("/own", h.CardHandler.ListOwn)
				r.Get("/{cardId}", h.CardHandler.GetByID)
				r.Get("/{cardId}/balance", h.CardHandler.GetBalance)
				r.Patch("/{cardId}/block", h.CardHandler.Block)

				r.Group(func(r chi.Router) {
					r.Use(h.authMiddleware.RequireAdmin)
					r.Post("/", h.CardHandler.Create)
					r.Get("/all", h.CardHandler.ListAll)
					r.Patch("/{cardId}/activate", h.CardHandler.Activate)
					r.Delete("/{cardId}", h.CardHandler.Delete)
				})
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", h.TransactionHandler.Transfer)
				r.Get("/own", h.TransactionHandler.ListOwn)

				r.Group(func(r chi.Router) {
					r.Use(h.authMiddleware.RequireAdmin)
					r.Get("/sent/{userId}", h.TransactionHandler.ListSent)
					r.Get("/received/{userId}", h.TransactionHandler.ListReceived)
					r.Get("/all", h.TransactionHandler.ListAll)
				})
			})
		})
	})

	return r
}
