package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/avoronov/bankcards/internal/domain"
	pkgauth "github.com/avoronov/bankcards/pkg/auth"
)

type routerMocks struct {
	auth         *MockAuthHandler
	users        *MockUserHandler
	cards        *MockCardHandler
	transactions *MockTransactionHandler
}

func setupRouter(t *testing.T) (chi.Router, *routerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	mocks := &routerMocks{
		auth:         NewMockAuthHandler(ctrl),
		users:        NewMockUserHandler(ctrl),
		cards:        NewMockCardHandler(ctrl),
		transactions: NewMockTransactionHandler(ctrl),
	}

	h := &Handlers{
		AuthHandler:        mocks.auth,
		UserHandler:        mocks.users,
		CardHandler:        mocks.cards,
		TransactionHandler: mocks.transactions,
		authMiddleware:     pkgauth.NewMiddleware(pkgauth.NewJWTService("test-secret")),
	}

	router := chi.NewRouter()
	h.InitRoutes(router)
	return router, mocks
}

func issueToken(t *testing.T, identity domain.Identity) string {
	t.Helper()
	jwtService := pkgauth.NewJWTService("test-secret")
	token, err := jwtService.GenerateJWT(identity, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return token
}

func TestHandlers_InitRoutes(t *testing.T) {
	userToken := issueToken(t, domain.Identity{UserID: 1, Username: "alice", Role: domain.RoleUser})
	adminToken := issueToken(t, domain.Identity{UserID: 2, Username: "admin", Role: domain.RoleAdmin})

	served := func(c *gomock.Call) {
		c.Do(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}

	tests := []struct {
		name        string
		method      string
		url         string
		token       string
		prepareMock func(m *routerMocks)
		wantStatus  int
	}{
		{
			name:   "register is public",
			method: http.MethodPost,
			url:    "/api/auth/register",
			prepareMock: func(m *routerMocks) {
				served(m.auth.EXPECT().Register(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "login is public",
			method: http.MethodPost,
			url:    "/api/auth/login",
			prepareMock: func(m *routerMocks) {
				served(m.auth.EXPECT().Login(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "missing token is rejected",
			method:      http.MethodGet,
			url:         "/api/users/info",
			prepareMock: func(m *routerMocks) {},
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:        "garbage token is rejected",
			method:      http.MethodGet,
			url:         "/api/cards/own",
			token:       "not-a-jwt",
			prepareMock: func(m *routerMocks) {},
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:   "user info",
			method: http.MethodGet,
			url:    "/api/users/info",
			token:  userToken,
			prepareMock: func(m *routerMocks) {
				served(m.users.EXPECT().GetInfo(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "user list needs admin",
			method:      http.MethodGet,
			url:         "/api/users/",
			token:       userToken,
			prepareMock: func(m *routerMocks) {},
			wantStatus:  http.StatusForbidden,
		},
		{
			name:   "admin lists users",
			method: http.MethodGet,
			url:    "/api/users/",
			token:  adminToken,
			prepareMock: func(m *routerMocks) {
				served(m.users.EXPECT().List(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "admin updates user",
			method: http.MethodPatch,
			url:    "/api/users/7",
			token:  adminToken,
			prepareMock: func(m *routerMocks) {
				served(m.users.EXPECT().Update(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "admin deletes user",
			method: http.MethodDelete,
			url:    "/api/users/7",
			token:  adminToken,
			prepareMock: func(m *routerMocks) {
				served(m.users.EXPECT().Delete(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "card creation needs admin",
			method:      http.MethodPost,
			url:         "/api/cards/",
			token:       userToken,
			prepareMock: func(m *routerMocks) {},
			wantStatus:  http.StatusForbidden,
		},
		{
			name:   "admin creates card",
			method: http.MethodPost,
			url:    "/api/cards/",
			token:  adminToken,
			prepareMock: func(m *routerMocks) {
				served(m.cards.EXPECT().Create(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "user lists own cards",
			method: http.MethodGet,
			url:    "/api/cards/own",
			token:  userToken,
			prepareMock: func(m *routerMocks) {
				served(m.cards.EXPECT().ListOwn(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "cards all routes to the list handler, not the id handler",
			method: http.MethodGet,
			url:    "/api/cards/all",
			token:  adminToken,
			prepareMock: func(m *routerMocks) {
				served(m.cards.EXPECT().ListAll(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "user reads a card",
			method: http.MethodGet,
			url:    "/api/cards/5",
			token:  userToken,
			prepareMock: func(m *routerMocks) {
				served(m.cards.EXPECT().GetByID(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "user reads a balance",
			method: http.MethodGet,
			url:    "/api/cards/5/balance",
			token:  userToken,
			prepareMock: func(m *routerMocks) {
				served(m.cards.EXPECT().GetBalance(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "user blocks a card",
			method: http.MethodPatch,
			url:    "/api/cards/5/block",
			token:  userToken,
			prepareMock: func(m *routerMocks) {
				served(m.cards.EXPECT().Block(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "card activation needs admin",
			method:      http.MethodPatch,
			url:         "/api/cards/5/activate",
			token:       userToken,
			prepareMock: func(m *routerMocks) {},
			wantStatus:  http.StatusForbidden,
		},
		{
			name:   "admin activates a card",
			method: http.MethodPatch,
			url:    "/api/cards/5/activate",
			token:  adminToken,
			prepareMock: func(m *routerMocks) {
				served(m.cards.EXPECT().Activate(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "admin deletes a card",
			method: http.MethodDelete,
			url:    "/api/cards/5",
			token:  adminToken,
			prepareMock: func(m *routerMocks) {
				served(m.cards.EXPECT().Delete(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "user transfers",
			method: http.MethodPost,
			url:    "/api/transactions/",
			token:  userToken,
			prepareMock: func(m *routerMocks) {
				served(m.transactions.EXPECT().Transfer(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "user lists own transactions",
			method: http.MethodGet,
			url:    "/api/transactions/own",
			token:  userToken,
			prepareMock: func(m *routerMocks) {
				served(m.transactions.EXPECT().ListOwn(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "transaction history of another user needs admin",
			method:      http.MethodGet,
			url:         "/api/transactions/sent/3",
			token:       userToken,
			prepareMock: func(m *routerMocks) {},
			wantStatus:  http.StatusForbidden,
		},
		{
			name:   "admin lists sent transactions",
			method: http.MethodGet,
			url:    "/api/transactions/sent/3",
			token:  adminToken,
			prepareMock: func(m *routerMocks) {
				served(m.transactions.EXPECT().ListSent(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "admin lists received transactions",
			method: http.MethodGet,
			url:    "/api/transactions/received/3",
			token:  adminToken,
			prepareMock: func(m *routerMocks) {
				served(m.transactions.EXPECT().ListReceived(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "admin lists all transactions",
			method: http.MethodGet,
			url:    "/api/transactions/all",
			token:  adminToken,
			prepareMock: func(m *routerMocks) {
				served(m.transactions.EXPECT().ListAll(gomock.Any(), gomock.Any()))
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mocks := setupRouter(t)
			tt.prepareMock(mocks)

			req := httptest.NewRequest(tt.method, tt.url, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
