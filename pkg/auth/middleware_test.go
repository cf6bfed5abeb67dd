package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avoronov/bankcards/internal/domain"
)

func TestAuthenticate(t *testing.T) {
	jwtService := NewJWTService("test-secret")
	middleware := NewMiddleware(jwtService)

	validToken, _ := jwtService.GenerateJWT(testIdentity, time.Now().Add(time.Hour))

	tests := []struct {
		name         string
		header       string
		expectedCode int
		expectCalled bool
	}{
		{
			name:         "Valid token",
			header:       "Bearer " + validToken,
			expectedCode: http.StatusOK,
			expectCalled: true,
		},
		{
			name:         "Missing header",
			header:       "",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Not a bearer token",
			header:       "Basic abc",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Garbage token",
			header:       "Bearer garbage",
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				identity, ok := IdentityFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, testIdentity, identity)
			})

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			middleware.Authenticate(next).ServeHTTP(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectCalled, called)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	middleware := NewMiddleware(NewJWTService("test-secret"))

	tests := []struct {
		name         string
		identity     *domain.Identity
		expectedCode int
	}{
		{
			name:         "Admin passes",
			identity:     &domain.Identity{UserID: 1, Username: "admin", Role: domain.RoleAdmin},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Regular user rejected",
			identity:     &domain.Identity{UserID: 2, Username: "user", Role: domain.RoleUser},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "No identity rejected",
			identity:     nil,
			expectedCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.identity != nil {
				r = r.WithContext(context.WithValue(r.Context(), IdentityKey, *tt.identity))
			}
			w := httptest.NewRecorder()

			middleware.RequireAdmin(next).ServeHTTP(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}
