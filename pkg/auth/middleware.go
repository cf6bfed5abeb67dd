package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/pkg/utils"
)

type ContextKey string

const IdentityKey ContextKey = "identity"

// Middleware validates the bearer token and stores the acting identity in the
// request context. Handlers extract it once and pass it to services as an
// explicit argument.
type Middleware struct {
	jwtService JWTServiceInterface
}

func NewMiddleware(jwtService JWTServiceInterface) *Middleware {
	return &Middleware{jwtService: jwtService}
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), IdentityKey, claims.Identity())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a route group to ADMIN identities. Must run after
// Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || !identity.IsAdmin() {
			utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.Identity)
	return identity, ok
}
