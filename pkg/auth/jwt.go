package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/avoronov/bankcards/internal/domain"
)

const issuer = "bankcards"

type JWTServiceInterface interface {
	GenerateJWT(identity domain.Identity, expirationTime time.Time) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

func (c *Claims) Identity() domain.Identity {
	return domain.Identity{
		UserID:   c.UserID,
		Username: c.Username,
		Role:     domain.Role(c.Role),
	}
}

type JWTService struct {
	secret []byte
}

func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret)}
}

func (s *JWTService) GenerateJWT(identity domain.Identity, expirationTime time.Time) (string, error) {
	claims := Claims{
		UserID:   identity.UserID,
		Username: identity.Username,
		Role:     string(identity.Role),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 || claims.Username == "" || claims.Issuer != issuer {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
