package authservice

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/pkg/auth"
)

const tokenTTL = 15 * time.Minute

var ErrInvalidCredentials = errors.New("invalid credentials")

type Repo interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

type Service struct {
	userRepo    Repo
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
}

func New(repo Repo, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface) *Service {
	return &Service{
		userRepo:    repo,
		hashService: hashService,
		jwtService:  jwtService,
	}
}

// Register creates a USER-role account and returns a signed token for it.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		zap.L().Error("can't check username", zap.Error(err))
		return "", err
	}
	if taken {
		zap.L().Info("username already taken", zap.String("username", username))
		return "", domain.NewConflictError("username '%s' is already taken", username)
	}

	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password", zap.Error(err))
		return "", err
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         domain.RoleUser,
	})
	if err != nil {
		zap.L().Error("can't create user", zap.Error(err))
		return "", err
	}

	zap.L().Info("user successfully registered", zap.String("username", username))
	return s.generateToken(user)
}

// Login verifies the credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return "", err
	}
	if user == nil || !s.hashService.ComparePassword(user.PasswordHash, password) {
		zap.L().Warn("invalid credentials", zap.String("username", username))
		return "", ErrInvalidCredentials
	}

	zap.L().Info("user successfully authenticated", zap.String("username", username))
	return s.generateToken(user)
}

// EnsureAdmin creates the bootstrap administrator account unless it exists.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.userRepo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		return err
	}
	zap.L().Info("bootstrap admin created", zap.String("username", username))
	return nil
}

func (s *Service) generateToken(user *domain.User) (string, error) {
	identity := domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
	token, err := s.jwtService.GenerateJWT(identity, time.Now().Add(tokenTTL))
	if err != nil {
		zap.L().Error("can't generate token", zap.Error(err))
		return "", err
	}
	return token, nil
}
