package userservice

import (
	"context"

	"go.uber.org/zap"

	"github.com/avoronov/bankcards/internal/domain"
	"github.com/avoronov/bankcards/pkg/auth"
	"github.com/avoronov/bankcards/pkg/paging"
)

type Repo interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, p paging.Params) ([]domain.User, int64, error)
}

// UpdateRequest carries the optional fields of an admin profile update; nil
// means "leave unchanged".
type UpdateRequest struct {
	Username *string
	Password *string
	Role     *string
}

type Service struct {
	userRepo    Repo
	hashService auth.HashServiceInterface
}

func New(repo Repo, hashService auth.HashServiceInterface) *Service {
	return &Service{
		userRepo:    repo,
		hashService: hashService,
	}
}

// GetInfo returns the profile of the acting identity itself.
func (s *Service) GetInfo(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, identity.Username)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user with username '%s' not found", identity.Username)
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user with id = %d not found", id)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context, p paging.Params) (*paging.Page[domain.User], error) {
	users, total, err := s.userRepo.List(ctx, p)
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, err
	}
	return paging.NewPage(users, p, total), nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user with id = %d not found", id)
	}

	if req.Username != nil && *req.Username != user.Username {
		taken, err := s.userRepo.ExistsByUsername(ctx, *req.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.NewConflictError("username '%s' is already taken", *req.Username)
		}
		user.Username = *req.Username
	}
	if req.Password != nil {
		hashed, err := s.hashService.HashPassword(*req.Password)
		if err != nil {
			zap.L().Error("can't hash password", zap.Error(err))
			return nil, err
		}
		user.PasswordHash = hashed
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}

	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		zap.L().Error("can't update user", zap.Error(err))
		return nil, err
	}
	zap.L().Info("user updated", zap.Int64("userID", updated.ID))
	return updated, nil
}

// Delete removes the user; owned cards go with it through the storage-level
// cascade.
func (s *Service) Delete(ctx context.Context, id int64) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return err
	}
	if user == nil {
		return domain.NewNotFoundError("user with id = %d not found", id)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		zap.L().Error("can't delete user", zap.Error(err))
		return err
	}
	zap.L().Info("user deleted", zap.Int64("userID", id))
	return nil
}
