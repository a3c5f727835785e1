package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-favorites/internal/model"
	"github.com/qs-lzh/movie-favorites/internal/repository"
	"github.com/qs-lzh/movie-favorites/internal/service"
	"github.com/qs-lzh/movie-favorites/internal/validation"
)

type UserService interface {
	CreateUser(ctx context.Context, in validation.UserCreate) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context, page validation.Page) ([]model.User, error)
	UpdateUser(ctx context.Context, id uint, in validation.UserUpdate) (*model.User, error)
	// DeleteUser removes the user together with every favorite they own and
	// reports how many favorites went with them.
	DeleteUser(ctx context.Context, id uint) (int, error)
}

type userService struct {
	db           *gorm.DB
	repo         repository.UserRepo
	favoriteRepo repository.FavoriteRepo
	now          func() time.Time
}

var _ UserService = (*userService)(nil)

func NewUserService(db *gorm.DB, userRepo repository.UserRepo, favoriteRepo repository.FavoriteRepo) *userService {
	return &userService{
		db:           db,
		repo:         userRepo,
		favoriteRepo: favoriteRepo,
		now:          time.Now,
	}
}

func (s *userService) CreateUser(ctx context.Context, in validation.UserCreate) (*model.User, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		RegisteredAt: s.now().UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.ensureEmailFree(ctx, repo, in.Email, 0); err != nil {
			return err
		}
		return repo.Create(ctx, user)
	})
	if err != nil {
		return nil, translateErr(err, "user")
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", id)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page validation.Page) ([]model.User, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, page.Offset, page.Limit)
}

func (s *userService) UpdateUser(ctx context.Context, id uint, in validation.UserUpdate) (*model.User, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var updated *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		user, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("user", id)
			}
			return err
		}
		if in.Email != nil && *in.Email != user.Email {
			if err := s.ensureEmailFree(ctx, repo, *in.Email, user.ID); err != nil {
				return err
			}
			user.Email = *in.Email
		}
		if in.Name != nil {
			user.Name = *in.Name
		}
		if err := repo.Save(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, translateErr(err, "user")
	}
	return updated, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) (int, error) {
	var removed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("user", id)
			}
			return err
		}
		n, err := s.favoriteRepo.WithTx(tx).DeleteByUserID(ctx, id)
		if err != nil {
			return err
		}
		deleted, err := repo.DeleteByID(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return notFound("user", id)
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, translateErr(err, "user")
	}
	return removed, nil
}

// ensureEmailFree fails with ErrConflict when another user already owns email.
func (s *userService) ensureEmailFree(ctx context.Context, repo repository.UserRepo, email string, self uint) error {
	other, err := repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != self:
		return fmt.Errorf("email %s is already registered: %w", email, service.ErrConflict)
	}
	return nil
}
