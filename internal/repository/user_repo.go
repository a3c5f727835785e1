package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-favorites/internal/model"
)

type UserRepo interface {
	WithTx(tx *gorm.DB) UserRepo
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, error)
	Save(ctx context.Context, user *model.User) error
	DeleteByID(ctx context.Context, id uint) (int, error)
}

type userRepoGorm struct {
	db *gorm.DB
}

var _ UserRepo = (*userRepoGorm)(nil)

func NewUserRepoGorm(db *gorm.DB) *userRepoGorm {
	return &userRepoGorm{
		db: db,
	}
}

func (r *userRepoGorm) WithTx(tx *gorm.DB) UserRepo {
	return &userRepoGorm{
		db: tx,
	}
}

func (r *userRepoGorm) Create(ctx context.Context, user *model.User) error {
	return gorm.G[model.User](r.db).Create(ctx, user)
}

func (r *userRepoGorm) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := gorm.G[model.User](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepoGorm) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := gorm.G[model.User](r.db).Where("correo = ?", email).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepoGorm) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	return gorm.G[model.User](r.db).Order("id").Offset(offset).Limit(limit).Find(ctx)
}

func (r *userRepoGorm) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepoGorm) DeleteByID(ctx context.Context, id uint) (int, error) {
	return gorm.G[model.User](r.db).Where("id = ?", id).Delete(ctx)
}
