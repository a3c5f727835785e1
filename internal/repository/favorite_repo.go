package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-favorites/internal/model"
)

type FavoriteRepo interface {
	WithTx(tx *gorm.DB) FavoriteRepo
	Create(ctx context.Context, favorite *model.Favorite) error
	GetByID(ctx context.Context, id uint) (*model.Favorite, error)
	GetByPair(ctx context.Context, userID, movieID uint) (*model.Favorite, error)
	List(ctx context.Context, offset, limit int) ([]model.Favorite, error)
	DeleteByID(ctx context.Context, id uint) (int, error)
	DeleteByUserID(ctx context.Context, userID uint) (int, error)
	DeleteByMovieID(ctx context.Context, movieID uint) (int, error)
}

type favoriteRepoGorm struct {
	db *gorm.DB
}

var _ FavoriteRepo = (*favoriteRepoGorm)(nil)

func NewFavoriteRepoGorm(db *gorm.DB) *favoriteRepoGorm {
	return &favoriteRepoGorm{
		db: db,
	}
}

func (r *favoriteRepoGorm) WithTx(tx *gorm.DB) FavoriteRepo {
	return &favoriteRepoGorm{
		db: tx,
	}
}

func (r *favoriteRepoGorm) Create(ctx context.Context, favorite *model.Favorite) error {
	return gorm.G[model.Favorite](r.db).Create(ctx, favorite)
}

func (r *favoriteRepoGorm) GetByID(ctx context.Context, id uint) (*model.Favorite, error) {
	favorite, err := gorm.G[model.Favorite](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepoGorm) GetByPair(ctx context.Context, userID, movieID uint) (*model.Favorite, error) {
	favorite, err := gorm.G[model.Favorite](r.db).
		Where("id_usuario = ? AND id_pelicula = ?", userID, movieID).
		First(ctx)
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepoGorm) List(ctx context.Context, offset, limit int) ([]model.Favorite, error) {
	return gorm.G[model.Favorite](r.db).Order("id").Offset(offset).Limit(limit).Find(ctx)
}

func (r *favoriteRepoGorm) DeleteByID(ctx context.Context, id uint) (int, error) {
	return gorm.G[model.Favorite](r.db).Where("id = ?", id).Delete(ctx)
}

func (r *favoriteRepoGorm) DeleteByUserID(ctx context.Context, userID uint) (int, error) {
	return gorm.G[model.Favorite](r.db).Where("id_usuario = ?", userID).Delete(ctx)
}

func (r *favoriteRepoGorm) DeleteByMovieID(ctx context.Context, movieID uint) (int, error) {
	return gorm.G[model.Favorite](r.db).Where("id_pelicula = ?", movieID).Delete(ctx)
}
