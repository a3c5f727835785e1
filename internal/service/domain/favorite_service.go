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

type FavoriteService interface {
	AddFavorite(ctx context.Context, userID, movieID uint) (*model.Favorite, error)
	// RemoveFavorite deletes the (user, movie) link and returns the removed record.
	RemoveFavorite(ctx context.Context, userID, movieID uint) (*model.Favorite, error)
	RemoveFavoriteByID(ctx context.Context, id uint) (*model.Favorite, error)
	GetFavoriteByID(ctx context.Context, id uint) (*model.Favorite, error)
	ListFavorites(ctx context.Context, page validation.Page) ([]model.Favorite, error)
	// ListFavoriteMovies returns the user's favorite movies in the order they were marked.
	ListFavoriteMovies(ctx context.Context, userID uint) ([]model.Movie, error)
}

type favoriteService struct {
	db        *gorm.DB
	repo      repository.FavoriteRepo
	userRepo  repository.UserRepo
	movieRepo repository.MovieRepo
	now       func() time.Time
}

var _ FavoriteService = (*favoriteService)(nil)

func NewFavoriteService(db *gorm.DB, favoriteRepo repository.FavoriteRepo, userRepo repository.UserRepo, movieRepo repository.MovieRepo) *favoriteService {
	return &favoriteService{
		db:        db,
		repo:      favoriteRepo,
		userRepo:  userRepo,
		movieRepo: movieRepo,
		now:       time.Now,
	}
}

func (s *favoriteService) AddFavorite(ctx context.Context, userID, movieID uint) (*model.Favorite, error) {
	favorite := &model.Favorite{
		UserID:   userID,
		MovieID:  movieID,
		MarkedAt: s.now().UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(ctx, s.userRepo.WithTx(tx), userID); err != nil {
			return err
		}
		if err := requireMovie(ctx, s.movieRepo.WithTx(tx), movieID); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		_, err := repo.GetByPair(ctx, userID, movieID)
		switch {
		case err == nil:
			return fmt.Errorf("movie %d is already a favorite of user %d: %w", movieID, userID, service.ErrConflict)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return repo.Create(ctx, favorite)
	})
	if err != nil {
		return nil, translateErr(err, "favorite")
	}
	return favorite, nil
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, userID, movieID uint) (*model.Favorite, error) {
	var removed *model.Favorite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		favorite, err := repo.GetByPair(ctx, userID, movieID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("movie %d is not a favorite of user %d: %w", movieID, userID, service.ErrNotFound)
			}
			return err
		}
		if err := deleteFavorite(ctx, repo, favorite.ID); err != nil {
			return err
		}
		removed = favorite
		return nil
	})
	if err != nil {
		return nil, translateErr(err, "favorite")
	}
	return removed, nil
}

func (s *favoriteService) RemoveFavoriteByID(ctx context.Context, id uint) (*model.Favorite, error) {
	var removed *model.Favorite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		favorite, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("favorite", id)
			}
			return err
		}
		if err := deleteFavorite(ctx, repo, favorite.ID); err != nil {
			return err
		}
		removed = favorite
		return nil
	})
	if err != nil {
		return nil, translateErr(err, "favorite")
	}
	return removed, nil
}

func (s *favoriteService) GetFavoriteByID(ctx context.Context, id uint) (*model.Favorite, error) {
	favorite, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("favorite", id)
		}
		return nil, err
	}
	return favorite, nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, page validation.Page) ([]model.Favorite, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, page.Offset, page.Limit)
}

func (s *favoriteService) ListFavoriteMovies(ctx context.Context, userID uint) ([]model.Movie, error) {
	var movies []model.Movie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(ctx, s.userRepo.WithTx(tx), userID); err != nil {
			return err
		}
		var err error
		movies, err = s.movieRepo.WithTx(tx).ListFavoritedBy(ctx, userID)
		return err
	})
	if err != nil {
		return nil, translateErr(err, "favorite")
	}
	return movies, nil
}

func requireUser(ctx context.Context, repo repository.UserRepo, id uint) error {
	if _, err := repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("user", id)
		}
		return err
	}
	return nil
}

func requireMovie(ctx context.Context, repo repository.MovieRepo, id uint) error {
	if _, err := repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("movie", id)
		}
		return err
	}
	return nil
}

func deleteFavorite(ctx context.Context, repo repository.FavoriteRepo, id uint) error {
	n, err := repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("favorite", id)
	}
	return nil
}
