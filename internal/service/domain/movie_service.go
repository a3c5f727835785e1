package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-favorites/internal/model"
	"github.com/qs-lzh/movie-favorites/internal/repository"
	"github.com/qs-lzh/movie-favorites/internal/validation"
)

type MovieService interface {
	CreateMovie(ctx context.Context, in validation.MovieCreate) (*model.Movie, error)
	GetMovieByID(ctx context.Context, id uint) (*model.Movie, error)
	ListMovies(ctx context.Context, page validation.Page) ([]model.Movie, error)
	UpdateMovie(ctx context.Context, id uint, in validation.MovieUpdate) (*model.Movie, error)
	DeleteMovie(ctx context.Context, id uint) (int, error)
	SearchMovies(ctx context.Context, in validation.MovieSearch) ([]model.Movie, error)
}

type movieService struct {
	db           *gorm.DB
	repo         repository.MovieRepo
	favoriteRepo repository.FavoriteRepo
	now          func() time.Time
}

var _ MovieService = (*movieService)(nil)

func NewMovieService(db *gorm.DB, movieRepo repository.MovieRepo, favoriteRepo repository.FavoriteRepo) *movieService {
	return &movieService{
		db:           db,
		repo:         movieRepo,
		favoriteRepo: favoriteRepo,
		now:          time.Now,
	}
}

func (s *movieService) CreateMovie(ctx context.Context, in validation.MovieCreate) (*model.Movie, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	movie := &model.Movie{
		Title:     in.Title,
		Director:  in.Director,
		Genre:     in.Genre,
		Duration:  in.Duration,
		Year:      in.Year,
		Rating:    in.Rating,
		Synopsis:  in.Synopsis,
		CreatedAt: s.now().UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, movie)
	})
	if err != nil {
		return nil, translateErr(err, "movie")
	}
	return movie, nil
}

func (s *movieService) GetMovieByID(ctx context.Context, id uint) (*model.Movie, error) {
	movie, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("movie", id)
		}
		return nil, err
	}
	return movie, nil
}

func (s *movieService) ListMovies(ctx context.Context, page validation.Page) ([]model.Movie, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, page.Offset, page.Limit)
}

func (s *movieService) UpdateMovie(ctx context.Context, id uint, in validation.MovieUpdate) (*model.Movie, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var updated *model.Movie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		movie, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("movie", id)
			}
			return err
		}
		applyMovieUpdate(movie, in)
		if err := repo.Save(ctx, movie); err != nil {
			return err
		}
		updated = movie
		return nil
	})
	if err != nil {
		return nil, translateErr(err, "movie")
	}
	return updated, nil
}

// DeleteMovie removes the movie and every favorite pointing at it, returning
// how many favorites were dropped.
func (s *movieService) DeleteMovie(ctx context.Context, id uint) (int, error) {
	var removed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("movie", id)
			}
			return err
		}
		n, err := s.favoriteRepo.WithTx(tx).DeleteByMovieID(ctx, id)
		if err != nil {
			return err
		}
		deleted, err := repo.DeleteByID(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return notFound("movie", id)
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, translateErr(err, "movie")
	}
	return removed, nil
}

func (s *movieService) SearchMovies(ctx context.Context, in validation.MovieSearch) ([]model.Movie, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Search(ctx, repository.MovieFilter{
		Title:    in.Title,
		Director: in.Director,
		Genre:    in.Genre,
		Year:     in.Year,
		YearMin:  in.YearMin,
		YearMax:  in.YearMax,
	})
}

func applyMovieUpdate(movie *model.Movie, in validation.MovieUpdate) {
	if in.Title != nil {
		movie.Title = *in.Title
	}
	if in.Director != nil {
		movie.Director = *in.Director
	}
	if in.Genre != nil {
		movie.Genre = *in.Genre
	}
	if in.Duration != nil {
		movie.Duration = *in.Duration
	}
	if in.Year != nil {
		movie.Year = *in.Year
	}
	if in.Rating != nil {
		movie.Rating = *in.Rating
	}
	if in.Synopsis != nil {
		movie.Synopsis = in.Synopsis
	}
}
