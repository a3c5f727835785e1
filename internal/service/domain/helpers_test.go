package domain

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-favorites/internal/database"
	"github.com/qs-lzh/movie-favorites/internal/model"
	"github.com/qs-lzh/movie-favorites/internal/repository"
	"github.com/qs-lzh/movie-favorites/internal/validation"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testServices struct {
	db        *gorm.DB
	users     *userService
	movies    *movieService
	favorites *favoriteService
	stats     *statsService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	dsn := "sqlite://:memory:"
	db, err := database.Open(dsn, false, nil)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.Migrate(db, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userRepo := repository.NewUserRepoGorm(db)
	movieRepo := repository.NewMovieRepoGorm(db)
	favoriteRepo := repository.NewFavoriteRepoGorm(db)

	s := &testServices{
		db:        db,
		users:     NewUserService(db, userRepo, favoriteRepo),
		movies:    NewMovieService(db, movieRepo, favoriteRepo),
		favorites: NewFavoriteService(db, favoriteRepo, userRepo, movieRepo),
	}
	clock := func() time.Time { return fixedNow }
	s.users.now = clock
	s.movies.now = clock
	s.favorites.now = clock
	s.stats = NewStatsService(s.favorites)
	return s
}

func (s *testServices) mustCreateUser(t *testing.T, name, email string) *model.User {
	t.Helper()
	user, err := s.users.CreateUser(context.Background(), validation.UserCreate{Name: name, Email: email})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func (s *testServices) mustCreateMovie(t *testing.T, title, genre string, duration int) *model.Movie {
	t.Helper()
	movie, err := s.movies.CreateMovie(context.Background(), validation.MovieCreate{
		Title:    title,
		Director: "Director",
		Genre:    genre,
		Duration: duration,
		Year:     2001,
		Rating:   "PG-13",
	})
	if err != nil {
		t.Fatalf("create movie %s: %v", title, err)
	}
	return movie
}

func (s *testServices) mustAddFavorite(t *testing.T, userID, movieID uint) *model.Favorite {
	t.Helper()
	favorite, err := s.favorites.AddFavorite(context.Background(), userID, movieID)
	if err != nil {
		t.Fatalf("add favorite (%d, %d): %v", userID, movieID, err)
	}
	return favorite
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
