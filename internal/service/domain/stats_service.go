package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/qs-lzh/movie-favorites/internal/model"
)

const topGenreLimit = 3

type GenreCount struct {
	Genre string `json:"genero"`
	Count int    `json:"cantidad"`
}

type UserStats struct {
	UserID         uint         `json:"usuario_id"`
	TotalFavorites int          `json:"total_peliculas_favoritas"`
	TopGenres      []GenreCount `json:"generos_preferidos"`
	TotalMinutes   int          `json:"tiempo_total_minutos"`
	FormattedTime  string       `json:"tiempo_total_formateado"`
}

type StatsService interface {
	ComputeUserStats(ctx context.Context, userID uint) (*UserStats, error)
}

type statsService struct {
	favoriteService FavoriteService
}

var _ StatsService = (*statsService)(nil)

func NewStatsService(favoriteService FavoriteService) *statsService {
	return &statsService{
		favoriteService: favoriteService,
	}
}

func (s *statsService) ComputeUserStats(ctx context.Context, userID uint) (*UserStats, error) {
	movies, err := s.favoriteService.ListFavoriteMovies(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildUserStats(userID, movies), nil
}

// BuildUserStats aggregates a user's favorite movies. A movie listing several
// comma-separated genres counts once towards each of them; ties keep the order
// in which genres were first seen.
func BuildUserStats(userID uint, movies []model.Movie) *UserStats {
	counts := make(map[string]int)
	var seen []string
	total := 0
	for _, m := range movies {
		for _, token := range strings.Split(m.Genre, ",") {
			genre := strings.TrimSpace(token)
			if genre == "" {
				continue
			}
			if _, ok := counts[genre]; !ok {
				seen = append(seen, genre)
			}
			counts[genre]++
		}
		if m.Duration > 0 {
			total += m.Duration
		}
	}

	top := make([]GenreCount, 0, len(seen))
	for _, genre := range seen {
		top = append(top, GenreCount{Genre: genre, Count: counts[genre]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if len(top) > topGenreLimit {
		top = top[:topGenreLimit]
	}

	return &UserStats{
		UserID:         userID,
		TotalFavorites: len(movies),
		TopGenres:      top,
		TotalMinutes:   total,
		FormattedTime:  FormatWatchTime(total),
	}
}

// FormatWatchTime renders minutes as "{h}h {m}m", or "0m" for nothing watched.
func FormatWatchTime(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
