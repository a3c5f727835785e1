package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs-lzh/movie-favorites/internal/model"
)

// MovieFilter narrows a movie search. Empty strings and nil years are ignored.
type MovieFilter struct {
	Title    string
	Director string
	Genre    string
	Year     *int
	YearMin  *int
	YearMax  *int
}

type MovieRepo interface {
	WithTx(tx *gorm.DB) MovieRepo
	Create(ctx context.Context, movie *model.Movie) error
	GetByID(ctx context.Context, id uint) (*model.Movie, error)
	List(ctx context.Context, offset, limit int) ([]model.Movie, error)
	Search(ctx context.Context, filter MovieFilter) ([]model.Movie, error)
	ListFavoritedBy(ctx context.Context, userID uint) ([]model.Movie, error)
	Save(ctx context.Context, movie *model.Movie) error
	DeleteByID(ctx context.Context, id uint) (int, error)
}

type movieRepoGorm struct {
	db *gorm.DB
}

var _ MovieRepo = (*movieRepoGorm)(nil)

func NewMovieRepoGorm(db *gorm.DB) *movieRepoGorm {
	return &movieRepoGorm{
		db: db,
	}
}

func (r *movieRepoGorm) WithTx(tx *gorm.DB) MovieRepo {
	return &movieRepoGorm{
		db: tx,
	}
}

func (r *movieRepoGorm) Create(ctx context.Context, movie *model.Movie) error {
	return gorm.G[model.Movie](r.db).Create(ctx, movie)
}

func (r *movieRepoGorm) GetByID(ctx context.Context, id uint) (*model.Movie, error) {
	movie, err := gorm.G[model.Movie](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepoGorm) List(ctx context.Context, offset, limit int) ([]model.Movie, error) {
	return gorm.G[model.Movie](r.db).Order("id").Offset(offset).Limit(limit).Find(ctx)
}

func (r *movieRepoGorm) Search(ctx context.Context, filter MovieFilter) ([]model.Movie, error) {
	q := r.db.WithContext(ctx).Model(&model.Movie{})
	// sqlite's LOWER only folds ASCII, so text filters run after the query there
	textInGo := r.db.Dialector.Name() == "sqlite"
	if !textInGo {
		q = whereContains(q, "titulo", filter.Title)
		q = whereContains(q, "director", filter.Director)
		q = whereContains(q, "genero", filter.Genre)
	}
	// año is not plain ASCII, so let the dialect quote it
	year := clause.Column{Name: "año"}
	if filter.Year != nil {
		q = q.Where(clause.Eq{Column: year, Value: *filter.Year})
	}
	if filter.YearMin != nil {
		q = q.Where(clause.Gte{Column: year, Value: *filter.YearMin})
	}
	if filter.YearMax != nil {
		q = q.Where(clause.Lte{Column: year, Value: *filter.YearMax})
	}

	var movies []model.Movie
	if err := q.Order("id").Find(&movies).Error; err != nil {
		return nil, err
	}
	if textInGo {
		movies = filterText(movies, filter)
	}
	return movies, nil
}

// ListFavoritedBy joins favoritos explicitly and keeps the order the favorites were created in.
func (r *movieRepoGorm) ListFavoritedBy(ctx context.Context, userID uint) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.WithContext(ctx).
		Model(&model.Movie{}).
		Select("peliculas.*").
		Joins("JOIN favoritos ON favoritos.id_pelicula = peliculas.id").
		Where("favoritos.id_usuario = ?", userID).
		Order("favoritos.id").
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *movieRepoGorm) Save(ctx context.Context, movie *model.Movie) error {
	return r.db.WithContext(ctx).Save(movie).Error
}

func (r *movieRepoGorm) DeleteByID(ctx context.Context, id uint) (int, error) {
	return gorm.G[model.Movie](r.db).Where("id = ?", id).Delete(ctx)
}

func whereContains(q *gorm.DB, column, term string) *gorm.DB {
	if term == "" {
		return q
	}
	return q.Where("LOWER("+column+") LIKE ? ESCAPE '!'", containsPattern(term))
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern matches term anywhere, treating % and _ in it literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func filterText(movies []model.Movie, filter MovieFilter) []model.Movie {
	out := movies[:0]
	for _, m := range movies {
		if containsFold(m.Title, filter.Title) &&
			containsFold(m.Director, filter.Director) &&
			containsFold(m.Genre, filter.Genre) {
			out = append(out, m)
		}
	}
	return out
}

func containsFold(s, term string) bool {
	return term == "" || strings.Contains(strings.ToLower(s), strings.ToLower(term))
}
