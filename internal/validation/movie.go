package validation

import "strings"

const (
	MinYear = 1888
	MaxYear = 2100
)

type MovieCreate struct {
	Title    string  `json:"titulo" validate:"required,min=1,max=200"`
	Director string  `json:"director" validate:"required,min=1,max=150"`
	Genre    string  `json:"genero" validate:"required,min=1,max=100"`
	Duration int     `json:"duracion" validate:"gt=0"`
	Year     int     `json:"año" validate:"gte=1888,lte=2100"`
	Rating   string  `json:"clasificacion" validate:"required,max=10"`
	Synopsis *string `json:"sinopsis" validate:"omitnil,max=1000"`
}

func (in MovieCreate) Normalize() MovieCreate {
	in.Synopsis = cleanSynopsis(in.Synopsis)
	return in
}

func (in MovieCreate) Validate() error {
	return check(in)
}

type MovieUpdate struct {
	Title    *string `json:"titulo" validate:"omitnil,min=1,max=200"`
	Director *string `json:"director" validate:"omitnil,min=1,max=150"`
	Genre    *string `json:"genero" validate:"omitnil,min=1,max=100"`
	Duration *int    `json:"duracion" validate:"omitnil,gt=0"`
	Year     *int    `json:"año" validate:"omitnil,gte=1888,lte=2100"`
	Rating   *string `json:"clasificacion" validate:"omitnil,min=1,max=10"`
	Synopsis *string `json:"sinopsis" validate:"omitnil,max=1000"`
}

func (in MovieUpdate) Normalize() MovieUpdate {
	in.Synopsis = cleanSynopsis(in.Synopsis)
	return in
}

func (in MovieUpdate) Validate() error {
	return check(in)
}

// MovieSearch filters movies; zero values are ignored.
type MovieSearch struct {
	Title    string `form:"titulo" json:"titulo" validate:"max=200"`
	Director string `form:"director" json:"director" validate:"max=150"`
	Genre    string `form:"genero" json:"genero" validate:"max=100"`
	Year     *int   `form:"año" json:"año" validate:"omitnil,gte=1888,lte=2100"`
	YearMin  *int   `form:"año_min" json:"año_min" validate:"omitnil,gte=1888,lte=2100"`
	YearMax  *int   `form:"año_max" json:"año_max" validate:"omitnil,gte=1888,lte=2100"`
}

func (in MovieSearch) Normalize() MovieSearch {
	in.Title = strings.TrimSpace(in.Title)
	in.Director = strings.TrimSpace(in.Director)
	in.Genre = strings.TrimSpace(in.Genre)
	return in
}

func (in MovieSearch) Validate() error {
	if err := check(in); err != nil {
		return err
	}
	if in.YearMin != nil && in.YearMax != nil && *in.YearMin > *in.YearMax {
		return NewError("año_min", "ltefield", "año_min must not be greater than año_max")
	}
	return nil
}

func cleanSynopsis(s *string) *string {
	if s == nil {
		return nil
	}
	clean := StripMarkup(*s)
	return &clean
}
