package validation

type FavoriteCreate struct {
	UserID  uint `json:"id_usuario" validate:"gt=0"`
	MovieID uint `json:"id_pelicula" validate:"gt=0"`
}

func (in FavoriteCreate) Validate() error {
	return check(in)
}

// Page is an offset/limit window over an ordered listing.
type Page struct {
	Offset int `form:"skip" json:"skip" validate:"gte=0"`
	Limit  int `form:"limit" json:"limit" validate:"gte=0"`
}

const DefaultLimit = 100

func DefaultPage() Page {
	return Page{Offset: 0, Limit: DefaultLimit}
}

func (p Page) Validate() error {
	return check(p)
}
