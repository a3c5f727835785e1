package validation

type UserCreate struct {
	Name  string `json:"nombre" validate:"required,min=1,max=100"`
	Email string `json:"correo" validate:"required,email,max=150"`
}

func (in UserCreate) Normalize() UserCreate {
	in.Email = NormalizeEmail(in.Email)
	return in
}

func (in UserCreate) Validate() error {
	return check(in)
}

// UserUpdate carries only the fields the caller sent; nil means untouched.
type UserUpdate struct {
	Name  *string `json:"nombre" validate:"omitnil,min=1,max=100"`
	Email *string `json:"correo" validate:"omitnil,email,max=150"`
}

func (in UserUpdate) Normalize() UserUpdate {
	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		in.Email = &email
	}
	return in
}

func (in UserUpdate) Validate() error {
	return check(in)
}
