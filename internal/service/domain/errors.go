package domain

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/qs-lzh/movie-favorites/internal/service"
)

// translateErr maps storage errors onto the service error kinds and leaves
// everything else untouched.
func translateErr(err error, subject string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrConflict):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", subject, service.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", subject, service.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s references a missing record: %w", subject, service.ErrNotFound)
	}
	return err
}

func notFound(kind string, id uint) error {
	return fmt.Errorf("%s %d: %w", kind, id, service.ErrNotFound)
}
