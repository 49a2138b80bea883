package repository

import (
	"errors"
	"fmt"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"gorm.io/gorm"
)

// gormToDomain lists the translated driver errors the repositories surface.
// A dangling foreign key reads as a missing referent to callers.
var gormToDomain = []struct {
	from error
	to   error
}{
	{gorm.ErrRecordNotFound, domain.ErrNotFound},
	{gorm.ErrDuplicatedKey, domain.ErrAlreadyExists},
	{gorm.ErrForeignKeyViolated, domain.ErrNotFound},
	{gorm.ErrCheckConstraintViolated, domain.ErrValidation},
}

// MapGormErrorToDomain returns the domain sentinel for err. It relies on the
// connection being opened with TranslateError so dialect errors arrive as
// gorm sentinels. Anything unrecognised is returned unchanged.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range gormToDomain {
		if errors.Is(err, m.from) {
			return m.to
		}
	}
	return err
}

// wrapOp runs a gorm operation and annotates failures with op while keeping
// the domain sentinel matchable.
func wrapOp(op string, fn func() error) error {
	err := MapGormErrorToDomain(fn())
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
