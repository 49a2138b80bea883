package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		in   error
		want error
	}{
		"duplicate key":         {gorm.ErrDuplicatedKey, domain.ErrAlreadyExists},
		"record not found":      {gorm.ErrRecordNotFound, domain.ErrNotFound},
		"dangling foreign key":  {gorm.ErrForeignKeyViolated, domain.ErrNotFound},
		"check constraint":      {gorm.ErrCheckConstraintViolated, domain.ErrValidation},
		"joined with other err": {errors.Join(errors.New("outer"), gorm.ErrDuplicatedKey), domain.ErrAlreadyExists},
		"wrapped":               {fmt.Errorf("load donation: %w", gorm.ErrRecordNotFound), domain.ErrNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, MapGormErrorToDomain(tc.in), tc.want)
		})
	}

	assert.NoError(t, MapGormErrorToDomain(nil))
	reset := errors.New("connection reset")
	assert.Same(t, reset, MapGormErrorToDomain(reset))
}

func TestWrapOp(t *testing.T) {
	t.Parallel()

	assert.NoError(t, wrapOp("create donation", func() error { return nil }))

	err := wrapOp("create donor profile", func() error { return gorm.ErrDuplicatedKey })
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.EqualError(t, err, "create donor profile: resource already exists")

	err = wrapOp("create document", func() error { return errors.New("disk full") })
	assert.EqualError(t, err, "create document: disk full")
}
