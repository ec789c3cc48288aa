package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/apperror"
)

func TestKindOfThroughWrapping(t *testing.T) {
	err := fmt.Errorf("orders: place: %w", apperror.InsufficientStock("Widget", 6, 5))

	assert.Equal(t, apperror.KindInsufficientStock, apperror.KindOf(err))
	assert.True(t, errors.Is(err, apperror.ErrInsufficientStock))
	assert.False(t, errors.Is(err, apperror.ErrNotFound))

	e, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, "Widget", e.Subject)
	assert.Contains(t, e.Error(), "Widget")
}

func TestPlainErrorsAreUnexpected(t *testing.T) {
	assert.Equal(t, apperror.KindUnexpected, apperror.KindOf(errors.New("boom")))
	assert.Equal(t, apperror.KindUnexpected, apperror.KindOf(apperror.Unexpected("db", errors.New("boom"))))
}

func TestConstructors(t *testing.T) {
	dup := apperror.Duplicate("email", "a@b.c")
	assert.Equal(t, apperror.KindDuplicate, dup.Kind)
	assert.Contains(t, dup.Fields, "email")

	inv := apperror.Invalid("quantity", "quantity must be positive")
	assert.Equal(t, "quantity must be positive", inv.Fields["quantity"])

	assert.Equal(t, "user 7 not found", apperror.NotFound("user", 7).Error())
	assert.Equal(t, "forbidden", apperror.Forbidden("").Error())
	assert.Equal(t, "not_found", apperror.KindNotFound.String())
}
