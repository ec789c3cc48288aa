// Package repositories holds the gorm-backed data access for every model.
// Each repository can be rebound to a transaction with WithTx.
package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/apperror"
)

// translate maps gorm's not-found to the business NotFound and wraps the rest.
func translate(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(entity, id)
	}
	return fmt.Errorf("repositories: %s: %w", entity, err)
}

// unique maps a unique-key violation to Duplicate on field and wraps the rest.
func unique(err error, op, field, value string) error {
	if isDuplicateKey(err) {
		return apperror.Duplicate(field, value)
	}
	return wrap(err, op)
}

// isDuplicateKey recognises gorm's translated error and, for drivers without
// a translator, the raw unique-violation messages.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}

func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("repositories: %s: %w", op, err)
}
