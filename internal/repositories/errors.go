package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors shared by every repository implementation. Callers match
// with errors.Is; the HTTP layer maps them to 404 and 409.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing one")
)

// mapGormErr folds GORM's translated driver errors into the package
// sentinels so callers never depend on the driver in use.
func mapGormErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}
