package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateCode is returned when a unique code is already taken
	ErrDuplicateCode = errors.New("code already exists")
)

// translateError maps gorm errors onto repository sentinels.
// Relies on gorm.Config.TranslateError for driver-level duplicate keys.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateCode
	default:
		return err
	}
}
