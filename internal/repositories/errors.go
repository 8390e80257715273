package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound                = errors.New("record not found")
	ErrAttemptAlreadySubmitted = errors.New("latest attempt already submitted")
)

// IsNotFoundError reports whether err means the requested record is missing.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
