package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// uniqueViolationMarkers are driver messages for unique constraint failures
// that reach us untranslated.
var uniqueViolationMarkers = []string{
	// postgres 23505
	"duplicate key value violates unique constraint",
	// mysql
	"Error 1062",
	// sqlite 2067
	"UNIQUE constraint failed",
}

// IsDuplicateKeyErr reports whether err is a unique constraint violation on
// any of the supported dialects.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	for _, marker := range uniqueViolationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
