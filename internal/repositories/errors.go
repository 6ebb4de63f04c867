package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrDuplicate is returned when an insert or update hits a unique index.
	ErrDuplicate = errors.New("duplicate record")
	// ErrMissingReference is returned when a foreign key points at a missing row.
	ErrMissingReference = errors.New("referenced record does not exist")
)

// translate maps constraint violations onto the package sentinels. GORM
// translates them for postgres when TranslateError is on; the message checks
// cover SQLite builds that surface the raw driver error.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrMissingReference
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "duplicate key value"):
		return ErrDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"), strings.Contains(msg, "violates foreign key constraint"):
		return ErrMissingReference
	}
	return err
}

// publicUser limits an embedded user to the columns safe to return.
func publicUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "profile_picture", "created_at", "updated_at")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
