package repositories

import (
	"github.com/anonto42/blog-api/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema, including foreign keys with
// cascades, the unique indexes and the no-self-follow check.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
	)
}
