package repositories

import (
	"context"

	"github.com/anonto42/blog-api/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error)
	GetComments(ctx context.Context) ([]models.Comment, error)
}

// PostgresCommentRepository implements CommentRepository on any GORM dialect.
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment inserts the comment and reloads it with author and post.
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(comment).Error; err != nil {
		return translate(err)
	}
	return db.Preload("User", publicUser).Preload("Post").First(comment, comment.ID).Error
}

func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Scopes(newestFirst).
		Preload("User", publicUser).
		Where("post_id = ?", postID).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *PostgresCommentRepository) GetComments(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Scopes(newestFirst).
		Preload("User", publicUser).
		Preload("Post").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
