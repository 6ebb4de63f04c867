package repositories

import (
	"context"

	"github.com/anonto42/blog-api/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	GetLikeByID(ctx context.Context, id uint) (*models.Like, error)
	GetLikesByPostID(ctx context.Context, postID uint) ([]models.Like, error)
	GetLikes(ctx context.Context) ([]models.Like, error)
	DeleteLike(ctx context.Context, id uint) error
}

// PostgresLikeRepository implements LikeRepository on any GORM dialect.
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike relies on idx_likes_user_post: a second like of the same post by
// the same user returns ErrDuplicate and leaves the table unchanged.
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(like).Error; err != nil {
		return translate(err)
	}
	return db.Preload("User", publicUser).Preload("Post").First(like, like.ID).Error
}

func (r *PostgresLikeRepository) GetLikeByID(ctx context.Context, id uint) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).First(&like, id).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

// GetLikesByPostID retrieves all likes for a specific post
func (r *PostgresLikeRepository) GetLikesByPostID(ctx context.Context, postID uint) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).
		Scopes(newestFirst).
		Preload("User", publicUser).
		Where("post_id = ?", postID).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

func (r *PostgresLikeRepository) GetLikes(ctx context.Context) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).
		Scopes(newestFirst).
		Preload("User", publicUser).
		Preload("Post").
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Like{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
