package repositories

import (
	"context"

	"github.com/anonto42/blog-api/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID uint) error
	GetFollowers(ctx context.Context, userID uint) ([]models.Follow, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.Follow, error)
	GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository on any GORM dialect.
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow returns ErrDuplicate when the edge already exists.
func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(follow).Error; err != nil {
		return translate(err)
	}
	return db.
		Preload("Follower", publicUser).
		Preload("Following", publicUser).
		First(follow, follow.ID).Error
}

// DeleteFollow returns gorm.ErrRecordNotFound when there is no such edge.
func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetFollowers lists the edges pointing at userID, each with the user who follows.
func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Scopes(newestFirst).
		Preload("Follower", publicUser).
		Where("following_id = ?", userID).
		Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}

// GetFollowing lists the edges leaving userID, each with the followed user.
func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Scopes(newestFirst).
		Preload("Following", publicUser).
		Where("follower_id = ?", userID).
		Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
