package repositories

import (
	"context"

	"github.com/anonto42/blog-api/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostDetail(ctx context.Context, id uint) (*models.Post, error)
	GetPostsByUser(ctx context.Context, userID uint) ([]models.Post, error)
	GetFeed(ctx context.Context, authorIDs []uint) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	SetPostPicture(ctx context.Context, id uint, name string) error
	DeletePost(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
}

// PostgresPostRepository implements PostRepository on any GORM dialect.
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// withDiscussion preloads the author, the comments with their authors and
// the likes with theirs.
func withDiscussion(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", publicUser).
		Preload("Comments", newestFirst).
		Preload("Comments.User", publicUser).
		Preload("Likes", newestFirst).
		Preload("Likes.User", publicUser)
}

// CreatePost inserts the post and reloads it with its author.
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(post).Error; err != nil {
		return translate(err)
	}
	return db.Preload("User", publicUser).First(post, post.ID).Error
}

// GetPostByID loads the bare row.
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) GetPostDetail(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Scopes(withDiscussion).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) GetPostsByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Scopes(withDiscussion, newestFirst).
		Where("user_id = ?", userID).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetFeed returns the posts written by any of authorIDs, newest first. An
// empty author set yields an empty feed without a query.
func (r *PostgresPostRepository) GetFeed(ctx context.Context, authorIDs []uint) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Scopes(withDiscussion, newestFirst).
		Where("user_id IN ?", authorIDs).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost writes title and content and reloads the author.
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(post).Select("title", "content", "updated_at").Updates(post).Error; err != nil {
		return err
	}
	return db.Preload("User", publicUser).First(post, post.ID).Error
}

func (r *PostgresPostRepository) SetPostPicture(ctx context.Context, id uint, name string) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("post_picture", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePost removes the post together with its comments and likes.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresPostRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
