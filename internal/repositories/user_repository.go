package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/blog-api/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserProfile(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByName(ctx context.Context, name string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	SearchUsersByEmail(ctx context.Context, fragment string) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SetProfilePicture(ctx context.Context, id uint, name string) error
	DeleteUser(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
}

// PostgresUserRepository implements UserRepository on any GORM dialect.
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser returns ErrDuplicate when the email is taken.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// GetUserByID loads the full row, password hash included.
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserProfile loads a user with their posts (comments and likes), the
// edges of users following them and the edges of users they follow.
func (r *PostgresUserRepository) GetUserProfile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Scopes(publicUser).
		Preload("Posts", newestFirst).
		Preload("Posts.Comments", newestFirst).
		Preload("Posts.Likes").
		Preload("Followers", newestFirst).
		Preload("Followers.Follower", publicUser).
		Preload("Following", newestFirst).
		Preload("Following.Following", publicUser).
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail loads the full row; login needs the hash.
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Scopes(publicUser).Where("name = ?", name).Order("id").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Scopes(publicUser).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchUsersByEmail matches email addresses containing fragment literally;
// LIKE wildcards in fragment match only themselves.
func (r *PostgresUserRepository) SearchUsersByEmail(ctx context.Context, fragment string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Scopes(publicUser).
		Where(`LOWER(email) LIKE LOWER(?) ESCAPE '\'`, "%"+likeEscaper.Replace(fragment)+"%").
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser persists name, email and password hash.
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select("name", "email", "password", "updated_at").
		Updates(user).Error
	return translate(err)
}

func (r *PostgresUserRepository) SetProfilePicture(ctx context.Context, id uint, name string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("profile_picture", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteUser removes the row; posts, comments, likes and follow edges go with
// it through the foreign key cascades.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
