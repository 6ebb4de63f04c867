package models

import "time"

// Like marks a user's approval of a post. The (user, post) pair is unique.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;index;uniqueIndex:idx_likes_user_post"`
	PostID    uint      `json:"postId" gorm:"not null;index;uniqueIndex:idx_likes_user_post"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User *User `json:"user,omitempty"`
	Post *Post `json:"post,omitempty"`
}

type CreateLikeRequest struct {
	UserID uint `json:"userId" validate:"required"`
	PostID uint `json:"postId" validate:"required"`
}
