package models

import "time"

// Comment is attached to one post and authored by one user.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"not null"`
	UserID    uint      `json:"userId" gorm:"not null;index"`
	PostID    uint      `json:"postId" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User *User `json:"user,omitempty"`
	Post *Post `json:"post,omitempty"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
	PostID  uint   `json:"postId" validate:"required"`
	UserID  uint   `json:"userId" validate:"required"`
}
