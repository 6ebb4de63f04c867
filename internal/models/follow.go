package models

import "time"

// Follow is a directed edge: Follower follows Following.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"followerId" gorm:"not null;index;uniqueIndex:idx_follows_pair;check:chk_follows_no_self,follower_id <> following_id"`
	FollowingID uint      `json:"followingId" gorm:"not null;index;uniqueIndex:idx_follows_pair"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Follower  *User `json:"follower,omitempty" gorm:"foreignKey:FollowerID"`
	Following *User `json:"following,omitempty" gorm:"foreignKey:FollowingID"`
}

// FollowRequest is shared by follow and unfollow.
type FollowRequest struct {
	FollowerID  uint `json:"followerId" validate:"required"`
	FollowingID uint `json:"followingId" validate:"required"`
}
