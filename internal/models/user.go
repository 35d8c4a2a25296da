package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TwitterID        string     `gorm:"uniqueIndex;not null" json:"twitter_id"`
	TwitterUsername  string     `gorm:"uniqueIndex;not null" json:"twitter_username"`
	DisplayName      string     `json:"display_name"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	FollowersCount   int        `gorm:"default:0" json:"followers_count"`
	FriendsCount     int        `gorm:"default:0" json:"friends_count"`
	StatusesCount    int        `gorm:"default:0" json:"statuses_count"`
	Verified         bool       `gorm:"default:false" json:"verified"`
	TwitterCreatedAt time.Time  `json:"twitter_created_at"`
	AIScore          int        `gorm:"default:0" json:"ai_score"`
	// LastCreditedScore is the AI score watermark already paid out as a
	// base_score reward; base crediting only pays the positive delta over it.
	LastCreditedScore int   `gorm:"default:0" json:"-"`
	XogsBalance       int64 `gorm:"default:0" json:"xogs_balance"`
	InviterID        *uint      `gorm:"index" json:"inviter_id,omitempty"`
	Inviter          *User      `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
	LastRefreshedAt  *time.Time `json:"last_refreshed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
