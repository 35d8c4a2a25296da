package models

import (
	"time"
)

// InviteCode represents a shareable invite code owned by a user
type InviteCode struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Code         string     `gorm:"uniqueIndex;not null;size:50" json:"code"`
	UsedByUserID *uint      `json:"used_by_user_id,omitempty"`
	UsedByUser   *User      `gorm:"foreignKey:UsedByUserID" json:"used_by_user,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
}

// TableName specifies the table name for InviteCode model
func (InviteCode) TableName() string {
	return "invite_codes"
}

// InviteRecord links an inviter to an invitee. Created exactly once per
// accepted invite; the unique index on invitee_id is the guard that makes
// invite crediting exactly-once.
type InviteRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	InviterID    uint      `gorm:"not null;index" json:"inviter_id"`
	Inviter      *User     `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
	InviteeID    uint      `gorm:"uniqueIndex;not null" json:"invitee_id"`
	Invitee      *User     `gorm:"foreignKey:InviteeID" json:"invitee,omitempty"`
	InviteCodeID *uint     `gorm:"index" json:"invite_code_id,omitempty"`
	InviteCode   *InviteCode `gorm:"foreignKey:InviteCodeID" json:"invite_code,omitempty"`
	// RewardAmount is the $XOGS credited to the inviter at acceptance time,
	// snapshotted rather than recomputed from the invitee's live score.
	RewardAmount int64     `gorm:"not null" json:"reward_amount"`
	AcceptedAt   time.Time `gorm:"autoCreateTime" json:"accepted_at"`
}

// TableName specifies the table name for InviteRecord model
func (InviteRecord) TableName() string {
	return "invite_records"
}
