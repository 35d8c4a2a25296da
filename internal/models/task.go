package models

import (
	"time"
)

// Task keys for the built-in task catalog.
const (
	TaskDailyCheckin   = "daily_checkin"
	TaskFollowOfficial = "follow_official"
	TaskPublishTweet   = "publish_tweet"
)

// Task represents a claimable reward task
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"uniqueIndex;size:50;not null" json:"key"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Reward      int64     `gorm:"not null" json:"reward"`
	Repeatable  bool      `gorm:"default:false" json:"repeatable"`
	// CooldownHours gates repeatable tasks; ignored for one-shot tasks.
	CooldownHours int       `gorm:"default:0" json:"cooldown_hours"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for Task model
func (Task) TableName() string {
	return "tasks"
}

// TaskCompletion records a claimed task reward
type TaskCompletion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_task_completions_user_task" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TaskID    uint      `gorm:"not null;index:idx_task_completions_user_task" json:"task_id"`
	Task      *Task     `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Reward    int64     `gorm:"not null" json:"reward"`
	ClaimedAt time.Time `gorm:"autoCreateTime;index" json:"claimed_at"`
}

// TableName specifies the table name for TaskCompletion model
func (TaskCompletion) TableName() string {
	return "task_completions"
}
