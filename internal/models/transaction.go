package models

import (
	"time"
)

// Transaction types recorded in the ledger.
const (
	TxTypeBaseScore        = "base_score"
	TxTypeInviteReward     = "invite_reward"
	TxTypeTaskReward       = "task_reward"
	TxTypeSystemAdjustment = "system_adjustment"
)

// Transaction represents a single immutable $XOGS ledger entry. The sum of a
// user's transaction amounts reconciles with users.xogs_balance.
type Transaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type          string    `gorm:"size:50;not null;index" json:"type"`
	Amount        int64     `gorm:"not null" json:"amount"`
	Description   string    `gorm:"type:text" json:"description"`
	RelatedUserID *uint     `gorm:"index" json:"related_user_id,omitempty"`
	RelatedUser   *User     `gorm:"foreignKey:RelatedUserID" json:"related_user,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
