package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletBinding represents a user's bound Solana wallet
type WalletBinding struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	UserID            uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	User              *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	WalletAddress     string          `gorm:"uniqueIndex;size:255;not null" json:"wallet_address"`
	Blockchain        string          `gorm:"size:50;default:SOLANA" json:"blockchain"`
	SolBalance        decimal.Decimal `gorm:"type:decimal(18,9);default:0" json:"sol_balance"`
	IsVerified        bool            `gorm:"default:false" json:"is_verified"`
	BoundAt           time.Time       `gorm:"autoCreateTime" json:"bound_at"`
	LastBalanceUpdate *time.Time      `json:"last_balance_update,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name for WalletBinding model
func (WalletBinding) TableName() string {
	return "wallet_bindings"
}
