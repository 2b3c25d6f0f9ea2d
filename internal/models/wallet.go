package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the derived balance projection for a paid member. It is only
// mutated by applying ledger entries; balance must always reconcile against
// total_deposited - total_spent and against a full ledger replay.
type Wallet struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Balance        decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"balance"`
	TotalDeposited decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_deposited"`
	TotalSpent     decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_spent"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Wallet model
func (Wallet) TableName() string {
	return "wallets"
}
