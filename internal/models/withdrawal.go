package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal request statuses
const (
	WithdrawalStatusRequested = "requested"
	WithdrawalStatusSettled   = "settled"
	WithdrawalStatusRejected  = "rejected"
)

// WithdrawalRequest tracks a member cash-out through its state machine:
// requested -> settled (debit entry created and applied) or
// requested -> rejected (reason recorded, wallet untouched).
type WithdrawalRequest struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Reference     string          `gorm:"uniqueIndex;size:40;not null" json:"reference"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status        string          `gorm:"size:10;default:requested;index" json:"status"`
	RejectReason  string          `gorm:"size:100" json:"reject_reason,omitempty"`
	TransactionID *uint           `gorm:"index" json:"transaction_id,omitempty"`
	Transaction   *Transaction    `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	SettledAt     *time.Time      `json:"settled_at,omitempty"`
}

// TableName specifies the table name for WithdrawalRequest model
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
