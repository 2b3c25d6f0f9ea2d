package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debit/credit direction of a ledger entry
const (
	DebitCreditDebit  = 1
	DebitCreditCredit = 2
)

// Transaction statuses
const (
	TransactionStatusPending = "pending"
	TransactionStatusSettled = "settled"
	TransactionStatusFailed  = "failed"
)

// Transaction natures
const (
	TransactionNaturePurchase   = "purchase"
	TransactionNatureDeposit    = "deposit"
	TransactionNatureCommission = "commission"
	TransactionNatureWithdrawal = "withdrawal"
	TransactionNatureAdjustment = "adjustment"
)

// Transaction is a single immutable ledger entry. Once settled, only
// count_status may change; the row is never updated or deleted otherwise.
type Transaction struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Reference         string          `gorm:"uniqueIndex;size:40;not null" json:"reference"`
	TransactionNature string          `gorm:"size:30;not null;index" json:"transaction_nature"`
	TransactionType   string          `gorm:"size:50;not null;index" json:"transaction_type"`
	DebitCredit       int             `gorm:"not null" json:"debit_credit"` // 1=debit, 2=credit
	MatchingDate      time.Time       `gorm:"type:date" json:"matching_date"`
	TransactionFromID *uint           `gorm:"index" json:"transaction_from_id,omitempty"`
	TransactionFrom   *User           `gorm:"foreignKey:TransactionFromID" json:"transaction_from,omitempty"`
	TransactionToID   *uint           `gorm:"index" json:"transaction_to_id,omitempty"`
	TransactionTo     *User           `gorm:"foreignKey:TransactionToID" json:"transaction_to,omitempty"`
	TriggerID         *uint           `gorm:"index" json:"trigger_id,omitempty"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	TransactionDate   time.Time       `gorm:"index" json:"transaction_date"`
	Status            string          `gorm:"size:10;default:pending;index" json:"status"` // pending, settled, failed
	CountStatus       bool            `gorm:"default:false" json:"count_status"`
	Override          bool            `gorm:"default:false" json:"override"`
	Remark            string          `gorm:"size:255" json:"remark,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// TableName specifies the table name for Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
