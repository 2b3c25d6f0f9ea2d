package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Branch is an office/outlet. Its commission_rate is a multiplier applied to
// commissions computed for purchases recorded at the branch.
type Branch struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Code           string          `gorm:"uniqueIndex;size:20;not null" json:"code"`
	Address        string          `gorm:"size:255" json:"address,omitempty"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(6,4);default:1" json:"commission_rate"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Branch model
func (Branch) TableName() string {
	return "branches"
}
