package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionRate is one row of the data-driven payout policy table: the
// percentage paid to an ancestor of the given member type at the given
// referral level. Eligibility is expressed by which rows exist — free
// members are seeded with a level-1 row only, so deeper levels pay nothing
// without any special-casing in the calculator.
type CommissionRate struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	MemberType  string          `gorm:"size:10;not null;uniqueIndex:idx_member_level" json:"member_type"`
	Level       int             `gorm:"not null;uniqueIndex:idx_member_level" json:"level"`
	RatePercent decimal.Decimal `gorm:"type:decimal(6,3);not null" json:"rate_percent"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for CommissionRate model
func (CommissionRate) TableName() string {
	return "commission_rates"
}
