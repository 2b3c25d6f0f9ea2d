package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralStats holds aggregated referral figures for a referrer. Derived
// data: it can be recalculated at any time from users and the ledger.
type ReferralStats struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	UserID                uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	User                  *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TotalReferrals        int             `gorm:"default:0" json:"total_referrals"`
	ActiveReferrals       int             `gorm:"default:0" json:"active_referrals"`
	TotalCommissionEarned decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_commission_earned"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (ReferralStats) TableName() string {
	return "referral_stats"
}
