package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackageOffer is a priced membership package with a validity window. It is a
// read-only input to the membership upgrade flow.
type PackageOffer struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
	ValidFromDate time.Time       `gorm:"type:date;not null" json:"valid_from_date"`
	ValidToDate   time.Time       `gorm:"type:date;not null" json:"valid_to_date"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for PackageOffer model
func (PackageOffer) TableName() string {
	return "package_offers"
}

// IsValidAt reports whether the offer can be purchased at the given time.
func (p *PackageOffer) IsValidAt(t time.Time) bool {
	day := t.Truncate(24 * time.Hour)
	return p.IsActive && !day.Before(p.ValidFromDate) && !day.After(p.ValidToDate)
}
