package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuCategory groups menu items (e.g. coffee, bakery)
type MenuCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MenuCategory) TableName() string {
	return "menu_categories"
}

// MenuItem is a priced menu entry. SellingPrice is derived from cost and
// margin when the item is created or repriced, never entered directly.
type MenuItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CategoryID    uint            `gorm:"not null;index" json:"category_id"`
	Category      *MenuCategory   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"cost_price"`
	MarginPercent decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"margin_percent"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"selling_price"`
	IsAvailable   bool            `gorm:"default:true" json:"is_available"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}
