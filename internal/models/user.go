package models

import (
	"time"
)

// Member types
const (
	MemberTypeFree = "free"
	MemberTypePaid = "paid"
)

// User represents a member or staff account
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:150;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	ReferralCode string    `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	ReferredBy   *uint     `gorm:"index" json:"referred_by,omitempty"`
	Referrer     *User     `gorm:"foreignKey:ReferredBy" json:"referrer,omitempty"`
	MemberType   string    `gorm:"size:10;default:free;not null" json:"member_type"` // free, paid
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	BranchID     *uint     `gorm:"index" json:"branch_id,omitempty"`
	Branch       *Branch   `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Roles        []Role    `gorm:"many2many:user_roles" json:"roles,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
