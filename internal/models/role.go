package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Staff/member user types for roles
const (
	UserTypeHeadOffice   = "headoffice"
	UserTypeBranchOffice = "branchoffice"
	UserTypeMember       = "member"
)

// StringList stores a JSON-encoded list of strings, portable across
// postgres and sqlite.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return nil
}

// Role holds a named permission set. Permissions are stored fully expanded:
// wildcard grants are resolved when the role is defined, so authorization
// checks are plain set membership.
type Role struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"uniqueIndex;size:50;not null" json:"name"`
	UserType    string     `gorm:"size:20;not null;index" json:"user_type"` // headoffice, branchoffice, member
	Permissions StringList `gorm:"type:text" json:"permissions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Role model
func (Role) TableName() string {
	return "roles"
}
