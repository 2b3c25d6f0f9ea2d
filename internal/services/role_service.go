package services

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"serve-cafe/internal/models"
)

// Capabilities is the closed set of permission tags. Wildcard grants are
// expanded against this list when a role is defined, so authorization
// checks never interpret patterns.
var Capabilities = []string{
	"users.view",
	"users.manage",
	"roles.manage",
	"branches.manage",
	"packages.manage",
	"rates.manage",
	"menu.view",
	"menu.manage",
	"ledger.view",
	"ledger.settle",
	"wallets.view",
	"withdrawals.view",
	"reports.view",
}

// RoleService manages roles and permission checks.
type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

// ExpandPermissions resolves wildcard patterns into the closed capability
// set. "*" grants everything; "menu.*" grants every capability under the
// menu prefix; anything else must match a capability exactly.
func ExpandPermissions(patterns []string) ([]string, error) {
	granted := make(map[string]bool)

	for _, pattern := range patterns {
		switch {
		case pattern == "*":
			for _, cap := range Capabilities {
				granted[cap] = true
			}
		case strings.HasSuffix(pattern, ".*"):
			prefix := strings.TrimSuffix(pattern, "*")
			matched := false
			for _, cap := range Capabilities {
				if strings.HasPrefix(cap, prefix) {
					granted[cap] = true
					matched = true
				}
			}
			if !matched {
				return nil, fmt.Errorf("permission pattern %q matches nothing: %w", pattern, ErrValidation)
			}
		default:
			found := false
			for _, cap := range Capabilities {
				if cap == pattern {
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("unknown permission %q: %w", pattern, ErrValidation)
			}
			granted[pattern] = true
		}
	}

	expanded := make([]string, 0, len(granted))
	for cap := range granted {
		expanded = append(expanded, cap)
	}
	sort.Strings(expanded)
	return expanded, nil
}

// CreateRole defines a role with its permissions expanded up front.
func (s *RoleService) CreateRole(name, userType string, patterns []string) (*models.Role, error) {
	switch userType {
	case models.UserTypeHeadOffice, models.UserTypeBranchOffice, models.UserTypeMember:
	default:
		return nil, fmt.Errorf("unknown user type %q: %w", userType, ErrValidation)
	}

	permissions, err := ExpandPermissions(patterns)
	if err != nil {
		return nil, err
	}

	role := models.Role{
		Name:        name,
		UserType:    userType,
		Permissions: permissions,
	}
	if err := s.db.Create(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return &role, nil
}

// AssignRole attaches a role to a user.
func (s *RoleService) AssignRole(userID, roleID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return err
	}

	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("role %d: %w", roleID, ErrNotFound)
		}
		return err
	}

	return s.db.Model(&user).Association("Roles").Append(&role)
}

// HasPermission checks whether any of the user's roles grants the
// capability. Plain set membership, no pattern logic.
func (s *RoleService) HasPermission(userID uint, permission string) (bool, error) {
	var user models.User
	if err := s.db.Preload("Roles").First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return false, err
	}

	for _, role := range user.Roles {
		for _, granted := range role.Permissions {
			if granted == permission {
				return true, nil
			}
		}
	}
	return false, nil
}

// ListRoles returns all defined roles.
func (s *RoleService) ListRoles() ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Order("name").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
