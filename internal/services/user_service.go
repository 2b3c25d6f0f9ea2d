package services

import (
	"fmt"

	"gorm.io/gorm"

	"serve-cafe/internal/models"
)

// UserService handles user-related business logic
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Branch").Preload("Roles").First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByReferralCode looks a user up by their referral code
func (s *UserService) GetUserByReferralCode(code string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("referral_code = ?", code).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("referral code %q: %w", code, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// SetActive activates or deactivates an account
func (s *UserService) SetActive(userID uint, active bool) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}

// ListUsers returns a page of users
func (s *UserService) ListUsers(limit, offset int) ([]models.User, error) {
	var users []models.User
	query := s.db.Order("id")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
