package services

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"serve-cafe/internal/models"
)

// AuthService handles registration and login
type AuthService struct {
	db        *gorm.DB
	referrals *ReferralService
}

func NewAuthService(db *gorm.DB, referrals *ReferralService) *AuthService {
	return &AuthService{db: db, referrals: referrals}
}

// Register creates a new free member with a fresh referral code. When a
// referral code is supplied the new user is attached to the referrer's
// chain; a bad code fails the registration rather than silently dropping
// the referral.
func (s *AuthService) Register(name, email, password, referralCode string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required: %w", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", ErrValidation)
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("email %s already registered: %w", email, ErrValidation)
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := s.uniqueReferralCode()
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		ReferralCode: code,
		MemberType:   models.MemberTypeFree,
		IsActive:     true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if referralCode != "" {
		if err := s.referrals.ApplyReferralCode(user.ID, referralCode); err != nil {
			return nil, err
		}
	}

	log.Printf("New user registered: %s (ID: %d)", email, user.ID)
	return &user, nil
}

// Login verifies credentials and returns the user.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invalid credentials: %w", ErrValidation)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("user %d: %w", user.ID, ErrAccountInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrValidation)
	}

	log.Printf("User logged in: %s (ID: %d)", email, user.ID)
	return &user, nil
}

// uniqueReferralCode generates a referral code not yet taken.
func (s *AuthService) uniqueReferralCode() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := s.referrals.GenerateReferralCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := s.db.Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique referral code")
}
