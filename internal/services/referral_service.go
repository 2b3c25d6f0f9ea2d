package services

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"
	"serve-cafe/internal/models"

	"github.com/shopspring/decimal"
)

// cycleWalkLimit bounds the ancestor walk during cycle checks so corrupt
// data can never loop the request.
const cycleWalkLimit = 1000

// ReferralService owns the referral graph: code issuing, ancestor lookup and
// the acyclicity guarantee. The graph is stored as users.referred_by, so all
// traversal is repeated parent lookups.
type ReferralService struct {
	db *gorm.DB
	mu sync.Mutex
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{
		db: db,
	}
}

// GenerateReferralCode generates a unique referral code string
func (s *ReferralService) GenerateReferralCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b)[:8], nil
}

// GetAncestors walks referred_by pointers from the given user upward and
// returns the chain parent-first: index 0 is the direct referrer (level 1).
// The walk is iterative and stops at maxDepth or when the chain ends.
func (s *ReferralService) GetAncestors(userID uint, maxDepth int) ([]models.User, error) {
	return s.getAncestorsTx(s.db, userID, maxDepth)
}

func (s *ReferralService) getAncestorsTx(tx *gorm.DB, userID uint, maxDepth int) ([]models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	ancestors := make([]models.User, 0, maxDepth)
	current := user.ReferredBy

	for depth := 0; depth < maxDepth && current != nil; depth++ {
		var parent models.User
		if err := tx.First(&parent, *current).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				// Dangling referred_by pointer ends the chain.
				break
			}
			return nil, err
		}
		ancestors = append(ancestors, parent)
		current = parent.ReferredBy
	}

	return ancestors, nil
}

// WouldCreateCycle reports whether setting childID's referrer to
// proposedParentID would make the child its own ancestor. It must run inside
// the same transaction as the write it guards.
func (s *ReferralService) WouldCreateCycle(tx *gorm.DB, childID, proposedParentID uint) (bool, error) {
	if childID == proposedParentID {
		return true, nil
	}

	current := &proposedParentID
	for steps := 0; current != nil; steps++ {
		if steps >= cycleWalkLimit {
			return true, fmt.Errorf("referral chain exceeds %d links: %w", cycleWalkLimit, ErrCyclicReferral)
		}
		if *current == childID {
			return true, nil
		}
		var parent models.User
		if err := tx.Select("id", "referred_by").First(&parent, *current).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return false, nil
			}
			return false, err
		}
		current = parent.ReferredBy
	}

	return false, nil
}

// ApplyReferralCode sets the referrer for a user that does not have one yet.
func (s *ReferralService) ApplyReferralCode(userID uint, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("user %d: %w", userID, ErrNotFound)
			}
			return err
		}

		if user.ReferredBy != nil {
			return fmt.Errorf("user already has a referrer: %w", ErrValidation)
		}

		return s.setReferrer(tx, &user, code)
	})
}

// ChangeReferral re-assigns a user's referrer to the owner of the given
// code. The acyclicity check is re-run against the new parent.
func (s *ReferralService) ChangeReferral(userID uint, newCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("user %d: %w", userID, ErrNotFound)
			}
			return err
		}

		return s.setReferrer(tx, &user, newCode)
	})
}

// setReferrer resolves the referral code and writes referred_by after the
// cycle check passes. Runs inside the caller's transaction.
func (s *ReferralService) setReferrer(tx *gorm.DB, user *models.User, code string) error {
	var referrer models.User
	if err := tx.Where("referral_code = ?", code).First(&referrer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("invalid referral code %q: %w", code, ErrValidation)
		}
		return err
	}

	if referrer.ID == user.ID {
		return fmt.Errorf("cannot use your own referral code: %w", ErrCyclicReferral)
	}

	cyclic, err := s.WouldCreateCycle(tx, user.ID, referrer.ID)
	if err != nil {
		return err
	}
	if cyclic {
		return fmt.Errorf("user %d is an ancestor of %d: %w", user.ID, referrer.ID, ErrCyclicReferral)
	}

	previous := user.ReferredBy

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
		Update("referred_by", referrer.ID).Error; err != nil {
		return err
	}

	if err := s.recalculateStatsTx(tx, referrer.ID); err != nil {
		log.Printf("Warning: failed to update referral stats for user %d: %v", referrer.ID, err)
	}

	// the user no longer counts toward the old referrer
	if previous != nil && *previous != referrer.ID {
		if err := s.recalculateStatsTx(tx, *previous); err != nil {
			log.Printf("Warning: failed to update referral stats for user %d: %v", *previous, err)
		}
	}

	log.Printf("Referral applied: user %d referred by user %d (code %s)", user.ID, referrer.ID, code)
	return nil
}

// GetDirectReferrals returns the users directly referred by a user
func (s *ReferralService) GetDirectReferrals(userID uint) ([]models.User, error) {
	var referrals []models.User
	if err := s.db.Where("referred_by = ?", userID).Order("id").Find(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}

// GetReferralStats returns referral statistics for a user, creating an
// empty row on first access.
func (s *ReferralService) GetReferralStats(userID uint) (*models.ReferralStats, error) {
	var stats models.ReferralStats
	result := s.db.Where("user_id = ?", userID).First(&stats)

	if result.Error == gorm.ErrRecordNotFound {
		stats = models.ReferralStats{
			UserID:                userID,
			TotalCommissionEarned: decimal.Zero,
		}
		if err := s.db.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &stats, nil
}

// RecalculateReferralStats rebuilds a referrer's stats from the users table
// and the settled commission ledger.
func (s *ReferralService) RecalculateReferralStats(userID uint) error {
	return s.recalculateStatsTx(s.db, userID)
}

func (s *ReferralService) recalculateStatsTx(tx *gorm.DB, userID uint) error {
	var totalReferrals int64
	if err := tx.Model(&models.User{}).Where("referred_by = ?", userID).
		Count(&totalReferrals).Error; err != nil {
		return err
	}

	var activeReferrals int64
	if err := tx.Model(&models.User{}).Where("referred_by = ? AND is_active = ?", userID, true).
		Count(&activeReferrals).Error; err != nil {
		return err
	}

	var earned decimal.Decimal
	row := tx.Model(&models.Transaction{}).
		Where("transaction_to_id = ? AND transaction_nature = ? AND status = ?",
			userID, models.TransactionNatureCommission, models.TransactionStatusSettled).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&earned); err != nil {
		earned = decimal.Zero
	}

	var stats models.ReferralStats
	result := tx.Where("user_id = ?", userID).First(&stats)

	if result.Error == gorm.ErrRecordNotFound {
		stats = models.ReferralStats{
			UserID:                userID,
			TotalReferrals:        int(totalReferrals),
			ActiveReferrals:       int(activeReferrals),
			TotalCommissionEarned: earned,
		}
		return tx.Create(&stats).Error
	}

	if result.Error != nil {
		return result.Error
	}

	return tx.Model(&stats).Updates(map[string]interface{}{
		"total_referrals":         totalReferrals,
		"active_referrals":        activeReferrals,
		"total_commission_earned": earned,
		"updated_at":              time.Now(),
	}).Error
}
