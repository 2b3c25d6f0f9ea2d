package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"serve-cafe/internal/models"
)

// MembershipService upgrades free members to paid via a package offer. The
// package price is paid from the prepaid wallet and the purchase entry is a
// commission trigger like any other purchase.
type MembershipService struct {
	db          *gorm.DB
	ledger      *LedgerService
	wallets     *WalletService
	commissions *CommissionService
}

func NewMembershipService(db *gorm.DB, ledger *LedgerService, wallets *WalletService, commissions *CommissionService) *MembershipService {
	return &MembershipService{
		db:          db,
		ledger:      ledger,
		wallets:     wallets,
		commissions: commissions,
	}
}

// ListActiveOffers returns package offers purchasable right now.
func (s *MembershipService) ListActiveOffers() ([]models.PackageOffer, error) {
	now := time.Now().Truncate(24 * time.Hour)
	var offers []models.PackageOffer
	if err := s.db.
		Where("is_active = ? AND valid_from_date <= ? AND valid_to_date >= ?", true, now, now).
		Order("price ASC").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// PurchasePackage pays for the offer from the user's wallet, upgrades the
// member to paid and runs the commission calculator on the purchase.
func (s *MembershipService) PurchasePackage(userID, offerID uint) (*models.Transaction, error) {
	var entry models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("user %d: %w", userID, ErrNotFound)
			}
			return err
		}
		if !user.IsActive {
			return fmt.Errorf("user %d: %w", userID, ErrAccountInactive)
		}

		var offer models.PackageOffer
		if err := tx.First(&offer, offerID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("package offer %d: %w", offerID, ErrNotFound)
			}
			return err
		}
		if !offer.IsValidAt(time.Now()) {
			return fmt.Errorf("package offer %q is not currently valid: %w", offer.Name, ErrValidation)
		}

		entry = models.Transaction{
			TransactionNature: models.TransactionNaturePurchase,
			TransactionType:   "Membership Package",
			DebitCredit:       models.DebitCreditDebit,
			TransactionFromID: &user.ID,
			Amount:            offer.Price,
			Status:            models.TransactionStatusSettled,
			Remark:            offer.Name,
		}

		if err := s.ledger.Append(tx, &entry); err != nil {
			return err
		}
		if err := s.wallets.ApplyEntry(tx, &entry); err != nil {
			return err
		}

		if user.MemberType != models.MemberTypePaid {
			if err := tx.Model(&user).Update("member_type", models.MemberTypePaid).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.commissions.ProcessTrigger(entry.ID); err != nil {
		log.Printf("Warning: commission processing failed for membership trigger %d: %v", entry.ID, err)
	}

	log.Printf("Membership package purchased: user %d offer %d amount %s", userID, offerID, entry.Amount)
	return &entry, nil
}
