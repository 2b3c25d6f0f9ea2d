package services

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"serve-cafe/internal/models"
)

// PurchaseService records wallet deposits and purchases. A purchase is the
// triggering event for the commission calculator. The wallet is prepaid:
// purchases debit it and are subject to the funds check.
type PurchaseService struct {
	db          *gorm.DB
	ledger      *LedgerService
	wallets     *WalletService
	commissions *CommissionService
}

func NewPurchaseService(db *gorm.DB, ledger *LedgerService, wallets *WalletService, commissions *CommissionService) *PurchaseService {
	return &PurchaseService{
		db:          db,
		ledger:      ledger,
		wallets:     wallets,
		commissions: commissions,
	}
}

// Deposit credits a user's wallet and records the settled ledger entry.
func (s *PurchaseService) Deposit(userID uint, amount decimal.Decimal) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("deposit amount must be positive: %w", ErrValidation)
	}

	user, err := s.activeUser(userID)
	if err != nil {
		return nil, err
	}

	entry := models.Transaction{
		TransactionNature: models.TransactionNatureDeposit,
		TransactionType:   "Wallet Deposit",
		DebitCredit:       models.DebitCreditCredit,
		TransactionToID:   &user.ID,
		Amount:            amount.Round(2),
		Status:            models.TransactionStatusSettled,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.Append(tx, &entry); err != nil {
			return err
		}
		return s.wallets.ApplyEntry(tx, &entry)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Deposit: user %d credited %s (entry %d)", userID, entry.Amount, entry.ID)
	return &entry, nil
}

// RecordPurchase debits the purchaser's wallet with a settled purchase entry
// and then runs the commission calculator with that entry as the trigger.
// The debit and the full commission set are separate atomic units: a
// commission failure never unwinds a committed purchase.
func (s *PurchaseService) RecordPurchase(userID uint, amount decimal.Decimal, remark string) (*models.Transaction, []models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, fmt.Errorf("purchase amount must be positive: %w", ErrValidation)
	}

	user, err := s.activeUser(userID)
	if err != nil {
		return nil, nil, err
	}

	entry := models.Transaction{
		TransactionNature: models.TransactionNaturePurchase,
		TransactionType:   "Order Purchase",
		DebitCredit:       models.DebitCreditDebit,
		TransactionFromID: &user.ID,
		Amount:            amount.Round(2),
		Status:            models.TransactionStatusSettled,
		Remark:            remark,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.Append(tx, &entry); err != nil {
			return err
		}
		return s.wallets.ApplyEntry(tx, &entry)
	})
	if err != nil {
		return nil, nil, err
	}

	commissions, err := s.commissions.ProcessTrigger(entry.ID)
	if err != nil {
		log.Printf("Warning: commission processing failed for trigger %d: %v", entry.ID, err)
		return &entry, nil, nil
	}

	log.Printf("Purchase recorded: user %d amount %s, %d commission entries (trigger %d)",
		userID, entry.Amount, len(commissions), entry.ID)
	return &entry, commissions, nil
}

func (s *PurchaseService) activeUser(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user %d: %w", userID, ErrAccountInactive)
	}
	return &user, nil
}
