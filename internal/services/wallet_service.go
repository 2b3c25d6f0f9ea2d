package services

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"serve-cafe/internal/models"
)

// WalletService maintains the per-user balance projection over the ledger.
// The incremental path (ApplyEntry) and the replay path (Rebuild) must
// always agree; Reconcile checks that invariant.
type WalletService struct {
	db *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// GetWallet returns a user's wallet
func (s *WalletService) GetWallet(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("wallet for user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &wallet, nil
}

// GetBalance returns the current projected balance for a user. Users without
// a wallet have a zero balance.
func (s *WalletService) GetBalance(userID uint) (decimal.Decimal, error) {
	wallet, err := s.GetWallet(userID)
	if err != nil {
		if IsNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

// getOrCreateWallet loads the wallet row under a FOR UPDATE lock, creating
// it on first use.
func (s *WalletService) getOrCreateWallet(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&wallet).Error

	if err == gorm.ErrRecordNotFound {
		wallet = models.Wallet{
			UserID:         userID,
			Balance:        decimal.Zero,
			TotalDeposited: decimal.Zero,
			TotalSpent:     decimal.Zero,
		}
		if err := tx.Create(&wallet).Error; err != nil {
			return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
		}
		return &wallet, nil
	}

	if err != nil {
		return nil, err
	}

	return &wallet, nil
}

// EnsureWallet creates the wallet row for a user if it does not exist yet.
func (s *WalletService) EnsureWallet(userID uint) (*models.Wallet, error) {
	var wallet *models.Wallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		wallet, txErr = s.getOrCreateWallet(tx, userID)
		return txErr
	})
	return wallet, err
}

// ApplyEntry applies one ledger entry to the affected wallet inside the
// caller's transaction. A credit to transaction_to_id raises balance and
// total_deposited; a debit from transaction_from_id lowers balance and
// raises total_spent. A debit that would go negative fails with
// ErrInsufficientFunds unless the entry carries the override flag.
func (s *WalletService) ApplyEntry(tx *gorm.DB, entry *models.Transaction) error {
	switch entry.DebitCredit {
	case models.DebitCreditCredit:
		if entry.TransactionToID == nil {
			return fmt.Errorf("credit entry %d has no beneficiary: %w", entry.ID, ErrValidation)
		}
		wallet, err := s.getOrCreateWallet(tx, *entry.TransactionToID)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"balance":         wallet.Balance.Add(entry.Amount),
			"total_deposited": wallet.TotalDeposited.Add(entry.Amount),
		}
		return tx.Model(wallet).Updates(updates).Error

	case models.DebitCreditDebit:
		if entry.TransactionFromID == nil {
			return fmt.Errorf("debit entry %d has no payer: %w", entry.ID, ErrValidation)
		}
		wallet, err := s.getOrCreateWallet(tx, *entry.TransactionFromID)
		if err != nil {
			return err
		}
		newBalance := wallet.Balance.Sub(entry.Amount)
		if newBalance.IsNegative() && !entry.Override {
			return fmt.Errorf("debit %s exceeds balance %s for user %d: %w",
				entry.Amount, wallet.Balance, wallet.UserID, ErrInsufficientFunds)
		}
		updates := map[string]interface{}{
			"balance":     newBalance,
			"total_spent": wallet.TotalSpent.Add(entry.Amount),
		}
		return tx.Model(wallet).Updates(updates).Error

	default:
		return fmt.Errorf("entry %d has invalid debit_credit %d: %w", entry.ID, entry.DebitCredit, ErrValidation)
	}
}

// Rebuild replays every settled ledger entry for a user from a zero wallet
// and returns the resulting figures without touching the stored projection.
// This is the canonical reconciliation procedure.
func (s *WalletService) Rebuild(userID uint) (balance, deposited, spent decimal.Decimal, err error) {
	balance, deposited, spent = decimal.Zero, decimal.Zero, decimal.Zero

	var entries []models.Transaction
	if err = s.db.
		Where("(transaction_from_id = ? OR transaction_to_id = ?) AND status = ?",
			userID, userID, models.TransactionStatusSettled).
		Order("transaction_date ASC, id ASC").
		Find(&entries).Error; err != nil {
		return
	}

	for _, entry := range entries {
		switch {
		case entry.DebitCredit == models.DebitCreditCredit &&
			entry.TransactionToID != nil && *entry.TransactionToID == userID:
			balance = balance.Add(entry.Amount)
			deposited = deposited.Add(entry.Amount)
		case entry.DebitCredit == models.DebitCreditDebit &&
			entry.TransactionFromID != nil && *entry.TransactionFromID == userID:
			balance = balance.Sub(entry.Amount)
			spent = spent.Add(entry.Amount)
		}
	}

	return
}

// Reconcile compares the stored projection against a full replay and
// returns an error when they diverge.
func (s *WalletService) Reconcile(userID uint) error {
	wallet, err := s.GetWallet(userID)
	if err != nil {
		return err
	}

	balance, deposited, spent, err := s.Rebuild(userID)
	if err != nil {
		return err
	}

	if !wallet.Balance.Equal(balance) || !wallet.TotalDeposited.Equal(deposited) || !wallet.TotalSpent.Equal(spent) {
		return fmt.Errorf("wallet %d drift: projected balance=%s replay=%s: %w",
			wallet.ID, wallet.Balance, balance, ErrValidation)
	}

	log.Printf("Wallet %d reconciled: balance=%s deposited=%s spent=%s",
		wallet.ID, balance, deposited, spent)
	return nil
}

// Repair overwrites the stored projection with the replayed figures.
func (s *WalletService) Repair(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		wallet, err := s.getOrCreateWallet(tx, userID)
		if err != nil {
			return err
		}

		balance, deposited, spent, err := s.Rebuild(userID)
		if err != nil {
			return err
		}

		return tx.Model(wallet).Updates(map[string]interface{}{
			"balance":         balance,
			"total_deposited": deposited,
			"total_spent":     spent,
		}).Error
	})
}
