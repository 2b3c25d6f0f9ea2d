package services

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"serve-cafe/internal/models"
)

// LedgerService is the append-only transaction store. Entries are immutable
// once settled; the only permitted mutation is the status transition
// pending -> settled or pending -> failed, taken under a row lock. Settling
// also applies the entry to the wallet projection so the incremental balance
// stays equal to a full replay.
type LedgerService struct {
	db      *gorm.DB
	wallets *WalletService
}

func NewLedgerService(db *gorm.DB, wallets *WalletService) *LedgerService {
	return &LedgerService{db: db, wallets: wallets}
}

// Append validates and inserts a new ledger entry inside the caller's
// transaction. The entry gets a reference and timestamps if unset.
func (s *LedgerService) Append(tx *gorm.DB, entry *models.Transaction) error {
	if !entry.Amount.IsPositive() {
		return fmt.Errorf("ledger amount must be positive, got %s: %w", entry.Amount, ErrValidation)
	}
	if entry.TransactionFromID == nil && entry.TransactionToID == nil {
		return fmt.Errorf("ledger entry needs at least one party: %w", ErrValidation)
	}
	if entry.DebitCredit != models.DebitCreditDebit && entry.DebitCredit != models.DebitCreditCredit {
		return fmt.Errorf("invalid debit_credit %d: %w", entry.DebitCredit, ErrValidation)
	}

	if entry.Reference == "" {
		entry.Reference = uuid.New().String()
	}
	if entry.TransactionDate.IsZero() {
		entry.TransactionDate = time.Now()
	}
	if entry.MatchingDate.IsZero() {
		entry.MatchingDate = entry.TransactionDate.Truncate(24 * time.Hour)
	}
	if entry.Status == "" {
		entry.Status = models.TransactionStatusPending
	}

	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// EntriesForUser returns a page of a user's entries (either side of the
// ledger) ordered by transaction_date ascending. Restartable via offset.
func (s *LedgerService) EntriesForUser(userID uint, from, to time.Time, limit, offset int) ([]models.Transaction, error) {
	query := s.db.Where("transaction_from_id = ? OR transaction_to_id = ?", userID, userID)

	if !from.IsZero() {
		query = query.Where("transaction_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("transaction_date <= ?", to)
	}
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var entries []models.Transaction
	if err := query.Order("transaction_date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// EntriesByTrigger returns all entries generated by the given trigger. Used
// by the commission calculator's idempotency guard.
func (s *LedgerService) EntriesByTrigger(tx *gorm.DB, triggerID uint) ([]models.Transaction, error) {
	var entries []models.Transaction
	if err := tx.Where("trigger_id = ?", triggerID).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Settle transitions a pending entry to settled under a single-row lock and
// applies it to the affected wallet in the same transaction. The funds check
// runs here too: a debit the wallet cannot cover rolls the transition back
// and the entry stays pending.
func (s *LedgerService) Settle(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.transitionTx(tx, id, models.TransactionStatusSettled)
		if err != nil {
			return err
		}
		return s.wallets.ApplyEntry(tx, entry)
	})
}

// Fail transitions a pending entry to failed under a single-row lock. Failed
// entries never touch the wallet projection.
func (s *LedgerService) Fail(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		_, err := s.transitionTx(tx, id, models.TransactionStatusFailed)
		return err
	})
}

// transitionTx performs a status transition inside the caller's transaction
// and returns the updated entry. Only pending entries may move; a settled or
// failed entry is immutable.
func (s *LedgerService) transitionTx(tx *gorm.DB, id uint, target string) (*models.Transaction, error) {
	var entry models.Transaction
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("ledger entry %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	if entry.Status != models.TransactionStatusPending {
		return nil, fmt.Errorf("entry %d is %s, cannot move to %s: %w", id, entry.Status, target, ErrValidation)
	}

	if err := tx.Model(&entry).Update("status", target).Error; err != nil {
		return nil, err
	}
	entry.Status = target

	log.Printf("Ledger entry %d (%s) %s -> %s", entry.ID, entry.Reference, models.TransactionStatusPending, target)
	return &entry, nil
}

// MarkCounted flags a settled entry as included in downstream aggregates.
func (s *LedgerService) MarkCounted(id uint) error {
	result := s.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.TransactionStatusSettled).
		Update("count_status", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("entry %d is not settled: %w", id, ErrValidation)
	}
	return nil
}

// GetByID fetches a single ledger entry
func (s *LedgerService) GetByID(id uint) (*models.Transaction, error) {
	var entry models.Transaction
	if err := s.db.First(&entry, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("ledger entry %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &entry, nil
}
