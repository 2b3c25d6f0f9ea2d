package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"serve-cafe/internal/models"
)

// WithdrawalService runs the cash-out state machine:
// requested -> settled, or requested -> rejected. Requests from the same
// user are serialized by a per-user lock so two concurrent requests can
// never both pass the balance check against a stale read.
type WithdrawalService struct {
	db            *gorm.DB
	ledger        *LedgerService
	wallets       *WalletService
	retryAttempts int

	locksMu   sync.Mutex
	userLocks map[uint]*sync.Mutex
}

func NewWithdrawalService(db *gorm.DB, ledger *LedgerService, wallets *WalletService, retryAttempts int) *WithdrawalService {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &WithdrawalService{
		db:            db,
		ledger:        ledger,
		wallets:       wallets,
		retryAttempts: retryAttempts,
		userLocks:     make(map[uint]*sync.Mutex),
	}
}

func (s *WithdrawalService) userLock(userID uint) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// Request validates and settles a cash-out. On success the request is
// settled together with its debit ledger entry in one transaction; on a
// failed validation the request is recorded as rejected with the reason and
// the wallet is untouched.
func (s *WithdrawalService) Request(userID uint, amount decimal.Decimal) (*models.WithdrawalRequest, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	request := &models.WithdrawalRequest{
		Reference: uuid.New().String(),
		UserID:    userID,
		Amount:    amount.Round(2),
		Status:    models.WithdrawalStatusRequested,
	}
	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to record withdrawal request: %w", err)
	}

	settleErr := s.settleWithRetry(request)
	if settleErr != nil {
		reason := rejectReason(settleErr)
		if err := s.db.Model(request).Updates(map[string]interface{}{
			"status":        models.WithdrawalStatusRejected,
			"reject_reason": reason,
		}).Error; err != nil {
			log.Printf("Warning: failed to mark withdrawal %s rejected: %v", request.Reference, err)
		}
		request.Status = models.WithdrawalStatusRejected
		request.RejectReason = reason
		return request, settleErr
	}

	return request, nil
}

// settleWithRetry retries the settlement on transient conflicts a bounded
// number of times before surfacing the error.
func (s *WithdrawalService) settleWithRetry(request *models.WithdrawalRequest) error {
	return withConflictRetry(s.retryAttempts, request.Reference, func() error {
		return s.settle(request)
	})
}

// withConflictRetry runs fn up to attempts times, retrying only on
// ErrConcurrencyConflict. Any other outcome is returned immediately.
func withConflictRetry(attempts int, ref string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !IsConcurrencyConflict(err) {
			return err
		}
		log.Printf("Withdrawal %s conflict on attempt %d/%d, retrying", ref, attempt, attempts)
	}
	return err
}

// settle performs the requested -> settled transition as one atomic unit.
// Lock and serialization failures surface as ErrConcurrencyConflict so the
// caller's retry loop can fire.
func (s *WithdrawalService) settle(request *models.WithdrawalRequest) error {
	err := s.runSettle(request)
	if isLockConflict(err) {
		return fmt.Errorf("withdrawal %s settlement conflicted: %v: %w", request.Reference, err, ErrConcurrencyConflict)
	}
	return err
}

func (s *WithdrawalService) runSettle(request *models.WithdrawalRequest) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, request.UserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("user %d: %w", request.UserID, ErrNotFound)
			}
			return err
		}
		if !user.IsActive {
			return fmt.Errorf("user %d: %w", user.ID, ErrAccountInactive)
		}

		if !request.Amount.IsPositive() {
			return fmt.Errorf("withdrawal amount must be positive: %w", ErrValidation)
		}

		entry := models.Transaction{
			TransactionNature: models.TransactionNatureWithdrawal,
			TransactionType:   "Cash Out",
			DebitCredit:       models.DebitCreditDebit,
			TransactionFromID: &request.UserID,
			Amount:            request.Amount,
			Status:            models.TransactionStatusSettled,
		}

		if err := s.ledger.Append(tx, &entry); err != nil {
			return err
		}
		// The funds check happens here under the wallet row lock.
		if err := s.wallets.ApplyEntry(tx, &entry); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(request).Updates(map[string]interface{}{
			"status":         models.WithdrawalStatusSettled,
			"transaction_id": entry.ID,
			"settled_at":     now,
		}).Error; err != nil {
			return err
		}

		request.Status = models.WithdrawalStatusSettled
		request.TransactionID = &entry.ID
		request.SettledAt = &now

		log.Printf("Withdrawal settled: user %d amount %s (entry %d)", request.UserID, request.Amount, entry.ID)
		return nil
	})
}

// ListForUser returns a user's withdrawal requests, newest first.
func (s *WithdrawalService) ListForUser(userID uint) ([]models.WithdrawalRequest, error) {
	var requests []models.WithdrawalRequest
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// rejectReason maps a settlement error to the recorded rejection reason.
func rejectReason(err error) string {
	switch {
	case IsInsufficientFunds(err):
		return "insufficient balance"
	case IsAccountInactive(err):
		return "account inactive"
	case IsValidation(err):
		return "invalid amount"
	default:
		return "settlement failed"
	}
}
