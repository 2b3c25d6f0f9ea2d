package services

import (
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"serve-cafe/internal/models"
)

// CommissionService turns one triggering purchase into zero or more
// commission credits, one per qualifying referral level. Eligibility and
// percentages come entirely from the commission_rates table; the branch of
// the purchasing user scales the result. The guard per (trigger,
// beneficiary, level) makes reprocessing a trigger a no-op.
type CommissionService struct {
	db        *gorm.DB
	ledger    *LedgerService
	wallets   *WalletService
	referrals *ReferralService
	maxDepth  int
	mu        sync.Mutex
}

func NewCommissionService(db *gorm.DB, ledger *LedgerService, wallets *WalletService, referrals *ReferralService, maxDepth int) *CommissionService {
	return &CommissionService{
		db:        db,
		ledger:    ledger,
		wallets:   wallets,
		referrals: referrals,
		maxDepth:  maxDepth,
	}
}

// LevelCommissionType returns the transaction_type used for a commission at
// the given referral level.
func LevelCommissionType(level int) string {
	return fmt.Sprintf("Level%d Commission", level)
}

// ProcessTrigger walks the purchaser's referral chain and pays every
// qualifying level. The whole trigger is one database transaction: either
// the full commission set commits or none of it does. Levels already paid
// for this trigger are skipped, so calling this twice with the same trigger
// leaves the ledger unchanged.
func (s *CommissionService) ProcessTrigger(triggerID uint) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created []models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var trigger models.Transaction
		if err := tx.First(&trigger, triggerID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("trigger %d: %w", triggerID, ErrNotFound)
			}
			return err
		}

		if trigger.Status != models.TransactionStatusSettled {
			return fmt.Errorf("trigger %d is %s, commissions pay on settled triggers only: %w",
				triggerID, trigger.Status, ErrValidation)
		}
		if trigger.TransactionFromID == nil {
			return fmt.Errorf("trigger %d has no purchaser: %w", triggerID, ErrValidation)
		}

		purchaserID := *trigger.TransactionFromID

		multiplier, err := s.branchMultiplier(tx, purchaserID)
		if err != nil {
			return err
		}

		ancestors, err := s.referrals.getAncestorsTx(tx, purchaserID, s.maxDepth)
		if err != nil {
			return err
		}

		existing, err := s.ledger.EntriesByTrigger(tx, trigger.ID)
		if err != nil {
			return err
		}

		for i, ancestor := range ancestors {
			level := i + 1

			rate, ok, err := s.rateFor(tx, ancestor.MemberType, level)
			if err != nil {
				return err
			}
			if !ok || rate.IsZero() {
				continue
			}

			if alreadyPaid(existing, ancestor.ID, level) {
				log.Printf("Commission for trigger %d level %d to user %d already paid, skipping",
					trigger.ID, level, ancestor.ID)
				continue
			}

			amount := trigger.Amount.Mul(rate).Div(decimal.NewFromInt(100)).
				Mul(multiplier).Round(2)
			if !amount.IsPositive() {
				continue
			}

			entry := models.Transaction{
				TransactionNature: models.TransactionNatureCommission,
				TransactionType:   LevelCommissionType(level),
				DebitCredit:       models.DebitCreditCredit,
				TransactionFromID: trigger.TransactionFromID,
				TransactionToID:   &ancestor.ID,
				TriggerID:         &trigger.ID,
				Amount:            amount,
				MatchingDate:      trigger.MatchingDate,
				Status:            models.TransactionStatusSettled,
			}

			if err := s.ledger.Append(tx, &entry); err != nil {
				return err
			}
			if err := s.wallets.ApplyEntry(tx, &entry); err != nil {
				return err
			}
			if err := s.referrals.recalculateStatsTx(tx, ancestor.ID); err != nil {
				return err
			}

			created = append(created, entry)
			log.Printf("Commission paid: trigger %d level %d -> user %d amount %s (rate %s%%)",
				trigger.ID, level, ancestor.ID, amount, rate)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return created, nil
}

// alreadyPaid checks the idempotency guard: a settled entry for this
// beneficiary at this level generated by the same trigger.
func alreadyPaid(existing []models.Transaction, beneficiaryID uint, level int) bool {
	levelType := LevelCommissionType(level)
	for _, e := range existing {
		if e.TransactionToID != nil && *e.TransactionToID == beneficiaryID &&
			e.TransactionType == levelType &&
			e.Status == models.TransactionStatusSettled {
			return true
		}
	}
	return false
}

// rateFor looks up the policy table row for (memberType, level).
func (s *CommissionService) rateFor(tx *gorm.DB, memberType string, level int) (decimal.Decimal, bool, error) {
	var rate models.CommissionRate
	err := tx.Where("member_type = ? AND level = ?", memberType, level).First(&rate).Error
	if err == gorm.ErrRecordNotFound {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return rate.RatePercent, true, nil
}

// branchMultiplier returns the commission multiplier of the purchaser's
// branch, defaulting to 1 when the user has no branch.
func (s *CommissionService) branchMultiplier(tx *gorm.DB, userID uint) (decimal.Decimal, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, err
	}
	if user.BranchID == nil {
		return decimal.NewFromInt(1), nil
	}

	var branch models.Branch
	if err := tx.First(&branch, *user.BranchID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, err
	}
	if branch.CommissionRate.IsZero() {
		return decimal.NewFromInt(1), nil
	}
	return branch.CommissionRate, nil
}

// CommissionsForUser returns the commission credits earned by a user,
// newest first.
func (s *CommissionService) CommissionsForUser(userID uint) ([]models.Transaction, error) {
	var entries []models.Transaction
	if err := s.db.
		Where("transaction_to_id = ? AND transaction_nature = ?", userID, models.TransactionNatureCommission).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
