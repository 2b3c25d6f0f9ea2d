package services

import (
	"testing"

	"serve-cafe/internal/models"
)

// Paid referrer, level-1 rate 5%: a 1000.00 purchase by the referred member
// pays exactly one 50.00 credit to the referrer.
func TestLevelOneCommission(t *testing.T) {
	db := setupTestDB(t)
	_, wallets, _, _, purchases, _ := newStack(db, 5)

	seedRate(t, db, models.MemberTypePaid, 1, "5")

	referrer := createUser(t, db, "referrer", "paid", nil)
	buyer := createUser(t, db, "buyer", "paid", &referrer.ID)

	if _, err := purchases.Deposit(buyer.ID, mustDecimal(t, "1000.00")); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	trigger, commissions, err := purchases.RecordPurchase(buyer.ID, mustDecimal(t, "1000.00"), "")
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	if len(commissions) != 1 {
		t.Fatalf("expected 1 commission entry, got %d", len(commissions))
	}
	entry := commissions[0]
	if !entry.Amount.Equal(mustDecimal(t, "50.00")) {
		t.Errorf("expected 50.00, got %s", entry.Amount)
	}
	if entry.TransactionType != "Level1 Commission" {
		t.Errorf("expected Level1 Commission, got %s", entry.TransactionType)
	}
	if entry.TriggerID == nil || *entry.TriggerID != trigger.ID {
		t.Errorf("expected trigger_id %d, got %v", trigger.ID, entry.TriggerID)
	}
	if entry.TransactionToID == nil || *entry.TransactionToID != referrer.ID {
		t.Errorf("expected beneficiary %d, got %v", referrer.ID, entry.TransactionToID)
	}

	balance, err := wallets.GetBalance(referrer.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(mustDecimal(t, "50.00")) {
		t.Errorf("expected referrer balance 50.00, got %s", balance)
	}
}

// Free members earn on direct referrals only: with level-1 rates configured
// (free 4%), a 200.00 purchase pays 8.00 to the free direct referrer and
// nothing deeper, even though the free referrer has a referrer of its own.
func TestFreeMemberEarnsLevelOneOnly(t *testing.T) {
	db := setupTestDB(t)
	_, wallets, _, _, purchases, _ := newStack(db, 5)

	seedRate(t, db, models.MemberTypeFree, 1, "4")
	seedRate(t, db, models.MemberTypePaid, 1, "5")

	grandReferrer := createUser(t, db, "grand", "paid", nil)
	freeReferrer := createUser(t, db, "free", "free", &grandReferrer.ID)
	buyer := createUser(t, db, "buyer", "paid", &freeReferrer.ID)

	if _, err := purchases.Deposit(buyer.ID, mustDecimal(t, "200.00")); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	_, commissions, err := purchases.RecordPurchase(buyer.ID, mustDecimal(t, "200.00"), "")
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	if len(commissions) != 1 {
		t.Fatalf("expected exactly 1 commission entry, got %d", len(commissions))
	}
	if !commissions[0].Amount.Equal(mustDecimal(t, "8.00")) {
		t.Errorf("expected 8.00, got %s", commissions[0].Amount)
	}
	if commissions[0].TransactionToID == nil || *commissions[0].TransactionToID != freeReferrer.ID {
		t.Errorf("expected beneficiary %d, got %v", freeReferrer.ID, commissions[0].TransactionToID)
	}

	// no level-2 rate row exists, so the grand referrer gets nothing
	balance, err := wallets.GetBalance(grandReferrer.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("expected zero balance at level 2, got %s", balance)
	}
}

// Multi-level payout with paid rates at every level.
func TestMultiLevelCommission(t *testing.T) {
	db := setupTestDB(t)
	_, wallets, _, _, purchases, _ := newStack(db, 5)

	seedRate(t, db, models.MemberTypePaid, 1, "5")
	seedRate(t, db, models.MemberTypePaid, 2, "3")
	seedRate(t, db, models.MemberTypePaid, 3, "2")

	l3 := createUser(t, db, "l3", "paid", nil)
	l2 := createUser(t, db, "l2", "paid", &l3.ID)
	l1 := createUser(t, db, "l1", "paid", &l2.ID)
	buyer := createUser(t, db, "buyer", "paid", &l1.ID)

	if _, err := purchases.Deposit(buyer.ID, mustDecimal(t, "100.00")); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	_, commissions, err := purchases.RecordPurchase(buyer.ID, mustDecimal(t, "100.00"), "")
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	if len(commissions) != 3 {
		t.Fatalf("expected 3 commission entries, got %d", len(commissions))
	}

	checks := []struct {
		userID uint
		want   string
	}{
		{l1.ID, "5.00"},
		{l2.ID, "3.00"},
		{l3.ID, "2.00"},
	}
	for _, check := range checks {
		balance, err := wallets.GetBalance(check.userID)
		if err != nil {
			t.Fatalf("GetBalance failed: %v", err)
		}
		if !balance.Equal(mustDecimal(t, check.want)) {
			t.Errorf("user %d: expected %s, got %s", check.userID, check.want, balance)
		}
	}
}

// Reprocessing the same trigger must leave the ledger unchanged.
func TestCommissionIdempotency(t *testing.T) {
	db := setupTestDB(t)
	_, wallets, _, commissions, purchases, _ := newStack(db, 5)

	seedRate(t, db, models.MemberTypePaid, 1, "5")

	referrer := createUser(t, db, "referrer", "paid", nil)
	buyer := createUser(t, db, "buyer", "paid", &referrer.ID)

	if _, err := purchases.Deposit(buyer.ID, mustDecimal(t, "1000.00")); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	trigger, first, err := purchases.RecordPurchase(buyer.ID, mustDecimal(t, "1000.00"), "")
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 commission on first run, got %d", len(first))
	}

	// a second invocation with the same trigger pays nothing new
	second, err := commissions.ProcessTrigger(trigger.ID)
	if err != nil {
		t.Fatalf("reprocessing failed: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("expected no new entries on reprocess, got %d", len(second))
	}

	var count int64
	if err := db.Model(&models.Transaction{}).
		Where("trigger_id = ?", trigger.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 ledger entry for the trigger, got %d", count)
	}

	balance, err := wallets.GetBalance(referrer.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(mustDecimal(t, "50.00")) {
		t.Errorf("expected balance 50.00 after reprocess, got %s", balance)
	}
}

// The purchaser's branch scales every commission from that purchase.
func TestBranchMultiplier(t *testing.T) {
	db := setupTestDB(t)
	_, wallets, _, _, purchases, _ := newStack(db, 5)

	seedRate(t, db, models.MemberTypePaid, 1, "5")

	branch := models.Branch{Name: "Downtown", Code: "DT1", CommissionRate: mustDecimal(t, "1.5"), IsActive: true}
	if err := db.Create(&branch).Error; err != nil {
		t.Fatalf("failed to create branch: %v", err)
	}

	referrer := createUser(t, db, "referrer", "paid", nil)
	buyer := createUser(t, db, "buyer", "paid", &referrer.ID)
	if err := db.Model(buyer).Update("branch_id", branch.ID).Error; err != nil {
		t.Fatalf("failed to set branch: %v", err)
	}

	if _, err := purchases.Deposit(buyer.ID, mustDecimal(t, "100.00")); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, _, err := purchases.RecordPurchase(buyer.ID, mustDecimal(t, "100.00"), ""); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	// 100 * 5% * 1.5 = 7.50
	balance, err := wallets.GetBalance(referrer.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(mustDecimal(t, "7.50")) {
		t.Errorf("expected 7.50 with branch multiplier, got %s", balance)
	}
}

// Commission rounding is to 2 decimal places.
func TestCommissionRounding(t *testing.T) {
	db := setupTestDB(t)
	_, wallets, _, _, purchases, _ := newStack(db, 5)

	seedRate(t, db, models.MemberTypePaid, 1, "2.5")

	referrer := createUser(t, db, "referrer", "paid", nil)
	buyer := createUser(t, db, "buyer", "paid", &referrer.ID)

	if _, err := purchases.Deposit(buyer.ID, mustDecimal(t, "10.01")); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, _, err := purchases.RecordPurchase(buyer.ID, mustDecimal(t, "10.01"), ""); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	// 10.01 * 2.5% = 0.25025 -> 0.25
	balance, err := wallets.GetBalance(referrer.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(mustDecimal(t, "0.25")) {
		t.Errorf("expected 0.25 after rounding, got %s", balance)
	}
}
