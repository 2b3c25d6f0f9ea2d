package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestWalletReconciliationInvariant(t *testing.T) {
	db := setupTestDB(t)
	_, wallets, _, _, purchases, withdrawals := newStack(db, 5)

	user := createUser(t, db, "member", "paid", nil)

	if _, err := purchases.Deposit(user.ID, mustDecimal(t, "500.00")); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, _, err := purchases.RecordPurchase(user.ID, mustDecimal(t, "120.50"), "latte run"); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if _, err := purchases.Deposit(user.ID, mustDecimal(t, "30.25")); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, err := withdrawals.Request(user.ID, mustDecimal(t, "100.00")); err != nil {
		t.Fatalf("withdrawal failed: %v", err)
	}

	wallet, err := wallets.GetWallet(user.ID)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}

	// balance = deposited - spent at all times
	if !wallet.Balance.Equal(wallet.TotalDeposited.Sub(wallet.TotalSpent)) {
		t.Errorf("balance %s != deposited %s - spent %s",
			wallet.Balance, wallet.TotalDeposited, wallet.TotalSpent)
	}

	want := mustDecimal(t, "309.75")
	if !wallet.Balance.Equal(want) {
		t.Errorf("expected balance %s, got %s", want, wallet.Balance)
	}

	// the replay must agree with the incrementally maintained projection
	balance, deposited, spent, err := wallets.Rebuild(user.ID)
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if !balance.Equal(wallet.Balance) {
		t.Errorf("replayed balance %s != projected %s", balance, wallet.Balance)
	}
	if !deposited.Equal(wallet.TotalDeposited) {
		t.Errorf("replayed deposited %s != projected %s", deposited, wallet.TotalDeposited)
	}
	if !spent.Equal(wallet.TotalSpent) {
		t.Errorf("replayed spent %s != projected %s", spent, wallet.TotalSpent)
	}

	if err := wallets.Reconcile(user.ID); err != nil {
		t.Errorf("Reconcile reported drift: %v", err)
	}
}

func TestDebitCannotGoNegative(t *testing.T) {
	db := setupTestDB(t)
	_, wallets, _, _, purchases, _ := newStack(db, 5)

	user := createUser(t, db, "member", "paid", nil)
	if _, err := purchases.Deposit(user.ID, mustDecimal(t, "50.00")); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	_, _, err := purchases.RecordPurchase(user.ID, mustDecimal(t, "50.01"), "")
	if !IsInsufficientFunds(err) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	// the failed debit must not leave any trace
	balance, err := wallets.GetBalance(user.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(mustDecimal(t, "50.00")) {
		t.Errorf("balance changed after rejected debit: %s", balance)
	}
	if err := wallets.Reconcile(user.ID); err != nil {
		t.Errorf("Reconcile reported drift after rejected debit: %v", err)
	}
}

func TestRepairRestoresDriftedProjection(t *testing.T) {
	db := setupTestDB(t)
	_, wallets, _, _, purchases, _ := newStack(db, 5)

	user := createUser(t, db, "member", "paid", nil)
	if _, err := purchases.Deposit(user.ID, mustDecimal(t, "75.00")); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	// corrupt the projection directly
	if err := db.Exec("UPDATE wallets SET balance = 999 WHERE user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("failed to corrupt wallet: %v", err)
	}
	if err := wallets.Reconcile(user.ID); err == nil {
		t.Fatal("expected Reconcile to report drift")
	}

	if err := wallets.Repair(user.ID); err != nil {
		t.Fatalf("Repair failed: %v", err)
	}

	balance, err := wallets.GetBalance(user.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(mustDecimal(t, "75.00")) {
		t.Errorf("expected repaired balance 75.00, got %s", balance)
	}
	if err := wallets.Reconcile(user.ID); err != nil {
		t.Errorf("Reconcile still reports drift after repair: %v", err)
	}
}

func TestGetBalanceWithoutWallet(t *testing.T) {
	db := setupTestDB(t)
	_, wallets, _, _, _, _ := newStack(db, 5)

	user := createUser(t, db, "fresh", "free", nil)

	balance, err := wallets.GetBalance(user.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.Zero) {
		t.Errorf("expected zero balance for user without wallet, got %s", balance)
	}
}
