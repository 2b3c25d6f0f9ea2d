package services

import (
	"testing"
	"time"

	"serve-cafe/internal/models"
)

func TestLedgerAppendValidation(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, NewWalletService(db))

	user := createUser(t, db, "member", "paid", nil)

	// non-positive amount
	err := ledger.Append(db, &models.Transaction{
		TransactionNature: models.TransactionNatureDeposit,
		TransactionType:   "Wallet Deposit",
		DebitCredit:       models.DebitCreditCredit,
		TransactionToID:   &user.ID,
		Amount:            mustDecimal(t, "0"),
	})
	if !IsValidation(err) {
		t.Errorf("expected validation error for zero amount, got %v", err)
	}

	// both parties nil
	err = ledger.Append(db, &models.Transaction{
		TransactionNature: models.TransactionNatureDeposit,
		TransactionType:   "Wallet Deposit",
		DebitCredit:       models.DebitCreditCredit,
		Amount:            mustDecimal(t, "5.00"),
	})
	if !IsValidation(err) {
		t.Errorf("expected validation error for missing parties, got %v", err)
	}

	// bad direction
	err = ledger.Append(db, &models.Transaction{
		TransactionNature: models.TransactionNatureDeposit,
		TransactionType:   "Wallet Deposit",
		DebitCredit:       7,
		TransactionToID:   &user.ID,
		Amount:            mustDecimal(t, "5.00"),
	})
	if !IsValidation(err) {
		t.Errorf("expected validation error for bad debit_credit, got %v", err)
	}

	// a valid entry gets defaults filled in
	entry := models.Transaction{
		TransactionNature: models.TransactionNatureDeposit,
		TransactionType:   "Wallet Deposit",
		DebitCredit:       models.DebitCreditCredit,
		TransactionToID:   &user.ID,
		Amount:            mustDecimal(t, "5.00"),
	}
	if err := ledger.Append(db, &entry); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if entry.Reference == "" {
		t.Error("expected a generated reference")
	}
	if entry.Status != models.TransactionStatusPending {
		t.Errorf("expected pending default, got %s", entry.Status)
	}
	if entry.TransactionDate.IsZero() || entry.MatchingDate.IsZero() {
		t.Error("expected dates to be defaulted")
	}
}

func TestLedgerStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, NewWalletService(db))

	user := createUser(t, db, "member", "paid", nil)

	entry := models.Transaction{
		TransactionNature: models.TransactionNatureDeposit,
		TransactionType:   "Wallet Deposit",
		DebitCredit:       models.DebitCreditCredit,
		TransactionToID:   &user.ID,
		Amount:            mustDecimal(t, "5.00"),
	}
	if err := ledger.Append(db, &entry); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := ledger.Settle(entry.ID); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	// settled entries are immutable
	if err := ledger.Settle(entry.ID); !IsValidation(err) {
		t.Errorf("expected validation error re-settling, got %v", err)
	}
	if err := ledger.Fail(entry.ID); !IsValidation(err) {
		t.Errorf("expected validation error failing a settled entry, got %v", err)
	}

	// pending -> failed works on a fresh entry
	second := models.Transaction{
		TransactionNature: models.TransactionNatureDeposit,
		TransactionType:   "Wallet Deposit",
		DebitCredit:       models.DebitCreditCredit,
		TransactionToID:   &user.ID,
		Amount:            mustDecimal(t, "5.00"),
	}
	if err := ledger.Append(db, &second); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := ledger.Fail(second.ID); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	// count_status can only be set on settled entries
	if err := ledger.MarkCounted(entry.ID); err != nil {
		t.Errorf("MarkCounted on settled entry failed: %v", err)
	}
	if err := ledger.MarkCounted(second.ID); !IsValidation(err) {
		t.Errorf("expected validation error marking failed entry counted, got %v", err)
	}
}

func TestSettleAppliesEntryToWallet(t *testing.T) {
	db := setupTestDB(t)
	wallets := NewWalletService(db)
	ledger := NewLedgerService(db, wallets)

	user := createUser(t, db, "member", "paid", nil)

	credit := models.Transaction{
		TransactionNature: models.TransactionNatureDeposit,
		TransactionType:   "Wallet Deposit",
		DebitCredit:       models.DebitCreditCredit,
		TransactionToID:   &user.ID,
		Amount:            mustDecimal(t, "25.00"),
	}
	if err := ledger.Append(db, &credit); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := ledger.Settle(credit.ID); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	balance, err := wallets.GetBalance(user.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance.StringFixed(2) != "25.00" {
		t.Errorf("expected balance 25.00 after settle, got %s", balance.StringFixed(2))
	}

	// the incremental projection must agree with a full replay
	if err := wallets.Reconcile(user.ID); err != nil {
		t.Errorf("Reconcile after settle failed: %v", err)
	}

	// a debit the wallet cannot cover rolls the transition back
	overdraft := models.Transaction{
		TransactionNature: models.TransactionNaturePurchase,
		TransactionType:   "Order Purchase",
		DebitCredit:       models.DebitCreditDebit,
		TransactionFromID: &user.ID,
		Amount:            mustDecimal(t, "40.00"),
	}
	if err := ledger.Append(db, &overdraft); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := ledger.Settle(overdraft.ID); !IsInsufficientFunds(err) {
		t.Fatalf("expected insufficient funds settling overdraft, got %v", err)
	}
	reloaded, err := ledger.GetByID(overdraft.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reloaded.Status != models.TransactionStatusPending {
		t.Errorf("expected overdraft to stay pending, got %s", reloaded.Status)
	}

	// failing a pending entry never touches the wallet
	if err := ledger.Fail(overdraft.ID); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	if err := wallets.Reconcile(user.ID); err != nil {
		t.Errorf("Reconcile after fail failed: %v", err)
	}
}

func TestEntriesForUserOrderingAndPaging(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db, NewWalletService(db))

	user := createUser(t, db, "member", "paid", nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		entry := models.Transaction{
			TransactionNature: models.TransactionNatureDeposit,
			TransactionType:   "Wallet Deposit",
			DebitCredit:       models.DebitCreditCredit,
			TransactionToID:   &user.ID,
			Amount:            mustDecimal(t, "1.00"),
			TransactionDate:   base.AddDate(0, 0, 4-i), // insert newest first
			Status:            models.TransactionStatusSettled,
		}
		if err := ledger.Append(db, &entry); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := ledger.EntriesForUser(user.ID, time.Time{}, time.Time{}, 0, 0)
	if err != nil {
		t.Fatalf("EntriesForUser failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].TransactionDate.Before(entries[i-1].TransactionDate) {
			t.Fatalf("entries out of ascending order at %d", i)
		}
	}

	// restartable paging: two pages cover the same sequence
	page1, err := ledger.EntriesForUser(user.ID, time.Time{}, time.Time{}, 3, 0)
	if err != nil {
		t.Fatalf("EntriesForUser failed: %v", err)
	}
	page2, err := ledger.EntriesForUser(user.ID, time.Time{}, time.Time{}, 3, 3)
	if err != nil {
		t.Fatalf("EntriesForUser failed: %v", err)
	}
	if len(page1) != 3 || len(page2) != 2 {
		t.Fatalf("expected pages 3+2, got %d+%d", len(page1), len(page2))
	}
	if page1[2].ID == page2[0].ID {
		t.Error("pages overlap")
	}

	// date range filter
	ranged, err := ledger.EntriesForUser(user.ID, base.AddDate(0, 0, 1), base.AddDate(0, 0, 2), 0, 0)
	if err != nil {
		t.Fatalf("EntriesForUser failed: %v", err)
	}
	if len(ranged) != 2 {
		t.Errorf("expected 2 entries in range, got %d", len(ranged))
	}
}
