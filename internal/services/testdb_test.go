package services

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"serve-cafe/internal/models"
)

// setupTestDB opens a named in-memory database shared across the pool's
// connections so every gorm session in a test sees the same data.
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Branch{},
		&models.Role{},
		&models.User{},
		&models.PackageOffer{},
		&models.CommissionRate{},
		&models.Transaction{},
		&models.Wallet{},
		&models.WithdrawalRequest{},
		&models.ReferralStats{},
		&models.MenuCategory{},
		&models.MenuItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

// createUser inserts a user with a distinct referral code.
func createUser(t *testing.T, db *gorm.DB, name, memberType string, referredBy *uint) *models.User {
	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
		ReferralCode: fmt.Sprintf("CODE-%s", name),
		MemberType:   memberType,
		ReferredBy:   referredBy,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return &user
}

// seedRate installs one commission policy row.
func seedRate(t *testing.T, db *gorm.DB, memberType string, level int, percent string) {
	rate := models.CommissionRate{
		MemberType:  memberType,
		Level:       level,
		RatePercent: mustDecimal(t, percent),
	}
	if err := db.Create(&rate).Error; err != nil {
		t.Fatalf("failed to seed rate %s L%d: %v", memberType, level, err)
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// newStack wires the service graph the way cmd/main.go does.
func newStack(db *gorm.DB, maxDepth int) (*LedgerService, *WalletService, *ReferralService, *CommissionService, *PurchaseService, *WithdrawalService) {
	referrals := NewReferralService(db)
	wallets := NewWalletService(db)
	ledger := NewLedgerService(db, wallets)
	commissions := NewCommissionService(db, ledger, wallets, referrals, maxDepth)
	purchases := NewPurchaseService(db, ledger, wallets, commissions)
	withdrawals := NewWithdrawalService(db, ledger, wallets, 3)
	return ledger, wallets, referrals, commissions, purchases, withdrawals
}
