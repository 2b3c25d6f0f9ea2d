package database

import (
	"fmt"
	"log"

	"serve-cafe/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate runs automatic migrations against the given database handle
func Migrate(db *gorm.DB) error {
	// Core identity and reference models first
	coreModels := []interface{}{
		&models.Branch{},
		&models.Role{},
		&models.User{},
		&models.PackageOffer{},
		&models.CommissionRate{},
	}

	for _, model := range coreModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Ledger and wallet models
	ledgerModels := []interface{}{
		&models.Transaction{},
		&models.Wallet{},
		&models.WithdrawalRequest{},
		&models.ReferralStats{},
	}

	for _, model := range ledgerModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Menu models
	menuModels := []interface{}{
		&models.MenuCategory{},
		&models.MenuItem{},
	}

	for _, model := range menuModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
