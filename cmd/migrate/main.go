package main

import (
	"log"

	"serve-cafe/internal/config"
	"serve-cafe/internal/database"
	"serve-cafe/internal/models"
	"serve-cafe/internal/services"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := seedCommissionRates(db); err != nil {
		log.Fatalf("Failed to seed commission rates: %v", err)
	}

	if err := seedRoles(db); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}

	log.Println("Migration and seed completed")
}

// seedCommissionRates installs the default payout policy table. Free
// members earn on direct referrals only; paid members earn on every
// configured level.
func seedCommissionRates(db *gorm.DB) error {
	defaults := []models.CommissionRate{
		{MemberType: models.MemberTypePaid, Level: 1, RatePercent: decimal.NewFromInt(5)},
		{MemberType: models.MemberTypePaid, Level: 2, RatePercent: decimal.NewFromInt(3)},
		{MemberType: models.MemberTypePaid, Level: 3, RatePercent: decimal.NewFromInt(2)},
		{MemberType: models.MemberTypePaid, Level: 4, RatePercent: decimal.NewFromInt(1)},
		{MemberType: models.MemberTypePaid, Level: 5, RatePercent: decimal.NewFromInt(1)},
		{MemberType: models.MemberTypeFree, Level: 1, RatePercent: decimal.NewFromInt(4)},
	}

	for _, rate := range defaults {
		var existing models.CommissionRate
		err := db.Where("member_type = ? AND level = ?", rate.MemberType, rate.Level).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&rate).Error; err != nil {
				return err
			}
			log.Printf("Seeded rate: %s level %d = %s%%", rate.MemberType, rate.Level, rate.RatePercent)
			continue
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// seedRoles installs the default role set with permissions expanded.
func seedRoles(db *gorm.DB) error {
	type roleSeed struct {
		name     string
		userType string
		patterns []string
	}

	seeds := []roleSeed{
		{"HeadOffice Admin", models.UserTypeHeadOffice, []string{"*"}},
		{"Branch Manager", models.UserTypeBranchOffice, []string{"menu.*", "users.view", "ledger.view", "reports.view"}},
		{"Member", models.UserTypeMember, []string{"menu.view"}},
	}

	for _, seed := range seeds {
		var existing models.Role
		err := db.Where("name = ?", seed.name).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			permissions, expandErr := services.ExpandPermissions(seed.patterns)
			if expandErr != nil {
				return expandErr
			}
			role := models.Role{
				Name:        seed.name,
				UserType:    seed.userType,
				Permissions: permissions,
			}
			if err := db.Create(&role).Error; err != nil {
				return err
			}
			log.Printf("Seeded role: %s (%d permissions)", seed.name, len(permissions))
			continue
		}
		if err != nil {
			return err
		}
	}

	return nil
}
