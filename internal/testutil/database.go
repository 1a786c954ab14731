// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"verdant/internal/models"
)

// allModels is the list of all GORM models to auto-migrate in tests.
var allModels = []interface{}{
	&models.User{},
	&models.Batch{},
	&models.Asset{},
	&models.Loan{},
	&models.MarketState{},
	&models.ProducerBalance{},
	&models.TokenState{},
	&models.TokenBalance{},
	&models.TokenAllowance{},
	&models.Event{},
}

// Default market parameters used by test fixtures; chosen to match the
// documented pricing scenarios (start 230, floor 40, decay 1/day).
const (
	BasePrice            = 230
	PriceFloor           = 40
	DailyDecayRate       = 1
	PriceAdjustDelta     = 10
	DayIncreaseThreshold = 2
	DayDecreaseThreshold = 7
	PlatformSharePct     = 25
	FixedLoanValue       = 20
	StableMaxSupply      = 1000
)

// SetupTestDB creates an in-memory SQLite database with all models
// migrated and the ledger singletons seeded.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	state := &models.MarketState{
		BasePrice:            BasePrice,
		PriceFloor:           PriceFloor,
		DailyDecayRate:       DailyDecayRate,
		PriceAdjustDelta:     PriceAdjustDelta,
		DayIncreaseThreshold: DayIncreaseThreshold,
		DayDecreaseThreshold: DayDecreaseThreshold,
		PlatformSharePct:     PlatformSharePct,
		LastPriceChangeTime:  time.Now(),
	}
	if err := db.Create(state).Error; err != nil {
		t.Fatalf("failed to seed market state: %v", err)
	}

	for _, seed := range []models.TokenState{
		{Kind: models.TokenPay},
		{Kind: models.TokenStable, MaxSupply: StableMaxSupply},
	} {
		s := seed
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("failed to seed token state: %v", err)
		}
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
