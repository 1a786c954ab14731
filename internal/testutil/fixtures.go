package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"verdant/internal/models"
	"verdant/internal/uuid"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a member user with a ledger address.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.RoleMember)
}

// CreateTestUserWithRole creates a user with the given role.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		Address:  uuid.New(),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBatch creates a batch of n unsold assets produced by the
// given producer, priced at the current base price, created at the given
// time.
func CreateTestBatch(t *testing.T, db *gorm.DB, producer string, n int, createdAt time.Time) *models.Batch {
	t.Helper()

	var state models.MarketState
	if err := db.First(&state).Error; err != nil {
		t.Fatalf("failed to load market state: %v", err)
	}

	batch := &models.Batch{
		StartingPrice: state.BasePrice,
		Size:          n,
	}
	batch.CreatedAt = createdAt
	if err := db.Create(batch).Error; err != nil {
		t.Fatalf("failed to create test batch: %v", err)
	}

	for i := 0; i < n; i++ {
		asset := &models.Asset{
			BatchID:     batch.ID,
			Ordinal:     i,
			Producer:    producer,
			MetadataRef: fmt.Sprintf("ipfs://test-%d", nextID()),
			Owner:       models.TreasuryAddress,
		}
		if err := db.Create(asset).Error; err != nil {
			t.Fatalf("failed to create test asset: %v", err)
		}
		batch.Assets = append(batch.Assets, *asset)
	}
	return batch
}

// CreateTestAsset creates a standalone asset owned by the given address.
func CreateTestAsset(t *testing.T, db *gorm.DB, owner, producer string) *models.Asset {
	t.Helper()

	batch := &models.Batch{StartingPrice: BasePrice, Size: 1, SoldCount: 1}
	batch.CreatedAt = time.Now()
	if err := db.Create(batch).Error; err != nil {
		t.Fatalf("failed to create test batch: %v", err)
	}

	asset := &models.Asset{
		BatchID:     batch.ID,
		Ordinal:     0,
		Producer:    producer,
		MetadataRef: fmt.Sprintf("ipfs://test-%d", nextID()),
		Owner:       owner,
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// FundPayBalance credits a holder's payment token balance directly.
func FundPayBalance(t *testing.T, db *gorm.DB, address string, amount int64) {
	t.Helper()

	balance := &models.TokenBalance{Kind: models.TokenPay, Address: address, Amount: amount}
	if err := db.Create(balance).Error; err != nil {
		t.Fatalf("failed to fund pay balance: %v", err)
	}
	if err := db.Model(&models.TokenState{}).
		Where("kind = ?", models.TokenPay).
		Update("total_supply", gorm.Expr("total_supply + ?", amount)).Error; err != nil {
		t.Fatalf("failed to bump pay supply: %v", err)
	}
}

// ApprovePay sets a payment token allowance.
func ApprovePay(t *testing.T, db *gorm.DB, owner, spender string, amount int64) {
	t.Helper()

	allowance := &models.TokenAllowance{Kind: models.TokenPay, Owner: owner, Spender: spender, Amount: amount}
	if err := db.Create(allowance).Error; err != nil {
		t.Fatalf("failed to create pay allowance: %v", err)
	}
}
