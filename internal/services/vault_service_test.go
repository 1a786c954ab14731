package services

import (
	"testing"

	"gorm.io/gorm"

	"verdant/internal/models"
	"verdant/internal/pagination"
	"verdant/internal/testutil"
)

func newTestVault(db *gorm.DB) *vaultService {
	return &vaultService{
		db:             db,
		tokens:         NewTokenService(db),
		events:         NewEventService(db),
		fixedLoanValue: testutil.FixedLoanValue,
	}
}

// approveVaultBurn grants the vault the allowance it needs to burn the
// borrower's stable tokens on withdrawal.
func approveVaultBurn(t *testing.T, db *gorm.DB, borrower string, amount int64) {
	t.Helper()
	allowance := &models.TokenAllowance{
		Kind:    models.TokenStable,
		Owner:   borrower,
		Spender: models.VaultAddress,
		Amount:  amount,
	}
	if err := db.Create(allowance).Error; err != nil {
		t.Fatalf("failed to create stable allowance: %v", err)
	}
}

func stableSupply(t *testing.T, svc *vaultService) int64 {
	t.Helper()
	state, err := svc.tokens.TotalSupply(models.TokenStable)
	if err != nil {
		t.Fatalf("failed to read stable supply: %v", err)
	}
	return state.TotalSupply
}

func TestDeposit(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)

		loan, err := svc.Deposit(borrower.Address, asset.ID)
		testutil.AssertNoError(t, err)

		if !loan.Active {
			t.Error("expected an active loan")
		}
		if loan.Borrower != borrower.Address {
			t.Errorf("expected borrower %s, got %s", borrower.Address, loan.Borrower)
		}

		var fresh models.Asset
		db.First(&fresh, asset.ID)
		if fresh.Owner != models.VaultAddress {
			t.Errorf("expected vault custody, got %s", fresh.Owner)
		}

		// Exactly the fixed loan value was minted.
		balance, err := svc.tokens.BalanceOf(models.TokenStable, borrower.Address)
		testutil.AssertNoError(t, err)
		if balance != testutil.FixedLoanValue {
			t.Errorf("expected minted balance %d, got %d", testutil.FixedLoanValue, balance)
		}
		if supply := stableSupply(t, svc); supply != testutil.FixedLoanValue {
			t.Errorf("expected supply %d, got %d", testutil.FixedLoanValue, supply)
		}
	})

	t.Run("redeemed_asset_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)
		db.Model(&models.Asset{}).Where("id = ?", asset.ID).Update("redeemed", true)

		_, err := svc.Deposit(borrower.Address, asset.ID)
		testutil.AssertAppError(t, err, "ASSET_REDEEMED")
	})

	t.Run("not_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, owner.Address, owner.Address)

		_, err := svc.Deposit(other.Address, asset.ID)
		testutil.AssertAppError(t, err, "NOT_ASSET_OWNER")
	})

	t.Run("double_deposit_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)

		_, err := svc.Deposit(borrower.Address, asset.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.Deposit(borrower.Address, asset.ID)
		testutil.AssertAppError(t, err, "NOT_ASSET_OWNER")
	})

	t.Run("paused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)

		testutil.AssertNoError(t, svc.SetPaused(true))
		_, err := svc.Deposit(borrower.Address, asset.ID)
		testutil.AssertAppError(t, err, "VAULT_PAUSED")

		testutil.AssertNoError(t, svc.SetPaused(false))
		_, err = svc.Deposit(borrower.Address, asset.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("supply_cap_enforced", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)

		db.Model(&models.TokenState{}).
			Where("kind = ?", models.TokenStable).
			Update("max_supply", testutil.FixedLoanValue-1)

		_, err := svc.Deposit(borrower.Address, asset.ID)
		testutil.AssertAppError(t, err, "SUPPLY_CAP_EXCEEDED")

		// The custody move rolled back with the mint.
		var fresh models.Asset
		db.First(&fresh, asset.ID)
		if fresh.Owner != borrower.Address {
			t.Errorf("expected asset returned to borrower, got %s", fresh.Owner)
		}
	})

	t.Run("batch_all_or_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower := testutil.CreateTestUser(t, db)
		good := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)
		bad := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)
		db.Model(&models.Asset{}).Where("id = ?", bad.ID).Update("redeemed", true)

		_, err := svc.DepositBatch(borrower.Address, []uint{good.ID, bad.ID})
		testutil.AssertAppError(t, err, "ASSET_REDEEMED")

		if supply := stableSupply(t, svc); supply != 0 {
			t.Errorf("expected no stable minted after aborted batch, got %d", supply)
		}
		var fresh models.Asset
		db.First(&fresh, good.ID)
		if fresh.Owner != borrower.Address {
			t.Errorf("expected first asset untouched, got owner %s", fresh.Owner)
		}
	})
}

func TestWithdraw(t *testing.T) {
	deposit := func(t *testing.T, db *gorm.DB, svc *vaultService) (*models.User, *models.Asset) {
		t.Helper()
		borrower := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)
		_, err := svc.Deposit(borrower.Address, asset.ID)
		testutil.AssertNoError(t, err)
		return borrower, asset
	}

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower, asset := deposit(t, db, svc)
		approveVaultBurn(t, db, borrower.Address, testutil.FixedLoanValue)

		testutil.AssertNoError(t, svc.Withdraw(borrower.Address, asset.ID))

		var fresh models.Asset
		db.First(&fresh, asset.ID)
		if fresh.Owner != borrower.Address {
			t.Errorf("expected asset back with borrower, got %s", fresh.Owner)
		}

		loan, err := svc.LoanStatus(asset.ID)
		testutil.AssertNoError(t, err)
		if loan.Active {
			t.Error("expected loan settled")
		}

		// The minted tokens were burned back out of existence.
		balance, err := svc.tokens.BalanceOf(models.TokenStable, borrower.Address)
		testutil.AssertNoError(t, err)
		if balance != 0 {
			t.Errorf("expected zero stable balance, got %d", balance)
		}
		if supply := stableSupply(t, svc); supply != 0 {
			t.Errorf("expected zero stable supply, got %d", supply)
		}
	})

	t.Run("requires_allowance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower, asset := deposit(t, db, svc)

		err := svc.Withdraw(borrower.Address, asset.ID)
		testutil.AssertAppError(t, err, "INSUFFICIENT_ALLOWANCE")

		// The loan survives the failed settlement.
		loan, err := svc.LoanStatus(asset.ID)
		testutil.AssertNoError(t, err)
		if !loan.Active {
			t.Error("expected loan still active")
		}
	})

	t.Run("requires_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower, asset := deposit(t, db, svc)
		approveVaultBurn(t, db, borrower.Address, testutil.FixedLoanValue)

		// Borrower spent part of the loan elsewhere.
		other := testutil.CreateTestUser(t, db)
		testutil.AssertNoError(t, svc.tokens.Transfer(models.TokenStable, borrower.Address, other.Address, 1))

		err := svc.Withdraw(borrower.Address, asset.ID)
		testutil.AssertAppError(t, err, "INSUFFICIENT_BALANCE")
	})

	t.Run("not_borrower", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		_, asset := deposit(t, db, svc)
		other := testutil.CreateTestUser(t, db)

		err := svc.Withdraw(other.Address, asset.ID)
		testutil.AssertAppError(t, err, "NOT_BORROWER")
	})

	t.Run("no_loan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		owner := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, owner.Address, owner.Address)

		err := svc.Withdraw(owner.Address, asset.ID)
		testutil.AssertAppError(t, err, "LOAN_NOT_FOUND")
	})

	t.Run("paused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower, asset := deposit(t, db, svc)
		approveVaultBurn(t, db, borrower.Address, testutil.FixedLoanValue)

		testutil.AssertNoError(t, svc.SetPaused(true))
		err := svc.Withdraw(borrower.Address, asset.ID)
		testutil.AssertAppError(t, err, "VAULT_PAUSED")
	})

	t.Run("loan_is_reenterable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower, asset := deposit(t, db, svc)
		approveVaultBurn(t, db, borrower.Address, 2*testutil.FixedLoanValue)

		testutil.AssertNoError(t, svc.Withdraw(borrower.Address, asset.ID))

		loan, err := svc.Deposit(borrower.Address, asset.ID)
		testutil.AssertNoError(t, err)
		if !loan.Active {
			t.Error("expected reopened loan to be active")
		}
		if supply := stableSupply(t, svc); supply != testutil.FixedLoanValue {
			t.Errorf("expected supply %d after redeposit, got %d", testutil.FixedLoanValue, supply)
		}
	})

	t.Run("batch_all_or_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower := testutil.CreateTestUser(t, db)
		a := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)
		b := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)
		_, err := svc.DepositBatch(borrower.Address, []uint{a.ID, b.ID})
		testutil.AssertNoError(t, err)

		// Enough allowance for one settlement only.
		approveVaultBurn(t, db, borrower.Address, testutil.FixedLoanValue)

		err = svc.WithdrawBatch(borrower.Address, []uint{a.ID, b.ID})
		testutil.AssertAppError(t, err, "INSUFFICIENT_ALLOWANCE")

		// Both loans stay active and nothing was burned.
		if supply := stableSupply(t, svc); supply != 2*testutil.FixedLoanValue {
			t.Errorf("expected supply unchanged at %d, got %d", 2*testutil.FixedLoanValue, supply)
		}
		var fresh models.Asset
		db.First(&fresh, a.ID)
		if fresh.Owner != models.VaultAddress {
			t.Errorf("expected first asset still in custody, got %s", fresh.Owner)
		}
	})
}

func TestSweepAsset(t *testing.T) {
	t.Run("recovers_unsolicited_transfer", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		owner := testutil.CreateTestUser(t, db)
		recipient := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, owner.Address, owner.Address)

		// The asset reached custody without a deposit.
		db.Model(&models.Asset{}).Where("id = ?", asset.ID).Update("owner", models.VaultAddress)

		testutil.AssertNoError(t, svc.SweepAsset(asset.ID, recipient.Address))

		var fresh models.Asset
		db.First(&fresh, asset.ID)
		if fresh.Owner != recipient.Address {
			t.Errorf("expected asset swept to recipient, got %s", fresh.Owner)
		}
	})

	t.Run("blocked_by_active_loan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		borrower := testutil.CreateTestUser(t, db)
		recipient := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)
		_, err := svc.Deposit(borrower.Address, asset.ID)
		testutil.AssertNoError(t, err)

		err = svc.SweepAsset(asset.ID, recipient.Address)
		testutil.AssertAppError(t, err, "LOAN_ACTIVE")
	})

	t.Run("works_while_paused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		owner := testutil.CreateTestUser(t, db)
		recipient := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, owner.Address, owner.Address)
		db.Model(&models.Asset{}).Where("id = ?", asset.ID).Update("owner", models.VaultAddress)

		testutil.AssertNoError(t, svc.SetPaused(true))
		testutil.AssertNoError(t, svc.SweepAsset(asset.ID, recipient.Address))
	})

	t.Run("not_in_custody", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)
		owner := testutil.CreateTestUser(t, db)
		recipient := testutil.CreateTestUser(t, db)
		asset := testutil.CreateTestAsset(t, db, owner.Address, owner.Address)

		err := svc.SweepAsset(asset.ID, recipient.Address)
		testutil.AssertAppError(t, err, "NOT_IN_CUSTODY")
	})

	t.Run("empty_recipient", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestVault(db)

		err := svc.SweepAsset(1, "")
		testutil.AssertAppError(t, err, "ZERO_ADDRESS")
	})
}

func TestVaultStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestVault(db)
	borrower := testutil.CreateTestUser(t, db)

	a := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)
	b := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)
	_, err := svc.DepositBatch(borrower.Address, []uint{a.ID, b.ID})
	testutil.AssertNoError(t, err)

	stats, err := svc.Stats()
	testutil.AssertNoError(t, err)
	if stats.ActiveLoans != 2 {
		t.Errorf("expected 2 active loans, got %d", stats.ActiveLoans)
	}
	if stats.StableSupply != 2*testutil.FixedLoanValue {
		t.Errorf("expected supply %d, got %d", 2*testutil.FixedLoanValue, stats.StableSupply)
	}

	approveVaultBurn(t, db, borrower.Address, testutil.FixedLoanValue)
	testutil.AssertNoError(t, svc.Withdraw(borrower.Address, a.ID))

	stats, err = svc.Stats()
	testutil.AssertNoError(t, err)
	if stats.ActiveLoans != 1 {
		t.Errorf("expected 1 active loan, got %d", stats.ActiveLoans)
	}
	if stats.StableSupply != testutil.FixedLoanValue {
		t.Errorf("expected supply %d, got %d", testutil.FixedLoanValue, stats.StableSupply)
	}
}

func TestGetUserLoans(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestVault(db)
	borrower := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	var assetIDs []uint
	for i := 0; i < 3; i++ {
		asset := testutil.CreateTestAsset(t, db, borrower.Address, borrower.Address)
		assetIDs = append(assetIDs, asset.ID)
	}
	otherAsset := testutil.CreateTestAsset(t, db, other.Address, other.Address)

	_, err := svc.DepositBatch(borrower.Address, assetIDs)
	testutil.AssertNoError(t, err)
	_, err = svc.Deposit(other.Address, otherAsset.ID)
	testutil.AssertNoError(t, err)

	// Settle one so ordering puts active loans first.
	approveVaultBurn(t, db, borrower.Address, testutil.FixedLoanValue)
	testutil.AssertNoError(t, svc.Withdraw(borrower.Address, assetIDs[0]))

	page, err := svc.GetUserLoans(borrower.Address, pagination.PageRequest{Page: 1, PageSize: 10})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 3 {
		t.Errorf("expected 3 loans for borrower, got %d", page.TotalItems)
	}
	if !page.Data[0].Active {
		t.Error("expected active loans ordered first")
	}
	last := page.Data[len(page.Data)-1]
	if last.Active || last.AssetID != assetIDs[0] {
		t.Errorf("expected the settled loan last, got asset %d active=%v", last.AssetID, last.Active)
	}
}
