package services

import (
	"testing"

	"verdant/internal/models"
	"verdant/internal/testutil"
)

func TestTokenTransfer(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		testutil.FundPayBalance(t, db, alice.Address, 100)

		testutil.AssertNoError(t, svc.Transfer(models.TokenPay, alice.Address, bob.Address, 40))

		from, _ := svc.BalanceOf(models.TokenPay, alice.Address)
		to, _ := svc.BalanceOf(models.TokenPay, bob.Address)
		if from != 60 || to != 40 {
			t.Errorf("expected balances 60/40, got %d/%d", from, to)
		}
	})

	t.Run("insufficient_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		testutil.FundPayBalance(t, db, alice.Address, 10)

		err := svc.Transfer(models.TokenPay, alice.Address, bob.Address, 11)
		testutil.AssertAppError(t, err, "INSUFFICIENT_BALANCE")
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)

		err := svc.Transfer(models.TokenPay, alice.Address, bob.Address, 0)
		testutil.AssertAppError(t, err, "ZERO_AMOUNT")
	})

	t.Run("empty_recipient", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		alice := testutil.CreateTestUser(t, db)
		testutil.FundPayBalance(t, db, alice.Address, 10)

		err := svc.Transfer(models.TokenPay, alice.Address, "", 5)
		testutil.AssertAppError(t, err, "ZERO_ADDRESS")
	})
}

func TestTokenAllowance(t *testing.T) {
	t.Run("approve_and_consume", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		owner := testutil.CreateTestUser(t, db)
		spender := testutil.CreateTestUser(t, db)
		recipient := testutil.CreateTestUser(t, db)
		testutil.FundPayBalance(t, db, owner.Address, 100)

		testutil.AssertNoError(t, svc.Approve(models.TokenPay, owner.Address, spender.Address, 50))

		allowed, err := svc.Allowance(models.TokenPay, owner.Address, spender.Address)
		testutil.AssertNoError(t, err)
		if allowed != 50 {
			t.Errorf("expected allowance 50, got %d", allowed)
		}

		err = svc.TransferFromTx(db, models.TokenPay, spender.Address, owner.Address, recipient.Address, 30)
		testutil.AssertNoError(t, err)

		allowed, _ = svc.Allowance(models.TokenPay, owner.Address, spender.Address)
		if allowed != 20 {
			t.Errorf("expected allowance reduced to 20, got %d", allowed)
		}
	})

	t.Run("exceeding_allowance_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		owner := testutil.CreateTestUser(t, db)
		spender := testutil.CreateTestUser(t, db)
		recipient := testutil.CreateTestUser(t, db)
		testutil.FundPayBalance(t, db, owner.Address, 100)
		testutil.AssertNoError(t, svc.Approve(models.TokenPay, owner.Address, spender.Address, 10))

		err := svc.TransferFromTx(db, models.TokenPay, spender.Address, owner.Address, recipient.Address, 11)
		testutil.AssertAppError(t, err, "INSUFFICIENT_ALLOWANCE")
	})

	t.Run("reapprove_overwrites", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		owner := testutil.CreateTestUser(t, db)
		spender := testutil.CreateTestUser(t, db)

		testutil.AssertNoError(t, svc.Approve(models.TokenPay, owner.Address, spender.Address, 50))
		testutil.AssertNoError(t, svc.Approve(models.TokenPay, owner.Address, spender.Address, 5))

		allowed, _ := svc.Allowance(models.TokenPay, owner.Address, spender.Address)
		if allowed != 5 {
			t.Errorf("expected allowance overwritten to 5, got %d", allowed)
		}
	})
}

func TestTokenMint(t *testing.T) {
	t.Run("pay_token_mintable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		alice := testutil.CreateTestUser(t, db)

		testutil.AssertNoError(t, svc.Mint(models.TokenPay, alice.Address, 500))

		balance, _ := svc.BalanceOf(models.TokenPay, alice.Address)
		if balance != 500 {
			t.Errorf("expected balance 500, got %d", balance)
		}
		state, err := svc.TotalSupply(models.TokenPay)
		testutil.AssertNoError(t, err)
		if state.TotalSupply != 500 {
			t.Errorf("expected supply 500, got %d", state.TotalSupply)
		}
	})

	t.Run("stable_mint_restricted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		alice := testutil.CreateTestUser(t, db)

		err := svc.Mint(models.TokenStable, alice.Address, 10)
		testutil.AssertAppError(t, err, "MINT_RESTRICTED")
	})

	t.Run("stable_supply_cap", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		alice := testutil.CreateTestUser(t, db)

		testutil.AssertNoError(t, svc.MintTx(db, models.TokenStable, alice.Address, testutil.StableMaxSupply))

		err := svc.MintTx(db, models.TokenStable, alice.Address, 1)
		testutil.AssertAppError(t, err, "SUPPLY_CAP_EXCEEDED")
	})
}

func TestTokenBurn(t *testing.T) {
	t.Run("burn_reduces_supply", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		alice := testutil.CreateTestUser(t, db)
		testutil.FundPayBalance(t, db, alice.Address, 100)

		testutil.AssertNoError(t, svc.BurnTx(db, models.TokenPay, alice.Address, 30))

		balance, _ := svc.BalanceOf(models.TokenPay, alice.Address)
		if balance != 70 {
			t.Errorf("expected balance 70, got %d", balance)
		}
		state, _ := svc.TotalSupply(models.TokenPay)
		if state.TotalSupply != 70 {
			t.Errorf("expected supply 70, got %d", state.TotalSupply)
		}
	})

	t.Run("burn_from_needs_allowance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		alice := testutil.CreateTestUser(t, db)
		burner := testutil.CreateTestUser(t, db)
		testutil.FundPayBalance(t, db, alice.Address, 100)

		err := svc.BurnFromTx(db, models.TokenPay, burner.Address, alice.Address, 10)
		testutil.AssertAppError(t, err, "INSUFFICIENT_ALLOWANCE")

		testutil.ApprovePay(t, db, alice.Address, burner.Address, 10)
		testutil.AssertNoError(t, svc.BurnFromTx(db, models.TokenPay, burner.Address, alice.Address, 10))

		balance, _ := svc.BalanceOf(models.TokenPay, alice.Address)
		if balance != 90 {
			t.Errorf("expected balance 90, got %d", balance)
		}
	})
}
