package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "verdant/internal/errors"
	"verdant/internal/models"
	"verdant/internal/pagination"
	"verdant/internal/services"
	"verdant/internal/uuid"
)

// --- mock vault service ---

type mockVaultService struct {
	depositFn       func(borrower string, assetID uint) (*models.Loan, error)
	depositBatchFn  func(borrower string, assetIDs []uint) ([]models.Loan, error)
	withdrawFn      func(borrower string, assetID uint) error
	withdrawBatchFn func(borrower string, assetIDs []uint) error
	sweepAssetFn    func(assetID uint, recipient string) error
	getUserLoansFn  func(borrower string, page pagination.PageRequest) (*pagination.PageResponse[models.Loan], error)
	loanStatusFn    func(assetID uint) (*models.Loan, error)
	statsFn         func() (*services.VaultStats, error)
	setPausedFn     func(paused bool) error
}

func (m *mockVaultService) Deposit(borrower string, assetID uint) (*models.Loan, error) {
	if m.depositFn != nil {
		return m.depositFn(borrower, assetID)
	}
	return &models.Loan{}, nil
}

func (m *mockVaultService) DepositBatch(borrower string, assetIDs []uint) ([]models.Loan, error) {
	if m.depositBatchFn != nil {
		return m.depositBatchFn(borrower, assetIDs)
	}
	return nil, nil
}

func (m *mockVaultService) Withdraw(borrower string, assetID uint) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(borrower, assetID)
	}
	return nil
}

func (m *mockVaultService) WithdrawBatch(borrower string, assetIDs []uint) error {
	if m.withdrawBatchFn != nil {
		return m.withdrawBatchFn(borrower, assetIDs)
	}
	return nil
}

func (m *mockVaultService) SweepAsset(assetID uint, recipient string) error {
	if m.sweepAssetFn != nil {
		return m.sweepAssetFn(assetID, recipient)
	}
	return nil
}

func (m *mockVaultService) GetUserLoans(borrower string, page pagination.PageRequest) (*pagination.PageResponse[models.Loan], error) {
	if m.getUserLoansFn != nil {
		return m.getUserLoansFn(borrower, page)
	}
	resp := pagination.NewPageResponse([]models.Loan{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockVaultService) LoanStatus(assetID uint) (*models.Loan, error) {
	if m.loanStatusFn != nil {
		return m.loanStatusFn(assetID)
	}
	return &models.Loan{}, nil
}

func (m *mockVaultService) Stats() (*services.VaultStats, error) {
	if m.statsFn != nil {
		return m.statsFn()
	}
	return &services.VaultStats{}, nil
}

func (m *mockVaultService) SetPaused(paused bool) error {
	if m.setPausedFn != nil {
		return m.setPausedFn(paused)
	}
	return nil
}

var _ services.VaultServicer = (*mockVaultService)(nil)

func setupVaultRouter(handler *VaultHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUser(1, testAddress, models.RoleMember))
	auth.POST("/vault/deposits", handler.Deposit)
	auth.POST("/vault/withdrawals", handler.Withdraw)
	auth.GET("/vault/loans", handler.GetMyLoans)
	auth.GET("/vault/loans/:id", handler.GetLoanStatus)
	auth.GET("/vault/stats", handler.GetStats)
	auth.POST("/vault/sweep/:id", handler.SweepAsset)
	return r
}

// --- tests ---

func TestVaultHandler_Deposit(t *testing.T) {
	t.Run("returns 201 with opened loans", func(t *testing.T) {
		svc := &mockVaultService{
			depositBatchFn: func(borrower string, assetIDs []uint) ([]models.Loan, error) {
				if borrower != testAddress {
					t.Errorf("expected borrower %s, got %s", testAddress, borrower)
				}
				loans := make([]models.Loan, len(assetIDs))
				for i, id := range assetIDs {
					loans[i] = models.Loan{AssetID: id, Borrower: borrower, Active: true}
				}
				return loans, nil
			},
		}
		r := setupVaultRouter(NewVaultHandler(svc))

		rec := doRequest(r, "POST", "/vault/deposits", `{"asset_ids":[3,4]}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		loans := result["loans"].([]interface{})
		if len(loans) != 2 {
			t.Errorf("expected 2 loans, got %d", len(loans))
		}
	})

	t.Run("returns 400 on empty asset ids", func(t *testing.T) {
		r := setupVaultRouter(NewVaultHandler(&mockVaultService{}))

		rec := doRequest(r, "POST", "/vault/deposits", `{"asset_ids":[]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 409 on redeemed collateral", func(t *testing.T) {
		svc := &mockVaultService{
			depositBatchFn: func(string, []uint) ([]models.Loan, error) {
				return nil, apperrors.ErrAssetRedeemed
			},
		}
		r := setupVaultRouter(NewVaultHandler(svc))

		rec := doRequest(r, "POST", "/vault/deposits", `{"asset_ids":[3]}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ASSET_REDEEMED")
	})
}

func TestVaultHandler_Withdraw(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockVaultService{
			withdrawBatchFn: func(borrower string, assetIDs []uint) error {
				if len(assetIDs) != 1 || assetIDs[0] != 3 {
					t.Errorf("unexpected asset ids %v", assetIDs)
				}
				return nil
			},
		}
		r := setupVaultRouter(NewVaultHandler(svc))

		rec := doRequest(r, "POST", "/vault/withdrawals", `{"asset_ids":[3]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on insufficient allowance", func(t *testing.T) {
		svc := &mockVaultService{
			withdrawBatchFn: func(string, []uint) error {
				return apperrors.ErrInsufficientAllowance
			},
		}
		r := setupVaultRouter(NewVaultHandler(svc))

		rec := doRequest(r, "POST", "/vault/withdrawals", `{"asset_ids":[3]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSUFFICIENT_ALLOWANCE")
	})

	t.Run("returns 403 when not the borrower", func(t *testing.T) {
		svc := &mockVaultService{
			withdrawBatchFn: func(string, []uint) error {
				return apperrors.ErrNotBorrower
			},
		}
		r := setupVaultRouter(NewVaultHandler(svc))

		rec := doRequest(r, "POST", "/vault/withdrawals", `{"asset_ids":[3]}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

func TestVaultHandler_SweepAsset(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		recipient := uuid.New()
		svc := &mockVaultService{
			sweepAssetFn: func(assetID uint, to string) error {
				if assetID != 9 || to != recipient {
					t.Errorf("unexpected sweep args: %d %s", assetID, to)
				}
				return nil
			},
		}
		r := setupVaultRouter(NewVaultHandler(svc))

		rec := doRequest(r, "POST", "/vault/sweep/9", `{"recipient":"`+recipient+`"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 409 when loan is active", func(t *testing.T) {
		svc := &mockVaultService{
			sweepAssetFn: func(uint, string) error {
				return apperrors.ErrLoanActive
			},
		}
		r := setupVaultRouter(NewVaultHandler(svc))

		rec := doRequest(r, "POST", "/vault/sweep/9", `{"recipient":"`+uuid.New()+`"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "LOAN_ACTIVE")
	})

	t.Run("returns 400 on invalid recipient", func(t *testing.T) {
		r := setupVaultRouter(NewVaultHandler(&mockVaultService{}))

		rec := doRequest(r, "POST", "/vault/sweep/9", `{"recipient":"nope"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestVaultHandler_GetStats(t *testing.T) {
	svc := &mockVaultService{
		statsFn: func() (*services.VaultStats, error) {
			return &services.VaultStats{ActiveLoans: 3, StableSupply: 60}, nil
		},
	}
	r := setupVaultRouter(NewVaultHandler(svc))

	rec := doRequest(r, "GET", "/vault/stats", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	stats := result["stats"].(map[string]interface{})
	if stats["active_loans"].(float64) != 3 {
		t.Errorf("expected 3 active loans, got %v", stats["active_loans"])
	}
	if stats["stable_supply"].(float64) != 60 {
		t.Errorf("expected supply 60, got %v", stats["stable_supply"])
	}
}
