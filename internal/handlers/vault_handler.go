package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "verdant/internal/errors"
	"verdant/internal/pagination"
	"verdant/internal/services"
)

// VaultHandler handles collateral deposits, withdrawals, loan queries,
// and administrative asset recovery.
type VaultHandler struct {
	vaultService services.VaultServicer
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(vaultService services.VaultServicer) *VaultHandler {
	return &VaultHandler{vaultService: vaultService}
}

// VaultBatchRequest represents a deposit or withdrawal over multiple assets.
type VaultBatchRequest struct {
	AssetIDs []uint `json:"asset_ids" binding:"required,min=1"`
}

// SweepRequest represents the admin recovery payload.
type SweepRequest struct {
	Recipient string `json:"recipient" binding:"required,ledger_address"`
}

// Deposit handles locking assets as loan collateral.
// @Summary     Deposit collateral
// @Description Lock owned assets in vault custody; the fixed loan value of stable token is minted per asset
// @Tags        vault
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body VaultBatchRequest true "Asset IDs to deposit"
// @Success     201 {array} models.Loan "Opened loans"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Caller does not own an asset"
// @Failure     409 {object} ErrorResponse "Vault paused, asset redeemed, or loan already active"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /vault/deposits [post]
func (h *VaultHandler) Deposit(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req VaultBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	loans, err := h.vaultService.DepositBatch(address, req.AssetIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"loans": loans})
}

// Withdraw handles repaying loans and reclaiming collateral.
// @Summary     Withdraw collateral
// @Description Burn the fixed loan value per asset from the borrower and return custody
// @Tags        vault
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body VaultBatchRequest true "Asset IDs to withdraw"
// @Success     200 {object} MessageResponse "Loans settled"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient balance/allowance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Caller is not the borrower"
// @Failure     404 {object} ErrorResponse "No active loan"
// @Failure     409 {object} ErrorResponse "Vault paused"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /vault/withdrawals [post]
func (h *VaultHandler) Withdraw(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req VaultBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.vaultService.WithdrawBatch(address, req.AssetIDs); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collateral withdrawn successfully"})
}

// GetMyLoans handles listing the caller's loans.
// @Summary     List my loans
// @Description Get a paginated list of the caller's loans, active first
// @Tags        vault
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Loan] "Paginated loans"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /vault/loans [get]
func (h *VaultHandler) GetMyLoans(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.vaultService.GetUserLoans(address, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLoanStatus handles querying the loan record for an asset.
// @Summary     Get loan status
// @Description Get the loan record for an asset, if any exists
// @Tags        vault
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Asset ID"
// @Success     200 {object} models.Loan "Loan record"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No loan for this asset"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /vault/loans/{id} [get]
func (h *VaultHandler) GetLoanStatus(c *gin.Context) {
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	loan, err := h.vaultService.LoanStatus(assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// GetStats handles querying vault-wide counters.
// @Summary     Get vault stats
// @Description Get the active loan count and outstanding stable supply
// @Tags        vault
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.VaultStats "Vault stats"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /vault/stats [get]
func (h *VaultHandler) GetStats(c *gin.Context) {
	stats, err := h.vaultService.Stats()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// SweepAsset handles administrative recovery of unsolicited custody.
// @Summary     Sweep a custody asset
// @Description Recover an asset that reached vault custody without a deposit; never touches loan collateral
// @Tags        vault
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int          true "Asset ID"
// @Param       request body SweepRequest true "Recovery recipient"
// @Success     200 {object} MessageResponse "Asset recovered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     409 {object} ErrorResponse "Asset not in custody or loan active"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /vault/sweep/{id} [post]
func (h *VaultHandler) SweepAsset(c *gin.Context) {
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.vaultService.SweepAsset(assetID, req.Recipient); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Asset recovered successfully"})
}
