package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "verdant/internal/errors"
	"verdant/internal/pagination"
	"verdant/internal/services"
)

// MarketHandler handles batch minting, auction pricing, purchases,
// pull-payment claims, and asset redemption.
type MarketHandler struct {
	marketService services.MarketServicer
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketService services.MarketServicer) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

// MintBatchRequest represents the request payload for minting a batch.
type MintBatchRequest struct {
	Producers    []string `json:"producers" binding:"required,min=1,dive,ledger_address"`
	MetadataRefs []string `json:"metadata_refs" binding:"required,min=1,dive,min=1,max=512"`
}

// BuyBatchRequest represents the request payload for a purchase.
type BuyBatchRequest struct {
	MaxCost  int64 `json:"max_cost" binding:"required,gt=0"`
	Quantity int   `json:"quantity" binding:"required,gt=0"`
}

// RedeemAssetsRequest represents the request payload for batch redemption.
type RedeemAssetsRequest struct {
	AssetIDs []uint `json:"asset_ids" binding:"required,min=1"`
}

// MintBatch handles minting a new batch of assets.
// @Summary     Mint a batch
// @Description Mint a batch of assets; the starting price locks in the current base price
// @Tags        market
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body MintBatchRequest true "Producers and metadata, index-aligned"
// @Success     201 {object} models.Batch "Batch minted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Minter role required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /market/batches [post]
func (h *MarketHandler) MintBatch(c *gin.Context) {
	var req MintBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	batch, err := h.marketService.MintBatch(req.Producers, req.MetadataRefs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"batch": batch})
}

// GetBatches handles listing batches.
// @Summary     List batches
// @Description Get a paginated list of batches, newest first
// @Tags        market
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Batch] "Paginated batches"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /market/batches [get]
func (h *MarketHandler) GetBatches(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.marketService.ListBatches(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBatch handles retrieving a specific batch with its assets.
// @Summary     Get batch by ID
// @Description Get a specific batch and its assets
// @Tags        market
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Batch ID"
// @Success     200 {object} models.Batch "Batch details"
// @Failure     400 {object} ErrorResponse "Invalid batch ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Batch not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /market/batches/{id} [get]
func (h *MarketHandler) GetBatch(c *gin.Context) {
	batchID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	batch, err := h.marketService.GetBatch(batchID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"batch": batch})
}

// GetBatchPrice handles quoting a batch's current per-unit price.
// @Summary     Get current batch price
// @Description Get the batch's current per-unit auction price
// @Tags        market
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Batch ID"
// @Success     200 {object} map[string]int64 "Current unit price"
// @Failure     400 {object} ErrorResponse "Invalid batch ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Batch not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /market/batches/{id}/price [get]
func (h *MarketHandler) GetBatchPrice(c *gin.Context) {
	batchID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	price, err := h.marketService.CurrentPrice(batchID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"batch_id": batchID, "unit_price": price})
}

// BuyBatch handles purchasing assets from a batch.
// @Summary     Buy from a batch
// @Description Buy assets from a batch; exactly the total cost is pulled from the buyer's approved payment balance
// @Tags        market
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int             true "Batch ID"
// @Param       request body BuyBatchRequest true "Maximum spend and quantity"
// @Success     200 {object} services.PurchaseReceipt "Settled purchase"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient funds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Batch not found"
// @Failure     409 {object} ErrorResponse "Market paused"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /market/batches/{id}/buy [post]
func (h *MarketHandler) BuyBatch(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	batchID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BuyBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	receipt, err := h.marketService.BuyBatch(address, batchID, req.MaxCost, req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}

// GetProducerBalance handles querying the caller's unclaimed accrual.
// @Summary     Get producer balance
// @Description Get the caller's unclaimed accrued revenue
// @Tags        claims
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Unclaimed balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /market/claims/producer [get]
func (h *MarketHandler) GetProducerBalance(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.marketService.ProducerBalance(address)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"producer": address, "balance": balance})
}

// ClaimProducerFunds handles a producer pulling their accrued revenue.
// @Summary     Claim producer funds
// @Description Pull the caller's entire accrued revenue to their payment balance
// @Tags        claims
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Amount claimed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Nothing to claim"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /market/claims/producer [post]
func (h *MarketHandler) ClaimProducerFunds(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	amount, err := h.marketService.ClaimProducerFunds(address)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"producer": address, "claimed": amount})
}

// ClaimPlatformFunds handles the platform share payout.
// @Summary     Claim platform funds
// @Description Pull the platform's entire accrued share to the caller's payment balance
// @Tags        claims
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Amount claimed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     409 {object} ErrorResponse "Nothing to claim"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /market/claims/platform [post]
func (h *MarketHandler) ClaimPlatformFunds(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	amount, err := h.marketService.ClaimPlatformFunds(address)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipient": address, "claimed": amount})
}

// GetAsset handles retrieving a single asset.
// @Summary     Get asset by ID
// @Description Get a single asset with its provenance fields
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Asset ID"
// @Success     200 {object} models.Asset "Asset details"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id} [get]
func (h *MarketHandler) GetAsset(c *gin.Context) {
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	asset, err := h.marketService.GetAsset(assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// RedeemAsset handles redeeming a single asset.
// @Summary     Redeem an asset
// @Description Permanently mark the asset's underlying claim as consumed
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Asset ID"
// @Success     200 {object} models.Asset "Redeemed asset"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Caller does not own the asset"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     409 {object} ErrorResponse "Already redeemed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/{id}/redeem [post]
func (h *MarketHandler) RedeemAsset(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	asset, err := h.marketService.RedeemAsset(address, assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// RedeemAssets handles redeeming a list of assets atomically.
// @Summary     Redeem assets
// @Description Redeem a list of owned assets; any failing precondition aborts the whole request
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RedeemAssetsRequest true "Asset IDs"
// @Success     200 {array} models.Asset "Redeemed assets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Caller does not own an asset"
// @Failure     409 {object} ErrorResponse "An asset is already redeemed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assets/redeem [post]
func (h *MarketHandler) RedeemAssets(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RedeemAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	assets, err := h.marketService.RedeemAssets(address, req.AssetIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// GetMarketState handles querying the global market state.
// @Summary     Get market state
// @Description Get the global pricing parameters and pause switches
// @Tags        market
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.MarketState "Market state"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /market/state [get]
func (h *MarketHandler) GetMarketState(c *gin.Context) {
	state, err := h.marketService.State()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state})
}
