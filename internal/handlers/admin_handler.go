package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "verdant/internal/errors"
	"verdant/internal/services"
)

// AdminHandler exposes the administrative pause switches.
type AdminHandler struct {
	marketService services.MarketServicer
	vaultService  services.VaultServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(marketService services.MarketServicer, vaultService services.VaultServicer) *AdminHandler {
	return &AdminHandler{marketService: marketService, vaultService: vaultService}
}

// PauseRequest represents toggling a pause switch.
type PauseRequest struct {
	Paused *bool `json:"paused" binding:"required"`
}

// SetMarketPaused handles toggling the market pause switch.
// @Summary     Pause or resume the market
// @Description Toggle the market pause switch; purchases are blocked while paused
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PauseRequest true "Desired pause state"
// @Success     200 {object} MessageResponse "Switch updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/market/pause [post]
func (h *AdminHandler) SetMarketPaused(c *gin.Context) {
	var req PauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.marketService.SetPaused(*req.Paused); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Market pause switch updated"})
}

// SetVaultPaused handles toggling the vault pause switch.
// @Summary     Pause or resume the vault
// @Description Toggle the vault pause switch; deposits and withdrawals are blocked while paused
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PauseRequest true "Desired pause state"
// @Success     200 {object} MessageResponse "Switch updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/vault/pause [post]
func (h *AdminHandler) SetVaultPaused(c *gin.Context) {
	var req PauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.vaultService.SetPaused(*req.Paused); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vault pause switch updated"})
}
