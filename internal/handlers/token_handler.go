package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "verdant/internal/errors"
	"verdant/internal/models"
	"verdant/internal/services"
)

// TokenHandler exposes the two fungible ledgers.
type TokenHandler struct {
	tokenService services.TokenServicer
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(tokenService services.TokenServicer) *TokenHandler {
	return &TokenHandler{tokenService: tokenService}
}

// ApproveRequest represents setting a spender allowance.
type ApproveRequest struct {
	Spender string `json:"spender" binding:"required,ledger_address"`
	Amount  int64  `json:"amount" binding:"gte=0"`
}

// TransferRequest represents a direct transfer.
type TransferRequest struct {
	To     string `json:"to" binding:"required,ledger_address"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// MintRequest represents minting new payment token supply.
type MintRequest struct {
	To     string `json:"to" binding:"required,ledger_address"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

func parseTokenKind(c *gin.Context) (models.TokenKind, error) {
	kind := models.TokenKind(c.Param("kind"))
	if kind != models.TokenPay && kind != models.TokenStable {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid token kind")
	}
	return kind, nil
}

// GetBalance handles querying the caller's balance for a token kind.
// @Summary     Get token balance
// @Description Get the caller's balance for the given token kind
// @Tags        tokens
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       kind path string true "Token kind (pay or stable)"
// @Success     200 {object} map[string]int64 "Balance"
// @Failure     400 {object} ErrorResponse "Invalid token kind"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tokens/{kind}/balance [get]
func (h *TokenHandler) GetBalance(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	kind, err := parseTokenKind(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.tokenService.BalanceOf(kind, address)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"kind": kind, "address": address, "balance": balance})
}

// GetSupply handles querying a token kind's supply and cap.
// @Summary     Get token supply
// @Description Get the total supply and maximum supply for the given token kind
// @Tags        tokens
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       kind path string true "Token kind (pay or stable)"
// @Success     200 {object} models.TokenState "Supply state"
// @Failure     400 {object} ErrorResponse "Invalid token kind"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tokens/{kind}/supply [get]
func (h *TokenHandler) GetSupply(c *gin.Context) {
	kind, err := parseTokenKind(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	state, err := h.tokenService.TotalSupply(kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"supply": state})
}

// GetAllowance handles querying the caller's allowance toward a spender.
// @Summary     Get token allowance
// @Description Get the caller's current allowance toward a spender
// @Tags        tokens
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       kind    path  string true "Token kind (pay or stable)"
// @Param       spender query string true "Spender address"
// @Success     200 {object} map[string]int64 "Allowance"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tokens/{kind}/allowance [get]
func (h *TokenHandler) GetAllowance(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	kind, err := parseTokenKind(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	spender := c.Query("spender")
	if spender == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "spender is required"))
		return
	}

	allowance, err := h.tokenService.Allowance(kind, address, spender)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"owner": address, "spender": spender, "allowance": allowance})
}

// Approve handles setting a spender allowance over the caller's balance.
// @Summary     Approve a spender
// @Description Set (not add to) a spender's allowance over the caller's balance
// @Tags        tokens
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       kind    path string         true "Token kind (pay or stable)"
// @Param       request body ApproveRequest true "Spender and amount"
// @Success     200 {object} MessageResponse "Allowance set"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tokens/{kind}/approve [post]
func (h *TokenHandler) Approve(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	kind, err := parseTokenKind(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.tokenService.Approve(kind, address, req.Spender, req.Amount); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Allowance set successfully"})
}

// Transfer handles a direct transfer from the caller's balance.
// @Summary     Transfer tokens
// @Description Move tokens from the caller's balance to another holder
// @Tags        tokens
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       kind    path string          true "Token kind (pay or stable)"
// @Param       request body TransferRequest true "Recipient and amount"
// @Success     200 {object} MessageResponse "Transfer settled"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tokens/{kind}/transfer [post]
func (h *TokenHandler) Transfer(c *gin.Context) {
	address, err := getAddress(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	kind, err := parseTokenKind(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.tokenService.Transfer(kind, address, req.To, req.Amount); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transfer completed successfully"})
}

// Mint handles minting payment token supply. Stable supply cannot be
// minted here regardless of role.
// @Summary     Mint tokens
// @Description Mint new payment token supply to a holder; stable supply is vault-only
// @Tags        tokens
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       kind    path string      true "Token kind (pay only)"
// @Param       request body MintRequest true "Recipient and amount"
// @Success     200 {object} MessageResponse "Supply minted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Minter role required or mint restricted"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tokens/{kind}/mint [post]
func (h *TokenHandler) Mint(c *gin.Context) {
	kind, err := parseTokenKind(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.tokenService.Mint(kind, req.To, req.Amount); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tokens minted successfully"})
}
