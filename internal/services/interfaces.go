package services

import (
	"gorm.io/gorm"

	"verdant/internal/models"
	"verdant/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string, role models.Role) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetUserByAddress(address string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// TokenServicer defines the contract for the two fungible ledgers (the
// payment medium and the supply-capped stable token). The *Tx variants
// run inside a caller-owned gorm transaction so the market and the vault
// can compose settlement steps atomically.
type TokenServicer interface {
	BalanceOf(kind models.TokenKind, address string) (int64, error)
	TotalSupply(kind models.TokenKind) (*models.TokenState, error)
	Allowance(kind models.TokenKind, owner, spender string) (int64, error)
	Approve(kind models.TokenKind, owner, spender string, amount int64) error
	Transfer(kind models.TokenKind, from, to string, amount int64) error
	Mint(kind models.TokenKind, to string, amount int64) error

	TransferTx(tx *gorm.DB, kind models.TokenKind, from, to string, amount int64) error
	TransferFromTx(tx *gorm.DB, kind models.TokenKind, spender, from, to string, amount int64) error
	MintTx(tx *gorm.DB, kind models.TokenKind, to string, amount int64) error
	BurnTx(tx *gorm.DB, kind models.TokenKind, from string, amount int64) error
	BurnFromTx(tx *gorm.DB, kind models.TokenKind, spender, from string, amount int64) error
}

// PurchaseReceipt summarises one settled purchase.
type PurchaseReceipt struct {
	BatchID       uint   `json:"batch_id"`
	AssetIDs      []uint `json:"asset_ids"`
	UnitPrice     int64  `json:"unit_price"`
	TotalCost     int64  `json:"total_cost"`
	Refund        int64  `json:"refund"`
	PlatformShare int64  `json:"platform_share"`
	ProducerShare int64  `json:"producer_share"`
	Remaining     int    `json:"remaining"`
}

// MarketServicer defines the contract for batch minting, auction pricing,
// purchase settlement, pull-payment claims, and redemption.
type MarketServicer interface {
	MintBatch(producers, metadataRefs []string) (*models.Batch, error)
	GetBatch(batchID uint) (*models.Batch, error)
	ListBatches(page pagination.PageRequest) (*pagination.PageResponse[models.Batch], error)
	CurrentPrice(batchID uint) (int64, error)
	BuyBatch(buyer string, batchID uint, maxCost int64, quantity int) (*PurchaseReceipt, error)
	ClaimProducerFunds(producer string) (int64, error)
	ClaimPlatformFunds(recipient string) (int64, error)
	ProducerBalance(producer string) (int64, error)
	RedeemAsset(caller string, assetID uint) (*models.Asset, error)
	RedeemAssets(caller string, assetIDs []uint) ([]models.Asset, error)
	GetAsset(assetID uint) (*models.Asset, error)
	State() (*models.MarketState, error)
	SetPaused(paused bool) error
}

// VaultStats aggregates vault-wide counters for dashboards.
type VaultStats struct {
	ActiveLoans  int64 `json:"active_loans"`
	StableSupply int64 `json:"stable_supply"`
}

// VaultServicer defines the contract for collateral loan bookkeeping.
type VaultServicer interface {
	Deposit(borrower string, assetID uint) (*models.Loan, error)
	DepositBatch(borrower string, assetIDs []uint) ([]models.Loan, error)
	Withdraw(borrower string, assetID uint) error
	WithdrawBatch(borrower string, assetIDs []uint) error
	SweepAsset(assetID uint, recipient string) error
	GetUserLoans(borrower string, page pagination.PageRequest) (*pagination.PageResponse[models.Loan], error)
	LoanStatus(assetID uint) (*models.Loan, error)
	Stats() (*VaultStats, error)
	SetPaused(paused bool) error
}

// EventServicer defines the contract for the append-only event feed.
type EventServicer interface {
	Record(eventType string, payload map[string]interface{})
	List(page pagination.PageRequest, eventType string) (*pagination.PageResponse[models.Event], error)
}
