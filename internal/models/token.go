package models

// TokenKind identifies one of the two fungible ledgers.
type TokenKind string

const (
	// TokenPay is the payment medium consumed during purchase settlement.
	TokenPay TokenKind = "pay"
	// TokenStable is the supply-capped token minted against vault collateral.
	TokenStable TokenKind = "stable"
)

// TokenState tracks total supply per token kind. MaxSupply of zero means
// uncapped; the stable token always carries a cap.
type TokenState struct {
	Base
	Kind        TokenKind `gorm:"uniqueIndex;not null" json:"kind"`
	TotalSupply int64     `gorm:"not null;default:0" json:"total_supply"`
	MaxSupply   int64     `gorm:"not null;default:0" json:"max_supply"`
}

// TokenBalance is one holder's balance in one token ledger.
type TokenBalance struct {
	Base
	Kind    TokenKind `gorm:"not null;uniqueIndex:idx_token_holder" json:"kind"`
	Address string    `gorm:"not null;uniqueIndex:idx_token_holder" json:"address"`
	Amount  int64     `gorm:"not null;default:0" json:"amount"`
}

// TokenAllowance lets a spender move up to Amount of the owner's balance.
type TokenAllowance struct {
	Base
	Kind    TokenKind `gorm:"not null;uniqueIndex:idx_token_allowance" json:"kind"`
	Owner   string    `gorm:"not null;uniqueIndex:idx_token_allowance" json:"owner"`
	Spender string    `gorm:"not null;uniqueIndex:idx_token_allowance" json:"spender"`
	Amount  int64     `gorm:"not null;default:0" json:"amount"`
}
