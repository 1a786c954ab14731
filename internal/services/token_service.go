package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "verdant/internal/errors"
	"verdant/internal/models"
)

// tokenService implements both fungible ledgers over the same tables.
// The stable token's mint path is reserved for the vault: the HTTP-facing
// Mint only accepts the payment kind, while the vault mints stable via
// MintTx inside its own deposit transaction.
type tokenService struct {
	db *gorm.DB
}

// NewTokenService creates a new TokenServicer.
func NewTokenService(db *gorm.DB) TokenServicer {
	return &tokenService{db: db}
}

// BalanceOf returns a holder's balance; unknown holders have balance zero.
func (s *tokenService) BalanceOf(kind models.TokenKind, address string) (int64, error) {
	if address == "" {
		return 0, apperrors.ErrZeroAddress
	}
	var balance models.TokenBalance
	err := s.db.Where("kind = ? AND address = ?", kind, address).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return balance.Amount, nil
}

// TotalSupply returns the supply state row for a token kind.
func (s *tokenService) TotalSupply(kind models.TokenKind) (*models.TokenState, error) {
	var state models.TokenState
	if err := s.db.Where("kind = ?", kind).First(&state).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &state, nil
}

// Allowance returns how much of owner's balance spender may move.
func (s *tokenService) Allowance(kind models.TokenKind, owner, spender string) (int64, error) {
	var allowance models.TokenAllowance
	err := s.db.Where("kind = ? AND owner = ? AND spender = ?", kind, owner, spender).First(&allowance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return allowance.Amount, nil
}

// Approve sets (not adds to) the spender's allowance over owner's balance.
func (s *tokenService) Approve(kind models.TokenKind, owner, spender string, amount int64) error {
	if owner == "" || spender == "" {
		return apperrors.ErrZeroAddress
	}
	if amount < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "allowance must not be negative")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var allowance models.TokenAllowance
		err := tx.Where("kind = ? AND owner = ? AND spender = ?", kind, owner, spender).First(&allowance).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			allowance = models.TokenAllowance{Kind: kind, Owner: owner, Spender: spender, Amount: amount}
			if err := tx.Create(&allowance).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		}
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		allowance.Amount = amount
		if err := tx.Save(&allowance).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// Transfer moves tokens between two holders in its own transaction.
func (s *tokenService) Transfer(kind models.TokenKind, from, to string, amount int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.TransferTx(tx, kind, from, to, amount)
	})
}

// Mint creates new supply. Only the payment token may be minted through
// this path; stable supply is created exclusively by the vault.
func (s *tokenService) Mint(kind models.TokenKind, to string, amount int64) error {
	if kind == models.TokenStable {
		return apperrors.ErrMintRestricted
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.MintTx(tx, kind, to, amount)
	})
}

// TransferTx moves tokens inside a caller-owned transaction.
func (s *tokenService) TransferTx(tx *gorm.DB, kind models.TokenKind, from, to string, amount int64) error {
	if amount <= 0 {
		return apperrors.ErrZeroAmount
	}
	if from == "" || to == "" {
		return apperrors.ErrZeroAddress
	}

	if err := s.debit(tx, kind, from, amount); err != nil {
		return err
	}
	return s.credit(tx, kind, to, amount)
}

// TransferFromTx moves tokens from owner to recipient, consuming the
// spender's allowance.
func (s *tokenService) TransferFromTx(tx *gorm.DB, kind models.TokenKind, spender, from, to string, amount int64) error {
	if amount <= 0 {
		return apperrors.ErrZeroAmount
	}
	if spender == "" || from == "" || to == "" {
		return apperrors.ErrZeroAddress
	}

	if err := s.consumeAllowance(tx, kind, from, spender, amount); err != nil {
		return err
	}
	if err := s.debit(tx, kind, from, amount); err != nil {
		return err
	}
	return s.credit(tx, kind, to, amount)
}

// MintTx creates supply inside a caller-owned transaction, enforcing the
// kind's supply cap when one is set.
func (s *tokenService) MintTx(tx *gorm.DB, kind models.TokenKind, to string, amount int64) error {
	if amount <= 0 {
		return apperrors.ErrZeroAmount
	}
	if to == "" {
		return apperrors.ErrZeroAddress
	}

	var state models.TokenState
	if err := tx.Where("kind = ?", kind).First(&state).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if state.MaxSupply > 0 && state.TotalSupply+amount > state.MaxSupply {
		return apperrors.ErrSupplyCapExceeded
	}

	state.TotalSupply += amount
	if err := tx.Save(&state).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.credit(tx, kind, to, amount)
}

// BurnTx destroys supply from the holder's own balance.
func (s *tokenService) BurnTx(tx *gorm.DB, kind models.TokenKind, from string, amount int64) error {
	if amount <= 0 {
		return apperrors.ErrZeroAmount
	}
	if from == "" {
		return apperrors.ErrZeroAddress
	}

	if err := s.debit(tx, kind, from, amount); err != nil {
		return err
	}
	return s.reduceSupply(tx, kind, amount)
}

// BurnFromTx destroys supply from another holder's balance, consuming the
// spender's allowance first.
func (s *tokenService) BurnFromTx(tx *gorm.DB, kind models.TokenKind, spender, from string, amount int64) error {
	if amount <= 0 {
		return apperrors.ErrZeroAmount
	}
	if spender == "" || from == "" {
		return apperrors.ErrZeroAddress
	}

	if err := s.consumeAllowance(tx, kind, from, spender, amount); err != nil {
		return err
	}
	if err := s.debit(tx, kind, from, amount); err != nil {
		return err
	}
	return s.reduceSupply(tx, kind, amount)
}

func (s *tokenService) debit(tx *gorm.DB, kind models.TokenKind, address string, amount int64) error {
	var balance models.TokenBalance
	err := tx.Where("kind = ? AND address = ?", kind, address).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && balance.Amount < amount) {
		return apperrors.ErrInsufficientBalance
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	balance.Amount -= amount
	if err := tx.Save(&balance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *tokenService) credit(tx *gorm.DB, kind models.TokenKind, address string, amount int64) error {
	var balance models.TokenBalance
	err := tx.Where("kind = ? AND address = ?", kind, address).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = models.TokenBalance{Kind: kind, Address: address, Amount: amount}
		if err := tx.Create(&balance).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	balance.Amount += amount
	if err := tx.Save(&balance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *tokenService) consumeAllowance(tx *gorm.DB, kind models.TokenKind, owner, spender string, amount int64) error {
	var allowance models.TokenAllowance
	err := tx.Where("kind = ? AND owner = ? AND spender = ?", kind, owner, spender).First(&allowance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && allowance.Amount < amount) {
		return apperrors.ErrInsufficientAllowance
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	allowance.Amount -= amount
	if err := tx.Save(&allowance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *tokenService) reduceSupply(tx *gorm.DB, kind models.TokenKind, amount int64) error {
	var state models.TokenState
	if err := tx.Where("kind = ?", kind).First(&state).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	state.TotalSupply -= amount
	if err := tx.Save(&state).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
