package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "verdant/internal/errors"
	"verdant/internal/models"
	"verdant/internal/pagination"
)

// vaultService manages collateral loans: an asset locked in vault custody
// backs a fixed amount of freshly minted stable token, reclaimed by
// burning the same amount. One loan per asset, re-enterable.
type vaultService struct {
	db             *gorm.DB
	tokens         TokenServicer
	events         EventServicer
	fixedLoanValue int64
}

// NewVaultService creates a new VaultServicer.
func NewVaultService(db *gorm.DB, tokens TokenServicer, events EventServicer, fixedLoanValue int64) VaultServicer {
	return &vaultService{
		db:             db,
		tokens:         tokens,
		events:         events,
		fixedLoanValue: fixedLoanValue,
	}
}

// Deposit locks an asset as collateral and mints the fixed loan value of
// stable token to the borrower.
func (s *vaultService) Deposit(borrower string, assetID uint) (*models.Loan, error) {
	loans, err := s.DepositBatch(borrower, []uint{assetID})
	if err != nil {
		return nil, err
	}
	return &loans[0], nil
}

// DepositBatch deposits a list of assets atomically: any single failing
// precondition aborts all of them.
func (s *vaultService) DepositBatch(borrower string, assetIDs []uint) ([]models.Loan, error) {
	if borrower == "" {
		return nil, apperrors.ErrZeroAddress
	}
	if len(assetIDs) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "asset ids must not be empty")
	}

	var loans []models.Loan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadMarketState(tx)
		if err != nil {
			return err
		}
		if state.VaultPaused {
			return apperrors.ErrVaultPaused
		}

		for _, assetID := range assetIDs {
			loan, err := s.depositOne(tx, borrower, assetID)
			if err != nil {
				return err
			}
			loans = append(loans, *loan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range loans {
		s.events.Record(models.EventDeposited, map[string]interface{}{
			"asset_id": loans[i].AssetID,
			"borrower": borrower,
			"minted":   s.fixedLoanValue,
		})
	}
	return loans, nil
}

func (s *vaultService) depositOne(tx *gorm.DB, borrower string, assetID uint) (*models.Loan, error) {
	var asset models.Asset
	if err := tx.First(&asset, assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if asset.Redeemed {
		return nil, apperrors.ErrAssetRedeemed
	}
	if asset.Owner != borrower {
		return nil, apperrors.ErrNotAssetOwner
	}

	var loan models.Loan
	err := tx.Where("asset_id = ?", assetID).First(&loan).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		loan = models.Loan{AssetID: assetID, Borrower: borrower, Active: true}
		if err := tx.Create(&loan).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	case loan.Active:
		return nil, apperrors.ErrLoanActive
	default:
		loan.Borrower = borrower
		loan.Active = true
		if err := tx.Save(&loan).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	asset.Owner = models.VaultAddress
	if err := tx.Save(&asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.tokens.MintTx(tx, models.TokenStable, borrower, s.fixedLoanValue); err != nil {
		return nil, err
	}
	return &loan, nil
}

// Withdraw repays a loan: burns the fixed loan value from the borrower
// (requiring balance and a vault allowance) and returns the asset.
func (s *vaultService) Withdraw(borrower string, assetID uint) error {
	return s.WithdrawBatch(borrower, []uint{assetID})
}

// WithdrawBatch withdraws a list of collateral assets atomically, burning
// fixedLoanValue for each; any failure aborts the whole batch.
func (s *vaultService) WithdrawBatch(borrower string, assetIDs []uint) error {
	if borrower == "" {
		return apperrors.ErrZeroAddress
	}
	if len(assetIDs) == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "asset ids must not be empty")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadMarketState(tx)
		if err != nil {
			return err
		}
		if state.VaultPaused {
			return apperrors.ErrVaultPaused
		}

		for _, assetID := range assetIDs {
			if err := s.withdrawOne(tx, borrower, assetID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, assetID := range assetIDs {
		s.events.Record(models.EventWithdrawn, map[string]interface{}{
			"asset_id": assetID,
			"borrower": borrower,
			"burned":   s.fixedLoanValue,
		})
	}
	return nil
}

func (s *vaultService) withdrawOne(tx *gorm.DB, borrower string, assetID uint) error {
	var loan models.Loan
	err := tx.Where("asset_id = ?", assetID).First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !loan.Active) {
		return apperrors.ErrLoanNotFound
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if loan.Borrower != borrower {
		return apperrors.ErrNotBorrower
	}

	// Burn before custody moves: the loan must be settled before the
	// asset leaves the vault.
	if err := s.tokens.BurnFromTx(tx, models.TokenStable, models.VaultAddress, borrower, s.fixedLoanValue); err != nil {
		return err
	}

	loan.Active = false
	if err := tx.Save(&loan).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var asset models.Asset
	if err := tx.First(&asset, assetID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	asset.Owner = borrower
	if err := tx.Save(&asset).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SweepAsset recovers an asset that reached vault custody without a
// deposit (unsolicited transfer). It never touches assets under genuine
// active loans and deliberately keeps working while the vault is paused.
func (s *vaultService) SweepAsset(assetID uint, recipient string) error {
	if recipient == "" {
		return apperrors.ErrZeroAddress
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var asset models.Asset
		if err := tx.First(&asset, assetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrAssetNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if asset.Owner != models.VaultAddress {
			return apperrors.ErrNotInCustody
		}

		var loan models.Loan
		err := tx.Where("asset_id = ?", assetID).First(&loan).Error
		if err == nil && loan.Active {
			return apperrors.ErrLoanActive
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		asset.Owner = recipient
		if err := tx.Save(&asset).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Record(models.EventAssetRecovered, map[string]interface{}{
		"asset_id":  assetID,
		"recipient": recipient,
	})
	return nil
}

// GetUserLoans returns a page of the borrower's loans, active first,
// bounding per-call cost under large loan counts.
func (s *vaultService) GetUserLoans(borrower string, page pagination.PageRequest) (*pagination.PageResponse[models.Loan], error) {
	page.Defaults()

	base := s.db.Model(&models.Loan{}).Where("borrower = ?", borrower)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var loans []models.Loan
	if err := base.Scopes(pagination.Paginate(page)).
		Order("active DESC, asset_id ASC").
		Find(&loans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(loans, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// LoanStatus returns the loan row for an asset, if any exists.
func (s *vaultService) LoanStatus(assetID uint) (*models.Loan, error) {
	var loan models.Loan
	if err := s.db.Where("asset_id = ?", assetID).First(&loan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &loan, nil
}

// Stats returns vault-wide counters. Stable supply always equals the
// fixed loan value times the active loan count.
func (s *vaultService) Stats() (*VaultStats, error) {
	var activeLoans int64
	if err := s.db.Model(&models.Loan{}).Where("active = ?", true).Count(&activeLoans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	supply, err := s.tokens.TotalSupply(models.TokenStable)
	if err != nil {
		return nil, err
	}
	return &VaultStats{ActiveLoans: activeLoans, StableSupply: supply.TotalSupply}, nil
}

// SetPaused toggles the vault pause switch. Pausing blocks deposits and
// withdrawals only; administrative recovery stays available.
func (s *vaultService) SetPaused(paused bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadMarketState(tx)
		if err != nil {
			return err
		}
		state.VaultPaused = paused
		if err := tx.Save(state).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
