package models

// Loan records that an asset is held by the vault as collateral against a
// fixed amount of minted stable token. At most one row exists per asset;
// the Active flag cycles NoLoan -> ActiveLoan -> NoLoan as the asset is
// deposited and withdrawn, and the cycle is re-enterable.
type Loan struct {
	Base
	AssetID  uint   `gorm:"uniqueIndex;not null" json:"asset_id"`
	Borrower string `gorm:"not null;index" json:"borrower"`
	Active   bool   `gorm:"not null;default:false" json:"active"`
}
