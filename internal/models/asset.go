package models

// Asset is a non-fungible offset unit. Ownership is tracked by ledger
// address; the unsold state is custody by the market treasury, and vault
// collateral is custody by the vault address. Redeemed is monotonic:
// once set it is never cleared, and a redeemed asset can still be
// transferred but can never back a vault loan again.
type Asset struct {
	Base
	BatchID     uint   `gorm:"not null;index" json:"batch_id"`
	Ordinal     int    `gorm:"not null" json:"ordinal"`
	Producer    string `gorm:"not null;index" json:"producer"`
	MetadataRef string `gorm:"not null" json:"metadata_ref"`
	Owner       string `gorm:"not null;index" json:"owner"`
	Redeemed    bool   `gorm:"not null;default:false" json:"redeemed"`
}
