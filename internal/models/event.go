package models

// Event types emitted by the market and the vault. Off-chain observers
// (dashboards, indexers) consume these through the events feed.
const (
	EventBatchCreated     = "batch.created"
	EventSalePartial      = "sale.partial"
	EventSaleFull         = "sale.full"
	EventPriceAdjusted    = "price.adjusted"
	EventAssetRedeemed    = "asset.redeemed"
	EventDeposited        = "vault.deposited"
	EventWithdrawn        = "vault.withdrawn"
	EventPlatformClaimed  = "funds.platform_claimed"
	EventProducerAccrued  = "funds.producer_accrued"
	EventProducerClaimed  = "funds.producer_claimed"
	EventAssetRecovered   = "vault.asset_recovered"
)

// Event is an append-only record of an externally observable state
// transition. The UUID primary key is time-ordered (UUIDv7) so the feed
// pages in emission order.
type Event struct {
	UUIDBase
	Type    string `gorm:"not null;index" json:"type"`
	Payload string `gorm:"type:text" json:"payload"`
}
