package models

import "time"

// MarketState is the singleton row holding global pricing state, the
// platform's accrued revenue, and the pause switches. BasePrice never
// drops below PriceFloor. PendingIncreases counts batches that fully
// sold within the increase threshold since the last base-price change;
// the counter is consumed, compounding, at the next batch mint.
type MarketState struct {
	Base
	BasePrice            int64     `gorm:"not null" json:"base_price"`
	PriceFloor           int64     `gorm:"not null" json:"price_floor"`
	DailyDecayRate       int64     `gorm:"not null" json:"daily_decay_rate"`
	PriceAdjustDelta     int64     `gorm:"not null" json:"price_adjust_delta"`
	DayIncreaseThreshold int64     `gorm:"not null" json:"day_increase_threshold"`
	DayDecreaseThreshold int64     `gorm:"not null" json:"day_decrease_threshold"`
	LastPriceChangeTime  time.Time `gorm:"not null" json:"last_price_change_time"`
	PendingIncreases     int       `gorm:"not null;default:0" json:"pending_increases"`
	PlatformSharePct     int64     `gorm:"not null" json:"platform_share_pct"`
	PlatformBalance      int64     `gorm:"not null;default:0" json:"platform_balance"`
	MarketPaused         bool      `gorm:"not null;default:false" json:"market_paused"`
	VaultPaused          bool      `gorm:"not null;default:false" json:"vault_paused"`
}

// ProducerBalance is a pull-payment accrual: revenue credited at sale
// time, paid out only when the producer claims it. Crediting instead of
// pushing keeps one failing recipient from ever blocking settlement.
type ProducerBalance struct {
	Base
	Producer string `gorm:"uniqueIndex;not null" json:"producer"`
	Amount   int64  `gorm:"not null;default:0" json:"amount"`
}
