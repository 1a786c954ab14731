package models

import (
	"time"

	"gorm.io/gorm"

	"verdant/internal/uuid"
)

// Reserved ledger addresses for system custody accounts. User wallet
// addresses are UUIDv7 strings issued at registration, so they can never
// collide with these.
const (
	TreasuryAddress = "market:treasury"
	VaultAddress    = "vault:custody"
)

// Base contains common columns for all tables.
type Base struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// UUIDBase is like Base but with a time-ordered UUIDv7 primary key,
// used where records are append-only and consumed in emission order.
type UUIDBase struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records.
func (b *UUIDBase) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
