package models

import "time"

// Batch is a group of assets minted together. All assets in a batch share
// one auction curve: the price starts at StartingPrice (the global base
// price locked in at mint time) and decays daily toward the price floor.
// Later base-price changes never alter an existing batch's curve.
type Batch struct {
	Base
	StartingPrice int64   `gorm:"not null" json:"starting_price"`
	Size          int     `gorm:"not null" json:"size"`
	SoldCount     int     `gorm:"not null;default:0" json:"sold_count"`
	Assets        []Asset `gorm:"foreignKey:BatchID" json:"assets,omitempty"`
}

// Remaining returns the number of unsold assets in the batch.
func (b *Batch) Remaining() int {
	return b.Size - b.SoldCount
}

// SoldOutWithin reports whether the batch fully sold before the given
// number of days elapsed since its creation.
func (b *Batch) SoldOutWithin(days int64, at time.Time) bool {
	return b.Remaining() == 0 && !at.After(b.CreatedAt.Add(time.Duration(days)*24*time.Hour))
}
