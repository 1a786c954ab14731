package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "verdant/internal/errors"
	"verdant/internal/models"
	"verdant/internal/pagination"
)

// marketService owns batch minting, auction pricing, purchase settlement,
// pull-payment accrual, and redemption.
type marketService struct {
	db           *gorm.DB
	tokens       TokenServicer
	events       EventServicer
	maxBatchSize int
	now          func() time.Time
}

// NewMarketService creates a new MarketServicer.
func NewMarketService(db *gorm.DB, tokens TokenServicer, events EventServicer, maxBatchSize int) MarketServicer {
	return &marketService{
		db:           db,
		tokens:       tokens,
		events:       events,
		maxBatchSize: maxBatchSize,
		now:          time.Now,
	}
}

// daysBetween returns whole elapsed days, flooring partial days. Negative
// spans clamp to zero so small timestamp jitter never produces negative
// elapsed time.
func daysBetween(from, to time.Time) int64 {
	elapsed := to.Sub(from)
	if elapsed < 0 {
		return 0
	}
	return int64(elapsed / (24 * time.Hour))
}

// priceAdjustment captures one evaluation of the base-price algorithm.
type priceAdjustment struct {
	oldPrice  int64
	newPrice  int64
	direction string
}

// adjustBasePrice mutates state per the velocity feedback rules. Quick
// sellouts recorded since the last change take precedence and compound;
// otherwise the base price decays once the idle period exceeds the
// decrease threshold, clamped at the floor. Returns nil when the price
// did not move.
func (s *marketService) adjustBasePrice(state *models.MarketState, now time.Time) *priceAdjustment {
	if state.PendingIncreases > 0 {
		old := state.BasePrice
		state.BasePrice += state.PriceAdjustDelta * int64(state.PendingIncreases)
		state.PendingIncreases = 0
		state.LastPriceChangeTime = now
		return &priceAdjustment{oldPrice: old, newPrice: state.BasePrice, direction: "up"}
	}

	elapsed := daysBetween(state.LastPriceChangeTime, now)
	if elapsed <= state.DayDecreaseThreshold {
		return nil
	}

	old := state.BasePrice
	excess := elapsed - state.DayDecreaseThreshold
	state.BasePrice -= state.PriceAdjustDelta * excess
	if state.BasePrice < state.PriceFloor {
		state.BasePrice = state.PriceFloor
	}
	// The evaluation window resets even when the price is already pinned
	// at the floor, so idle periods are not double-counted.
	state.LastPriceChangeTime = now
	if state.BasePrice == old {
		return nil
	}
	return &priceAdjustment{oldPrice: old, newPrice: state.BasePrice, direction: "down"}
}

// MintBatch creates a batch of assets tied to producers. The base-price
// adjustment runs first, so the new batch locks in the adjusted price.
func (s *marketService) MintBatch(producers, metadataRefs []string) (*models.Batch, error) {
	if len(producers) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "producers must not be empty")
	}
	if len(producers) != len(metadataRefs) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "producers and metadata refs must have the same length")
	}
	if len(producers) > s.maxBatchSize {
		return nil, apperrors.ErrBatchTooLarge
	}

	// Every producer must be a registered holder so accrued revenue is
	// always claimable.
	for _, producer := range producers {
		var count int64
		if err := s.db.Model(&models.User{}).Where("address = ?", producer).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.WithMessage(apperrors.ErrProducerNotFound, "producer address is not registered: "+producer)
		}
	}

	now := s.now()
	var batch *models.Batch
	var adjustment *priceAdjustment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadMarketState(tx)
		if err != nil {
			return err
		}

		adjustment = s.adjustBasePrice(state, now)
		if err := tx.Save(state).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		batch = &models.Batch{
			StartingPrice: state.BasePrice,
			Size:          len(producers),
		}
		batch.CreatedAt = now
		if err := tx.Create(batch).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		assets := make([]models.Asset, len(producers))
		for i := range producers {
			assets[i] = models.Asset{
				BatchID:     batch.ID,
				Ordinal:     i,
				Producer:    producers[i],
				MetadataRef: metadataRefs[i],
				Owner:       models.TreasuryAddress,
			}
		}
		if err := tx.Create(&assets).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		batch.Assets = assets
		return nil
	})
	if err != nil {
		return nil, err
	}

	if adjustment != nil {
		s.events.Record(models.EventPriceAdjusted, map[string]interface{}{
			"old_price": adjustment.oldPrice,
			"new_price": adjustment.newPrice,
			"direction": adjustment.direction,
		})
	}
	s.events.Record(models.EventBatchCreated, map[string]interface{}{
		"batch_id":       batch.ID,
		"size":           batch.Size,
		"starting_price": batch.StartingPrice,
	})

	return batch, nil
}

// GetBatch retrieves a batch with its assets.
func (s *marketService) GetBatch(batchID uint) (*models.Batch, error) {
	var batch models.Batch
	if err := s.db.Preload("Assets").First(&batch, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBatchNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &batch, nil
}

// ListBatches returns a page of batches, newest first.
func (s *marketService) ListBatches(page pagination.PageRequest) (*pagination.PageResponse[models.Batch], error) {
	page.Defaults()

	base := s.db.Model(&models.Batch{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var batches []models.Batch
	if err := base.Scopes(pagination.Paginate(page)).
		Order("id DESC").
		Find(&batches).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(batches, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// decayedPrice returns the batch's auction price at the given instant.
// Each batch decays independently from its own locked starting price.
func decayedPrice(batch *models.Batch, state *models.MarketState, at time.Time) int64 {
	price := batch.StartingPrice - daysBetween(batch.CreatedAt, at)*state.DailyDecayRate
	if price < state.PriceFloor {
		return state.PriceFloor
	}
	return price
}

// CurrentPrice returns the per-unit price of a batch right now.
func (s *marketService) CurrentPrice(batchID uint) (int64, error) {
	var batch models.Batch
	if err := s.db.First(&batch, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrBatchNotFound
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	state, err := s.State()
	if err != nil {
		return 0, err
	}
	return decayedPrice(&batch, state, s.now()), nil
}

// BuyBatch settles a purchase: pulls payment, splits revenue into the
// platform and per-asset producer accruals, and transfers the lowest
// unsold assets to the buyer. The whole settlement is one transaction.
func (s *marketService) BuyBatch(buyer string, batchID uint, maxCost int64, quantity int) (*PurchaseReceipt, error) {
	if buyer == "" {
		return nil, apperrors.ErrZeroAddress
	}
	if quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be greater than zero")
	}

	now := s.now()
	var receipt *PurchaseReceipt
	var fullSale bool
	accrued := map[string]int64{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadMarketState(tx)
		if err != nil {
			return err
		}
		if state.MarketPaused {
			return apperrors.ErrMarketPaused
		}

		var batch models.Batch
		if err := tx.First(&batch, batchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrBatchNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if quantity > batch.Remaining() {
			return apperrors.ErrQuantityExceedsRemaining
		}

		unitPrice := decayedPrice(&batch, state, now)
		totalCost := unitPrice * int64(quantity)
		if maxCost < totalCost {
			return apperrors.ErrInsufficientFunds
		}

		// FIFO within the batch: lowest ordinals sell first.
		var assets []models.Asset
		if err := tx.Where("batch_id = ? AND owner = ?", batch.ID, models.TreasuryAddress).
			Order("ordinal ASC").
			Limit(quantity).
			Find(&assets).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(assets) != quantity {
			return apperrors.Wrap(apperrors.ErrInternalServer, errors.New("sold count out of sync with asset custody"))
		}

		// Pull exactly totalCost; anything the buyer approved beyond it
		// stays untouched, which is the refund.
		if err := s.tokens.TransferFromTx(tx, models.TokenPay, models.TreasuryAddress, buyer, models.TreasuryAddress, totalCost); err != nil {
			return err
		}

		platformShare := totalCost * state.PlatformSharePct / 100
		producerTotal := totalCost - platformShare

		// Integer split per sold asset; the division remainder goes to the
		// first asset's producer so no unit of value is created or lost.
		perAsset := producerTotal / int64(quantity)
		remainder := producerTotal % int64(quantity)
		assetIDs := make([]uint, len(assets))
		for i := range assets {
			share := perAsset
			if i == 0 {
				share += remainder
			}
			accrued[assets[i].Producer] += share
			assets[i].Owner = buyer
			if err := tx.Save(&assets[i]).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			assetIDs[i] = assets[i].ID
		}

		for producer, amount := range accrued {
			if err := creditProducer(tx, producer, amount); err != nil {
				return err
			}
		}

		state.PlatformBalance += platformShare
		batch.SoldCount += quantity

		if batch.Remaining() == 0 {
			fullSale = true
			if batch.SoldOutWithin(state.DayIncreaseThreshold, now) {
				state.PendingIncreases++
			}
		}

		if err := tx.Save(&batch).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Save(state).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		receipt = &PurchaseReceipt{
			BatchID:       batch.ID,
			AssetIDs:      assetIDs,
			UnitPrice:     unitPrice,
			TotalCost:     totalCost,
			Refund:        maxCost - totalCost,
			PlatformShare: platformShare,
			ProducerShare: producerTotal,
			Remaining:     batch.Remaining(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	saleEvent := models.EventSalePartial
	if fullSale {
		saleEvent = models.EventSaleFull
	}
	s.events.Record(saleEvent, map[string]interface{}{
		"batch_id":   receipt.BatchID,
		"buyer":      buyer,
		"quantity":   quantity,
		"unit_price": receipt.UnitPrice,
		"total_cost": receipt.TotalCost,
		"remaining":  receipt.Remaining,
	})
	for producer, amount := range accrued {
		s.events.Record(models.EventProducerAccrued, map[string]interface{}{
			"producer": producer,
			"amount":   amount,
			"batch_id": receipt.BatchID,
		})
	}

	return receipt, nil
}

// ClaimProducerFunds pays out the caller's entire accrued balance. The
// balance is zeroed before the transfer so a repeated call inside the
// same settlement can never double-pay.
func (s *marketService) ClaimProducerFunds(producer string) (int64, error) {
	if producer == "" {
		return 0, apperrors.ErrZeroAddress
	}

	var amount int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var balance models.ProducerBalance
		err := tx.Where("producer = ?", producer).First(&balance).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && balance.Amount == 0) {
			return apperrors.ErrNothingToClaim
		}
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		amount = balance.Amount
		balance.Amount = 0
		if err := tx.Save(&balance).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.tokens.TransferTx(tx, models.TokenPay, models.TreasuryAddress, producer, amount)
	})
	if err != nil {
		return 0, err
	}

	s.events.Record(models.EventProducerClaimed, map[string]interface{}{
		"producer": producer,
		"amount":   amount,
	})
	return amount, nil
}

// ClaimPlatformFunds pays the platform's accrued balance to a recipient.
func (s *marketService) ClaimPlatformFunds(recipient string) (int64, error) {
	if recipient == "" {
		return 0, apperrors.ErrZeroAddress
	}

	var amount int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadMarketState(tx)
		if err != nil {
			return err
		}
		if state.PlatformBalance == 0 {
			return apperrors.ErrNothingToClaim
		}

		amount = state.PlatformBalance
		state.PlatformBalance = 0
		if err := tx.Save(state).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.tokens.TransferTx(tx, models.TokenPay, models.TreasuryAddress, recipient, amount)
	})
	if err != nil {
		return 0, err
	}

	s.events.Record(models.EventPlatformClaimed, map[string]interface{}{
		"recipient": recipient,
		"amount":    amount,
	})
	return amount, nil
}

// ProducerBalance returns a producer's unclaimed accrual.
func (s *marketService) ProducerBalance(producer string) (int64, error) {
	var balance models.ProducerBalance
	err := s.db.Where("producer = ?", producer).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return balance.Amount, nil
}

// RedeemAsset permanently marks an asset's underlying claim as consumed.
// The asset stays transferable but can never back a vault loan again.
func (s *marketService) RedeemAsset(caller string, assetID uint) (*models.Asset, error) {
	assets, err := s.RedeemAssets(caller, []uint{assetID})
	if err != nil {
		return nil, err
	}
	return &assets[0], nil
}

// RedeemAssets redeems a list of assets atomically: any single failing
// precondition aborts the whole batch.
func (s *marketService) RedeemAssets(caller string, assetIDs []uint) ([]models.Asset, error) {
	if caller == "" {
		return nil, apperrors.ErrZeroAddress
	}
	if len(assetIDs) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "asset ids must not be empty")
	}

	var redeemed []models.Asset
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, assetID := range assetIDs {
			var asset models.Asset
			if err := tx.First(&asset, assetID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrAssetNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if asset.Owner != caller {
				return apperrors.ErrNotAssetOwner
			}
			if asset.Redeemed {
				return apperrors.ErrAlreadyRedeemed
			}
			asset.Redeemed = true
			if err := tx.Save(&asset).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			redeemed = append(redeemed, asset)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range redeemed {
		s.events.Record(models.EventAssetRedeemed, map[string]interface{}{
			"asset_id": redeemed[i].ID,
			"owner":    caller,
		})
	}
	return redeemed, nil
}

// GetAsset retrieves a single asset.
func (s *marketService) GetAsset(assetID uint) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.First(&asset, assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}

// State returns the global market state singleton.
func (s *marketService) State() (*models.MarketState, error) {
	return loadMarketState(s.db)
}

// SetPaused toggles the market pause switch.
func (s *marketService) SetPaused(paused bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadMarketState(tx)
		if err != nil {
			return err
		}
		state.MarketPaused = paused
		if err := tx.Save(state).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// loadMarketState fetches the singleton state row.
func loadMarketState(tx *gorm.DB) (*models.MarketState, error) {
	var state models.MarketState
	if err := tx.First(&state).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &state, nil
}

// creditProducer upserts the pull-payment accrual row for a producer.
func creditProducer(tx *gorm.DB, producer string, amount int64) error {
	var balance models.ProducerBalance
	err := tx.Where("producer = ?", producer).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = models.ProducerBalance{Producer: producer, Amount: amount}
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
