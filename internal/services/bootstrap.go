package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"verdant/internal/config"
	apperrors "verdant/internal/errors"
	"verdant/internal/logger"
	"verdant/internal/models"
)

// Bootstrap seeds the singleton rows the ledger needs before serving:
// the market state, the two token supply rows, and (optionally) an admin
// user from config. It is idempotent and safe to run on every boot.
func Bootstrap(db *gorm.DB, cfg *config.Config) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var state models.MarketState
		err := tx.First(&state).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			state = models.MarketState{
				BasePrice:            cfg.BasePrice,
				PriceFloor:           cfg.PriceFloor,
				DailyDecayRate:       cfg.DailyDecayRate,
				PriceAdjustDelta:     cfg.PriceAdjustDelta,
				DayIncreaseThreshold: cfg.DayIncreaseThreshold,
				DayDecreaseThreshold: cfg.DayDecreaseThreshold,
				PlatformSharePct:     cfg.PlatformSharePct,
				LastPriceChangeTime:  time.Now(),
			}
			if err := tx.Create(&state).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		} else if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for _, seed := range []models.TokenState{
			{Kind: models.TokenPay},
			{Kind: models.TokenStable, MaxSupply: cfg.StableMaxSupply},
		} {
			var existing models.TokenState
			err := tx.Where("kind = ?", seed.Kind).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&seed).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			} else if err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		users := NewUserService(db)
		if _, err := users.GetUserByEmail(cfg.AdminEmail); err != nil {
			admin, err := users.CreateUser(cfg.AdminEmail, cfg.AdminPassword, "Platform Admin", models.RoleAdmin)
			if err != nil {
				return err
			}
			logger.Get().Infow("seeded admin user", "email", admin.Email, "address", admin.Address)
		}
	}

	return nil
}
