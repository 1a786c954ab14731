// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"verdant/internal/uuid"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("token_kind", validateTokenKind)
		_ = v.RegisterValidation("role", validateRole)
		_ = v.RegisterValidation("ledger_address", validateLedgerAddress)
		_ = v.RegisterValidation("event_type", validateEventType)
	}
}

func validateTokenKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pay", "stable":
		return true
	}
	return false
}

func validateRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "member", "minter", "admin":
		return true
	}
	return false
}

// Ledger addresses are either issued UUIDv7 wallet addresses or one of
// the reserved system custody addresses.
func validateLedgerAddress(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "market:treasury" || s == "vault:custody" {
		return true
	}
	return uuid.IsValid(s)
}

func validateEventType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "batch.created", "sale.partial", "sale.full", "price.adjusted",
		"asset.redeemed", "vault.deposited", "vault.withdrawn",
		"funds.platform_claimed", "funds.producer_accrued",
		"funds.producer_claimed", "vault.asset_recovered":
		return true
	}
	return false
}
