// Package errors provides custom error types for the Verdant API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Market errors.
var (
	ErrBatchNotFound      = &AppError{Code: "BATCH_NOT_FOUND", Message: "Batch not found", StatusCode: http.StatusNotFound}
	ErrAssetNotFound      = &AppError{Code: "ASSET_NOT_FOUND", Message: "Asset not found", StatusCode: http.StatusNotFound}
	ErrMarketPaused       = &AppError{Code: "MARKET_PAUSED", Message: "Market is paused", StatusCode: http.StatusConflict}
	ErrBatchTooLarge      = &AppError{Code: "BATCH_TOO_LARGE", Message: "Batch exceeds the maximum batch size", StatusCode: http.StatusBadRequest}
	ErrQuantityExceedsRemaining = &AppError{Code: "QUANTITY_EXCEEDS_REMAINING", Message: "Requested quantity exceeds the batch's remaining assets", StatusCode: http.StatusBadRequest}
	ErrInsufficientFunds  = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient funds sent", StatusCode: http.StatusBadRequest}
	ErrNotAssetOwner      = &AppError{Code: "NOT_ASSET_OWNER", Message: "Caller does not own this asset", StatusCode: http.StatusForbidden}
	ErrAlreadyRedeemed    = &AppError{Code: "ALREADY_REDEEMED", Message: "Asset is already redeemed", StatusCode: http.StatusConflict}
	ErrNothingToClaim     = &AppError{Code: "NOTHING_TO_CLAIM", Message: "No accrued funds to claim", StatusCode: http.StatusConflict}
	ErrProducerNotFound   = &AppError{Code: "PRODUCER_NOT_FOUND", Message: "Producer address is not registered", StatusCode: http.StatusBadRequest}
)

// Vault errors.
var (
	ErrVaultPaused   = &AppError{Code: "VAULT_PAUSED", Message: "Vault is paused", StatusCode: http.StatusConflict}
	ErrLoanActive    = &AppError{Code: "LOAN_ACTIVE", Message: "Loan active", StatusCode: http.StatusConflict}
	ErrLoanNotFound  = &AppError{Code: "LOAN_NOT_FOUND", Message: "No active loan for this asset", StatusCode: http.StatusNotFound}
	ErrNotBorrower   = &AppError{Code: "NOT_BORROWER", Message: "Caller is not the recorded borrower", StatusCode: http.StatusForbidden}
	ErrAssetRedeemed = &AppError{Code: "ASSET_REDEEMED", Message: "Redeemed assets cannot back a loan", StatusCode: http.StatusConflict}
	ErrNotInCustody  = &AppError{Code: "NOT_IN_CUSTODY", Message: "Asset is not held by the vault", StatusCode: http.StatusConflict}
)

// Token errors.
var (
	ErrInsufficientBalance   = &AppError{Code: "INSUFFICIENT_BALANCE", Message: "Insufficient token balance", StatusCode: http.StatusBadRequest}
	ErrInsufficientAllowance = &AppError{Code: "INSUFFICIENT_ALLOWANCE", Message: "Insufficient token allowance", StatusCode: http.StatusBadRequest}
	ErrSupplyCapExceeded     = &AppError{Code: "SUPPLY_CAP_EXCEEDED", Message: "Mint would exceed the maximum supply", StatusCode: http.StatusConflict}
	ErrZeroAmount            = &AppError{Code: "ZERO_AMOUNT", Message: "Amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrZeroAddress           = &AppError{Code: "ZERO_ADDRESS", Message: "Address must not be empty", StatusCode: http.StatusBadRequest}
	ErrMintRestricted        = &AppError{Code: "MINT_RESTRICTED", Message: "Minting this token is restricted to the vault", StatusCode: http.StatusForbidden}
)
