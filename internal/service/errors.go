package service

import "errors"

// Ledger error taxonomy. All are terminal for the request that produced them;
// retries belong to the caller or the payment provider.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient credit balance")
	ErrInvalidPlan         = errors.New("invalid plan selected")
	ErrInvalidSignature    = errors.New("invalid payment signature")
	ErrUnknownTransaction  = errors.New("unknown transaction")
	ErrAlreadyProcessed    = errors.New("payment already processed")
	ErrProviderUnavailable = errors.New("external provider unavailable")
)
