package domain

import "errors"

var (
	ErrQuoteNotFound       = errors.New("quote not found")
	ErrQuoteExpired        = errors.New("quote expired")
	ErrTokenNotFound       = errors.New("settlement token not found")
	ErrTokenExpired        = errors.New("settlement token expired")
	ErrTokenAlreadyUsed    = errors.New("settlement token already used")
	ErrSettlementNotFound  = errors.New("settlement not found")
	ErrInvalidStatus       = errors.New("invalid settlement status")
	ErrInvalidTransition   = errors.New("invalid settlement status transition")
	ErrUnsupportedCorridor = errors.New("unsupported corridor")
	ErrAmountOutOfRange    = errors.New("amount out of corridor range")
	ErrInvalidRecipient    = errors.New("invalid recipient for corridor")
	ErrIdempotencyConflict = errors.New("idempotency key already used with a different token")
)
