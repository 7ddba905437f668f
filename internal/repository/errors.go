package repository

import "errors"

// Sentinel errors for guarded transactional operations. The service layer
// translates these into its own error vocabulary.
var (
	// ErrInsufficientStock means a conditional stock decrement matched no row
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrAlreadyConverted means a quote already has a converted invoice
	ErrAlreadyConverted = errors.New("quote already converted")
	// ErrInvalidTransition means a guarded status update matched no row
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPaymentExceedsBalance means a payment was larger than the outstanding balance
	ErrPaymentExceedsBalance = errors.New("payment exceeds outstanding balance")
)
