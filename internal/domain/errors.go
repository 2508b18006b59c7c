package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Account errors
	ErrMsgNotRegistered     = "account not registered"
	ErrMsgAlreadyRegistered = "account already registered"

	// Ownership errors
	ErrMsgNotFound = "not found"
	ErrMsgNotOwned = "not owned by account"
	ErrMsgLocked   = "item is locked"

	// Economy errors
	ErrMsgInsufficientFunds = "insufficient funds"
	ErrMsgInsufficientStock = "insufficient store stock"
	ErrMsgCapacityExceeded  = "inventory capacity exceeded"

	// Validation errors
	ErrMsgInvalidQuantity = "invalid quantity"
	ErrMsgInvalidPrice    = "invalid price"

	// Market/trade errors
	ErrMsgSelfTrade    = "cannot buy or trade with yourself"
	ErrMsgUnauthorized = "not a participant of this session"

	// Session errors
	ErrMsgSessionClosed = "session is closed"

	// Database/system errors
	ErrMsgTxClosed = "tx is closed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrNotRegistered     = errors.New(ErrMsgNotRegistered)
	ErrAlreadyRegistered = errors.New(ErrMsgAlreadyRegistered)

	ErrNotFound = errors.New(ErrMsgNotFound)
	ErrNotOwned = errors.New(ErrMsgNotOwned)
	ErrLocked   = errors.New(ErrMsgLocked)

	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
	ErrInsufficientStock = errors.New(ErrMsgInsufficientStock)
	ErrCapacityExceeded  = errors.New(ErrMsgCapacityExceeded)

	ErrInvalidQuantity = errors.New(ErrMsgInvalidQuantity)
	ErrInvalidPrice    = errors.New(ErrMsgInvalidPrice)

	ErrSelfTrade    = errors.New(ErrMsgSelfTrade)
	ErrUnauthorized = errors.New(ErrMsgUnauthorized)

	ErrSessionClosed = errors.New(ErrMsgSessionClosed)
)
