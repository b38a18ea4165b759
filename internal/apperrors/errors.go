package apperrors

import (
	"errors"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already exists")
	ErrImageUnavailable     = errors.New("product image unavailable")
	ErrInvalidQuantity      = errors.New("quantity must not be negative")

	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderInvalidTransition = errors.New("order state transition is not allowed")
	ErrNothingToPack          = errors.New("no order is held for packing")

	// Backing store failure (constraint violation, lost connection, etc.)
	// Wrapped together with the driver error, never retried automatically
	ErrPersistence = errors.New("persistence error")

	// Transport failure between the facade and the remote service
	// Domain errors returned by the remote side are never reported with it
	ErrCommunication = errors.New("communication error")
)
