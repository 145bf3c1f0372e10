package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity signals programmer misuse: Reserve called with a
	// non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrRecordNotFound means no stock record exists for the product at
	// any candidate path.
	ErrRecordNotFound = errors.New("product is no longer available")
)

// InsufficientStockError is the recoverable business condition: the record
// exists but holds fewer units than requested. Available carries the stock
// observed by the losing transaction.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", e.Available, e.Requested)
}

// TransientError wraps transport or conflict-exhaustion failures. The
// caller may retry the whole operation.
type TransientError struct {
	Op    string
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("Failed to %s. Please try again.", e.Op)
}

func (e *TransientError) Unwrap() error { return e.Cause }
