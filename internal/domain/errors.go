package domain

import "errors"

// Sentinel errors for domain-level error handling.
// Callers match them with errors.Is; the matcher recovers from the
// insufficiency errors locally by cancelling the offending order.
var (
	ErrAccountAlreadyExists     = errors.New("account_already_exists")
	ErrAccountNotFound          = errors.New("account_not_found")
	ErrInstrumentAlreadyExists  = errors.New("instrument_already_exists")
	ErrInstrumentNotFound       = errors.New("instrument_not_found")
	ErrOrderNotFound            = errors.New("order_not_found")
	ErrInsufficientFunds        = errors.New("insufficient_funds")
	ErrInsufficientInventory    = errors.New("insufficient_inventory")
	ErrInvalidQuantityReduction = errors.New("invalid_quantity_reduction")
	ErrBalanceOverflow          = errors.New("balance_overflow")
)

// ValidationError represents malformed input rejected at construction time.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
