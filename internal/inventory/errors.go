package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientLotQuantity   = errors.New("insufficient lot quantity")
	ErrProductNotFound           = errors.New("product not found")
	ErrLotNotFound               = errors.New("lot not found")
	ErrTransferNotFound          = errors.New("transfer not found")
	ErrInvalidTransferTransition = errors.New("invalid transfer transition")
	ErrInvalidQuantity           = errors.New("quantity must be positive")
	ErrInvalidInput              = errors.New("invalid input")
	ErrProductCodeTaken          = errors.New("product code already exists")
	ErrLotLocationMismatch       = errors.New("lot is not at the source location")
	ErrDuplicateLotNumber        = errors.New("lot number already used")
	ErrSystemBusy                = errors.New("system busy, please try again later (lock)")

	// ErrInconsistentStockState marks a stored aggregate that disagreed with its lots.
	// It is logged and repaired, never returned.
	ErrInconsistentStockState = errors.New("inconsistent stock state")

	ErrStoreOperationFailed = errors.New("store operation failed")
)

// StoreError wraps a failure of the backing store. errors.Is(err, ErrStoreOperationFailed) holds for it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreOperationFailed, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreOperationFailed }

// StoreErr returns nil for a nil err.
func StoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
