package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// ReconciliationError records the failure to mirror a single order into the
// ledger. The order itself is already persisted when this error surfaces, so
// callers report it rather than roll back.
type ReconciliationError struct {
	OrderID uuid.UUID
	Err     error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation failed for order %s: %v", e.OrderID, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// NewReconciliationError wraps a per-order reconciliation failure
func NewReconciliationError(orderID uuid.UUID, err error) *ReconciliationError {
	return &ReconciliationError{OrderID: orderID, Err: err}
}
