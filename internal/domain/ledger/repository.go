package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ordertrack/backend/internal/domain/shared"
)

// Filter defines filtering options for transaction queries
type Filter struct {
	shared.Filter
	Category   *Category   // Filter by category
	Provenance *Provenance // Filter by provenance
	OrderID    *uuid.UUID  // Filter by referenced order
	FromDate   *time.Time  // Filter by date range start
	ToDate     *time.Time  // Filter by date range end
}

// PeriodTotals holds the ledger sums for a date range, split by category and
// currency. Net is income minus expense per currency; the two currencies are
// summed independently and never re-converted from each other.
type PeriodTotals struct {
	IncomePrimary    decimal.Decimal
	IncomeSecondary  decimal.Decimal
	ExpensePrimary   decimal.Decimal
	ExpenseSecondary decimal.Decimal
}

// NetPrimary returns income minus expense in the primary currency
func (t PeriodTotals) NetPrimary() decimal.Decimal {
	return t.IncomePrimary.Sub(t.ExpensePrimary)
}

// NetSecondary returns income minus expense in the secondary currency
func (t PeriodTotals) NetSecondary() decimal.Decimal {
	return t.IncomeSecondary.Sub(t.ExpenseSecondary)
}

// Repository defines the interface for transaction persistence.
//
// FindAll and FindByDateRange return transactions sorted by date descending,
// then id descending. Delete fails with shared.ErrNotFound when the id is
// absent; DeleteAutoGeneratedByOrderID succeeds quietly when there is
// nothing to remove.
type Repository interface {
	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindAll finds all transactions matching the filter
	FindAll(ctx context.Context, filter Filter) ([]Transaction, error)

	// FindByDateRange finds transactions whose date falls in [from, to] inclusive
	FindByDateRange(ctx context.Context, from, to time.Time) ([]Transaction, error)

	// Save creates or updates a transaction
	Save(ctx context.Context, t *Transaction) error

	// Delete removes a transaction; returns shared.ErrNotFound if absent
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteAutoGeneratedByOrderID removes the auto-generated transaction
	// referencing the given order, if one exists
	DeleteAutoGeneratedByOrderID(ctx context.Context, orderID uuid.UUID) error

	// FindAutoGeneratedOrderIDs returns the set of order ids already
	// referenced by an auto-generated transaction
	FindAutoGeneratedOrderIDs(ctx context.Context) (map[uuid.UUID]struct{}, error)

	// SumByCategory sums the amount columns over [from, to] inclusive
	SumByCategory(ctx context.Context, from, to time.Time) (PeriodTotals, error)

	// Count counts transactions matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)
}
