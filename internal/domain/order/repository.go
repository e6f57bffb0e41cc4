package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ordertrack/backend/internal/domain/shared"
)

// Filter defines filtering options for order queries
type Filter struct {
	shared.Filter
	PaymentReceived *PaymentReceived // Filter by payment flag
	DeliveryStatus  *DeliveryStatus  // Filter by delivery status
	ProductService  *string          // Filter by product/service label
	FromDate        *time.Time       // Filter by order date range start
	ToDate          *time.Time       // Filter by order date range end
}

// Repository defines the interface for order persistence.
//
// FindAll and FindByDateRange return orders sorted by date descending, then
// id descending, so listings are stable across calls. Delete fails with
// shared.ErrNotFound when the id is absent.
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll finds all orders matching the filter
	FindAll(ctx context.Context, filter Filter) ([]Order, error)

	// FindByDateRange finds orders whose date falls in [from, to] inclusive
	FindByDateRange(ctx context.Context, from, to time.Time) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// Delete removes an order; returns shared.ErrNotFound if absent
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)
}
