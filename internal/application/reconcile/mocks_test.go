package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ordertrack/backend/internal/domain/ledger"
	"github.com/ordertrack/backend/internal/domain/order"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter order.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter order.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerRepository is a mock implementation of ledger.Repository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindAll(ctx context.Context, filter ledger.Filter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]ledger.Transaction, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) Save(ctx context.Context, t *ledger.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockLedgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLedgerRepository) DeleteAutoGeneratedByOrderID(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindAutoGeneratedOrderIDs(ctx context.Context) (map[uuid.UUID]struct{}, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[uuid.UUID]struct{}), args.Error(1)
}

func (m *MockLedgerRepository) SumByCategory(ctx context.Context, from, to time.Time) (ledger.PeriodTotals, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(ledger.PeriodTotals), args.Error(1)
}

func (m *MockLedgerRepository) Count(ctx context.Context, filter ledger.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
