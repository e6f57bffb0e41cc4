package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

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

func newTestService() (*SummaryService, *MockOrderRepository, *MockLedgerRepository) {
	orderRepo := new(MockOrderRepository)
	ledgerRepo := new(MockLedgerRepository)
	return NewSummaryService(orderRepo, ledgerRepo, zap.NewNop()), orderRepo, ledgerRepo
}

func mustOrder(t *testing.T, product string, paid int64) order.Order {
	t.Helper()
	o, err := order.NewOrder(
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		"Asha", "", product, 1,
		decimal.NewFromInt(1000000), decimal.NewFromInt(paid),
		order.PaymentReceivedYes, "Cash", order.DeliveryStatusDelivered, "")
	require.NoError(t, err)
	return *o
}

func TestMonthlySummary(t *testing.T) {
	t.Run("queries the full calendar month inclusive", func(t *testing.T) {
		svc, _, ledgerRepo := newTestService()

		from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
		ledgerRepo.On("SumByCategory", mock.Anything, from, to).Return(ledger.PeriodTotals{
			IncomePrimary:    decimal.NewFromInt(100000),
			IncomeSecondary:  decimal.RequireFromString("43.48"),
			ExpensePrimary:   decimal.NewFromInt(40000),
			ExpenseSecondary: decimal.RequireFromString("17.39"),
		}, nil)

		summary, err := svc.MonthlySummary(context.Background(), 2025, time.February)
		require.NoError(t, err)

		assert.Equal(t, "February", summary.Label)
		assert.True(t, summary.NetPrimary.Equal(decimal.NewFromInt(60000)))
		assert.True(t, summary.NetSecondary.Equal(decimal.RequireFromString("26.09")))
		assert.True(t, summary.ProfitMargin.Equal(decimal.NewFromInt(60)))
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("empty month sums to zero", func(t *testing.T) {
		svc, _, ledgerRepo := newTestService()
		ledgerRepo.On("SumByCategory", mock.Anything, mock.Anything, mock.Anything).
			Return(ledger.PeriodTotals{}, nil)

		summary, err := svc.MonthlySummary(context.Background(), 2025, time.June)
		require.NoError(t, err)
		assert.True(t, summary.IncomePrimary.IsZero())
		assert.True(t, summary.ProfitMargin.IsZero(), "margin is 0, not NaN, without income")
	})

	t.Run("rejects an out-of-range month", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.MonthlySummary(context.Background(), 2025, time.Month(13))
		assert.Error(t, err)
	})
}

func TestAnnualSummary(t *testing.T) {
	svc, _, ledgerRepo := newTestService()

	// March is the only profitable month, November the only losing one.
	march := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	november := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	ledgerRepo.On("SumByCategory", mock.Anything, march, march.AddDate(0, 1, -1)).
		Return(ledger.PeriodTotals{IncomePrimary: decimal.NewFromInt(500000)}, nil)
	ledgerRepo.On("SumByCategory", mock.Anything, november, november.AddDate(0, 1, -1)).
		Return(ledger.PeriodTotals{ExpensePrimary: decimal.NewFromInt(200000)}, nil)
	ledgerRepo.On("SumByCategory", mock.Anything, mock.Anything, mock.Anything).
		Return(ledger.PeriodTotals{}, nil)

	summary, err := svc.AnnualSummary(context.Background(), 2025)
	require.NoError(t, err)

	require.Len(t, summary.Months, 12)
	assert.Equal(t, "January", summary.Months[0].Label)
	assert.Equal(t, "December", summary.Months[11].Label)

	assert.True(t, summary.Total.IncomePrimary.Equal(decimal.NewFromInt(500000)))
	assert.True(t, summary.Total.NetPrimary.Equal(decimal.NewFromInt(300000)))
	assert.True(t, summary.Total.ProfitMargin.Equal(decimal.NewFromInt(60)))

	assert.Equal(t, 3, summary.BestMonth.Month)
	assert.Equal(t, 11, summary.WorstMonth.Month)
}

func TestAnnualSummaryFlatYearTiesOnLowestMonth(t *testing.T) {
	svc, _, ledgerRepo := newTestService()
	ledgerRepo.On("SumByCategory", mock.Anything, mock.Anything, mock.Anything).
		Return(ledger.PeriodTotals{}, nil)

	summary, err := svc.AnnualSummary(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.BestMonth.Month)
	assert.Equal(t, 1, summary.WorstMonth.Month)
}

func TestTopProducts(t *testing.T) {
	svc, orderRepo, _ := newTestService()

	orders := []order.Order{
		mustOrder(t, "Banner", 20000),
		mustOrder(t, "Flyer", 50000),
		mustOrder(t, "Banner", 30000),
		mustOrder(t, "Business Cards", 50000),
		mustOrder(t, "Sticker", 1000),
	}
	orderRepo.On("FindAll", mock.Anything, mock.Anything).Return(orders, nil)

	stats, err := svc.TopProducts(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, "Banner", stats[0].ProductService)
	assert.Equal(t, 2, stats[0].OrderCount)
	assert.True(t, stats[0].Revenue.Equal(decimal.NewFromInt(50000)))

	// Flyer ties with Business Cards on revenue, and with Banner; first seen wins.
	assert.Equal(t, "Flyer", stats[1].ProductService)
	assert.Equal(t, "Business Cards", stats[2].ProductService)
}

func TestDashboard(t *testing.T) {
	svc, orderRepo, ledgerRepo := newTestService()

	paid := mustOrder(t, "Banner", 1000000)
	unpaid, err := order.NewOrder(
		time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
		"Juma", "", "Flyer", 1,
		decimal.NewFromInt(30000), decimal.Zero,
		order.PaymentReceivedNo, "", order.DeliveryStatusPending, "")
	require.NoError(t, err)

	orderRepo.On("FindAll", mock.Anything, mock.Anything).Return([]order.Order{paid, *unpaid}, nil)
	ledgerRepo.On("SumByCategory", mock.Anything, mock.Anything, mock.Anything).
		Return(ledger.PeriodTotals{IncomePrimary: decimal.NewFromInt(1000000)}, nil)

	stats, err := svc.Dashboard(context.Background(), time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.UnpaidOrders)
	assert.Equal(t, int64(1), stats.PendingDeliveries)
	assert.True(t, stats.TotalPendingPrimary.Equal(decimal.NewFromInt(30000)))
	assert.True(t, stats.MonthToDate.IncomePrimary.Equal(decimal.NewFromInt(1000000)))
}
