package reconcile

import (
	"context"
	"errors"
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
	"github.com/ordertrack/backend/internal/domain/shared/valueobject"
)

func testRate(t *testing.T) valueobject.ExchangeRate {
	t.Helper()
	rate, err := valueobject.NewExchangeRate(decimal.NewFromInt(2300))
	require.NoError(t, err)
	return rate
}

func newTestService(t *testing.T) (*OrderService, *MockOrderRepository, *MockLedgerRepository) {
	t.Helper()
	orderRepo := new(MockOrderRepository)
	ledgerRepo := new(MockLedgerRepository)
	scope := NewNoOpTransactionScope(orderRepo, ledgerRepo)
	svc := NewOrderService(scope, orderRepo, ledgerRepo, testRate(t), zap.NewNop())
	return svc, orderRepo, ledgerRepo
}

func createRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Date:            time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		CustomerName:    "Asha",
		PhoneNumber:     "0712000000",
		ProductService:  "Banner",
		Quantity:        2,
		UnitPrice:       decimal.NewFromInt(10000),
		PaidAmount:      decimal.Zero,
		PaymentReceived: "No",
		PaymentMethod:   "Cash",
		DeliveryStatus:  "Pending",
	}
}

func paidOrder(t *testing.T, paid int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		"Asha", "", "Banner", 2,
		decimal.NewFromInt(10000), decimal.NewFromInt(paid),
		order.PaymentReceivedYes, order.PaymentMethodMPesa, order.DeliveryStatusDelivered, "")
	require.NoError(t, err)
	return o
}

func TestCreateOrder(t *testing.T) {
	t.Run("unpaid order creates no transaction", func(t *testing.T) {
		svc, orderRepo, ledgerRepo := newTestService(t)
		orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

		result, err := svc.CreateOrder(context.Background(), createRequest())
		require.NoError(t, err)

		assert.True(t, result.Order.PendingAmount.Equal(decimal.NewFromInt(20000)))
		assert.Empty(t, result.ReconciliationWarning)
		orderRepo.AssertExpectations(t)
		ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("paid order is mirrored into the ledger", func(t *testing.T) {
		svc, orderRepo, ledgerRepo := newTestService(t)
		orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

		var mirrored *ledger.Transaction
		ledgerRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).
			Run(func(args mock.Arguments) {
				mirrored = args.Get(1).(*ledger.Transaction)
			}).Return(nil)

		req := createRequest()
		req.PaidAmount = decimal.NewFromInt(20000)
		req.PaymentReceived = "Yes"

		result, err := svc.CreateOrder(context.Background(), req)
		require.NoError(t, err)
		assert.Empty(t, result.ReconciliationWarning)

		require.NotNil(t, mirrored)
		assert.Equal(t, ledger.ProvenanceAutoGenerated, mirrored.Provenance)
		assert.Equal(t, ledger.CategorySales, mirrored.Category)
		assert.True(t, mirrored.IncomePrimary.Equal(decimal.NewFromInt(20000)))
		assert.True(t, mirrored.IncomeSecondary.Equal(decimal.RequireFromString("8.70")))
		require.NotNil(t, mirrored.OrderID)
		assert.Equal(t, result.Order.ID, *mirrored.OrderID)
	})

	t.Run("mirror failure keeps the order and reports a warning", func(t *testing.T) {
		svc, orderRepo, ledgerRepo := newTestService(t)
		orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
		ledgerRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).
			Return(errors.New("disk full"))

		req := createRequest()
		req.PaidAmount = decimal.NewFromInt(20000)
		req.PaymentReceived = "Yes"

		result, err := svc.CreateOrder(context.Background(), req)
		require.NoError(t, err)
		assert.Contains(t, result.ReconciliationWarning, "disk full")
		orderRepo.AssertExpectations(t)
	})

	t.Run("invalid input never reaches the repository", func(t *testing.T) {
		svc, orderRepo, _ := newTestService(t)

		req := createRequest()
		req.Quantity = 0

		_, err := svc.CreateOrder(context.Background(), req)
		assert.Error(t, err)
		orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestUpdateOrder(t *testing.T) {
	t.Run("paying an order creates its mirror", func(t *testing.T) {
		svc, orderRepo, ledgerRepo := newTestService(t)

		existing, err := order.NewOrder(
			time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			"Asha", "", "Banner", 2,
			decimal.NewFromInt(10000), decimal.Zero,
			order.PaymentReceivedNo, "", order.DeliveryStatusPending, "")
		require.NoError(t, err)
		id := existing.GetID()

		orderRepo.On("FindByID", mock.Anything, id).Return(existing, nil)
		orderRepo.On("Save", mock.Anything, existing).Return(nil)
		ledgerRepo.On("DeleteAutoGeneratedByOrderID", mock.Anything, id).Return(nil)

		var mirrored *ledger.Transaction
		ledgerRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).
			Run(func(args mock.Arguments) {
				mirrored = args.Get(1).(*ledger.Transaction)
			}).Return(nil)

		req := UpdateOrderRequest(createRequest())
		req.PaidAmount = decimal.NewFromInt(20000)
		req.PaymentReceived = "Yes"

		result, err := svc.UpdateOrder(context.Background(), id, req)
		require.NoError(t, err)
		assert.True(t, result.Order.PendingAmount.IsZero())

		require.NotNil(t, mirrored)
		assert.True(t, mirrored.IncomePrimary.Equal(decimal.NewFromInt(20000)))
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("unpaying an order drops its mirror without recreating it", func(t *testing.T) {
		svc, orderRepo, ledgerRepo := newTestService(t)

		existing := paidOrder(t, 20000)
		id := existing.GetID()

		orderRepo.On("FindByID", mock.Anything, id).Return(existing, nil)
		orderRepo.On("Save", mock.Anything, existing).Return(nil)
		ledgerRepo.On("DeleteAutoGeneratedByOrderID", mock.Anything, id).Return(nil)

		req := UpdateOrderRequest(createRequest())

		_, err := svc.UpdateOrder(context.Background(), id, req)
		require.NoError(t, err)
		ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("unknown order returns not found", func(t *testing.T) {
		svc, orderRepo, _ := newTestService(t)
		id := uuid.New()
		orderRepo.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := svc.UpdateOrder(context.Background(), id, UpdateOrderRequest(createRequest()))
		assert.Error(t, err)
	})
}

func TestDeleteOrder(t *testing.T) {
	svc, orderRepo, ledgerRepo := newTestService(t)
	id := uuid.New()

	ledgerRepo.On("DeleteAutoGeneratedByOrderID", mock.Anything, id).Return(nil)
	orderRepo.On("Delete", mock.Anything, id).Return(nil)

	require.NoError(t, svc.DeleteOrder(context.Background(), id))
	ledgerRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestGenerateForPeriod(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	req := GenerateSalesRequest{FromDate: from, ToDate: to}

	t.Run("mirrors new paid orders and skips referenced ones", func(t *testing.T) {
		svc, orderRepo, ledgerRepo := newTestService(t)

		fresh1 := paidOrder(t, 20000)
		fresh2 := paidOrder(t, 5000)
		already := paidOrder(t, 15000)
		unpaid, err := order.NewOrder(from, "Juma", "", "Flyer", 1,
			decimal.NewFromInt(3000), decimal.Zero,
			order.PaymentReceivedNo, "", order.DeliveryStatusPending, "")
		require.NoError(t, err)

		orderRepo.On("FindByDateRange", mock.Anything, from, to).
			Return([]order.Order{*fresh1, *fresh2, *already, *unpaid}, nil)
		ledgerRepo.On("FindAutoGeneratedOrderIDs", mock.Anything).
			Return(map[uuid.UUID]struct{}{already.GetID(): {}}, nil)
		ledgerRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)

		result, err := svc.GenerateForPeriod(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Generated)
		assert.Equal(t, 1, result.Skipped)
		assert.Empty(t, result.Failures)
		ledgerRepo.AssertNumberOfCalls(t, "Save", 2)
	})

	t.Run("repeated run over the same range generates nothing", func(t *testing.T) {
		svc, orderRepo, ledgerRepo := newTestService(t)

		o := paidOrder(t, 20000)
		orderRepo.On("FindByDateRange", mock.Anything, from, to).
			Return([]order.Order{*o}, nil)
		ledgerRepo.On("FindAutoGeneratedOrderIDs", mock.Anything).
			Return(map[uuid.UUID]struct{}{o.GetID(): {}}, nil)

		result, err := svc.GenerateForPeriod(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Generated)
		assert.Equal(t, "nothing to generate", result.Message)
		ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("a failing row does not abort the batch", func(t *testing.T) {
		svc, orderRepo, ledgerRepo := newTestService(t)

		bad := paidOrder(t, 20000)
		good := paidOrder(t, 5000)

		orderRepo.On("FindByDateRange", mock.Anything, from, to).
			Return([]order.Order{*bad, *good}, nil)
		ledgerRepo.On("FindAutoGeneratedOrderIDs", mock.Anything).
			Return(map[uuid.UUID]struct{}{}, nil)
		ledgerRepo.On("Save", mock.Anything, mock.MatchedBy(func(tx *ledger.Transaction) bool {
			return tx.OrderID != nil && *tx.OrderID == bad.GetID()
		})).Return(errors.New("constraint violation"))
		ledgerRepo.On("Save", mock.Anything, mock.MatchedBy(func(tx *ledger.Transaction) bool {
			return tx.OrderID != nil && *tx.OrderID == good.GetID()
		})).Return(nil)

		result, err := svc.GenerateForPeriod(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Generated)
		require.Len(t, result.Failures, 1)
		assert.Contains(t, result.Failures[0], bad.GetID().String())
	})
}

func TestCheckConsistency(t *testing.T) {
	t.Run("clean state is consistent", func(t *testing.T) {
		svc, orderRepo, ledgerRepo := newTestService(t)

		o := paidOrder(t, 20000)
		tx, err := ledger.NewSalesFromOrder(o, testRate(t))
		require.NoError(t, err)

		orderRepo.On("FindAll", mock.Anything, mock.Anything).Return([]order.Order{*o}, nil)
		ledgerRepo.On("FindAll", mock.Anything, mock.Anything).Return([]ledger.Transaction{*tx}, nil)

		report, err := svc.CheckConsistency(context.Background())
		require.NoError(t, err)
		assert.True(t, report.Consistent)
	})

	t.Run("flags every divergence", func(t *testing.T) {
		svc, orderRepo, ledgerRepo := newTestService(t)

		missing := paidOrder(t, 20000)

		stale := paidOrder(t, 20000)
		staleTx, err := ledger.NewSalesFromOrder(stale, testRate(t))
		require.NoError(t, err)
		require.NoError(t, stale.Update(stale.Date, stale.CustomerName, stale.PhoneNumber,
			stale.ProductService, stale.Quantity, stale.UnitPrice, decimal.NewFromInt(9999),
			stale.PaymentReceived, stale.PaymentMethod, stale.DeliveryStatus, stale.Notes))

		orphanOwner := paidOrder(t, 5000)
		orphanTx, err := ledger.NewSalesFromOrder(orphanOwner, testRate(t))
		require.NoError(t, err)

		orderRepo.On("FindAll", mock.Anything, mock.Anything).
			Return([]order.Order{*missing, *stale}, nil)
		ledgerRepo.On("FindAll", mock.Anything, mock.Anything).
			Return([]ledger.Transaction{*staleTx, *orphanTx}, nil)

		report, err := svc.CheckConsistency(context.Background())
		require.NoError(t, err)

		assert.False(t, report.Consistent)
		assert.Equal(t, []uuid.UUID{missing.GetID()}, report.MissingMirrors)
		assert.Equal(t, []uuid.UUID{stale.GetID()}, report.AmountMismatches)
		assert.Equal(t, []uuid.UUID{orphanTx.GetID()}, report.OrphanedTransactions)
	})
}
