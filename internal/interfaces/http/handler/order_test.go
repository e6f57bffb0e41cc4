package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	reconcileapp "github.com/ordertrack/backend/internal/application/reconcile"
	"github.com/ordertrack/backend/internal/domain/order"
	"github.com/ordertrack/backend/internal/domain/shared/valueobject"
)

// MockOrderRepository mocks order.Repository
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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

func newOrderRouter(t *testing.T, orders *MockOrderRepository, txns *MockLedgerRepository) *gin.Engine {
	t.Helper()
	rate, err := valueobject.NewExchangeRate(decimal.NewFromInt(2300))
	require.NoError(t, err)

	scope := reconcileapp.NewNoOpTransactionScope(orders, txns)
	service := reconcileapp.NewOrderService(scope, orders, txns, rate, zap.NewNop())

	h := NewOrderHandler(service)
	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	return r
}

const paidOrderBody = `{
	"date": "2025-01-10T00:00:00Z",
	"customer_name": "Asha",
	"product_service": "Banner",
	"quantity": 2,
	"unit_price": "10000",
	"paid_amount": "20000",
	"payment_received": "Yes",
	"payment_method": "M-Pesa",
	"delivery_status": "Delivered"
}`

func TestOrderHandlerCreate(t *testing.T) {
	t.Run("paid order is created and mirrored", func(t *testing.T) {
		orders := new(MockOrderRepository)
		txns := new(MockLedgerRepository)
		orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
		txns.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
		r := newOrderRouter(t, orders, txns)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(paidOrderBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Success bool   `json:"success"`
			Warning string `json:"warning"`
			Data    struct {
				TotalCost     string `json:"total_cost"`
				PendingAmount string `json:"pending_amount"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Warning)
		assert.Equal(t, "20000", resp.Data.TotalCost)
		assert.Equal(t, "0", resp.Data.PendingAmount)
		txns.AssertExpectations(t)
	})

	t.Run("mirror failure surfaces as warning, not error", func(t *testing.T) {
		orders := new(MockOrderRepository)
		txns := new(MockLedgerRepository)
		orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
		txns.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(errors.New("disk full"))
		r := newOrderRouter(t, orders, txns)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(paidOrderBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Warning string `json:"warning"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Warning, "disk full")
	})

	t.Run("invalid payment flag rejected at binding", func(t *testing.T) {
		orders := new(MockOrderRepository)
		txns := new(MockLedgerRepository)
		r := newOrderRouter(t, orders, txns)

		body := strings.Replace(paidOrderBody, `"Yes"`, `"Maybe"`, 1)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestOrderHandlerGet(t *testing.T) {
	t.Run("unknown order maps to 404", func(t *testing.T) {
		orders := new(MockOrderRepository)
		txns := new(MockLedgerRepository)
		orders.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)
		r := newOrderRouter(t, orders, txns)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandlerGenerateSales(t *testing.T) {
	t.Run("empty period reports nothing to generate", func(t *testing.T) {
		orders := new(MockOrderRepository)
		txns := new(MockLedgerRepository)
		orders.On("FindByDateRange", mock.Anything, mock.Anything, mock.Anything).Return([]order.Order{}, nil)
		txns.On("FindAutoGeneratedOrderIDs", mock.Anything).Return(map[uuid.UUID]struct{}{}, nil)
		r := newOrderRouter(t, orders, txns)

		body := `{"from_date": "2025-01-01T00:00:00Z", "to_date": "2025-01-31T00:00:00Z"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/generate-sales", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data struct {
				Generated int    `json:"generated"`
				Message   string `json:"message"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Zero(t, resp.Data.Generated)
		assert.Equal(t, "nothing to generate", resp.Data.Message)
	})
}

func TestOrderHandlerConsistency(t *testing.T) {
	orders := new(MockOrderRepository)
	txns := new(MockLedgerRepository)
	orders.On("FindAll", mock.Anything, mock.Anything).Return([]order.Order{}, nil)
	txns.On("FindAll", mock.Anything, mock.Anything).Return(nil, nil)
	r := newOrderRouter(t, orders, txns)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/consistency", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Consistent bool `json:"consistent"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Consistent)
}
