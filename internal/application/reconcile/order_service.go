package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ordertrack/backend/internal/domain/ledger"
	"github.com/ordertrack/backend/internal/domain/order"
	"github.com/ordertrack/backend/internal/domain/shared"
	"github.com/ordertrack/backend/internal/domain/shared/valueobject"
)

// OrderService owns the order lifecycle and keeps the ledger consistent with
// it. Every order mutation flows through here so that the auto-generated
// Sales transaction mirroring a paid order is created, replaced, or removed
// in the same step.
type OrderService struct {
	scope  TransactionScope
	orders order.Repository
	txns   ledger.Repository
	rate   valueobject.ExchangeRate
	logger *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	scope TransactionScope,
	orders order.Repository,
	txns ledger.Repository,
	rate valueobject.ExchangeRate,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		scope:  scope,
		orders: orders,
		txns:   txns,
		rate:   rate,
		logger: logger,
	}
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID       `json:"id"`
	Date            time.Time       `json:"date"`
	CustomerName    string          `json:"customer_name"`
	PhoneNumber     string          `json:"phone_number,omitempty"`
	ProductService  string          `json:"product_service"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
	PaymentReceived string          `json:"payment_received"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	DeliveryStatus  string          `json:"delivery_status"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	Date            time.Time       `json:"date" binding:"required"`
	CustomerName    string          `json:"customer_name" binding:"required"`
	PhoneNumber     string          `json:"phone_number"`
	ProductService  string          `json:"product_service" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	PaymentReceived string          `json:"payment_received" binding:"required,oneof=Yes No"`
	PaymentMethod   string          `json:"payment_method"`
	DeliveryStatus  string          `json:"delivery_status" binding:"required"`
	Notes           string          `json:"notes"`
}

// UpdateOrderRequest represents a request to update an order
type UpdateOrderRequest struct {
	Date            time.Time       `json:"date" binding:"required"`
	CustomerName    string          `json:"customer_name" binding:"required"`
	PhoneNumber     string          `json:"phone_number"`
	ProductService  string          `json:"product_service" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	PaymentReceived string          `json:"payment_received" binding:"required,oneof=Yes No"`
	PaymentMethod   string          `json:"payment_method"`
	DeliveryStatus  string          `json:"delivery_status" binding:"required"`
	Notes           string          `json:"notes"`
}

// OrderListFilter defines filtering options for order list queries
type OrderListFilter struct {
	Search          string     `form:"search"`
	PaymentReceived string     `form:"payment_received"`
	DeliveryStatus  string     `form:"delivery_status"`
	ProductService  string     `form:"product_service"`
	FromDate        *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate          *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page            int        `form:"page"`
	PageSize        int        `form:"page_size"`
}

// OrderMutationResult is the outcome of an order create or update. The order
// itself is always persisted when the error is nil; ReconciliationWarning is
// set when the order saved but its ledger mirror could not be written.
type OrderMutationResult struct {
	Order                 *OrderResponse `json:"order"`
	ReconciliationWarning string         `json:"reconciliation_warning,omitempty"`
}

// CreateOrder persists a new order and, when the order already carries a
// received payment, mirrors it into the ledger as a Sales transaction. A
// mirror failure does not fail the creation; it is reported in the result.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderMutationResult, error) {
	o, err := order.NewOrder(
		req.Date,
		req.CustomerName,
		req.PhoneNumber,
		req.ProductService,
		req.Quantity,
		req.UnitPrice,
		req.PaidAmount,
		order.PaymentReceived(req.PaymentReceived),
		req.PaymentMethod,
		order.DeliveryStatus(req.DeliveryStatus),
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	var warning string
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		if !o.IsPaid() {
			return nil
		}
		if err := s.mirror(ctx, repos, o); err != nil {
			rerr := ledger.NewReconciliationError(o.GetID(), err)
			s.logger.Warn("order saved but ledger mirror failed",
				zap.String("order_id", o.GetID().String()),
				zap.Error(err))
			warning = rerr.Error()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &OrderMutationResult{Order: toOrderResponse(o), ReconciliationWarning: warning}, nil
}

// GetOrderByID gets an order by ID
func (s *OrderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
	}
	return toOrderResponse(o), nil
}

// ListOrders lists orders with filtering
func (s *OrderService) ListOrders(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := order.Filter{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Search = filter.Search
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	if filter.PaymentReceived != "" {
		flag := order.PaymentReceived(filter.PaymentReceived)
		domainFilter.PaymentReceived = &flag
	}
	if filter.DeliveryStatus != "" {
		status := order.DeliveryStatus(filter.DeliveryStatus)
		domainFilter.DeliveryStatus = &status
	}
	if filter.ProductService != "" {
		product := filter.ProductService
		domainFilter.ProductService = &product
	}

	orders, err := s.orders.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = *toOrderResponse(&orders[i])
	}
	return responses, total, nil
}

// UpdateOrder persists the changed order fields, drops any existing
// auto-generated transaction for it, and recreates the mirror when the
// updated order still qualifies. Replacing rather than editing the mirror
// keeps the ledger consistent regardless of which fields changed.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderMutationResult, error) {
	var (
		o       *order.Order
		warning string
	)
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var err error
		o, err = repos.OrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return shared.NewDomainError("NOT_FOUND", "Order not found")
		}

		if err := o.Update(
			req.Date,
			req.CustomerName,
			req.PhoneNumber,
			req.ProductService,
			req.Quantity,
			req.UnitPrice,
			req.PaidAmount,
			order.PaymentReceived(req.PaymentReceived),
			req.PaymentMethod,
			order.DeliveryStatus(req.DeliveryStatus),
			req.Notes,
		); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		if err := repos.LedgerRepo().DeleteAutoGeneratedByOrderID(ctx, id); err != nil {
			return err
		}
		if !o.IsPaid() {
			return nil
		}
		if err := s.mirror(ctx, repos, o); err != nil {
			rerr := ledger.NewReconciliationError(id, err)
			s.logger.Warn("order updated but ledger mirror failed",
				zap.String("order_id", id.String()),
				zap.Error(err))
			warning = rerr.Error()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &OrderMutationResult{Order: toOrderResponse(o), ReconciliationWarning: warning}, nil
}

// DeleteOrder removes an order together with its auto-generated transaction
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos Repositories) error {
		if err := repos.LedgerRepo().DeleteAutoGeneratedByOrderID(ctx, id); err != nil {
			return err
		}
		return repos.OrderRepo().Delete(ctx, id)
	})
}

// GenerateSalesRequest selects the orders considered for bulk generation
type GenerateSalesRequest struct {
	FromDate time.Time `json:"from_date" binding:"required"`
	ToDate   time.Time `json:"to_date" binding:"required"`
}

// GenerateSalesResult reports the outcome of a bulk generation run
type GenerateSalesResult struct {
	Generated int      `json:"generated"`
	Skipped   int      `json:"skipped"`
	Failures  []string `json:"failures,omitempty"`
	Message   string   `json:"message"`
}

// GenerateForPeriod mirrors every paid order in the date range that is not
// yet referenced by an auto-generated transaction. The membership test
// against existing references makes repeated calls over overlapping ranges
// idempotent at the order granularity. Per-row failures are collected and
// reported without aborting the batch.
func (s *OrderService) GenerateForPeriod(ctx context.Context, req GenerateSalesRequest) (*GenerateSalesResult, error) {
	result := &GenerateSalesResult{}
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		candidates, err := repos.OrderRepo().FindByDateRange(ctx, req.FromDate, req.ToDate)
		if err != nil {
			return err
		}
		existing, err := repos.LedgerRepo().FindAutoGeneratedOrderIDs(ctx)
		if err != nil {
			return err
		}

		for i := range candidates {
			o := &candidates[i]
			if !o.IsPaid() {
				continue
			}
			if _, ok := existing[o.GetID()]; ok {
				result.Skipped++
				continue
			}
			if err := s.mirror(ctx, repos, o); err != nil {
				rerr := ledger.NewReconciliationError(o.GetID(), err)
				s.logger.Warn("bulk generation skipped order after failure",
					zap.String("order_id", o.GetID().String()),
					zap.Error(err))
				result.Failures = append(result.Failures, rerr.Error())
				continue
			}
			result.Generated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case result.Generated == 0 && len(result.Failures) == 0:
		result.Message = "nothing to generate"
	default:
		result.Message = fmt.Sprintf("generated %d sales transactions", result.Generated)
	}
	return result, nil
}

// ConsistencyReport lists every way the order table and the ledger disagree
type ConsistencyReport struct {
	Consistent           bool        `json:"consistent"`
	MissingMirrors       []uuid.UUID `json:"missing_mirrors,omitempty"`
	UnexpectedMirrors    []uuid.UUID `json:"unexpected_mirrors,omitempty"`
	AmountMismatches     []uuid.UUID `json:"amount_mismatches,omitempty"`
	OrphanedTransactions []uuid.UUID `json:"orphaned_transactions,omitempty"`
}

// CheckConsistency audits the order-ledger invariant: every paid order has
// exactly one auto-generated Sales transaction with a matching amount, and
// no auto-generated transaction points anywhere else. Read-only; repairs
// only happen through the order update and delete paths.
func (s *OrderService) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	orders, err := s.orders.FindAll(ctx, order.Filter{})
	if err != nil {
		return nil, err
	}

	auto := ledger.ProvenanceAutoGenerated
	txns, err := s.txns.FindAll(ctx, ledger.Filter{Provenance: &auto})
	if err != nil {
		return nil, err
	}

	mirrors := make(map[uuid.UUID][]*ledger.Transaction)
	for i := range txns {
		t := &txns[i]
		if t.OrderID == nil {
			continue
		}
		mirrors[*t.OrderID] = append(mirrors[*t.OrderID], t)
	}

	report := &ConsistencyReport{}
	known := make(map[uuid.UUID]struct{}, len(orders))
	for i := range orders {
		o := &orders[i]
		id := o.GetID()
		known[id] = struct{}{}

		refs := mirrors[id]
		if o.IsPaid() {
			switch {
			case len(refs) == 0:
				report.MissingMirrors = append(report.MissingMirrors, id)
			case len(refs) > 1:
				report.AmountMismatches = append(report.AmountMismatches, id)
			case !refs[0].IncomePrimary.Equal(o.PaidAmount):
				report.AmountMismatches = append(report.AmountMismatches, id)
			}
		} else if len(refs) > 0 {
			report.UnexpectedMirrors = append(report.UnexpectedMirrors, id)
		}
	}

	for orderID, refs := range mirrors {
		if _, ok := known[orderID]; !ok {
			for _, t := range refs {
				report.OrphanedTransactions = append(report.OrphanedTransactions, t.GetID())
			}
		}
	}

	report.Consistent = len(report.MissingMirrors) == 0 &&
		len(report.UnexpectedMirrors) == 0 &&
		len(report.AmountMismatches) == 0 &&
		len(report.OrphanedTransactions) == 0
	return report, nil
}

func (s *OrderService) mirror(ctx context.Context, repos Repositories, o *order.Order) error {
	t, err := ledger.NewSalesFromOrder(o, s.rate)
	if err != nil {
		return err
	}
	return repos.LedgerRepo().Save(ctx, t)
}

func toOrderResponse(o *order.Order) *OrderResponse {
	return &OrderResponse{
		ID:              o.GetID(),
		Date:            o.Date,
		CustomerName:    o.CustomerName,
		PhoneNumber:     o.PhoneNumber,
		ProductService:  o.ProductService,
		Quantity:        o.Quantity,
		UnitPrice:       o.UnitPrice,
		TotalCost:       o.TotalCost,
		PaidAmount:      o.PaidAmount,
		PendingAmount:   o.PendingAmount,
		PaymentReceived: o.PaymentReceived.String(),
		PaymentMethod:   o.PaymentMethod,
		DeliveryStatus:  o.DeliveryStatus.String(),
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.GetVersion(),
	}
}
