package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ordertrack/backend/internal/domain/ledger"
	"github.com/ordertrack/backend/internal/domain/shared"
)

// TransactionService provides application-level operations on manual ledger
// entries. Auto-generated entries are owned by the reconciliation path and
// can only be inspected or, with an inconsistency warning, deleted here.
type TransactionService struct {
	txns   ledger.Repository
	logger *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(txns ledger.Repository, logger *zap.Logger) *TransactionService {
	return &TransactionService{txns: txns, logger: logger}
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID               uuid.UUID       `json:"id"`
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	IncomePrimary    decimal.Decimal `json:"income_tzs"`
	IncomeSecondary  decimal.Decimal `json:"income_usd"`
	ExpensePrimary   decimal.Decimal `json:"expense_tzs"`
	ExpenseSecondary decimal.Decimal `json:"expense_usd"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	Provenance       string          `json:"provenance"`
	Editable         bool            `json:"editable"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// CreateTransactionRequest represents a request to create a manual ledger entry
type CreateTransactionRequest struct {
	Date            time.Time       `json:"date" binding:"required"`
	Description     string          `json:"description" binding:"required"`
	Category        string          `json:"category" binding:"required,oneof=Sales Expenses"`
	AmountPrimary   decimal.Decimal `json:"amount_tzs" binding:"required"`
	AmountSecondary decimal.Decimal `json:"amount_usd"`
	PaymentMethod   string          `json:"payment_method"`
	Notes           string          `json:"notes"`
}

// UpdateTransactionRequest represents a request to update a manual ledger entry
type UpdateTransactionRequest struct {
	Date            time.Time       `json:"date" binding:"required"`
	Description     string          `json:"description" binding:"required"`
	Category        string          `json:"category" binding:"required,oneof=Sales Expenses"`
	AmountPrimary   decimal.Decimal `json:"amount_tzs" binding:"required"`
	AmountSecondary decimal.Decimal `json:"amount_usd"`
	PaymentMethod   string          `json:"payment_method"`
	Notes           string          `json:"notes"`
}

// TransactionListFilter defines filtering options for ledger list queries
type TransactionListFilter struct {
	Search     string     `form:"search"`
	Category   string     `form:"category"`
	Provenance string     `form:"provenance"`
	OrderID    *uuid.UUID `form:"order_id"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// DeleteTransactionResult reports the outcome of a transaction deletion
type DeleteTransactionResult struct {
	// MayCauseInconsistency is true when an auto-generated entry was removed
	// while its order still exists. The ledger is only repaired through the
	// owning order's update or delete path.
	MayCauseInconsistency bool `json:"may_cause_inconsistency"`
}

// CreateTransaction creates a manual ledger entry
func (s *TransactionService) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*TransactionResponse, error) {
	t, err := ledger.NewManualTransaction(
		req.Date,
		req.Description,
		ledger.Category(req.Category),
		req.AmountPrimary,
		req.AmountSecondary,
		req.PaymentMethod,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}
	if err := s.txns.Save(ctx, t); err != nil {
		return nil, err
	}
	return toTransactionResponse(t), nil
}

// GetTransactionByID gets a ledger entry by ID
func (s *TransactionService) GetTransactionByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	t, err := s.txns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Transaction not found")
	}
	return toTransactionResponse(t), nil
}

// ListTransactions lists ledger entries with filtering
func (s *TransactionService) ListTransactions(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	domainFilter := ledger.Filter{
		OrderID:  filter.OrderID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Search = filter.Search
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	if filter.Category != "" {
		category := ledger.Category(filter.Category)
		domainFilter.Category = &category
	}
	if filter.Provenance != "" {
		provenance := ledger.Provenance(filter.Provenance)
		domainFilter.Provenance = &provenance
	}

	txns, err := s.txns.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.txns.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = *toTransactionResponse(&txns[i])
	}
	return responses, total, nil
}

// UpdateTransaction updates a manual ledger entry. Auto-generated entries
// are rejected; they change only through their owning order.
func (s *TransactionService) UpdateTransaction(ctx context.Context, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	t, err := s.txns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Transaction not found")
	}

	if err := t.Update(
		req.Date,
		req.Description,
		ledger.Category(req.Category),
		req.AmountPrimary,
		req.AmountSecondary,
		req.PaymentMethod,
		req.Notes,
	); err != nil {
		return nil, err
	}
	if err := s.txns.Save(ctx, t); err != nil {
		return nil, err
	}
	return toTransactionResponse(t), nil
}

// DeleteTransaction removes a ledger entry. Deleting an auto-generated entry
// is permitted but flagged, since it breaks the mirror of a still-paid order.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id uuid.UUID) (*DeleteTransactionResult, error) {
	t, err := s.txns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Transaction not found")
	}

	if err := s.txns.Delete(ctx, id); err != nil {
		return nil, err
	}

	result := &DeleteTransactionResult{MayCauseInconsistency: !t.IsEditable()}
	if result.MayCauseInconsistency {
		s.logger.Warn("auto-generated transaction deleted directly",
			zap.String("transaction_id", id.String()))
	}
	return result, nil
}

func toTransactionResponse(t *ledger.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.GetID(),
		Date:             t.Date,
		Description:      t.Description,
		Category:         t.Category.String(),
		IncomePrimary:    t.IncomePrimary,
		IncomeSecondary:  t.IncomeSecondary,
		ExpensePrimary:   t.ExpensePrimary,
		ExpenseSecondary: t.ExpenseSecondary,
		PaymentMethod:    t.PaymentMethod,
		Notes:            t.Notes,
		OrderID:          t.OrderID,
		Provenance:       t.Provenance.String(),
		Editable:         t.IsEditable(),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		Version:          t.GetVersion(),
	}
}
