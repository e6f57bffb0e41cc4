package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ordertrack/backend/internal/domain/order"
	"github.com/ordertrack/backend/internal/domain/shared"
	"github.com/ordertrack/backend/internal/domain/shared/valueobject"
)

// Category represents the kind of ledger entry
type Category string

const (
	CategorySales    Category = "Sales"
	CategoryExpenses Category = "Expenses"
)

// IsValid checks if the category is a valid Category
func (c Category) IsValid() bool {
	return c == CategorySales || c == CategoryExpenses
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// Provenance records how a transaction came into existence
type Provenance string

const (
	ProvenanceManual        Provenance = "Manual"
	ProvenanceAutoGenerated Provenance = "AutoGenerated"
)

// IsValid checks if the value is a valid Provenance
func (p Provenance) IsValid() bool {
	return p == ProvenanceManual || p == ProvenanceAutoGenerated
}

// String returns the string representation of Provenance
func (p Provenance) String() string {
	return string(p)
}

// Transaction represents a single ledger entry. The amount is carried in both
// currencies as four columns; exactly one of the income/expense pairs is
// non-zero, selected by category.
//
// An AutoGenerated transaction always references the order it mirrors and a
// Manual transaction never references one. AutoGenerated rows are replaced
// wholesale when their order changes, never edited in place.
type Transaction struct {
	shared.BaseAggregateRoot
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"`
	Category         Category        `json:"category"`
	IncomePrimary    decimal.Decimal `json:"income_tzs"`
	IncomeSecondary  decimal.Decimal `json:"income_usd"`
	ExpensePrimary   decimal.Decimal `json:"expense_tzs"`
	ExpenseSecondary decimal.Decimal `json:"expense_usd"`
	PaymentMethod    string          `json:"payment_method"`
	Notes            string          `json:"notes"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	Provenance       Provenance      `json:"provenance"`
}

// NewManualTransaction creates a hand-entered ledger entry. The amount pair
// is routed to income or expense columns according to the category.
func NewManualTransaction(
	date time.Time,
	description string,
	category Category,
	amountPrimary decimal.Decimal,
	amountSecondary decimal.Decimal,
	paymentMethod string,
	notes string,
) (*Transaction, error) {
	t := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Provenance:        ProvenanceManual,
	}
	if err := t.apply(date, description, category, amountPrimary, amountSecondary, paymentMethod, notes); err != nil {
		return nil, err
	}
	return t, nil
}

// NewSalesFromOrder synthesizes the AutoGenerated Sales entry mirroring a
// paid order. The primary amount is the order's paid amount; the secondary
// amount is derived through the exchange rate.
func NewSalesFromOrder(o *order.Order, rate valueobject.ExchangeRate) (*Transaction, error) {
	if o == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "order is required")
	}
	if !o.IsPaid() {
		return nil, shared.NewDomainError("INVALID_STATE", "order has no received payment to mirror")
	}

	orderID := o.GetID()
	t := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Provenance:        ProvenanceAutoGenerated,
		OrderID:           &orderID,
	}
	note := fmt.Sprintf("Auto-generated from Order #%s - %s", orderID, o.CustomerName)
	if err := t.apply(o.Date, o.ProductService, CategorySales,
		o.PaidAmount, rate.ToSecondary(o.PaidAmount), o.PaymentMethod, note); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the editable fields of a Manual transaction. AutoGenerated
// rows are owned by their order and cannot be edited in place.
func (t *Transaction) Update(
	date time.Time,
	description string,
	category Category,
	amountPrimary decimal.Decimal,
	amountSecondary decimal.Decimal,
	paymentMethod string,
	notes string,
) error {
	if !t.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "auto-generated transactions cannot be edited; update the owning order instead")
	}
	if err := t.apply(date, description, category, amountPrimary, amountSecondary, paymentMethod, notes); err != nil {
		return err
	}
	t.IncrementVersion()
	return nil
}

// IsEditable reports whether the transaction may be edited directly
func (t *Transaction) IsEditable() bool {
	return t.Provenance == ProvenanceManual
}

// AmountPrimary returns whichever primary-currency column is in use
func (t *Transaction) AmountPrimary() decimal.Decimal {
	if t.Category == CategoryExpenses {
		return t.ExpensePrimary
	}
	return t.IncomePrimary
}

// AmountSecondary returns whichever secondary-currency column is in use
func (t *Transaction) AmountSecondary() decimal.Decimal {
	if t.Category == CategoryExpenses {
		return t.ExpenseSecondary
	}
	return t.IncomeSecondary
}

func (t *Transaction) apply(
	date time.Time,
	description string,
	category Category,
	amountPrimary decimal.Decimal,
	amountSecondary decimal.Decimal,
	paymentMethod string,
	notes string,
) error {
	if date.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "date is required")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_INPUT", "description cannot be empty")
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid category: %s", category))
	}
	if !amountPrimary.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "amount must be positive")
	}
	if amountSecondary.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "secondary amount cannot be negative")
	}

	t.Date = truncateToDay(date)
	t.Description = description
	t.Category = category
	t.PaymentMethod = paymentMethod
	t.Notes = notes

	t.IncomePrimary = decimal.Zero
	t.IncomeSecondary = decimal.Zero
	t.ExpensePrimary = decimal.Zero
	t.ExpenseSecondary = decimal.Zero
	switch category {
	case CategorySales:
		t.IncomePrimary = amountPrimary
		t.IncomeSecondary = amountSecondary
	case CategoryExpenses:
		t.ExpensePrimary = amountPrimary
		t.ExpenseSecondary = amountSecondary
	}

	return t.validate()
}

// validate enforces the column-pair and provenance invariants
func (t *Transaction) validate() error {
	incomeSet := t.IncomePrimary.IsPositive() || t.IncomeSecondary.IsPositive()
	expenseSet := t.ExpensePrimary.IsPositive() || t.ExpenseSecondary.IsPositive()
	if incomeSet == expenseSet {
		return shared.NewDomainError("INVALID_STATE", "exactly one of the income/expense amount pairs must be set")
	}
	switch t.Provenance {
	case ProvenanceAutoGenerated:
		if t.OrderID == nil {
			return shared.NewDomainError("INVALID_STATE", "auto-generated transactions must reference an order")
		}
	case ProvenanceManual:
		if t.OrderID != nil {
			return shared.NewDomainError("INVALID_STATE", "manual transactions cannot reference an order")
		}
	default:
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid provenance: %s", t.Provenance))
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
