package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ordertrack/backend/internal/domain/ledger"
)

// TransactionModel is the persistence model for the Transaction aggregate
// root. OrderID is a nullable reference to the orders table with no cascade
// at the storage level; cascades are enforced by the application.
type TransactionModel struct {
	AggregateModel
	Date             time.Time         `gorm:"not null;index:idx_transactions_date"`
	Description      string            `gorm:"type:varchar(200);not null"`
	Category         ledger.Category   `gorm:"type:varchar(20);not null;index"`
	IncomePrimary    decimal.Decimal   `gorm:"column:income_tzs;type:decimal(18,2);not null;default:0"`
	IncomeSecondary  decimal.Decimal   `gorm:"column:income_usd;type:decimal(18,2);not null;default:0"`
	ExpensePrimary   decimal.Decimal   `gorm:"column:expense_tzs;type:decimal(18,2);not null;default:0"`
	ExpenseSecondary decimal.Decimal   `gorm:"column:expense_usd;type:decimal(18,2);not null;default:0"`
	PaymentMethod    string            `gorm:"type:varchar(50)"`
	Notes            string            `gorm:"type:text"`
	OrderID          *uuid.UUID        `gorm:"type:uuid;index"`
	Provenance       ledger.Provenance `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	t := &ledger.Transaction{
		Date:             m.Date,
		Description:      m.Description,
		Category:         m.Category,
		IncomePrimary:    m.IncomePrimary,
		IncomeSecondary:  m.IncomeSecondary,
		ExpensePrimary:   m.ExpensePrimary,
		ExpenseSecondary: m.ExpenseSecondary,
		PaymentMethod:    m.PaymentMethod,
		Notes:            m.Notes,
		OrderID:          m.OrderID,
		Provenance:       m.Provenance,
	}
	m.PopulateAggregateRoot(&t.BaseAggregateRoot)
	return t
}

// TransactionModelFromDomain creates a persistence model from a domain Transaction entity.
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{
		Date:             t.Date,
		Description:      t.Description,
		Category:         t.Category,
		IncomePrimary:    t.IncomePrimary,
		IncomeSecondary:  t.IncomeSecondary,
		ExpensePrimary:   t.ExpensePrimary,
		ExpenseSecondary: t.ExpenseSecondary,
		PaymentMethod:    t.PaymentMethod,
		Notes:            t.Notes,
		OrderID:          t.OrderID,
		Provenance:       t.Provenance,
	}
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	return m
}
