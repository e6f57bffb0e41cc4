package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ordertrack/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	Date            time.Time             `gorm:"not null;index:idx_orders_date"`
	CustomerName    string                `gorm:"type:varchar(200);not null;index"`
	PhoneNumber     string                `gorm:"type:varchar(50)"`
	ProductService  string                `gorm:"type:varchar(200);not null;index"`
	Quantity        int                   `gorm:"not null"`
	UnitPrice       decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	TotalCost       decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaidAmount      decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	PendingAmount   decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentReceived order.PaymentReceived `gorm:"type:varchar(5);not null;index"`
	PaymentMethod   string                `gorm:"type:varchar(50)"`
	DeliveryStatus  order.DeliveryStatus  `gorm:"type:varchar(20);not null;index"`
	Notes           string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		Date:            m.Date,
		CustomerName:    m.CustomerName,
		PhoneNumber:     m.PhoneNumber,
		ProductService:  m.ProductService,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		TotalCost:       m.TotalCost,
		PaidAmount:      m.PaidAmount,
		PendingAmount:   m.PendingAmount,
		PaymentReceived: m.PaymentReceived,
		PaymentMethod:   m.PaymentMethod,
		DeliveryStatus:  m.DeliveryStatus,
		Notes:           m.Notes,
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	return o
}

// OrderModelFromDomain creates a persistence model from a domain Order entity.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		Date:            o.Date,
		CustomerName:    o.CustomerName,
		PhoneNumber:     o.PhoneNumber,
		ProductService:  o.ProductService,
		Quantity:        o.Quantity,
		UnitPrice:       o.UnitPrice,
		TotalCost:       o.TotalCost,
		PaidAmount:      o.PaidAmount,
		PendingAmount:   o.PendingAmount,
		PaymentReceived: o.PaymentReceived,
		PaymentMethod:   o.PaymentMethod,
		DeliveryStatus:  o.DeliveryStatus,
		Notes:           o.Notes,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}
