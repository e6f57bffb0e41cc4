package order

import (
	"time"

	"github.com/ordertrack/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DeliveryStatus represents the fulfilment state of an order
type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "Pending"
	DeliveryStatusPickUp     DeliveryStatus = "PickUp"
	DeliveryStatusDelivered  DeliveryStatus = "Delivered"
	DeliveryStatusInProgress DeliveryStatus = "InProgress"
)

// IsValid checks if the status is a valid DeliveryStatus
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusPickUp, DeliveryStatusDelivered, DeliveryStatusInProgress:
		return true
	}
	return false
}

// String returns the string representation of DeliveryStatus
func (s DeliveryStatus) String() string {
	return string(s)
}

// PaymentReceived represents whether payment for an order has been received
type PaymentReceived string

const (
	PaymentReceivedYes PaymentReceived = "Yes"
	PaymentReceivedNo  PaymentReceived = "No"
)

// IsValid checks if the value is a valid PaymentReceived flag
func (p PaymentReceived) IsValid() bool {
	return p == PaymentReceivedYes || p == PaymentReceivedNo
}

// String returns the string representation of PaymentReceived
func (p PaymentReceived) String() string {
	return string(p)
}

// Well-known payment methods. The field is free text; these are the values
// the order form offers.
const (
	PaymentMethodCash         = "Cash"
	PaymentMethodMPesa        = "M-Pesa"
	PaymentMethodBankTransfer = "Bank Transfer"
	PaymentMethodTigoPesa     = "Tigo Pesa"
	PaymentMethodAirtelMoney  = "Airtel Money"
)

// Order represents a customer order aggregate root. Total cost and pending
// amount are derived; they are recomputed on every mutation and never edited
// independently.
type Order struct {
	shared.BaseAggregateRoot
	Date            time.Time       `json:"date"`
	CustomerName    string          `json:"customer_name"`
	PhoneNumber     string          `json:"phone_number"`
	ProductService  string          `json:"product_service"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
	PaymentReceived PaymentReceived `json:"payment_received"`
	PaymentMethod   string          `json:"payment_method"`
	DeliveryStatus  DeliveryStatus  `json:"delivery_status"`
	Notes           string          `json:"notes"`
}

// NewOrder creates a new order, deriving total cost and pending amount.
// Partial payment and over-payment are both legal; paid amount only has to
// be non-negative.
func NewOrder(
	date time.Time,
	customerName string,
	phoneNumber string,
	productService string,
	quantity int,
	unitPrice decimal.Decimal,
	paidAmount decimal.Decimal,
	paymentReceived PaymentReceived,
	paymentMethod string,
	deliveryStatus DeliveryStatus,
	notes string,
) (*Order, error) {
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
	}
	if err := o.apply(date, customerName, phoneNumber, productService, quantity,
		unitPrice, paidAmount, paymentReceived, paymentMethod, deliveryStatus, notes); err != nil {
		return nil, err
	}
	return o, nil
}

// Update replaces the order's editable fields and re-derives the computed ones
func (o *Order) Update(
	date time.Time,
	customerName string,
	phoneNumber string,
	productService string,
	quantity int,
	unitPrice decimal.Decimal,
	paidAmount decimal.Decimal,
	paymentReceived PaymentReceived,
	paymentMethod string,
	deliveryStatus DeliveryStatus,
	notes string,
) error {
	if err := o.apply(date, customerName, phoneNumber, productService, quantity,
		unitPrice, paidAmount, paymentReceived, paymentMethod, deliveryStatus, notes); err != nil {
		return err
	}
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) apply(
	date time.Time,
	customerName string,
	phoneNumber string,
	productService string,
	quantity int,
	unitPrice decimal.Decimal,
	paidAmount decimal.Decimal,
	paymentReceived PaymentReceived,
	paymentMethod string,
	deliveryStatus DeliveryStatus,
	notes string,
) error {
	if date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Order date is required")
	}
	if customerName == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}
	if productService == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Product/service label cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !unitPrice.IsPositive() {
		return shared.NewDomainError("INVALID_UNIT_PRICE", "Unit price must be positive")
	}
	if paidAmount.IsNegative() {
		return shared.NewDomainError("INVALID_PAID_AMOUNT", "Paid amount cannot be negative")
	}
	if !paymentReceived.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_FLAG", "Payment received must be Yes or No")
	}
	if !deliveryStatus.IsValid() {
		return shared.NewDomainError("INVALID_DELIVERY_STATUS", "Delivery status is not valid")
	}

	o.Date = truncateToDay(date)
	o.CustomerName = customerName
	o.PhoneNumber = phoneNumber
	o.ProductService = productService
	o.Quantity = quantity
	o.UnitPrice = unitPrice
	o.TotalCost = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	o.PaidAmount = paidAmount
	o.PendingAmount = o.TotalCost.Sub(paidAmount)
	o.PaymentReceived = paymentReceived
	o.PaymentMethod = paymentMethod
	o.DeliveryStatus = deliveryStatus
	o.Notes = notes
	return nil
}

// IsPaid reports whether the order qualifies for a mirrored sales entry:
// payment received and a positive paid amount.
func (o *Order) IsPaid() bool {
	return o.PaymentReceived == PaymentReceivedYes && o.PaidAmount.IsPositive()
}

// truncateToDay normalizes a timestamp to the calendar day in UTC
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
