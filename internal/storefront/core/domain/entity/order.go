package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryTimeType string

const (
	DeliveryASAP      DeliveryTimeType = "ASAP"
	DeliveryScheduled DeliveryTimeType = "SCHEDULED"
)

type PaymentMethod string

const (
	PaymentBlik PaymentMethod = "blik"
	PaymentCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentBlik || m == PaymentCard
}

type DocumentType string

const (
	DocumentReceipt DocumentType = "receipt"
	DocumentInvoice DocumentType = "invoice"
)

func (d DocumentType) Valid() bool {
	return d == DocumentReceipt || d == DocumentInvoice
}

// SubmissionItem is one flattened cart line inside a Submission.
type SubmissionItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Submission is the payload sent to the order gateway. It is built once from
// the cart and the checkout draft and never mutated afterwards.
type Submission struct {
	RestaurantID     string
	TotalAmount      decimal.Decimal
	PaymentMethod    PaymentMethod
	DeliveryAddress  string
	DeliveryTimeType DeliveryTimeType
	ScheduledTime    string
	DocumentType     DocumentType
	TaxID            *string
	Remarks          string
	Items            []SubmissionItem
}

type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the backend's canonical record of a placed order. The storefront
// only reads it.
type Order struct {
	ID                string
	Status            string
	RestaurantID      string
	RestaurantName    string
	RestaurantAddress string
	DeliveryAddress   string
	DeliveryTimeType  DeliveryTimeType
	ScheduledTime     string
	PaymentMethod     PaymentMethod
	DocumentType      DocumentType
	TaxID             *string
	Remarks           string
	TotalAmount       decimal.Decimal
	Items             []OrderItem
	CreatedAt         time.Time
}
