package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusInProgress OrderStatus = "InProgress"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusPartial    OrderStatus = "Partial"
	OrderStatusCanceled   OrderStatus = "Canceled"
	OrderStatusRefunded   OrderStatus = "Refunded"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusInProgress,
	OrderStatusCompleted,
	OrderStatusPartial,
	OrderStatusCanceled,
	OrderStatusRefunded,
}

// ParseOrderStatus accepts only the canonical status names.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range orderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// Terminal statuses are never picked up by automatic reconciliation.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCanceled || s == OrderStatusRefunded
}

// RefundSettled reports whether an automatic refund has already been paid
// for an order in this status.
func (s OrderStatus) RefundSettled() bool {
	return s == OrderStatusPartial || s == OrderStatusCanceled || s == OrderStatusRefunded
}

type Order struct {
	ID              int64
	ExternalOrderID *string
	UserID          int64
	Quantity        int64
	Charge          decimal.Decimal
	Status          OrderStatus
	Remains         *int64
	StartCount      *int64
	RefundAmount    decimal.Decimal
	RefundAt        *time.Time
	RefundReason    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (o *Order) HasExternalID() bool {
	return o.ExternalOrderID != nil && *o.ExternalOrderID != ""
}

// Eligible reports whether the order can be reconciled against the provider.
func (o *Order) Eligible() bool {
	return o.HasExternalID() && !o.Status.Terminal()
}

// RemainingCharge is the part of the charge not refunded yet.
func (o *Order) RemainingCharge() (decimal.Decimal, error) {
	return o.Charge.Sub(o.RefundAmount)
}
