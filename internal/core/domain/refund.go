package domain

import "github.com/govalues/decimal"

type RefundInput struct {
	PreviousStatus OrderStatus
	ProviderStatus OrderStatus
	Remains        *int64
	Quantity       int64
	Charge         decimal.Decimal
}

// RefundDecision is never persisted. Amount is in the provider's charge currency.
type RefundDecision struct {
	OrderID   int64
	Ratio     decimal.Decimal
	Amount    decimal.Decimal
	Reason    string
	NewStatus OrderStatus
}

func (d RefundDecision) Refund() bool {
	return d.Amount.IsPos()
}
