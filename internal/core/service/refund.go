package service

import (
	"fmt"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/govalues/decimal"
)

// DecideRefund maps a provider report onto a refund decision. Refunds follow
// status transitions: an order that already reached Partial, Canceled or
// Refunded is never refunded again, whatever the provider reports now.
func DecideRefund(in domain.RefundInput) domain.RefundDecision {
	d := domain.RefundDecision{
		Ratio:     decimal.Zero,
		Amount:    decimal.Zero,
		NewStatus: in.ProviderStatus,
	}
	if in.PreviousStatus.RefundSettled() {
		return d
	}

	switch in.ProviderStatus {
	case domain.OrderStatusCanceled:
		d.Ratio = decimal.One
		d.Amount = in.Charge
		d.Reason = "provider canceled order"
	case domain.OrderStatusPartial:
		if in.Remains == nil || *in.Remains <= 0 || in.Quantity <= 0 {
			return d
		}
		remains := min(*in.Remains, in.Quantity)
		ratio, amount, err := partialRefund(in.Charge, remains, in.Quantity)
		if err != nil {
			// arithmetic overflow, pay nothing rather than something wrong
			return d
		}
		d.Ratio = ratio
		d.Amount = amount
		d.Reason = fmt.Sprintf("provider partially completed order (%d of %d undelivered)", remains, in.Quantity)
	}

	return d
}

// partialRefund returns remains/quantity and charge*remains/quantity. The
// amount is truncated to the charge scale so it never exceeds the exact share.
func partialRefund(charge decimal.Decimal, remains, quantity int64) (decimal.Decimal, decimal.Decimal, error) {
	r, err := decimal.New(remains, 0)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	q, err := decimal.New(quantity, 0)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	ratio, err := r.Quo(q)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if ratio.Cmp(decimal.One) > 0 {
		ratio = decimal.One
	}

	amount, err := charge.Mul(r)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	amount, err = amount.Quo(q)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	amount = amount.Trunc(charge.Scale())
	if amount.Cmp(charge) > 0 {
		amount = charge
	}

	return ratio.Trim(0), amount, nil
}
