package http

import (
	"time"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/govalues/decimal"
)

type orderResponse struct {
	ID              int64              `json:"id"`
	ExternalOrderID *string            `json:"external_order_id"`
	UserID          int64              `json:"user_id"`
	Quantity        int64              `json:"quantity"`
	Charge          decimal.Decimal    `json:"charge"`
	Status          domain.OrderStatus `json:"status"`
	Remains         *int64             `json:"remains"`
	StartCount      *int64             `json:"start_count"`
	RefundAmount    decimal.Decimal    `json:"refund_amount"`
	RefundAt        *time.Time         `json:"refund_at,omitempty"`
	RefundReason    *string            `json:"refund_reason,omitempty"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Settlements     []settlementResp   `json:"settlements"`
}

type settlementResp struct {
	ID             string                  `json:"id"`
	StatusFrom     domain.OrderStatus      `json:"status_from"`
	StatusTo       domain.OrderStatus      `json:"status_to"`
	Amount         decimal.Decimal         `json:"amount"`
	Currency       string                  `json:"currency"`
	Credited       decimal.Decimal         `json:"credited"`
	LedgerCurrency string                  `json:"ledger_currency"`
	Reason         string                  `json:"reason"`
	Source         domain.SettlementSource `json:"source"`
	CreatedAt      time.Time               `json:"created_at"`
}

func newOrderResponse(o *domain.Order, settlements []*domain.Settlement) orderResponse {
	r := orderResponse{
		ID:              o.ID,
		ExternalOrderID: o.ExternalOrderID,
		UserID:          o.UserID,
		Quantity:        o.Quantity,
		Charge:          o.Charge,
		Status:          o.Status,
		Remains:         o.Remains,
		StartCount:      o.StartCount,
		RefundAmount:    o.RefundAmount,
		RefundAt:        o.RefundAt,
		RefundReason:    o.RefundReason,
		UpdatedAt:       o.UpdatedAt,
		Settlements:     make([]settlementResp, 0, len(settlements)),
	}
	for _, s := range settlements {
		r.Settlements = append(r.Settlements, settlementResp{
			ID:             s.ID,
			StatusFrom:     s.StatusFrom,
			StatusTo:       s.StatusTo,
			Amount:         s.Amount,
			Currency:       s.Currency,
			Credited:       s.Credited,
			LedgerCurrency: s.LedgerCurrency,
			Reason:         s.Reason,
			Source:         s.Source,
			CreatedAt:      s.CreatedAt,
		})
	}
	return r
}

// summaryResponse is returned by every reconciliation action.
type summaryResponse struct {
	Updated        int                       `json:"updated"`
	Refunded       int                       `json:"refunded"`
	RefundedAmount decimal.Decimal           `json:"refunded_amount"`
	Failed         int                       `json:"failed"`
	FailedIDs      []int64                   `json:"failed_ids"`
	Results        []*domain.ReconcileResult `json:"results"`
}

func newSummary(b *domain.BatchResult) summaryResponse {
	return summaryResponse{
		Updated:        b.Updated,
		Refunded:       b.Refunded,
		RefundedAmount: b.RefundedAmount,
		Failed:         b.Failed,
		FailedIDs:      b.FailedIDs(),
		Results:        b.Results,
	}
}

func singleSummary(r *domain.ReconcileResult) (summaryResponse, error) {
	b := &domain.BatchResult{RefundedAmount: decimal.Zero}
	if err := b.Add(r); err != nil {
		return summaryResponse{}, err
	}
	return newSummary(b), nil
}

type refillResponse struct {
	OrderID  int64  `json:"order_id"`
	RefillID string `json:"refill_id"`
}
