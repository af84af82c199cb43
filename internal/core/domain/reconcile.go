package domain

import (
	"fmt"

	"github.com/govalues/decimal"
)

type Outcome string

const (
	OutcomeUnchanged        Outcome = "unchanged"
	OutcomeUpdated          Outcome = "updated"
	OutcomeRefunded         Outcome = "refunded"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeSkipped          Outcome = "skipped"
	OutcomeFailed           Outcome = "failed"
)

type ReconcileResult struct {
	OrderID        int64            `json:"order_id"`
	PreviousStatus OrderStatus      `json:"previous_status,omitempty"`
	Status         OrderStatus      `json:"status,omitempty"`
	Outcome        Outcome          `json:"outcome"`
	RefundAmount   decimal.Decimal  `json:"refund_amount"`
	Credited       decimal.Decimal  `json:"credited"`
	NewBalance     *decimal.Decimal `json:"new_balance,omitempty"`
	Error          string           `json:"error,omitempty"`

	Err error `json:"-"`
}

func (r *ReconcileResult) Refunded() bool {
	return r.Outcome == OutcomeRefunded
}

type BatchResult struct {
	Total          int                `json:"total"`
	Updated        int                `json:"updated"`
	Refunded       int                `json:"refunded"`
	RefundedAmount decimal.Decimal    `json:"refunded_amount"`
	Failed         int                `json:"failed"`
	Results        []*ReconcileResult `json:"results"`
}

// Add folds one per-order result into the summary.
func (b *BatchResult) Add(r *ReconcileResult) error {
	b.Total++
	b.Results = append(b.Results, r)
	switch r.Outcome {
	case OutcomeFailed:
		b.Failed++
	case OutcomeRefunded:
		b.Updated++
		b.Refunded++
		sum, err := b.RefundedAmount.Add(r.RefundAmount)
		if err != nil {
			return fmt.Errorf("refund total: %w", err)
		}
		b.RefundedAmount = sum
	case OutcomeUpdated:
		b.Updated++
	}
	return nil
}

// FailedIDs lists the orders worth retrying.
func (b *BatchResult) FailedIDs() []int64 {
	ids := make([]int64, 0, b.Failed)
	for _, r := range b.Results {
		if r.Outcome == OutcomeFailed {
			ids = append(ids, r.OrderID)
		}
	}
	return ids
}
