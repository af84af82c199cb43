package domain

import (
	"fmt"
	"time"

	"github.com/govalues/decimal"
)

type SettlementSource string

const (
	SettlementSourceReconcile SettlementSource = "reconcile"
	SettlementSourceManual    SettlementSource = "manual"
	SettlementSourceOverride  SettlementSource = "override"
)

type SettlementRequest struct {
	OrderID        int64
	ExpectedStatus OrderStatus
	NewStatus      OrderStatus
	Amount         decimal.Decimal
	Reason         string
	Source         SettlementSource
}

// IdempotencyKey identifies one refund per order and target status.
func (r SettlementRequest) IdempotencyKey() string {
	return fmt.Sprintf("%d:%s", r.OrderID, r.NewStatus)
}

// Settlement is the audit record of one credited refund.
type Settlement struct {
	ID             string
	OrderID        int64
	UserID         int64
	IdempotencyKey string
	StatusFrom     OrderStatus
	StatusTo       OrderStatus
	Amount         decimal.Decimal
	Currency       string
	Credited       decimal.Decimal
	LedgerCurrency string
	Reason         string
	Source         SettlementSource
	CreatedAt      time.Time
}

type SettlementResult struct {
	Order      *Order
	Settlement *Settlement
	NewBalance *decimal.Decimal
	Changed    bool
}
