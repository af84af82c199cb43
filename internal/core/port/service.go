package port

import (
	"context"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Ledger interface {
	Settle(ctx context.Context, req domain.SettlementRequest) (*domain.SettlementResult, error)
}

type Reconciler interface {
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	GetSettlements(ctx context.Context, orderID int64) ([]*domain.Settlement, error)
	GetBalance(ctx context.Context, userID int64) (*domain.Balance, error)
	RefreshOne(ctx context.Context, orderID int64) (*domain.ReconcileResult, error)
	RefreshMany(ctx context.Context, orderIDs []int64) (*domain.BatchResult, error)
	ManualRefund(ctx context.Context, orderID int64, reason string) (*domain.ReconcileResult, error)
	OverrideStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.ReconcileResult, error)
	Refill(ctx context.Context, orderID int64) (string, error)
}
