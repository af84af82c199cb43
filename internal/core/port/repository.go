package port

import (
	"context"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	// Order
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	ListOrdersByIDs(ctx context.Context, orderIDs []int64) ([]*domain.Order, error)
	ListEligibleOrders(ctx context.Context) ([]*domain.Order, error)
	// UpdateOrderProgress stores the provider's delivery counters, nil keeps
	// the stored value.
	UpdateOrderProgress(ctx context.Context, orderID int64, remains, startCount *int64) error
	ListSettlements(ctx context.Context, orderID int64) ([]*domain.Settlement, error)

	// Balance
	ReadBalanceByUserID(ctx context.Context, userID int64) (*domain.Balance, error)

	// SettleOrder locks the order row and runs settleFn on the locked copy inside
	// one transaction. settleFn mutates the order and returns the settlement to
	// credit, or nil for a pure status update. The credit and all order writes
	// commit together.
	SettleOrder(ctx context.Context, orderID int64, settleFn SettleFn) (*domain.SettlementResult, error)
}

type SettleFn func(*domain.Order) (*domain.Settlement, error)
