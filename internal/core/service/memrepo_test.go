package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/MikeRez0/smmrefund/internal/core/port"
	"github.com/govalues/decimal"
)

// memRepo mimics the Postgres repository: one lock per order row, atomic
// balance increments and a unique idempotency key per settlement.
type memRepo struct {
	mu          sync.Mutex
	rowLocks    map[int64]*sync.Mutex
	orders      map[int64]domain.Order
	balances    map[int64]decimal.Decimal
	settlements map[string]*domain.Settlement
	credits     int
	nextID      int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		rowLocks:    make(map[int64]*sync.Mutex),
		orders:      make(map[int64]domain.Order),
		balances:    make(map[int64]decimal.Decimal),
		settlements: make(map[string]*domain.Settlement),
	}
}

func (m *memRepo) add(o domain.Order) *domain.Order {
	created, _ := m.CreateOrder(context.Background(), &o)
	return created
}

func (m *memRepo) CreateOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	o := *order
	o.ID = m.nextID
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	o.RefundAmount = decimal.Zero
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.orders[o.ID] = o
	m.rowLocks[o.ID] = &sync.Mutex{}
	return &o, nil
}

func (m *memRepo) ReadOrder(_ context.Context, orderID int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	return &o, nil
}

func (m *memRepo) ListOrdersByIDs(_ context.Context, orderIDs []int64) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		if o, ok := m.orders[id]; ok {
			list = append(list, &o)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *memRepo) ListEligibleOrders(_ context.Context) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*domain.Order, 0)
	for _, o := range m.orders {
		if o.Eligible() {
			o := o
			list = append(list, &o)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *memRepo) UpdateOrderProgress(_ context.Context, orderID int64, remains, startCount *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return domain.ErrDataNotFound
	}
	if remains != nil {
		o.Remains = remains
	}
	if startCount != nil {
		o.StartCount = startCount
	}
	m.orders[orderID] = o
	return nil
}

func (m *memRepo) ListSettlements(_ context.Context, orderID int64) ([]*domain.Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*domain.Settlement, 0)
	for _, s := range m.settlements {
		if s.OrderID == orderID {
			list = append(list, s)
		}
	}
	return list, nil
}

func (m *memRepo) ReadBalanceByUserID(_ context.Context, userID int64) (*domain.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[userID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	return &domain.Balance{UserID: userID, Current: b}, nil
}

func (m *memRepo) SettleOrder(_ context.Context, orderID int64, settleFn port.SettleFn) (*domain.SettlementResult, error) {
	m.mu.Lock()
	row, ok := m.rowLocks[orderID]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrDataNotFound
	}

	row.Lock()
	defer row.Unlock()

	m.mu.Lock()
	o := m.orders[orderID]
	m.mu.Unlock()

	before := o.Status
	s, err := settleFn(&o)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	res := &domain.SettlementResult{Order: &o, Settlement: s}
	if s != nil {
		if _, dup := m.settlements[s.IdempotencyKey]; dup {
			return nil, domain.ErrAlreadySettled
		}
		if o.RefundAmount.Cmp(o.Charge) > 0 {
			return nil, domain.ErrDataInvariant
		}
		m.settlements[s.IdempotencyKey] = s
		current, err := m.balances[o.UserID].Add(s.Credited)
		if err != nil {
			return nil, err
		}
		m.balances[o.UserID] = current
		m.credits++
		res.NewBalance = &current
	}
	if s != nil || o.Status != before {
		o.UpdatedAt = time.Now()
		m.orders[orderID] = o
		res.Changed = true
	}
	return res, nil
}

func (m *memRepo) balance(userID int64) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

func (m *memRepo) order(id int64) domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func (m *memRepo) creditCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credits
}
