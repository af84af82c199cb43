package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/MikeRez0/smmrefund/internal/core/port"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

// Reconciler drives provider status checks and the resulting settlements.
// It never retries provider calls; callers re-run failed orders.
type Reconciler struct {
	repo     port.Repository
	provider port.ProviderClient
	ledger   port.Ledger
	workers  int
	logger   *zap.Logger
}

func NewReconciler(repo port.Repository, provider port.ProviderClient, ledger port.Ledger,
	workers int, logger *zap.Logger) (*Reconciler, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Reconciler{
		repo:     repo,
		provider: provider,
		ledger:   ledger,
		workers:  workers,
		logger:   logger,
	}, nil
}

func (r *Reconciler) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return r.repo.ReadOrder(ctx, orderID)
}

func (r *Reconciler) GetSettlements(ctx context.Context, orderID int64) ([]*domain.Settlement, error) {
	if _, err := r.repo.ReadOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return r.repo.ListSettlements(ctx, orderID)
}

func (r *Reconciler) GetBalance(ctx context.Context, userID int64) (*domain.Balance, error) {
	b, err := r.repo.ReadBalanceByUserID(ctx, userID)
	if errors.Is(err, domain.ErrDataNotFound) {
		return &domain.Balance{UserID: userID, Current: decimal.Zero}, nil
	}
	return b, err
}

func (r *Reconciler) RefreshOne(ctx context.Context, orderID int64) (*domain.ReconcileResult, error) {
	order, err := r.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.HasExternalID() {
		r.logger.Error("order without external id", zap.Int64("order", orderID))
		return nil, domain.ErrMissingExternalID
	}

	report, err := r.provider.Status(ctx, *order.ExternalOrderID)
	if err != nil {
		r.logger.Warn("provider status failed", zap.Int64("order", orderID), zap.Error(err))
		return nil, err
	}

	res := r.reconcile(ctx, orderID, report)
	if res.Err != nil && res.Outcome == domain.OutcomeFailed {
		return nil, res.Err
	}
	return res, nil
}

func (r *Reconciler) RefreshMany(ctx context.Context, orderIDs []int64) (*domain.BatchResult, error) {
	var (
		orders []*domain.Order
		err    error
	)
	if len(orderIDs) == 0 {
		orders, err = r.repo.ListEligibleOrders(ctx)
	} else {
		orders, err = r.repo.ListOrdersByIDs(ctx, dedupe(orderIDs))
	}
	if err != nil {
		return nil, err
	}

	batch := &domain.BatchResult{RefundedAmount: decimal.Zero, Results: make([]*domain.ReconcileResult, 0, len(orders))}

	found := make(map[int64]struct{}, len(orders))
	eligible := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		found[o.ID] = struct{}{}
		if !o.Eligible() {
			if err := batch.Add(&domain.ReconcileResult{
				OrderID: o.ID, PreviousStatus: o.Status, Status: o.Status,
				Outcome: domain.OutcomeSkipped, Error: domain.ErrOrderNotEligible.Error(),
				RefundAmount: decimal.Zero, Credited: decimal.Zero,
			}); err != nil {
				return nil, err
			}
			continue
		}
		eligible = append(eligible, o)
	}
	for _, id := range orderIDs {
		if _, ok := found[id]; ok {
			continue
		}
		found[id] = struct{}{}
		if err := batch.Add(failed(id, domain.ErrDataNotFound)); err != nil {
			return nil, err
		}
	}

	if len(eligible) == 0 {
		return batch, nil
	}

	externalIDs := make([]string, 0, len(eligible))
	for _, o := range eligible {
		externalIDs = append(externalIDs, *o.ExternalOrderID)
	}
	reports := r.provider.StatusMany(ctx, externalIDs)

	// each task owns one slot, no locking needed
	results := make([]*domain.ReconcileResult, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, o := range eligible {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = failed(o.ID, err)
				return nil
			}
			pr, ok := reports[*o.ExternalOrderID]
			switch {
			case !ok:
				results[i] = failed(o.ID, fmt.Errorf("%w: no status returned", domain.ErrProviderOrder))
			case pr.Err != nil:
				results[i] = failed(o.ID, pr.Err)
			default:
				results[i] = r.reconcile(gctx, o.ID, pr.Report)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if err := batch.Add(res); err != nil {
			return nil, err
		}
	}

	r.logger.Info("bulk reconciliation finished",
		zap.Int("total", batch.Total),
		zap.Int("updated", batch.Updated),
		zap.Int("refunded", batch.Refunded),
		zap.Int("failed", batch.Failed),
		zap.Stringer("refunded_amount", batch.RefundedAmount))

	return batch, nil
}

// reconcile decides and settles one order. The order is re-read right before
// deciding so the previous status is the persisted one.
func (r *Reconciler) reconcile(ctx context.Context, orderID int64, report *domain.ProviderReport) *domain.ReconcileResult {
	order, err := r.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return failed(orderID, err)
	}

	res := &domain.ReconcileResult{
		OrderID:        order.ID,
		PreviousStatus: order.Status,
		Status:         order.Status,
		RefundAmount:   decimal.Zero,
		Credited:       decimal.Zero,
	}

	if err := validateReport(order, report); err != nil {
		r.logger.Error("provider report rejected",
			zap.Int64("order", order.ID),
			zap.String("external_id", report.ExternalOrderID),
			zap.Int64p("remains", report.Remains),
			zap.Int64("quantity", order.Quantity),
			zap.Error(err))
		res.Outcome = domain.OutcomeFailed
		res.Err = err
		res.Error = err.Error()
		return res
	}

	if progressChanged(order, report) {
		if err := r.repo.UpdateOrderProgress(ctx, order.ID, report.Remains, report.StartCount); err != nil {
			res.Outcome = domain.OutcomeFailed
			res.Err = err
			res.Error = err.Error()
			return res
		}
	}

	decision := DecideRefund(domain.RefundInput{
		PreviousStatus: order.Status,
		ProviderStatus: report.Status,
		Remains:        report.Remains,
		Quantity:       order.Quantity,
		Charge:         order.Charge,
	})
	decision.OrderID = order.ID

	if decision.NewStatus == order.Status && !decision.Refund() {
		res.Outcome = domain.OutcomeUnchanged
		return res
	}

	settled, err := r.ledger.Settle(ctx, domain.SettlementRequest{
		OrderID:        order.ID,
		ExpectedStatus: order.Status,
		NewStatus:      decision.NewStatus,
		Amount:         decision.Amount,
		Reason:         decision.Reason,
		Source:         domain.SettlementSourceReconcile,
	})
	return settleResult(res, settled, err)
}

func (r *Reconciler) ManualRefund(ctx context.Context, orderID int64, reason string) (*domain.ReconcileResult, error) {
	order, err := r.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	res := &domain.ReconcileResult{
		OrderID:        order.ID,
		PreviousStatus: order.Status,
		Status:         order.Status,
		RefundAmount:   decimal.Zero,
		Credited:       decimal.Zero,
	}
	if order.Status == domain.OrderStatusRefunded {
		res.Outcome = domain.OutcomeAlreadyProcessed
		res.Error = domain.ErrAlreadySettled.Error()
		return res, nil
	}

	amount, err := order.RemainingCharge()
	if err != nil {
		return nil, err
	}
	if amount.IsNeg() {
		return nil, domain.ErrRefundExceedsCharge
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual refund"
	}

	settled, err := r.ledger.Settle(ctx, domain.SettlementRequest{
		OrderID:        order.ID,
		ExpectedStatus: order.Status,
		NewStatus:      domain.OrderStatusRefunded,
		Amount:         amount,
		Reason:         reason,
		Source:         domain.SettlementSourceManual,
	})
	res = settleResult(res, settled, err)
	if res.Outcome == domain.OutcomeFailed {
		return nil, res.Err
	}
	return res, nil
}

func (r *Reconciler) OverrideStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.ReconcileResult, error) {
	if _, err := domain.ParseOrderStatus(string(status)); err != nil {
		return nil, err
	}

	order, err := r.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	res := &domain.ReconcileResult{
		OrderID:        order.ID,
		PreviousStatus: order.Status,
		Status:         order.Status,
		RefundAmount:   decimal.Zero,
		Credited:       decimal.Zero,
	}
	if order.Status == status {
		res.Outcome = domain.OutcomeUnchanged
		return res, nil
	}

	settled, err := r.ledger.Settle(ctx, domain.SettlementRequest{
		OrderID:        order.ID,
		ExpectedStatus: order.Status,
		NewStatus:      status,
		Amount:         decimal.Zero,
		Reason:         "status override",
		Source:         domain.SettlementSourceOverride,
	})
	res = settleResult(res, settled, err)
	if res.Outcome == domain.OutcomeFailed {
		return nil, res.Err
	}

	r.logger.Info("status overridden",
		zap.Int64("order", orderID),
		zap.String("from", string(res.PreviousStatus)),
		zap.String("to", string(res.Status)))
	return res, nil
}

func (r *Reconciler) Refill(ctx context.Context, orderID int64) (string, error) {
	order, err := r.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !order.HasExternalID() {
		return "", domain.ErrMissingExternalID
	}

	refillID, err := r.provider.Refill(ctx, *order.ExternalOrderID)
	if err != nil {
		r.logger.Warn("refill request failed", zap.Int64("order", orderID), zap.Error(err))
		return "", err
	}
	return refillID, nil
}

func validateReport(o *domain.Order, report *domain.ProviderReport) error {
	if o.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if !o.Charge.IsPos() {
		return domain.ErrInvalidCharge
	}
	if report.Remains != nil && (*report.Remains < 0 || *report.Remains > o.Quantity) {
		return fmt.Errorf("%w: remains %d, quantity %d", domain.ErrInvalidRemains, *report.Remains, o.Quantity)
	}
	return nil
}

func progressChanged(o *domain.Order, report *domain.ProviderReport) bool {
	return (report.Remains != nil && !equalInt(o.Remains, report.Remains)) ||
		(report.StartCount != nil && !equalInt(o.StartCount, report.StartCount))
}

func equalInt(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func settleResult(res *domain.ReconcileResult, settled *domain.SettlementResult, err error) *domain.ReconcileResult {
	if err != nil {
		res.Err = err
		res.Error = err.Error()
		if domain.AlreadyProcessed(err) {
			res.Outcome = domain.OutcomeAlreadyProcessed
		} else {
			res.Outcome = domain.OutcomeFailed
		}
		return res
	}

	res.Status = settled.Order.Status
	res.NewBalance = settled.NewBalance
	switch {
	case settled.Settlement != nil:
		res.Outcome = domain.OutcomeRefunded
		res.RefundAmount = settled.Settlement.Amount
		res.Credited = settled.Settlement.Credited
	case settled.Changed:
		res.Outcome = domain.OutcomeUpdated
	default:
		res.Outcome = domain.OutcomeUnchanged
	}
	return res
}

func failed(orderID int64, err error) *domain.ReconcileResult {
	return &domain.ReconcileResult{
		OrderID:      orderID,
		Outcome:      domain.OutcomeFailed,
		RefundAmount: decimal.Zero,
		Credited:     decimal.Zero,
		Err:          err,
		Error:        err.Error(),
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ port.Reconciler = (*Reconciler)(nil)
var _ port.Ledger = (*Ledger)(nil)
