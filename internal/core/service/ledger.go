package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/MikeRez0/smmrefund/internal/core/port"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// Ledger is the only writer of refund money. Every settlement runs as one
// transaction against the locked order row.
type Ledger struct {
	repo     port.Repository
	currency port.CurrencyConverter
	logger   *zap.Logger
	now      func() time.Time
}

func NewLedger(repo port.Repository, currency port.CurrencyConverter, logger *zap.Logger) (*Ledger, error) {
	return &Ledger{
		repo:     repo,
		currency: currency,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (l *Ledger) Settle(ctx context.Context, req domain.SettlementRequest) (*domain.SettlementResult, error) {
	if req.Amount.IsNeg() {
		return nil, domain.ErrInvalidAmount
	}

	credited := decimal.Zero
	if req.Amount.IsPos() {
		c, err := l.currency.Convert(ctx, req.Amount)
		if err != nil {
			return nil, fmt.Errorf("convert refund: %w", err)
		}
		credited = c
	}

	result, err := l.repo.SettleOrder(ctx, req.OrderID, func(o *domain.Order) (*domain.Settlement, error) {
		// the row is locked here, so this status is the committed one
		if o.Status != req.ExpectedStatus {
			return nil, fmt.Errorf("%w: expected %s, found %s", domain.ErrStatusChanged, req.ExpectedStatus, o.Status)
		}
		if o.Status == domain.OrderStatusRefunded && req.Source != domain.SettlementSourceOverride {
			return nil, domain.ErrAlreadySettled
		}

		if !req.Amount.IsPos() {
			o.Status = req.NewStatus
			return nil, nil
		}

		if req.Source == domain.SettlementSourceReconcile && o.Status.RefundSettled() {
			return nil, domain.ErrAlreadySettled
		}

		refunded, err := o.RefundAmount.Add(req.Amount)
		if err != nil {
			return nil, fmt.Errorf("refund total: %w", err)
		}
		if refunded.Cmp(o.Charge) > 0 {
			return nil, fmt.Errorf("%w: order %d refunded %s + %s > charge %s",
				domain.ErrRefundExceedsCharge, o.ID, o.RefundAmount, req.Amount, o.Charge)
		}

		now := l.now()
		reason := req.Reason
		s := &domain.Settlement{
			ID:             uuid.NewString(),
			OrderID:        o.ID,
			UserID:         o.UserID,
			IdempotencyKey: req.IdempotencyKey(),
			StatusFrom:     o.Status,
			StatusTo:       req.NewStatus,
			Amount:         req.Amount,
			Currency:       l.currency.ProviderCurrency(),
			Credited:       credited,
			LedgerCurrency: l.currency.LedgerCurrency(),
			Reason:         reason,
			Source:         req.Source,
			CreatedAt:      now,
		}

		o.Status = req.NewStatus
		o.RefundAmount = refunded
		o.RefundAt = &now
		o.RefundReason = &reason

		return s, nil
	})
	if err != nil {
		if domain.AlreadyProcessed(err) {
			l.logger.Info("settlement skipped",
				zap.Int64("order", req.OrderID),
				zap.String("status", string(req.NewStatus)),
				zap.Error(err))
			return nil, err
		}
		if !errors.Is(err, domain.ErrDataNotFound) {
			l.logger.Error("settlement failed",
				zap.Int64("order", req.OrderID),
				zap.String("status", string(req.NewStatus)),
				zap.Stringer("amount", req.Amount),
				zap.Error(err))
		}
		return nil, err
	}

	if result.Settlement != nil {
		l.logger.Info("refund credited",
			zap.Int64("order", req.OrderID),
			zap.Int64("user", result.Order.UserID),
			zap.String("source", string(req.Source)),
			zap.Stringer("amount", result.Settlement.Amount),
			zap.Stringer("credited", result.Settlement.Credited))
	}

	return result, nil
}
