package scheduler

import (
	"context"
	"time"

	"github.com/MikeRez0/smmrefund/internal/adapter/client/provider"
	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/MikeRez0/smmrefund/internal/core/port"
	"go.uber.org/zap"
)

// Poller periodically refreshes every eligible order. It lives outside the
// reconciliation core and is off unless an interval is configured.
type Poller struct {
	reconciler port.Reconciler
	interval   time.Duration
	logger     *zap.Logger
}

func NewPoller(reconciler port.Reconciler, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		reconciler: reconciler,
		interval:   interval,
		logger:     logger,
	}
}

// Run blocks until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	if p.interval <= 0 {
		p.logger.Debug("poller disabled")
		return
	}

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("poller finished")
			return
		case <-timer.C:
			next := p.interval
			if wait := p.tick(ctx); wait > next {
				next = wait
			}
			timer.Reset(next)
		}
	}
}

// tick runs one bulk refresh and returns the provider's back-off hint, if any.
func (p *Poller) tick(ctx context.Context) time.Duration {
	batch, err := p.reconciler.RefreshMany(ctx, nil)
	if err != nil {
		p.logger.Error("scheduled refresh failed", zap.Error(err))
		return 0
	}

	var wait time.Duration
	for _, r := range batch.Results {
		if r.Outcome != domain.OutcomeFailed {
			continue
		}
		if d, ok := provider.RetryAfter(r.Err); ok && d > wait {
			wait = d
		}
	}

	p.logger.Info("scheduled refresh",
		zap.Int("total", batch.Total),
		zap.Int("updated", batch.Updated),
		zap.Int("refunded", batch.Refunded),
		zap.Int("failed", batch.Failed),
		zap.Duration("backoff", wait))
	return wait
}
