package payments

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Worker periodically reconciles Pending pushes whose callback never arrived.
// Only the instance holding the leader lock does the sweep.
type Worker struct {
	log     *zap.Logger
	cfg     *config.InternalConfig
	locker  contracts.LockerService
	usecase contracts.PaymentUsecase
	cron    *cron.Cron
	runCtx  context.Context
	cancel  context.CancelFunc
}

func NewWorker(log *zap.Logger, cfg *config.InternalConfig, lockerSvc contracts.LockerService, usecase contracts.PaymentUsecase) *Worker {
	return &Worker{log: log, cfg: cfg, locker: lockerSvc, usecase: usecase}
}

func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New()
	spec := w.cfg.Payment.ReconcileCronSpec
	_, err := c.AddFunc(spec, func() { w.runOnce(w.runCtx) })
	if err != nil {
		w.log.Warn("payments.worker: invalid cron spec, falling back to @every 1m",
			zap.String("spec", spec),
			zap.Error(err),
		)
		c = cron.New()
		_, _ = c.AddFunc("@every 1m", func() { w.runOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c
}

// Stop cancels in-flight sweeps and waits for the running job to return.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	ttl := w.cfg.Payment.ReconcileLeaderLockTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	acquired, token, err := w.locker.TryLock(ctx, constvars.LockKeyPaymentReconcileLeader, ttl)
	if err != nil {
		w.log.Warn("payments.worker: leader lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		w.log.Debug("payments.worker: leader lock held by another instance")
		return
	}
	defer w.locker.Unlock(context.Background(), constvars.LockKeyPaymentReconcileLeader, token)

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go func() {
		tick := time.NewTicker(ttl / 2)
		defer tick.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-tick.C:
				if err := w.locker.Refresh(refreshCtx, constvars.LockKeyPaymentReconcileLeader, token, ttl); err != nil {
					w.log.Warn("payments.worker: failed to refresh leader lock", zap.Error(err))
				}
			}
		}
	}()

	resolved, err := w.usecase.ReconcilePending(ctx)
	if err != nil {
		w.log.Warn("payments.worker: reconcile failed", zap.Error(err))
		return
	}
	if resolved > 0 {
		w.log.Info("payments.worker: reconciled pending transactions", zap.Int(constvars.LoggingCountKey, resolved))
	}
}
