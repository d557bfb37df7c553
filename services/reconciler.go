package services

import (
	"context"
	"time"

	aws_pkg "github.com/yashrajoria/storefront-service/pkg/aws"
	"go.uber.org/zap"
)

const reconcileBatchSize = 10

// Reconciler finishes checkouts whose order was stored but whose account
// update failed. Jobs that fail again go back on the queue.
type Reconciler struct {
	queue    ReconciliationQueue
	checkout CheckoutService
	metrics  MetricsRecorder
	interval time.Duration
	logger   *zap.Logger
}

func NewReconciler(queue ReconciliationQueue, checkout CheckoutService, metrics MetricsRecorder, interval time.Duration, logger *zap.Logger) *Reconciler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Reconciler{
		queue:    queue,
		checkout: checkout,
		metrics:  metricsOrNoop(metrics),
		interval: interval,
		logger:   logger,
	}
}

// Run drains the queue every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.logger.Info("Checkout reconciler started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Checkout reconciler stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("Reconciliation pass failed", zap.Error(err))
			}
		}
	}
}

// RunOnce processes the jobs currently queued and returns how many were
// reconciled.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	reconciled := 0
	for {
		jobs, err := r.queue.Receive(ctx, reconcileBatchSize)
		if err != nil {
			return reconciled, err
		}
		if len(jobs) == 0 {
			return reconciled, nil
		}

		var retry []ReceivedJob
		for _, received := range jobs {
			job := received.Job
			if serr := r.checkout.FinalizeCheckout(ctx, job.UserID, job.OrderID); serr != nil {
				r.logger.Warn("Reconciliation attempt failed",
					zap.String("order_id", job.OrderID),
					zap.String("user_id", job.UserID),
					zap.Int("attempts", job.Attempts+1),
					zap.Error(serr),
				)
				received.Job.Attempts++
				retry = append(retry, received)
				continue
			}
			reconciled++
			_ = r.metrics.RecordCount(ctx, aws_pkg.MetricCheckoutReconciled, serviceDimension)
			r.logger.Info("Checkout reconciled", zap.String("order_id", job.OrderID), zap.String("user_id", job.UserID))
			r.ack(ctx, received)
		}

		// A failed job is acked only once its replacement is queued, so it
		// waits for the next pass instead of being lost.
		for _, received := range retry {
			if err := r.queue.Enqueue(ctx, received.Job); err != nil {
				r.logger.Error("Failed to re-queue reconcile job",
					zap.String("order_id", received.Job.OrderID),
					zap.String("user_id", received.Job.UserID),
					zap.Error(err),
				)
				continue
			}
			r.ack(ctx, received)
		}
		if len(retry) > 0 || len(jobs) < reconcileBatchSize {
			return reconciled, nil
		}
	}
}

func (r *Reconciler) ack(ctx context.Context, received ReceivedJob) {
	if err := received.Ack(ctx); err != nil {
		r.logger.Warn("Failed to ack reconcile job", zap.String("order_id", received.Job.OrderID), zap.Error(err))
	}
}
