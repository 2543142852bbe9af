package webhooks

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/trazahq/go-signing/core"
)

// RetryStats summarizes one retry pass.
type RetryStats struct {
	Claimed   int
	Delivered int
	Retried   int
	Exhausted int
	Parked    int
	Errors    int
}

// RetryWorker resumes failed deliveries on the backoff schedule. RunOnce is
// a deterministic single pass; Run wraps it in a ticker loop.
type RetryWorker struct {
	webhooks   core.WebhookStore
	deliveries core.DeliveryStore
	sender     *Sender
	logger     core.Logger
	metrics    core.MetricsRecorder

	batchSize   int
	maxAttempts int
	interval    time.Duration
	now         func() time.Time
}

type RetryWorkerOption func(*RetryWorker)

func WithRetryLogger(logger core.Logger) RetryWorkerOption {
	return func(w *RetryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithRetryMetrics(metrics core.MetricsRecorder) RetryWorkerOption {
	return func(w *RetryWorker) {
		if metrics != nil {
			w.metrics = metrics
		}
	}
}

func WithRetrySender(sender *Sender) RetryWorkerOption {
	return func(w *RetryWorker) {
		if sender != nil {
			w.sender = sender
		}
	}
}

func WithRetryBatchSize(size int) RetryWorkerOption {
	return func(w *RetryWorker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func WithRetryMaxAttempts(maxAttempts int) RetryWorkerOption {
	return func(w *RetryWorker) {
		if maxAttempts > 0 {
			w.maxAttempts = maxAttempts
		}
	}
}

func WithRetryInterval(interval time.Duration) RetryWorkerOption {
	return func(w *RetryWorker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithRetryClock(now func() time.Time) RetryWorkerOption {
	return func(w *RetryWorker) {
		if now != nil {
			w.now = now
		}
	}
}

func NewRetryWorker(
	webhooks core.WebhookStore,
	deliveries core.DeliveryStore,
	opts ...RetryWorkerOption,
) (*RetryWorker, error) {
	if webhooks == nil || deliveries == nil {
		return nil, fmt.Errorf("webhooks: webhook and delivery stores are required")
	}
	_, logger := glog.Resolve("signing.webhooks.retry", nil, nil)
	worker := &RetryWorker{
		webhooks:    webhooks,
		deliveries:  deliveries,
		sender:      NewSender(),
		logger:      glog.Ensure(logger),
		metrics:     core.NopMetricsRecorder{},
		batchSize:   50,
		maxAttempts: 5,
		interval:    time.Minute,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(worker)
		}
	}
	return worker, nil
}

// Run polls until ctx is done. Pass failures are logged, never fatal.
func (w *RetryWorker) Run(ctx context.Context) {
	if w == nil {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("webhook retry pass failed", "error", err)
			}
		}
	}
}

// RunOnce claims one batch of due deliveries and attempts each. One failing
// delivery never aborts the rest of the batch.
func (w *RetryWorker) RunOnce(ctx context.Context) (RetryStats, error) {
	if w == nil || w.deliveries == nil {
		return RetryStats{}, fmt.Errorf("webhooks: retry worker is not configured")
	}
	now := w.now()
	due, err := w.deliveries.ClaimDue(ctx, now, w.maxAttempts, w.batchSize)
	if err != nil {
		return RetryStats{}, fmt.Errorf("webhooks: claim due deliveries: %w", err)
	}

	stats := RetryStats{Claimed: len(due)}
	for _, delivery := range due {
		w.retryOne(ctx, delivery, &stats)
	}

	if stats.Claimed > 0 {
		w.metrics.IncCounter(ctx, "signing.webhooks.retry_pass.total", 1, map[string]string{"status": "done"})
		w.logger.Info("webhook retry pass complete",
			"claimed", stats.Claimed,
			"delivered", stats.Delivered,
			"retried", stats.Retried,
			"exhausted", stats.Exhausted,
			"parked", stats.Parked,
			"errors", stats.Errors,
		)
	}
	return stats, nil
}

func (w *RetryWorker) retryOne(ctx context.Context, delivery core.WebhookDelivery, stats *RetryStats) {
	webhook, err := w.webhooks.Get(ctx, delivery.WebhookID)
	if err != nil {
		stats.Errors++
		w.logger.Error("webhook lookup failed for retry", "delivery_id", delivery.ID, "webhook_id", delivery.WebhookID, "error", err)
		return
	}
	if !webhook.IsActive {
		if err := w.deliveries.Park(ctx, delivery.ID, "webhook deactivated"); err != nil {
			stats.Errors++
			w.logger.Error("webhook delivery park failed", "delivery_id", delivery.ID, "error", err)
			return
		}
		stats.Parked++
		return
	}

	recorded, err := performAttempt(
		ctx,
		w.sender,
		w.deliveries,
		webhook,
		delivery,
		delivery.Attempts,
		w.maxAttempts,
		w.now(),
	)
	if err != nil {
		stats.Errors++
		w.logger.Error("webhook retry record failed", "delivery_id", delivery.ID, "error", err)
		return
	}
	switch {
	case recorded.Delivered():
		stats.Delivered++
	case recorded.Exhausted(w.maxAttempts):
		stats.Exhausted++
		w.logger.Info("webhook delivery retry budget spent",
			"delivery_id", recorded.ID,
			"webhook_id", recorded.WebhookID,
			"attempts", recorded.Attempts,
		)
	default:
		stats.Retried++
	}
}
