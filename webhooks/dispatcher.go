package webhooks

import (
	"context"
	"fmt"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/trazahq/go-signing/core"
)

// Dispatcher matches domain events to subscribed endpoints and runs first
// delivery attempts on a bounded worker pool. Matching and ledger writes
// happen on the caller's goroutine; only the outbound HTTP attempt is
// decoupled, so the triggering operation never waits on a subscriber.
type Dispatcher struct {
	webhooks   core.WebhookStore
	deliveries core.DeliveryStore
	sender     *Sender
	logger     core.Logger
	metrics    core.MetricsRecorder

	maxAttempts int
	now         func() time.Time

	queue   chan dispatchTask
	workers int

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	baseCtx context.Context
	cancel  context.CancelFunc
}

type dispatchTask struct {
	webhook  core.Webhook
	delivery core.WebhookDelivery
}

type DispatcherOption func(*Dispatcher)

func WithDispatcherLogger(logger core.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithDispatcherMetrics(metrics core.MetricsRecorder) DispatcherOption {
	return func(d *Dispatcher) {
		if metrics != nil {
			d.metrics = metrics
		}
	}
}

func WithDispatcherSender(sender *Sender) DispatcherOption {
	return func(d *Dispatcher) {
		if sender != nil {
			d.sender = sender
		}
	}
}

func WithDispatcherWorkers(workers int, queueCap int) DispatcherOption {
	return func(d *Dispatcher) {
		if workers > 0 {
			d.workers = workers
		}
		if queueCap > 0 {
			d.queue = make(chan dispatchTask, queueCap)
		}
	}
}

func WithDispatcherMaxAttempts(maxAttempts int) DispatcherOption {
	return func(d *Dispatcher) {
		if maxAttempts > 0 {
			d.maxAttempts = maxAttempts
		}
	}
}

func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func NewDispatcher(
	webhooks core.WebhookStore,
	deliveries core.DeliveryStore,
	opts ...DispatcherOption,
) (*Dispatcher, error) {
	if webhooks == nil || deliveries == nil {
		return nil, fmt.Errorf("webhooks: webhook and delivery stores are required")
	}
	_, logger := glog.Resolve("signing.webhooks", nil, nil)
	dispatcher := &Dispatcher{
		webhooks:    webhooks,
		deliveries:  deliveries,
		sender:      NewSender(),
		logger:      glog.Ensure(logger),
		metrics:     core.NopMetricsRecorder{},
		maxAttempts: 5,
		now:         func() time.Time { return time.Now().UTC() },
		queue:       make(chan dispatchTask, 256),
		workers:     4,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(dispatcher)
		}
	}
	return dispatcher, nil
}

// Start launches the worker pool. Safe to call once; Dispatch before Start
// schedules deliveries for the retry worker instead of attempting them.
func (d *Dispatcher) Start(ctx context.Context) {
	if d == nil {
		return
	}
	d.startOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		d.mu.Lock()
		d.baseCtx, d.cancel = context.WithCancel(ctx)
		d.mu.Unlock()
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.worker()
		}
	})
}

// Close stops accepting work and waits for in-flight attempts to finish.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
		if d.cancel != nil {
			d.cancel()
		}
	})
}

// Dispatch persists one delivery per matching webhook and hands the first
// attempt to the pool. Failures never propagate to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, ownerID string, eventType string, documentID string, payload map[string]any) {
	if d == nil {
		return
	}
	matches, err := d.webhooks.ListActiveForEvent(ctx, ownerID, eventType)
	if err != nil {
		d.logger.Error("webhook match query failed", "owner_id", ownerID, "event", eventType, "error", err)
		return
	}
	if len(matches) == 0 {
		return
	}

	body, err := BuildEnvelope(eventType, documentID, payload, d.now())
	if err != nil {
		d.logger.Error("webhook envelope build failed", "event", eventType, "document_id", documentID, "error", err)
		return
	}

	for _, webhook := range matches {
		delivery, err := d.deliveries.Create(ctx, core.CreateDeliveryInput{
			WebhookID: webhook.ID,
			EventType: eventType,
			Payload:   body,
		})
		if err != nil {
			d.logger.Error("webhook delivery persist failed", "webhook_id", webhook.ID, "event", eventType, "error", err)
			continue
		}
		d.metrics.IncCounter(ctx, "signing.webhooks.dispatched.total", 1, map[string]string{"event": eventType})
		d.enqueue(ctx, dispatchTask{webhook: webhook, delivery: delivery})
	}
}

// enqueue hands off the first attempt. A saturated, stopped, or not yet
// started pool converts the immediate attempt into a scheduled retry so the
// delivery is never lost and the emitting operation never fails.
func (d *Dispatcher) enqueue(ctx context.Context, task dispatchTask) {
	if d.tryEnqueue(task) {
		return
	}
	next := d.now().Add(Backoff(1))
	_, err := d.deliveries.RecordAttempt(ctx, task.delivery.ID, core.DeliveryAttemptResult{
		Err:         "webhooks: dispatch queue saturated",
		NextRetryAt: &next,
	})
	if err != nil {
		d.logger.Error("webhook deferral failed", "delivery_id", task.delivery.ID, "error", err)
		return
	}
	d.metrics.IncCounter(ctx, "signing.webhooks.deferred.total", 1, map[string]string{"event": task.delivery.EventType})
}

// tryEnqueue holds the mutex over the channel send so Close cannot close
// the queue between the closed check and the send.
func (d *Dispatcher) tryEnqueue(task dispatchTask) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.baseCtx == nil {
		return false
	}
	select {
	case d.queue <- task:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for task := range d.queue {
		d.attempt(task)
	}
}

func (d *Dispatcher) attempt(task dispatchTask) {
	ctx := d.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	recorded, err := performAttempt(
		ctx,
		d.sender,
		d.deliveries,
		task.webhook,
		task.delivery,
		0,
		d.maxAttempts,
		d.now(),
	)
	if err != nil {
		d.logger.Error("webhook attempt record failed", "delivery_id", task.delivery.ID, "error", err)
		return
	}
	status := "failed"
	if recorded.Delivered() {
		status = "delivered"
	}
	d.metrics.IncCounter(ctx, "signing.webhooks.attempts.total", 1, map[string]string{
		"event":  recorded.EventType,
		"status": status,
	})
	if !recorded.Delivered() {
		d.logger.Info("webhook delivery attempt failed",
			"delivery_id", recorded.ID,
			"webhook_id", recorded.WebhookID,
			"attempts", recorded.Attempts,
			"response_code", recorded.ResponseCode,
			"error", recorded.LastError,
		)
	}
}

var _ core.EventDispatcher = (*Dispatcher)(nil)
