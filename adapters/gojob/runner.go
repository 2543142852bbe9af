package gojob

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/trazahq/go-signing/core"
)

// PassFunc runs one scheduled worker pass.
type PassFunc func(ctx context.Context) error

// attemptNacker is implemented by deliveries that can normalize a nack
// against the attempt count, such as DeliveryAdapter.
type attemptNacker interface {
	NackForAttempt(ctx context.Context, opts core.JobNackOptions, attempt int) error
}

// PassRunner consumes scheduled pass jobs from a queue and executes the
// registered pass for each job ID. Successful passes ack the delivery;
// failures nack under the retry policy so the queue redelivers a bounded
// number of times. Any number of runner replicas can share one queue.
type PassRunner struct {
	dequeuer core.JobDequeuer
	policy   RetryPolicy
	logger   glog.Logger
	hook     core.JobWorkerHook

	mu       sync.Mutex
	passes   map[string]PassFunc
	failures map[string]int
}

type PassRunnerOption func(*PassRunner)

func WithRunnerLogger(logger glog.Logger) PassRunnerOption {
	return func(r *PassRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithRunnerRetryPolicy(policy RetryPolicy) PassRunnerOption {
	return func(r *PassRunner) {
		r.policy = policy
	}
}

func WithRunnerHook(hook core.JobWorkerHook) PassRunnerOption {
	return func(r *PassRunner) {
		if hook != nil {
			r.hook = hook
		}
	}
}

func NewPassRunner(dequeuer core.JobDequeuer, opts ...PassRunnerOption) (*PassRunner, error) {
	if dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is required")
	}
	_, logger := glog.Resolve("signing.jobs", nil, nil)
	runner := &PassRunner{
		dequeuer: dequeuer,
		policy:   RetryPolicy{MaxAttempts: 3, DeadLetterOnMax: true},
		logger:   glog.Ensure(logger),
		passes:   map[string]PassFunc{},
		failures: map[string]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(runner)
		}
	}
	return runner, nil
}

func (r *PassRunner) Register(jobID string, pass PassFunc) error {
	if r == nil {
		return fmt.Errorf("gojob: runner is not configured")
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return fmt.Errorf("gojob: job id is required")
	}
	if pass == nil {
		return fmt.Errorf("gojob: pass func is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.passes[jobID]; exists {
		return fmt.Errorf("gojob: pass %q is already registered", jobID)
	}
	r.passes[jobID] = pass
	return nil
}

// Run dequeues until ctx is done. Dequeue errors back off briefly instead
// of spinning.
func (r *PassRunner) Run(ctx context.Context) {
	if r == nil {
		return
	}
	for {
		if ctx.Err() != nil {
			return
		}
		if err := r.RunOne(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Error("job dequeue failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

// RunOne blocks for one delivery and handles it. Pass failures are nacked,
// never returned; only dequeue errors surface.
func (r *PassRunner) RunOne(ctx context.Context) error {
	if r == nil || r.dequeuer == nil {
		return fmt.Errorf("gojob: runner is not configured")
	}
	delivery, err := r.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return nil
	}
	r.handle(ctx, delivery)
	return nil
}

func (r *PassRunner) handle(ctx context.Context, delivery core.JobDelivery) {
	msg := delivery.Message()
	if msg == nil || strings.TrimSpace(msg.JobID) == "" {
		r.nack(ctx, delivery, core.JobNackOptions{
			DeadLetter: true,
			Reason:     "gojob: delivery carries no job id",
		}, 0)
		return
	}
	pass := r.lookup(msg.JobID)
	if pass == nil {
		r.nack(ctx, delivery, core.JobNackOptions{
			DeadLetter: true,
			Reason:     fmt.Sprintf("gojob: no pass registered for %q", msg.JobID),
		}, 0)
		return
	}

	started := time.Now().UTC()
	r.emitHook(ctx, func(h core.JobWorkerHook, e core.JobWorkerEvent) { h.OnStart(ctx, e) }, core.JobWorkerEvent{
		Message:   msg,
		StartedAt: started,
	})

	err := pass(ctx)
	duration := time.Since(started)
	if err == nil {
		r.resetFailures(msg.JobID)
		if ackErr := delivery.Ack(ctx); ackErr != nil {
			r.logger.Error("job ack failed", "job_id", msg.JobID, "error", ackErr)
		}
		r.emitHook(ctx, func(h core.JobWorkerHook, e core.JobWorkerEvent) { h.OnSuccess(ctx, e) }, core.JobWorkerEvent{
			Message:   msg,
			StartedAt: started,
			Duration:  duration,
		})
		return
	}

	attempt := r.bumpFailures(msg.JobID)
	opts := r.policy.NormalizeAttempt(core.JobNackOptions{
		Delay:   time.Minute,
		Requeue: true,
		Reason:  err.Error(),
	}, attempt)
	r.nack(ctx, delivery, opts, attempt)
	r.logger.Error("job pass failed", "job_id", msg.JobID, "attempt", attempt, "requeue", opts.Requeue, "error", err)

	event := core.JobWorkerEvent{
		Message:   msg,
		Attempt:   attempt,
		Delay:     opts.Delay,
		Err:       err,
		StartedAt: started,
		Duration:  duration,
	}
	if opts.Requeue {
		r.emitHook(ctx, func(h core.JobWorkerHook, e core.JobWorkerEvent) { h.OnRetry(ctx, e) }, event)
		return
	}
	r.emitHook(ctx, func(h core.JobWorkerHook, e core.JobWorkerEvent) { h.OnFailure(ctx, e) }, event)
}

func (r *PassRunner) nack(ctx context.Context, delivery core.JobDelivery, opts core.JobNackOptions, attempt int) {
	var err error
	if nacker, ok := delivery.(attemptNacker); ok {
		err = nacker.NackForAttempt(ctx, opts, attempt)
	} else {
		err = delivery.Nack(ctx, opts)
	}
	if err != nil {
		r.logger.Error("job nack failed", "error", err)
	}
}

func (r *PassRunner) lookup(jobID string) PassFunc {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.passes[jobID]
}

func (r *PassRunner) bumpFailures(jobID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[jobID]++
	return r.failures[jobID]
}

func (r *PassRunner) resetFailures(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, jobID)
}

func (r *PassRunner) emitHook(ctx context.Context, emit func(core.JobWorkerHook, core.JobWorkerEvent), event core.JobWorkerEvent) {
	if r.hook == nil {
		return
	}
	emit(r.hook, event)
}

// PassScheduler enqueues pass jobs on a fixed interval. Scheduling is
// decoupled from execution, so one scheduler can feed any number of runner
// replicas; the per-tick idempotency key lets the queue drop duplicate
// schedules from overlapping schedulers.
type PassScheduler struct {
	enqueuer core.JobEnqueuer
	interval time.Duration
	jobIDs   []string
	logger   glog.Logger
	now      func() time.Time
}

type PassSchedulerOption func(*PassScheduler)

func WithSchedulerLogger(logger glog.Logger) PassSchedulerOption {
	return func(s *PassScheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithSchedulerClock(now func() time.Time) PassSchedulerOption {
	return func(s *PassScheduler) {
		if now != nil {
			s.now = now
		}
	}
}

func NewPassScheduler(enqueuer core.JobEnqueuer, interval time.Duration, jobIDs []string, opts ...PassSchedulerOption) (*PassScheduler, error) {
	if enqueuer == nil {
		return nil, fmt.Errorf("gojob: enqueuer is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("gojob: scheduler interval must be positive")
	}
	if len(jobIDs) == 0 {
		return nil, fmt.Errorf("gojob: at least one job id is required")
	}
	_, logger := glog.Resolve("signing.jobs", nil, nil)
	scheduler := &PassScheduler{
		enqueuer: enqueuer,
		interval: interval,
		jobIDs:   append([]string(nil), jobIDs...),
		logger:   glog.Ensure(logger),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(scheduler)
		}
	}
	return scheduler, nil
}

// EnqueueDue enqueues one execution message per registered job ID for the
// current tick. A failed enqueue is logged and does not block the rest.
func (s *PassScheduler) EnqueueDue(ctx context.Context) error {
	if s == nil || s.enqueuer == nil {
		return fmt.Errorf("gojob: scheduler is not configured")
	}
	tick := s.now().UTC().Format(time.RFC3339)
	var firstErr error
	for _, jobID := range s.jobIDs {
		err := s.enqueuer.Enqueue(ctx, &core.JobExecutionMessage{
			JobID:          jobID,
			Parameters:     map[string]any{"scheduled_for": tick},
			IdempotencyKey: jobID + "@" + tick,
			DedupPolicy:    "drop",
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Error("job enqueue failed", "job_id", jobID, "error", err)
		}
	}
	return firstErr
}

// Run enqueues on every tick until ctx is done.
func (s *PassScheduler) Run(ctx context.Context) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.EnqueueDue(ctx); err != nil {
				s.logger.Error("job schedule tick failed", "error", err)
			}
		}
	}
}
