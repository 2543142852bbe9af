package signing

import (
	"context"
	"fmt"
	"sync"
	"time"

	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/trazahq/go-signing/adapters/gojob"
	"github.com/trazahq/go-signing/adapters/gologger"
	"github.com/trazahq/go-signing/core"
	"github.com/trazahq/go-signing/lifecycle"
	"github.com/trazahq/go-signing/webhooks"
)

// JobRuntime drives the webhook retry pass and the lifecycle pass through a
// job queue instead of in-process tickers. The scheduler enqueues one pass
// job per interval; the runner executes whatever lands on the queue, so
// clustered deployments share one schedule and redeliver failed passes.
// The workers' own Run loops remain the queue-free single-process mode.
type JobRuntime struct {
	scheduler *gojob.PassScheduler
	runner    *gojob.PassRunner

	logger      glog.Logger
	jobProvider job.LoggerProvider
	jobLogger   job.Logger
}

type jobRuntimeOptions struct {
	interval time.Duration
	provider glog.LoggerProvider
	logger   glog.Logger
	policy   *gojob.RetryPolicy
	hook     core.JobWorkerHook
	clock    func() time.Time
}

type JobRuntimeOption func(*jobRuntimeOptions)

func WithJobInterval(interval time.Duration) JobRuntimeOption {
	return func(o *jobRuntimeOptions) {
		if interval > 0 {
			o.interval = interval
		}
	}
}

func WithJobLoggerProvider(provider glog.LoggerProvider) JobRuntimeOption {
	return func(o *jobRuntimeOptions) {
		o.provider = provider
	}
}

func WithJobLogger(logger glog.Logger) JobRuntimeOption {
	return func(o *jobRuntimeOptions) {
		o.logger = logger
	}
}

func WithJobRetryPolicy(policy gojob.RetryPolicy) JobRuntimeOption {
	return func(o *jobRuntimeOptions) {
		o.policy = &policy
	}
}

func WithJobWorkerHook(hook core.JobWorkerHook) JobRuntimeOption {
	return func(o *jobRuntimeOptions) {
		o.hook = hook
	}
}

func WithJobClock(now func() time.Time) JobRuntimeOption {
	return func(o *jobRuntimeOptions) {
		if now != nil {
			o.clock = now
		}
	}
}

// NewJobRuntime registers the retry worker under JobIDWebhookRetry and the
// lifecycle worker under JobIDLifecycleRun. The enqueuer and dequeuer
// usually wrap one go-job queue via gojob.NewEnqueuerAdapter and
// gojob.NewDequeuerAdapter.
func NewJobRuntime(
	enqueuer core.JobEnqueuer,
	dequeuer core.JobDequeuer,
	retry *webhooks.RetryWorker,
	passes *lifecycle.Worker,
	opts ...JobRuntimeOption,
) (*JobRuntime, error) {
	if enqueuer == nil || dequeuer == nil {
		return nil, fmt.Errorf("signing: job enqueuer and dequeuer are required")
	}
	if retry == nil || passes == nil {
		return nil, fmt.Errorf("signing: retry and lifecycle workers are required")
	}
	cfg := jobRuntimeOptions{interval: time.Minute}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logging := gologger.ResolveForJob("signing.jobs", cfg.provider, cfg.logger)

	runnerOpts := []gojob.PassRunnerOption{gojob.WithRunnerLogger(logging.Logger)}
	if cfg.policy != nil {
		runnerOpts = append(runnerOpts, gojob.WithRunnerRetryPolicy(*cfg.policy))
	}
	if cfg.hook != nil {
		runnerOpts = append(runnerOpts, gojob.WithRunnerHook(cfg.hook))
	}
	runner, err := gojob.NewPassRunner(dequeuer, runnerOpts...)
	if err != nil {
		return nil, err
	}
	if err := runner.Register(gojob.JobIDWebhookRetry, func(ctx context.Context) error {
		_, err := retry.RunOnce(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	if err := runner.Register(gojob.JobIDLifecycleRun, func(ctx context.Context) error {
		_, err := passes.RunOnce(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	schedulerOpts := []gojob.PassSchedulerOption{gojob.WithSchedulerLogger(logging.Logger)}
	if cfg.clock != nil {
		schedulerOpts = append(schedulerOpts, gojob.WithSchedulerClock(cfg.clock))
	}
	scheduler, err := gojob.NewPassScheduler(
		enqueuer,
		cfg.interval,
		[]string{gojob.JobIDWebhookRetry, gojob.JobIDLifecycleRun},
		schedulerOpts...,
	)
	if err != nil {
		return nil, err
	}

	return &JobRuntime{
		scheduler:   scheduler,
		runner:      runner,
		logger:      logging.Logger,
		jobProvider: logging.JobProvider,
		jobLogger:   logging.JobLogger,
	}, nil
}

// Run starts the scheduler and runner loops and blocks until ctx is done.
func (r *JobRuntime) Run(ctx context.Context) {
	if r == nil {
		return
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.scheduler.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		r.runner.Run(ctx)
	}()
	wg.Wait()
}

// EnqueueDue schedules one pass job per worker for the current tick.
func (r *JobRuntime) EnqueueDue(ctx context.Context) error {
	if r == nil || r.scheduler == nil {
		return fmt.Errorf("signing: job runtime is not configured")
	}
	return r.scheduler.EnqueueDue(ctx)
}

// RunOnePass consumes and executes a single queued pass job.
func (r *JobRuntime) RunOnePass(ctx context.Context) error {
	if r == nil || r.runner == nil {
		return fmt.Errorf("signing: job runtime is not configured")
	}
	return r.runner.RunOne(ctx)
}

// JobLoggers exposes the go-job logging bridges so the backing queue logs
// through the same stack as the runtime.
func (r *JobRuntime) JobLoggers() (job.LoggerProvider, job.Logger) {
	if r == nil {
		return nil, nil
	}
	return r.jobProvider, r.jobLogger
}
