// Package lifecycle runs the periodic reminder and expiration passes over
// pending signature requests.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/trazahq/go-signing/core"
)

// Stats summarizes one worker pass.
type Stats struct {
	RemindersSent   int
	RemindersFailed int
	Expired         int
	ExpireErrors    int
}

// Worker performs two independent passes per tick: remind signers once
// inside the pre-deadline window, and transactionally expire overdue
// documents. RunOnce is deterministic; Run wraps it in a ticker loop.
type Worker struct {
	documents  core.DocumentStore
	signatures core.SignatureStore
	mailer     core.Mailer
	dispatcher core.EventDispatcher
	logger     core.Logger
	metrics    core.MetricsRecorder

	interval       time.Duration
	reminderWindow time.Duration
	reminderBatch  int
	expireBatch    int
	now            func() time.Time
}

type Option func(*Worker)

func WithMailer(mailer core.Mailer) Option {
	return func(w *Worker) {
		if mailer != nil {
			w.mailer = mailer
		}
	}
}

func WithDispatcher(dispatcher core.EventDispatcher) Option {
	return func(w *Worker) {
		if dispatcher != nil {
			w.dispatcher = dispatcher
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithMetrics(metrics core.MetricsRecorder) Option {
	return func(w *Worker) {
		if metrics != nil {
			w.metrics = metrics
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithReminderWindow(window time.Duration) Option {
	return func(w *Worker) {
		if window > 0 {
			w.reminderWindow = window
		}
	}
}

func WithBatchSizes(reminders int, expirations int) Option {
	return func(w *Worker) {
		if reminders > 0 {
			w.reminderBatch = reminders
		}
		if expirations > 0 {
			w.expireBatch = expirations
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

func New(documents core.DocumentStore, signatures core.SignatureStore, opts ...Option) (*Worker, error) {
	if documents == nil || signatures == nil {
		return nil, fmt.Errorf("lifecycle: document and signature stores are required")
	}
	_, logger := glog.Resolve("signing.lifecycle", nil, nil)
	worker := &Worker{
		documents:      documents,
		signatures:     signatures,
		logger:         glog.Ensure(logger),
		metrics:        core.NopMetricsRecorder{},
		interval:       time.Hour,
		reminderWindow: 48 * time.Hour,
		reminderBatch:  100,
		expireBatch:    50,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(worker)
		}
	}
	return worker, nil
}

// Run polls until ctx is done.
func (w *Worker) Run(ctx context.Context) {
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
				w.logger.Error("lifecycle pass failed", "error", err)
			}
		}
	}
}

// RunOnce executes the reminder pass then the expiration pass. The passes
// are independent; a reminder failure never blocks expiration.
func (w *Worker) RunOnce(ctx context.Context) (Stats, error) {
	if w == nil {
		return Stats{}, fmt.Errorf("lifecycle: worker is not configured")
	}
	stats := Stats{}
	if err := w.remindPass(ctx, &stats); err != nil {
		return stats, err
	}
	if err := w.expirePass(ctx, &stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// remindPass sends at most one reminder per signature, inside the window
// (now, now+reminderWindow]. A send failure is logged and skipped.
func (w *Worker) remindPass(ctx context.Context, stats *Stats) error {
	now := w.now()
	due, err := w.signatures.ListDueForReminder(ctx, core.ReminderWindow{
		From: now,
		To:   now.Add(w.reminderWindow),
	}, w.reminderBatch)
	if err != nil {
		return fmt.Errorf("lifecycle: list reminder candidates: %w", err)
	}

	for _, signature := range due {
		document, err := w.documents.Get(ctx, signature.DocumentID)
		if err != nil {
			stats.RemindersFailed++
			w.logger.Error("reminder document lookup failed", "signature_id", signature.ID, "document_id", signature.DocumentID, "error", err)
			continue
		}
		if w.mailer != nil {
			if err := w.mailer.SendReminderEmail(ctx, core.ReminderEmail{
				To:            signature.SignerEmail,
				RecipientName: signature.SignerName,
				DocumentTitle: document.Title,
				SigningToken:  signature.Token,
				ExpiresAt:     signature.TokenExpiresAt,
			}); err != nil {
				stats.RemindersFailed++
				w.logger.Error("reminder email failed", "signature_id", signature.ID, "signer", signature.SignerEmail, "error", err)
				continue
			}
		}
		marked, err := w.signatures.MarkReminderSent(ctx, signature.ID, w.now())
		if err != nil {
			stats.RemindersFailed++
			w.logger.Error("reminder mark failed", "signature_id", signature.ID, "error", err)
			continue
		}
		if marked {
			stats.RemindersSent++
			w.metrics.IncCounter(ctx, "signing.lifecycle.reminders.total", 1, nil)
		}
	}
	return nil
}

// expirePass expires overdue documents one transaction each, then emits
// document.expired and fire-and-forget expiration notices.
func (w *Worker) expirePass(ctx context.Context, stats *Stats) error {
	now := w.now()
	overdue, err := w.documents.ListExpired(ctx, now, w.expireBatch)
	if err != nil {
		return fmt.Errorf("lifecycle: list overdue documents: %w", err)
	}

	for _, document := range overdue {
		if document.ExpiresAt == nil || document.ExpiresAt.After(now) {
			continue
		}
		cascaded, err := w.documents.ExpireWithCascade(ctx, document.ID, now)
		if err != nil {
			stats.ExpireErrors++
			w.logger.Error("document expiration failed", "document_id", document.ID, "error", err)
			continue
		}
		stats.Expired++
		w.metrics.IncCounter(ctx, "signing.lifecycle.expired.total", 1, nil)

		if w.dispatcher != nil {
			w.dispatcher.Dispatch(ctx, document.OwnerID, core.EventDocumentExpired, document.ID, map[string]any{
				"expired_at": now.Format(time.RFC3339),
			})
		}
		for _, signature := range cascaded {
			w.notifyExpiration(ctx, document, signature)
		}
	}
	return nil
}

func (w *Worker) notifyExpiration(ctx context.Context, document core.Document, signature core.Signature) {
	if w.mailer == nil {
		return
	}
	if err := w.mailer.SendExpirationNoticeEmail(ctx, core.ExpirationNoticeEmail{
		To:            signature.SignerEmail,
		RecipientName: signature.SignerName,
		DocumentTitle: document.Title,
	}); err != nil {
		w.logger.Error("expiration notice failed", "document_id", document.ID, "signature_id", signature.ID, "error", err)
	}
}
