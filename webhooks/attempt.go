package webhooks

import (
	"context"
	"time"

	"github.com/trazahq/go-signing/core"
)

// performAttempt executes one delivery attempt and records its outcome.
// retryAttempt is the number of prior failed attempts for this delivery.
// The returned delivery reflects the recorded state.
func performAttempt(
	ctx context.Context,
	sender *Sender,
	deliveries core.DeliveryStore,
	webhook core.Webhook,
	delivery core.WebhookDelivery,
	retryAttempt int,
	maxAttempts int,
	now time.Time,
) (core.WebhookDelivery, error) {
	outcome := sender.Send(ctx, webhook, delivery, retryAttempt)

	result := core.DeliveryAttemptResult{
		ResponseCode: outcome.ResponseCode,
		ResponseBody: outcome.ResponseBody,
		Err:          outcome.Err,
	}
	if outcome.Success {
		deliveredAt := now
		result.DeliveredAt = &deliveredAt
	} else {
		result.NextRetryAt = scheduleAfterFailure(delivery.Attempts+1, maxAttempts, now)
	}
	return deliveries.RecordAttempt(ctx, delivery.ID, result)
}

// scheduleAfterFailure computes the next retry time after failed attempt
// number done (1-based). Nil means the retry budget is spent.
func scheduleAfterFailure(done int, maxAttempts int, now time.Time) *time.Time {
	if maxAttempts > 0 && done >= maxAttempts {
		return nil
	}
	next := now.Add(Backoff(done))
	return &next
}
