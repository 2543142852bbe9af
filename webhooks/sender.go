package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/trazahq/go-signing/core"
)

const (
	HeaderSignature = "X-Traza-Signature"
	HeaderEvent     = "X-Traza-Event"
	HeaderDelivery  = "X-Traza-Delivery"
	HeaderRetry     = "X-Traza-Retry"

	// responseBodyLimit bounds what the delivery ledger keeps of a
	// subscriber's response.
	responseBodyLimit = 1000
)

// BuildEnvelope serializes the immutable delivery payload snapshotted at
// emission time. Receivers verify the signature over these exact bytes.
func BuildEnvelope(eventType string, documentID string, payload map[string]any, at time.Time) ([]byte, error) {
	data := map[string]any{"documentId": documentID}
	for key, value := range payload {
		data[key] = value
	}
	envelope := map[string]any{
		"event":     eventType,
		"timestamp": at.UTC().Format(time.RFC3339),
		"data":      data,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("webhooks: marshal envelope: %w", err)
	}
	return body, nil
}

// AttemptResult captures the observable outcome of one delivery attempt.
type AttemptResult struct {
	Success      bool
	ResponseCode int
	ResponseBody string
	Err          string
}

// Sender performs one signed, timeout-bounded POST per call. It holds no
// delivery state; retry scheduling lives with the callers.
type Sender struct {
	client       *http.Client
	firstTimeout time.Duration
	retryTimeout time.Duration
}

type SenderOption func(*Sender)

func WithHTTPClient(client *http.Client) SenderOption {
	return func(s *Sender) {
		if client != nil {
			s.client = client
		}
	}
}

func WithTimeouts(first, retry time.Duration) SenderOption {
	return func(s *Sender) {
		if first > 0 {
			s.firstTimeout = first
		}
		if retry > 0 {
			s.retryTimeout = retry
		}
	}
}

func NewSender(opts ...SenderOption) *Sender {
	sender := &Sender{
		client:       &http.Client{},
		firstTimeout: 10 * time.Second,
		retryTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(sender)
		}
	}
	return sender
}

// Send posts the stored payload to the webhook endpoint. retryAttempt is the
// number of prior failed attempts; zero means first delivery. The result is
// never an error value so callers always have something to record.
func (s *Sender) Send(
	ctx context.Context,
	webhook core.Webhook,
	delivery core.WebhookDelivery,
	retryAttempt int,
) AttemptResult {
	if s == nil || s.client == nil {
		return AttemptResult{Err: "webhooks: sender is not configured"}
	}

	timeout := s.firstTimeout
	if retryAttempt >= 1 {
		timeout = s.retryTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, webhook.URL, bytes.NewReader(delivery.Payload))
	if err != nil {
		return AttemptResult{Err: fmt.Sprintf("webhooks: build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSignature, Sign(webhook.Secret, delivery.Payload))
	req.Header.Set(HeaderEvent, delivery.EventType)
	req.Header.Set(HeaderDelivery, delivery.ID)
	if retryAttempt >= 1 {
		req.Header.Set(HeaderRetry, strconv.Itoa(retryAttempt))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return AttemptResult{Err: fmt.Sprintf("webhooks: post %s: %v", webhook.URL, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit+1))
	truncated := string(body)
	if len(truncated) > responseBodyLimit {
		truncated = truncated[:responseBodyLimit]
	}

	result := AttemptResult{
		ResponseCode: resp.StatusCode,
		ResponseBody: truncated,
		Success:      resp.StatusCode >= 200 && resp.StatusCode < 300,
	}
	if !result.Success {
		result.Err = fmt.Sprintf("webhooks: endpoint returned status %d", resp.StatusCode)
	}
	return result
}
