package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type RegisterWebhookRequest struct {
	OwnerID string
	URL     string
	Events  []string
}

// RegisterWebhookResult carries the plaintext secret exactly once, at
// registration time. Later reads return the webhook without it.
type RegisterWebhookResult struct {
	Webhook Webhook
	Secret  string
}

// RegisterWebhook validates the subscription and mints the signing secret.
func (s *Service) RegisterWebhook(ctx context.Context, req RegisterWebhookRequest) (result RegisterWebhookResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"owner_id": req.OwnerID}
	defer func() {
		s.observeOperation(ctx, startedAt, "register_webhook", err, fields)
	}()

	if s == nil || s.webhookStore == nil {
		err = s.mapError(fmt.Errorf("core: webhook store is required"))
		return RegisterWebhookResult{}, err
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		err = s.mapError(fmt.Errorf("core: webhook owner is required"))
		return RegisterWebhookResult{}, err
	}
	endpoint, parseErr := url.Parse(strings.TrimSpace(req.URL))
	if parseErr != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		err = s.mapError(fmt.Errorf("core: invalid webhook url %q", req.URL))
		return RegisterWebhookResult{}, err
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		err = s.mapError(fmt.Errorf("core: invalid webhook url scheme %q", endpoint.Scheme))
		return RegisterWebhookResult{}, err
	}

	events := normalizeEventTypes(req.Events)
	if len(events) == 0 {
		err = s.mapError(fmt.Errorf("core: webhook requires at least one event type"))
		return RegisterWebhookResult{}, err
	}
	for _, event := range events {
		if !IsKnownEventType(event) {
			err = s.mapError(fmt.Errorf("core: invalid webhook event type %q", event))
			return RegisterWebhookResult{}, err
		}
	}

	secret, secretErr := mintWebhookSecret()
	if secretErr != nil {
		err = s.mapError(secretErr)
		return RegisterWebhookResult{}, err
	}

	webhook, createErr := s.webhookStore.Create(ctx, CreateWebhookInput{
		OwnerID: strings.TrimSpace(req.OwnerID),
		URL:     endpoint.String(),
		Secret:  secret,
		Events:  events,
	})
	if createErr != nil {
		err = s.mapError(createErr)
		return RegisterWebhookResult{}, err
	}
	fields["webhook_id"] = webhook.ID

	webhook.Secret = ""
	return RegisterWebhookResult{Webhook: webhook, Secret: secret}, nil
}

// DeactivateWebhook stops future dispatch and parks pending retries.
func (s *Service) DeactivateWebhook(ctx context.Context, webhookID string) error {
	if s == nil || s.webhookStore == nil {
		return s.mapError(fmt.Errorf("core: webhook store is required"))
	}
	webhook, err := s.webhookStore.Get(ctx, webhookID)
	if err != nil {
		return s.mapError(err)
	}
	if err := s.webhookStore.SetActive(ctx, webhook.ID, false); err != nil {
		return s.mapError(err)
	}
	s.logInfo(ctx, "webhook deactivated", map[string]any{
		"webhook_id": webhook.ID,
		"owner_id":   webhook.OwnerID,
	})
	return nil
}

// ListWebhookDeliveries returns the delivery ledger for one webhook, newest
// first, response bodies already truncated at write time.
func (s *Service) ListWebhookDeliveries(ctx context.Context, webhookID string, limit int) ([]WebhookDelivery, error) {
	if s == nil || s.deliveryStore == nil {
		return nil, s.mapError(fmt.Errorf("core: delivery store is required"))
	}
	if limit <= 0 {
		limit = 50
	}
	deliveries, err := s.deliveryStore.ListByWebhook(ctx, webhookID, limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	return deliveries, nil
}

func normalizeEventTypes(events []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(events))
	for _, event := range events {
		event = strings.TrimSpace(strings.ToLower(event))
		if event == "" {
			continue
		}
		if _, dup := seen[event]; dup {
			continue
		}
		seen[event] = struct{}{}
		out = append(out, event)
	}
	return out
}

func mintWebhookSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("core: mint webhook secret: %w", err)
	}
	return "whsec_" + hex.EncodeToString(buf), nil
}
