package webhooks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/trazahq/go-signing/core"
)

type memoryWebhookStore struct {
	mu       sync.Mutex
	webhooks map[string]core.Webhook
}

func newMemoryWebhookStore() *memoryWebhookStore {
	return &memoryWebhookStore{webhooks: map[string]core.Webhook{}}
}

func (s *memoryWebhookStore) Create(_ context.Context, in core.CreateWebhookInput) (core.Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	webhook := core.Webhook{
		ID:       fmt.Sprintf("wh-%d", len(s.webhooks)+1),
		OwnerID:  in.OwnerID,
		URL:      in.URL,
		Secret:   in.Secret,
		Events:   in.Events,
		IsActive: true,
	}
	s.webhooks[webhook.ID] = webhook
	return webhook, nil
}

func (s *memoryWebhookStore) Get(_ context.Context, id string) (core.Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	webhook, ok := s.webhooks[id]
	if !ok {
		return core.Webhook{}, core.ErrWebhookNotFound
	}
	return webhook, nil
}

func (s *memoryWebhookStore) ListActiveForEvent(_ context.Context, ownerID string, eventType string) ([]core.Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Webhook
	for _, webhook := range s.webhooks {
		if webhook.OwnerID == ownerID && webhook.IsActive && webhook.SubscribedTo(eventType) {
			out = append(out, webhook)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryWebhookStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	webhook, ok := s.webhooks[id]
	if !ok {
		return core.ErrWebhookNotFound
	}
	webhook.IsActive = active
	s.webhooks[id] = webhook
	return nil
}

type memoryDeliveryStore struct {
	mu         sync.Mutex
	deliveries map[string]core.WebhookDelivery
	parked     map[string]string
	seq        int
}

func newMemoryDeliveryStore() *memoryDeliveryStore {
	return &memoryDeliveryStore{
		deliveries: map[string]core.WebhookDelivery{},
		parked:     map[string]string{},
	}
}

func (s *memoryDeliveryStore) Create(_ context.Context, in core.CreateDeliveryInput) (core.WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	delivery := core.WebhookDelivery{
		ID:        fmt.Sprintf("dl-%d", s.seq),
		WebhookID: in.WebhookID,
		EventType: in.EventType,
		Payload:   in.Payload,
		CreatedAt: time.Now().UTC(),
	}
	s.deliveries[delivery.ID] = delivery
	return delivery, nil
}

func (s *memoryDeliveryStore) Get(_ context.Context, id string) (core.WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivery, ok := s.deliveries[id]
	if !ok {
		return core.WebhookDelivery{}, core.ErrDeliveryNotFound
	}
	return delivery, nil
}

func (s *memoryDeliveryStore) ListByWebhook(_ context.Context, webhookID string, limit int) ([]core.WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.WebhookDelivery
	for _, delivery := range s.deliveries {
		if delivery.WebhookID == webhookID {
			out = append(out, delivery)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryDeliveryStore) ClaimDue(_ context.Context, asOf time.Time, maxAttempts int, limit int) ([]core.WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.WebhookDelivery
	for _, delivery := range s.deliveries {
		if delivery.DeliveredAt != nil || delivery.NextRetryAt == nil {
			continue
		}
		if delivery.NextRetryAt.After(asOf) {
			continue
		}
		if maxAttempts > 0 && delivery.Attempts >= maxAttempts {
			continue
		}
		if _, isParked := s.parked[delivery.ID]; isParked {
			continue
		}
		out = append(out, delivery)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextRetryAt.Before(*out[j].NextRetryAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for _, claimed := range out {
		claimed.NextRetryAt = nil
		s.deliveries[claimed.ID] = claimed
	}
	return out, nil
}

func (s *memoryDeliveryStore) RecordAttempt(_ context.Context, deliveryID string, result core.DeliveryAttemptResult) (core.WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivery, ok := s.deliveries[deliveryID]
	if !ok {
		return core.WebhookDelivery{}, core.ErrDeliveryNotFound
	}
	delivery.Attempts++
	delivery.ResponseCode = result.ResponseCode
	delivery.ResponseBody = result.ResponseBody
	delivery.LastError = result.Err
	delivery.DeliveredAt = result.DeliveredAt
	delivery.NextRetryAt = result.NextRetryAt
	delivery.UpdatedAt = time.Now().UTC()
	s.deliveries[deliveryID] = delivery
	return delivery, nil
}

func (s *memoryDeliveryStore) Park(_ context.Context, deliveryID string, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivery, ok := s.deliveries[deliveryID]
	if !ok {
		return core.ErrDeliveryNotFound
	}
	delivery.NextRetryAt = nil
	s.deliveries[deliveryID] = delivery
	s.parked[deliveryID] = note
	return nil
}

var (
	_ core.WebhookStore  = (*memoryWebhookStore)(nil)
	_ core.DeliveryStore = (*memoryDeliveryStore)(nil)
)
