package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/trazahq/go-signing/core"
)

const webhookCacheKeyPrefix = "go-signing::webhooks::v1"

// CachedWebhookStore caches the two read paths the dispatcher hammers on
// every domain event: Get and ListActiveForEvent. Writes go through to the
// base store and drop the affected keys.
type CachedWebhookStore struct {
	base  core.WebhookStore
	cache repositorycache.CacheService
}

func NewCachedWebhookStore(base core.WebhookStore, cacheService repositorycache.CacheService) (*CachedWebhookStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base webhook store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: webhook cache service is required")
	}
	return &CachedWebhookStore{base: base, cache: cacheService}, nil
}

// WebhookCacheKey returns the deterministic cache key for a webhook row:
// go-signing::webhooks::v1::id::<id>.
func WebhookCacheKey(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("sqlstore: webhook id is required")
	}
	return strings.Join([]string{webhookCacheKeyPrefix, "id", url.PathEscape(id)}, "::"), nil
}

// WebhookEventCacheKey returns the deterministic cache key for the active
// subscription list of one owner and event type:
// go-signing::webhooks::v1::event::<owner>::<event>.
func WebhookEventCacheKey(ownerID string, eventType string) (string, error) {
	ownerID = strings.TrimSpace(ownerID)
	eventType = strings.TrimSpace(strings.ToLower(eventType))
	if ownerID == "" || eventType == "" {
		return "", fmt.Errorf("sqlstore: owner id and event type are required")
	}
	return strings.Join([]string{
		webhookCacheKeyPrefix,
		"event",
		url.PathEscape(ownerID),
		url.PathEscape(eventType),
	}, "::"), nil
}

func (s *CachedWebhookStore) Create(ctx context.Context, in core.CreateWebhookInput) (core.Webhook, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Webhook{}, fmt.Errorf("sqlstore: cached webhook store is not configured")
	}
	created, err := s.base.Create(ctx, in)
	if err != nil {
		return core.Webhook{}, err
	}
	for _, eventType := range created.Events {
		if err := s.dropEventKey(ctx, created.OwnerID, eventType); err != nil {
			return core.Webhook{}, err
		}
	}
	return created, nil
}

func (s *CachedWebhookStore) Get(ctx context.Context, id string) (core.Webhook, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Webhook{}, fmt.Errorf("sqlstore: cached webhook store is not configured")
	}
	cacheKey, err := WebhookCacheKey(id)
	if err != nil {
		return core.Webhook{}, err
	}
	webhook, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Webhook, error) {
		fetched, fetchErr := s.base.Get(ctx, id)
		if fetchErr != nil {
			return core.Webhook{}, fetchErr
		}
		return cloneWebhook(fetched), nil
	})
	if err != nil {
		return core.Webhook{}, err
	}
	return cloneWebhook(webhook), nil
}

func (s *CachedWebhookStore) ListActiveForEvent(ctx context.Context, ownerID string, eventType string) ([]core.Webhook, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached webhook store is not configured")
	}
	cacheKey, err := WebhookEventCacheKey(ownerID, eventType)
	if err != nil {
		return nil, err
	}
	webhooks, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) ([]core.Webhook, error) {
		fetched, fetchErr := s.base.ListActiveForEvent(ctx, ownerID, eventType)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return cloneWebhooks(fetched), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneWebhooks(webhooks), nil
}

func (s *CachedWebhookStore) SetActive(ctx context.Context, id string, active bool) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached webhook store is not configured")
	}
	webhook, err := s.base.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.base.SetActive(ctx, id, active); err != nil {
		return err
	}
	cacheKey, err := WebhookCacheKey(id)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return err
	}
	for _, eventType := range webhook.Events {
		if err := s.dropEventKey(ctx, webhook.OwnerID, eventType); err != nil {
			return err
		}
	}
	return nil
}

func (s *CachedWebhookStore) dropEventKey(ctx context.Context, ownerID string, eventType string) error {
	cacheKey, err := WebhookEventCacheKey(ownerID, eventType)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func cloneWebhook(webhook core.Webhook) core.Webhook {
	cloned := webhook
	cloned.Events = append([]string(nil), webhook.Events...)
	return cloned
}

func cloneWebhooks(webhooks []core.Webhook) []core.Webhook {
	if webhooks == nil {
		return nil
	}
	out := make([]core.Webhook, 0, len(webhooks))
	for _, webhook := range webhooks {
		out = append(out, cloneWebhook(webhook))
	}
	return out
}

var _ core.WebhookStore = (*CachedWebhookStore)(nil)
