package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/trazahq/go-signing/core"
)

type WebhookStore struct {
	db   *bun.DB
	repo repository.Repository[*webhookRecord]
}

func NewWebhookStore(db *bun.DB) (*WebhookStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*webhookRecord](db, webhookHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid webhook repository wiring: %w", err)
		}
	}
	return &WebhookStore{db: db, repo: repo}, nil
}

func (s *WebhookStore) Create(ctx context.Context, in core.CreateWebhookInput) (core.Webhook, error) {
	if s == nil || s.repo == nil {
		return core.Webhook{}, fmt.Errorf("sqlstore: webhook store is not configured")
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return core.Webhook{}, fmt.Errorf("sqlstore: webhook owner is required")
	}
	if strings.TrimSpace(in.URL) == "" {
		return core.Webhook{}, fmt.Errorf("sqlstore: webhook url is required")
	}
	record := newWebhookRecord(in, time.Now().UTC())
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.Webhook{}, err
	}
	return created.toDomain(), nil
}

func (s *WebhookStore) Get(ctx context.Context, id string) (core.Webhook, error) {
	if s == nil || s.repo == nil {
		return core.Webhook{}, fmt.Errorf("sqlstore: webhook store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Webhook{}, core.ErrWebhookNotFound
		}
		return core.Webhook{}, err
	}
	return record.toDomain(), nil
}

// ListActiveForEvent filters the event subscription in memory rather than with
// a jsonb containment operator so the same query plan works on both the
// postgres and sqlite dialects.
func (s *WebhookStore) ListActiveForEvent(ctx context.Context, ownerID string, eventType string) ([]core.Webhook, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: webhook store is not configured")
	}
	eventType = strings.TrimSpace(strings.ToLower(eventType))
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("owner_id", "=", strings.TrimSpace(ownerID)),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("is_active = ?", true)
		}),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Webhook, 0, len(records))
	for _, record := range records {
		webhook := record.toDomain()
		if webhook.SubscribedTo(eventType) {
			out = append(out, webhook)
		}
	}
	return out, nil
}

func (s *WebhookStore) SetActive(ctx context.Context, id string, active bool) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: webhook store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("sqlstore: webhook id is required")
	}
	result, err := s.db.NewUpdate().
		Model((*webhookRecord)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.ErrWebhookNotFound
	}
	return nil
}
