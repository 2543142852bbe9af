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

// DefaultClaimLease is how long a claimed delivery stays invisible to other
// workers before it is considered abandoned and becomes claimable again.
const DefaultClaimLease = 5 * time.Minute

type DeliveryStore struct {
	db         *bun.DB
	repo       repository.Repository[*webhookDeliveryRecord]
	claimLease time.Duration
}

type DeliveryStoreOption func(*DeliveryStore)

func WithClaimLease(lease time.Duration) DeliveryStoreOption {
	return func(s *DeliveryStore) {
		if lease > 0 {
			s.claimLease = lease
		}
	}
}

func NewDeliveryStore(db *bun.DB, opts ...DeliveryStoreOption) (*DeliveryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*webhookDeliveryRecord](db, deliveryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid delivery repository wiring: %w", err)
		}
	}
	store := &DeliveryStore{db: db, repo: repo, claimLease: DefaultClaimLease}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

func (s *DeliveryStore) Create(ctx context.Context, in core.CreateDeliveryInput) (core.WebhookDelivery, error) {
	if s == nil || s.repo == nil {
		return core.WebhookDelivery{}, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	if strings.TrimSpace(in.WebhookID) == "" {
		return core.WebhookDelivery{}, fmt.Errorf("sqlstore: delivery webhook id is required")
	}
	if strings.TrimSpace(in.EventType) == "" {
		return core.WebhookDelivery{}, fmt.Errorf("sqlstore: delivery event type is required")
	}
	record := newDeliveryRecord(in, time.Now().UTC())
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.WebhookDelivery{}, err
	}
	return created.toDomain(), nil
}

func (s *DeliveryStore) Get(ctx context.Context, id string) (core.WebhookDelivery, error) {
	if s == nil || s.repo == nil {
		return core.WebhookDelivery{}, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.WebhookDelivery{}, core.ErrDeliveryNotFound
		}
		return core.WebhookDelivery{}, err
	}
	return record.toDomain(), nil
}

func (s *DeliveryStore) ListByWebhook(ctx context.Context, webhookID string, limit int) ([]core.WebhookDelivery, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	if limit <= 0 {
		limit = 1
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("webhook_id", "=", strings.TrimSpace(webhookID)),
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(limit, 0),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.WebhookDelivery, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

// ClaimDue leases a batch of due retryable rows by stamping claimed_at
// inside a single CTE update. A leased row is invisible to other workers
// until RecordAttempt or Park clears the claim, or the lease goes stale,
// so a worker that dies mid-batch only delays its rows by one lease.
func (s *DeliveryStore) ClaimDue(ctx context.Context, asOf time.Time, maxAttempts int, limit int) ([]core.WebhookDelivery, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	if limit <= 0 {
		limit = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	lease := s.claimLease
	if lease <= 0 {
		lease = DefaultClaimLease
	}
	staleBefore := asOf.UTC().Add(-lease)

	var claimed []webhookDeliveryRecord
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		query := `
WITH claimed AS (
	SELECT id
	FROM signing_webhook_deliveries
	WHERE delivered_at IS NULL
	  AND parked = ?
	  AND next_retry_at IS NOT NULL
	  AND next_retry_at <= ?
	  AND attempts < ?
	  AND (claimed_at IS NULL OR claimed_at <= ?)
	ORDER BY next_retry_at ASC
	LIMIT ?
)
UPDATE signing_webhook_deliveries
SET claimed_at = ?,
	updated_at = ?
WHERE id IN (SELECT id FROM claimed)
RETURNING
	id,
	webhook_id,
	event_type,
	payload,
	attempts,
	response_code,
	response_body,
	delivered_at,
	next_retry_at,
	claimed_at,
	parked,
	last_error,
	created_at,
	updated_at
`
		return tx.NewRaw(
			query,
			false,
			asOf.UTC(),
			maxAttempts,
			staleBefore,
			limit,
			asOf.UTC(),
			asOf.UTC(),
		).Scan(ctx, &claimed)
	})
	if err != nil {
		return nil, err
	}

	out := make([]core.WebhookDelivery, 0, len(claimed))
	for i := range claimed {
		out = append(out, claimed[i].toDomain())
	}
	return out, nil
}

func (s *DeliveryStore) RecordAttempt(ctx context.Context, deliveryID string, result core.DeliveryAttemptResult) (core.WebhookDelivery, error) {
	if s == nil || s.db == nil {
		return core.WebhookDelivery{}, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return core.WebhookDelivery{}, fmt.Errorf("sqlstore: delivery id is required")
	}
	now := time.Now().UTC()
	record := new(webhookDeliveryRecord)
	updated, err := s.db.NewUpdate().
		Model(record).
		Set("attempts = attempts + 1").
		Set("response_code = ?", result.ResponseCode).
		Set("response_body = ?", result.ResponseBody).
		Set("last_error = ?", result.Err).
		Set("delivered_at = ?", result.DeliveredAt).
		Set("next_retry_at = ?", result.NextRetryAt).
		Set("claimed_at = NULL").
		Set("updated_at = ?", now).
		Where("id = ?", deliveryID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return core.WebhookDelivery{}, err
	}
	if affected, _ := updated.RowsAffected(); affected == 0 {
		return core.WebhookDelivery{}, core.ErrDeliveryNotFound
	}
	return record.toDomain(), nil
}

func (s *DeliveryStore) Park(ctx context.Context, deliveryID string, note string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: delivery store is not configured")
	}
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return fmt.Errorf("sqlstore: delivery id is required")
	}
	result, err := s.db.NewUpdate().
		Model((*webhookDeliveryRecord)(nil)).
		Set("parked = ?", true).
		Set("next_retry_at = NULL").
		Set("claimed_at = NULL").
		Set("last_error = ?", strings.TrimSpace(note)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", deliveryID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.ErrDeliveryNotFound
	}
	return nil
}
