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

type DocumentStore struct {
	db   *bun.DB
	repo repository.Repository[*documentRecord]
}

func NewDocumentStore(db *bun.DB) (*DocumentStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*documentRecord](db, documentHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid document repository wiring: %w", err)
		}
	}
	return &DocumentStore{db: db, repo: repo}, nil
}

func (s *DocumentStore) Create(ctx context.Context, in core.CreateDocumentInput) (core.Document, error) {
	if s == nil || s.repo == nil {
		return core.Document{}, fmt.Errorf("sqlstore: document store is not configured")
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return core.Document{}, fmt.Errorf("sqlstore: document owner is required")
	}
	record := newDocumentRecord(in, time.Now().UTC())
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.Document{}, err
	}
	return created.toDomain(), nil
}

func (s *DocumentStore) Get(ctx context.Context, id string) (core.Document, error) {
	if s == nil || s.repo == nil {
		return core.Document{}, fmt.Errorf("sqlstore: document store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Document{}, core.ErrDocumentNotFound
		}
		return core.Document{}, err
	}
	return record.toDomain(), nil
}

func (s *DocumentStore) UpdateStatus(ctx context.Context, id string, status core.DocumentStatus) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: document store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("sqlstore: document id is required")
	}
	result, err := s.db.NewUpdate().
		Model((*documentRecord)(nil)).
		Set("status = ?", string(status)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.ErrDocumentNotFound
	}
	return nil
}

func (s *DocumentStore) SetExpiry(ctx context.Context, id string, expiresAt *time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: document store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("sqlstore: document id is required")
	}
	result, err := s.db.NewUpdate().
		Model((*documentRecord)(nil)).
		Set("expires_at = ?", expiresAt).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.ErrDocumentNotFound
	}
	return nil
}

func (s *DocumentStore) ListExpired(ctx context.Context, asOf time.Time, limit int) ([]core.Document, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: document store is not configured")
	}
	if limit <= 0 {
		limit = 1
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("status", "=", string(core.DocumentStatusPending)),
		repository.SelectByTimetz("expires_at", "<=", asOf.UTC()),
		repository.OrderBy("expires_at ASC"),
		repository.SelectPaginate(limit, 0),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Document, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

// ExpireWithCascade performs the expiration in one transaction: document to
// expired, still-pending signatures to declined, one audit row. The status
// guard on the UPDATE keeps concurrent workers from double-expiring.
func (s *DocumentStore) ExpireWithCascade(ctx context.Context, documentID string, asOf time.Time) ([]core.Signature, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: document store is not configured")
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("sqlstore: document id is required")
	}

	now := asOf.UTC()
	var cascaded []signatureRecord
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*documentRecord)(nil)).
			Set("status = ?", string(core.DocumentStatusExpired)).
			Set("updated_at = ?", now).
			Where("id = ?", documentID).
			Where("status = ?", string(core.DocumentStatusPending)).
			Where("expires_at <= ?", now).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, _ := result.RowsAffected()
		if affected == 0 {
			return fmt.Errorf("%w: document %s is not expirable", core.ErrInvalidDocumentStatusTransition, documentID)
		}

		query := `
UPDATE signing_signatures
SET status = ?, updated_at = ?
WHERE document_id = ?
  AND status = ?
RETURNING
	id,
	document_id,
	signer_email,
	signer_name,
	status,
	token,
	token_expires_at,
	signed_at,
	signer_ip,
	signer_ua,
	decline_reason,
	reminder_sent_at,
	sign_order,
	created_at,
	updated_at
`
		if err := tx.NewRaw(
			query,
			string(core.SignatureStatusDeclined),
			now,
			documentID,
			string(core.SignatureStatusPending),
		).Scan(ctx, &cascaded); err != nil {
			return err
		}

		audit := newAuditRecord(core.AuditEntry{
			DocumentID: documentID,
			EventType:  core.EventDocumentExpired,
			Metadata: map[string]any{
				"cascaded_signatures": len(cascaded),
			},
			CreatedAt: now,
		}, now)
		_, err = tx.NewInsert().Model(audit).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]core.Signature, 0, len(cascaded))
	for i := range cascaded {
		out = append(out, cascaded[i].toDomain())
	}
	return out, nil
}
