package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/trazahq/go-signing/core"
)

type AuditStore struct {
	db   *bun.DB
	repo repository.Repository[*auditEntryRecord]
}

func NewAuditStore(db *bun.DB) (*AuditStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*auditEntryRecord](db, auditHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid audit repository wiring: %w", err)
		}
	}
	return &AuditStore{db: db, repo: repo}, nil
}

func (s *AuditStore) Record(ctx context.Context, entry core.AuditEntry) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: audit store is not configured")
	}
	if strings.TrimSpace(entry.EventType) == "" {
		return fmt.Errorf("sqlstore: audit event type is required")
	}
	record := newAuditRecord(entry, time.Now().UTC())
	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *AuditStore) ListByDocument(ctx context.Context, documentID string) ([]core.AuditEntry, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: audit store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("document_id", "=", strings.TrimSpace(documentID)),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.AuditEntry, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
