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

type FieldStore struct {
	db     *bun.DB
	fields repository.Repository[*documentFieldRecord]
	values repository.Repository[*fieldValueRecord]
}

func NewFieldStore(db *bun.DB) (*FieldStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	store := &FieldStore{
		db:     db,
		fields: repository.NewRepository[*documentFieldRecord](db, documentFieldHandlers()),
		values: repository.NewRepository[*fieldValueRecord](db, fieldValueHandlers()),
	}
	for _, repo := range []any{store.fields, store.values} {
		if validator, ok := repo.(repository.Validator); ok {
			if err := validator.Validate(); err != nil {
				return nil, fmt.Errorf("sqlstore: invalid field repository wiring: %w", err)
			}
		}
	}
	return store, nil
}

func (s *FieldStore) CreateBatch(ctx context.Context, documentID string, fields []core.DocumentField) ([]core.DocumentField, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: field store is not configured")
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("sqlstore: document id is required")
	}
	if len(fields) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	records := make([]*documentFieldRecord, 0, len(fields))
	for _, field := range fields {
		records = append(records, newDocumentFieldRecord(documentID, field, now))
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&records).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]core.DocumentField, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *FieldStore) ListByDocument(ctx context.Context, documentID string) ([]core.DocumentField, error) {
	if s == nil || s.fields == nil {
		return nil, fmt.Errorf("sqlstore: field store is not configured")
	}
	records, _, err := s.fields.List(ctx,
		repository.SelectBy("document_id", "=", strings.TrimSpace(documentID)),
		repository.OrderBy("field_order ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.DocumentField, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *FieldStore) ListForSigner(ctx context.Context, documentID string, signerEmail string) ([]core.DocumentField, error) {
	if s == nil || s.fields == nil {
		return nil, fmt.Errorf("sqlstore: field store is not configured")
	}
	records, _, err := s.fields.List(ctx,
		repository.SelectBy("document_id", "=", strings.TrimSpace(documentID)),
		repository.SelectBy("signer_email", "=", strings.TrimSpace(strings.ToLower(signerEmail))),
		repository.OrderBy("field_order ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.DocumentField, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *FieldStore) ListValues(ctx context.Context, signatureID string) ([]core.FieldValue, error) {
	if s == nil || s.values == nil {
		return nil, fmt.Errorf("sqlstore: field store is not configured")
	}
	records, _, err := s.values.List(ctx,
		repository.SelectBy("signature_id", "=", strings.TrimSpace(signatureID)),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.FieldValue, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
