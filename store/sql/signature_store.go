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

type SignatureStore struct {
	db   *bun.DB
	repo repository.Repository[*signatureRecord]
}

func NewSignatureStore(db *bun.DB) (*SignatureStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*signatureRecord](db, signatureHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid signature repository wiring: %w", err)
		}
	}
	return &SignatureStore{db: db, repo: repo}, nil
}

func (s *SignatureStore) CreateBatch(ctx context.Context, inputs []core.CreateSignatureInput) ([]core.Signature, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: signature store is not configured")
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("sqlstore: at least one signer is required")
	}
	now := time.Now().UTC()
	records := make([]*signatureRecord, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.DocumentID) == "" {
			return nil, fmt.Errorf("sqlstore: signature document id is required")
		}
		if strings.TrimSpace(in.SignerEmail) == "" {
			return nil, fmt.Errorf("sqlstore: signer email is required")
		}
		records = append(records, newSignatureRecord(in, now))
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&records).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]core.Signature, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *SignatureStore) BindTokens(ctx context.Context, signatures []core.Signature) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: signature store is not configured")
	}
	if len(signatures) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, signature := range signatures {
			if strings.TrimSpace(signature.ID) == "" || strings.TrimSpace(signature.Token) == "" {
				return fmt.Errorf("sqlstore: token binding requires signature id and token")
			}
			_, err := tx.NewUpdate().
				Model((*signatureRecord)(nil)).
				Set("token = ?", signature.Token).
				Set("token_expires_at = ?", signature.TokenExpiresAt.UTC()).
				Set("updated_at = ?", now).
				Where("id = ?", signature.ID).
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SignatureStore) Get(ctx context.Context, id string) (core.Signature, error) {
	if s == nil || s.repo == nil {
		return core.Signature{}, fmt.Errorf("sqlstore: signature store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Signature{}, core.ErrSignatureNotFound
		}
		return core.Signature{}, err
	}
	return record.toDomain(), nil
}

func (s *SignatureStore) GetByToken(ctx context.Context, token string) (core.Signature, error) {
	if s == nil || s.repo == nil {
		return core.Signature{}, fmt.Errorf("sqlstore: signature store is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return core.Signature{}, core.ErrSignatureNotFound
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("token", "=", token),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Signature{}, err
	}
	if len(records) == 0 {
		return core.Signature{}, core.ErrSignatureNotFound
	}
	return records[0].toDomain(), nil
}

func (s *SignatureStore) ListByDocument(ctx context.Context, documentID string) ([]core.Signature, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: signature store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("document_id", "=", strings.TrimSpace(documentID)),
		repository.OrderBy("sign_order ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Signature, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

// CompleteSubmission is the write side of a signing submission. Everything
// happens in one transaction: field values inserted, signature marked signed,
// and the parent document promoted to signed when no pending signatures
// remain. The status guard on the signature UPDATE rejects replays.
func (s *SignatureStore) CompleteSubmission(ctx context.Context, in core.CompleteSubmissionInput) (core.SubmissionOutcome, error) {
	if s == nil || s.db == nil {
		return core.SubmissionOutcome{}, fmt.Errorf("sqlstore: signature store is not configured")
	}
	signatureID := strings.TrimSpace(in.SignatureID)
	if signatureID == "" {
		return core.SubmissionOutcome{}, fmt.Errorf("sqlstore: signature id is required")
	}
	signedAt := in.SignedAt.UTC()
	if signedAt.IsZero() {
		signedAt = time.Now().UTC()
	}

	var outcome core.SubmissionOutcome
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		signature := new(signatureRecord)
		result, err := tx.NewUpdate().
			Model(signature).
			Set("status = ?", string(core.SignatureStatusSigned)).
			Set("signed_at = ?", signedAt).
			Set("signer_ip = ?", strings.TrimSpace(in.SignerIP)).
			Set("signer_ua = ?", strings.TrimSpace(in.SignerUA)).
			Set("updated_at = ?", signedAt).
			Where("id = ?", signatureID).
			Where("status = ?", string(core.SignatureStatusPending)).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return err
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return fmt.Errorf("%w: signature %s is not pending", core.ErrInvalidSignatureStatusTransition, signatureID)
		}

		if len(in.Values) > 0 {
			values := make([]*fieldValueRecord, 0, len(in.Values))
			for _, value := range in.Values {
				value.SignatureID = signatureID
				values = append(values, newFieldValueRecord(value, signedAt))
			}
			if _, err := tx.NewInsert().Model(&values).Exec(ctx); err != nil {
				return err
			}
		}

		pending, err := tx.NewSelect().
			Model((*signatureRecord)(nil)).
			Where("document_id = ?", signature.DocumentID).
			Where("status = ?", string(core.SignatureStatusPending)).
			Count(ctx)
		if err != nil {
			return err
		}

		document := new(documentRecord)
		if pending == 0 {
			_, err = tx.NewUpdate().
				Model(document).
				Set("status = ?", string(core.DocumentStatusSigned)).
				Set("updated_at = ?", signedAt).
				Where("id = ?", signature.DocumentID).
				Where("status = ?", string(core.DocumentStatusPending)).
				Returning("*").
				Exec(ctx)
			if err != nil {
				return err
			}
			outcome.DocumentCompleted = true
		} else {
			if err := tx.NewSelect().Model(document).Where("id = ?", signature.DocumentID).Scan(ctx); err != nil {
				return err
			}
		}

		outcome.Signature = signature.toDomain()
		outcome.Document = document.toDomain()
		return nil
	})
	if err != nil {
		return core.SubmissionOutcome{}, err
	}
	return outcome, nil
}

func (s *SignatureStore) Decline(ctx context.Context, signatureID string, reason string) (core.Signature, error) {
	if s == nil || s.db == nil {
		return core.Signature{}, fmt.Errorf("sqlstore: signature store is not configured")
	}
	signatureID = strings.TrimSpace(signatureID)
	if signatureID == "" {
		return core.Signature{}, fmt.Errorf("sqlstore: signature id is required")
	}
	now := time.Now().UTC()
	record := new(signatureRecord)
	result, err := s.db.NewUpdate().
		Model(record).
		Set("status = ?", string(core.SignatureStatusDeclined)).
		Set("decline_reason = ?", strings.TrimSpace(reason)).
		Set("updated_at = ?", now).
		Where("id = ?", signatureID).
		Where("status = ?", string(core.SignatureStatusPending)).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return core.Signature{}, err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.Signature{}, fmt.Errorf("%w: signature %s is not pending", core.ErrInvalidSignatureStatusTransition, signatureID)
	}
	return record.toDomain(), nil
}

func (s *SignatureStore) ExtendTokenExpiry(ctx context.Context, signatureID string, tokenExpiresAt time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: signature store is not configured")
	}
	signatureID = strings.TrimSpace(signatureID)
	if signatureID == "" {
		return fmt.Errorf("sqlstore: signature id is required")
	}
	result, err := s.db.NewUpdate().
		Model((*signatureRecord)(nil)).
		Set("token_expires_at = ?", tokenExpiresAt.UTC()).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", signatureID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.ErrSignatureNotFound
	}
	return nil
}

// MarkViewed is conditional on viewed_at being unset, so only the first
// open of a signing link reports true.
func (s *SignatureStore) MarkViewed(ctx context.Context, signatureID string, at time.Time) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sqlstore: signature store is not configured")
	}
	signatureID = strings.TrimSpace(signatureID)
	if signatureID == "" {
		return false, fmt.Errorf("sqlstore: signature id is required")
	}
	result, err := s.db.NewUpdate().
		Model((*signatureRecord)(nil)).
		Set("viewed_at = ?", at.UTC()).
		Set("updated_at = ?", at.UTC()).
		Where("id = ?", signatureID).
		Where("viewed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// MarkReminderSent is conditional on reminder_sent_at being unset, which is
// what makes reminders at-most-once under concurrent worker ticks.
func (s *SignatureStore) MarkReminderSent(ctx context.Context, signatureID string, at time.Time) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sqlstore: signature store is not configured")
	}
	signatureID = strings.TrimSpace(signatureID)
	if signatureID == "" {
		return false, fmt.Errorf("sqlstore: signature id is required")
	}
	result, err := s.db.NewUpdate().
		Model((*signatureRecord)(nil)).
		Set("reminder_sent_at = ?", at.UTC()).
		Set("updated_at = ?", at.UTC()).
		Where("id = ?", signatureID).
		Where("reminder_sent_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

func (s *SignatureStore) ListDueForReminder(ctx context.Context, window core.ReminderWindow, limit int) ([]core.Signature, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: signature store is not configured")
	}
	if limit <= 0 {
		limit = 1
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("status", "=", string(core.SignatureStatusPending)),
		repository.SelectRawProcessor(func(query *bun.SelectQuery) *bun.SelectQuery {
			return query.
				Join("JOIN signing_documents AS sd ON sd.id = sg.document_id").
				Where("sd.status = ?", string(core.DocumentStatusPending)).
				Where("sd.expires_at > ?", window.From.UTC()).
				Where("sd.expires_at <= ?", window.To.UTC()).
				Where("sg.reminder_sent_at IS NULL")
		}),
		repository.OrderBy("sg.created_at ASC"),
		repository.SelectPaginate(limit, 0),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Signature, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
