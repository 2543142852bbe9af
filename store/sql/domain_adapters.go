package sqlstore

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trazahq/go-signing/core"
)

func newDocumentRecord(in core.CreateDocumentInput, now time.Time) *documentRecord {
	return &documentRecord{
		ID:        uuid.NewString(),
		OwnerID:   strings.TrimSpace(in.OwnerID),
		Title:     strings.TrimSpace(in.Title),
		Status:    string(core.DocumentStatusDraft),
		FileHash:  strings.TrimSpace(in.FileHash),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *documentRecord) toDomain() core.Document {
	if r == nil {
		return core.Document{}
	}
	return core.Document{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Title:     r.Title,
		Status:    core.DocumentStatus(r.Status),
		FileHash:  r.FileHash,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newSignatureRecord(in core.CreateSignatureInput, now time.Time) *signatureRecord {
	return &signatureRecord{
		ID:             uuid.NewString(),
		DocumentID:     strings.TrimSpace(in.DocumentID),
		SignerEmail:    strings.TrimSpace(strings.ToLower(in.SignerEmail)),
		SignerName:     strings.TrimSpace(in.SignerName),
		Status:         string(core.SignatureStatusPending),
		Token:          strings.TrimSpace(in.Token),
		TokenExpiresAt: in.TokenExpiresAt,
		SignOrder:      in.SignOrder,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (r *signatureRecord) toDomain() core.Signature {
	if r == nil {
		return core.Signature{}
	}
	return core.Signature{
		ID:             r.ID,
		DocumentID:     r.DocumentID,
		SignerEmail:    r.SignerEmail,
		SignerName:     r.SignerName,
		Status:         core.SignatureStatus(r.Status),
		Token:          r.Token,
		TokenExpiresAt: r.TokenExpiresAt,
		SignedAt:       r.SignedAt,
		ViewedAt:       r.ViewedAt,
		DeclineReason:  r.DeclineReason,
		ReminderSentAt: r.ReminderSentAt,
		SignOrder:      r.SignOrder,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func newDocumentFieldRecord(documentID string, field core.DocumentField, now time.Time) *documentFieldRecord {
	return &documentFieldRecord{
		ID:          uuid.NewString(),
		DocumentID:  strings.TrimSpace(documentID),
		FieldType:   string(field.FieldType),
		SignerEmail: strings.TrimSpace(strings.ToLower(field.SignerEmail)),
		Page:        field.Page,
		PositionX:   field.PositionX,
		PositionY:   field.PositionY,
		Width:       field.Width,
		Height:      field.Height,
		Required:    field.Required,
		FieldOrder:  field.FieldOrder,
		CreatedAt:   now,
	}
}

func (r *documentFieldRecord) toDomain() core.DocumentField {
	if r == nil {
		return core.DocumentField{}
	}
	return core.DocumentField{
		ID:          r.ID,
		DocumentID:  r.DocumentID,
		FieldType:   core.FieldType(r.FieldType),
		SignerEmail: r.SignerEmail,
		Page:        r.Page,
		PositionX:   r.PositionX,
		PositionY:   r.PositionY,
		Width:       r.Width,
		Height:      r.Height,
		Required:    r.Required,
		FieldOrder:  r.FieldOrder,
		CreatedAt:   r.CreatedAt,
	}
}

func newFieldValueRecord(value core.FieldValue, now time.Time) *fieldValueRecord {
	return &fieldValueRecord{
		ID:          uuid.NewString(),
		FieldID:     strings.TrimSpace(value.FieldID),
		SignatureID: strings.TrimSpace(value.SignatureID),
		Value:       value.Value,
		CreatedAt:   now,
	}
}

func (r *fieldValueRecord) toDomain() core.FieldValue {
	if r == nil {
		return core.FieldValue{}
	}
	return core.FieldValue{
		ID:          r.ID,
		FieldID:     r.FieldID,
		SignatureID: r.SignatureID,
		Value:       r.Value,
		CreatedAt:   r.CreatedAt,
	}
}

func newWebhookRecord(in core.CreateWebhookInput, now time.Time) *webhookRecord {
	return &webhookRecord{
		ID:        uuid.NewString(),
		OwnerID:   strings.TrimSpace(in.OwnerID),
		URL:       strings.TrimSpace(in.URL),
		Secret:    in.Secret,
		Events:    append([]string(nil), in.Events...),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *webhookRecord) toDomain() core.Webhook {
	if r == nil {
		return core.Webhook{}
	}
	return core.Webhook{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		URL:       r.URL,
		Secret:    r.Secret,
		Events:    append([]string(nil), r.Events...),
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newDeliveryRecord(in core.CreateDeliveryInput, now time.Time) *webhookDeliveryRecord {
	return &webhookDeliveryRecord{
		ID:        uuid.NewString(),
		WebhookID: strings.TrimSpace(in.WebhookID),
		EventType: strings.TrimSpace(in.EventType),
		Payload:   append([]byte(nil), in.Payload...),
		Attempts:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *webhookDeliveryRecord) toDomain() core.WebhookDelivery {
	if r == nil {
		return core.WebhookDelivery{}
	}
	return core.WebhookDelivery{
		ID:           r.ID,
		WebhookID:    r.WebhookID,
		EventType:    r.EventType,
		Payload:      append([]byte(nil), r.Payload...),
		Attempts:     r.Attempts,
		ResponseCode: r.ResponseCode,
		ResponseBody: r.ResponseBody,
		DeliveredAt:  r.DeliveredAt,
		NextRetryAt:  r.NextRetryAt,
		LastError:    r.LastError,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func newAuditRecord(entry core.AuditEntry, now time.Time) *auditEntryRecord {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &auditEntryRecord{
		ID:         uuid.NewString(),
		ActorID:    strings.TrimSpace(entry.ActorID),
		DocumentID: strings.TrimSpace(entry.DocumentID),
		EventType:  strings.TrimSpace(entry.EventType),
		Metadata:   metadata,
		CreatedAt:  createdAt,
	}
}

func (r *auditEntryRecord) toDomain() core.AuditEntry {
	if r == nil {
		return core.AuditEntry{}
	}
	return core.AuditEntry{
		ID:         r.ID,
		ActorID:    r.ActorID,
		DocumentID: r.DocumentID,
		EventType:  r.EventType,
		Metadata:   r.Metadata,
		CreatedAt:  r.CreatedAt,
	}
}
