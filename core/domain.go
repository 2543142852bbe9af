package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDocumentStatusTransition  = errors.New("core: invalid document status transition")
	ErrInvalidSignatureStatusTransition = errors.New("core: invalid signature status transition")
	ErrDocumentNotEditable              = errors.New("core: document fields are not editable in current status")
	ErrDocumentNotFound                 = errors.New("core: document not found")
	ErrSignatureNotFound                = errors.New("core: signature not found")
	ErrWebhookNotFound                  = errors.New("core: webhook not found")
	ErrDeliveryNotFound                 = errors.New("core: webhook delivery not found")
)

type DocumentStatus string

const (
	DocumentStatusDraft   DocumentStatus = "draft"
	DocumentStatusPending DocumentStatus = "pending"
	DocumentStatusSigned  DocumentStatus = "signed"
	DocumentStatusExpired DocumentStatus = "expired"
	DocumentStatusVoid    DocumentStatus = "void"
)

type SignatureStatus string

const (
	SignatureStatusPending  SignatureStatus = "pending"
	SignatureStatusSigned   SignatureStatus = "signed"
	SignatureStatusDeclined SignatureStatus = "declined"
)

type FieldType string

const (
	FieldTypeSignature FieldType = "signature"
	FieldTypeDate      FieldType = "date"
	FieldTypeText      FieldType = "text"
	FieldTypeInitials  FieldType = "initials"
	FieldTypeCheckbox  FieldType = "checkbox"
)

// Webhook event catalog.
const (
	EventDocumentSent      = "document.sent"
	EventDocumentViewed    = "document.viewed"
	EventDocumentSigned    = "document.signed"
	EventDocumentCompleted = "document.completed"
	EventDocumentExpired   = "document.expired"
	EventDocumentDeclined  = "document.declined"
)

func KnownEventTypes() []string {
	return []string{
		EventDocumentSent,
		EventDocumentViewed,
		EventDocumentSigned,
		EventDocumentCompleted,
		EventDocumentExpired,
		EventDocumentDeclined,
	}
}

func IsKnownEventType(eventType string) bool {
	eventType = strings.TrimSpace(strings.ToLower(eventType))
	for _, known := range KnownEventTypes() {
		if eventType == known {
			return true
		}
	}
	return false
}

type Document struct {
	ID        string
	OwnerID   string
	Title     string
	Status    DocumentStatus
	FileHash  string
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Document) TransitionTo(status DocumentStatus, now time.Time) error {
	if d == nil {
		return nil
	}
	if d.Status == status {
		d.UpdatedAt = now
		return nil
	}
	if !documentTransitionAllowed(d.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidDocumentStatusTransition, d.Status, status)
	}
	d.Status = status
	d.UpdatedAt = now
	return nil
}

var documentTransitions = map[DocumentStatus]map[DocumentStatus]struct{}{
	DocumentStatusDraft: {
		DocumentStatusPending: {},
		DocumentStatusVoid:    {},
	},
	DocumentStatusPending: {
		DocumentStatusSigned:  {},
		DocumentStatusExpired: {},
		DocumentStatusVoid:    {},
	},
}

func documentTransitionAllowed(current, next DocumentStatus) bool {
	targets, ok := documentTransitions[current]
	if !ok {
		return false
	}
	_, ok = targets[next]
	return ok
}

// FieldsEditable reports whether document fields may still be added or moved.
func (d *Document) FieldsEditable() bool {
	if d == nil {
		return false
	}
	return d.Status == DocumentStatusDraft || d.Status == DocumentStatusPending
}

func (d *Document) Terminal() bool {
	if d == nil {
		return false
	}
	switch d.Status {
	case DocumentStatusSigned, DocumentStatusExpired, DocumentStatusVoid:
		return true
	}
	return false
}

func (d *Document) ExpiredBy(now time.Time) bool {
	if d == nil || d.ExpiresAt == nil {
		return false
	}
	return d.Status == DocumentStatusPending && !d.ExpiresAt.After(now)
}

type Signature struct {
	ID             string
	DocumentID     string
	SignerEmail    string
	SignerName     string
	Status         SignatureStatus
	Token          string
	TokenExpiresAt time.Time
	SignedAt       *time.Time
	ViewedAt       *time.Time
	DeclineReason  string
	ReminderSentAt *time.Time
	SignOrder      int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (s *Signature) TransitionTo(status SignatureStatus, now time.Time) error {
	if s == nil {
		return nil
	}
	if s.Status == status {
		s.UpdatedAt = now
		return nil
	}
	if s.Status != SignatureStatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidSignatureStatusTransition, s.Status, status)
	}
	switch status {
	case SignatureStatusSigned, SignatureStatusDeclined:
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidSignatureStatusTransition, s.Status, status)
	}
	s.Status = status
	s.UpdatedAt = now
	return nil
}

func (s *Signature) Terminal() bool {
	if s == nil {
		return false
	}
	return s.Status == SignatureStatusSigned || s.Status == SignatureStatusDeclined
}

// TokenExpiredBy compares the business expiry field against the clock. The
// cryptographic envelope carries its own expiry; callers check both.
func (s *Signature) TokenExpiredBy(now time.Time) bool {
	if s == nil || s.TokenExpiresAt.IsZero() {
		return false
	}
	return now.After(s.TokenExpiresAt)
}

type DocumentField struct {
	ID          string
	DocumentID  string
	FieldType   FieldType
	SignerEmail string
	Page        int
	PositionX   float64
	PositionY   float64
	Width       float64
	Height      float64
	Required    bool
	FieldOrder  int
	CreatedAt   time.Time
}

func (f DocumentField) Validate() error {
	switch f.FieldType {
	case FieldTypeSignature, FieldTypeDate, FieldTypeText, FieldTypeInitials, FieldTypeCheckbox:
	default:
		return fmt.Errorf("core: invalid field type %q", f.FieldType)
	}
	if strings.TrimSpace(f.SignerEmail) == "" {
		return fmt.Errorf("core: field signer email is required")
	}
	if f.Page < 1 {
		return fmt.Errorf("core: field page must be positive")
	}
	return nil
}

type FieldValue struct {
	ID          string
	FieldID     string
	SignatureID string
	Value       string
	CreatedAt   time.Time
}

type Webhook struct {
	ID        string
	OwnerID   string
	URL       string
	Secret    string
	Events    []string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubscribedTo reports whether the webhook's event set contains eventType.
func (w Webhook) SubscribedTo(eventType string) bool {
	eventType = strings.TrimSpace(strings.ToLower(eventType))
	for _, event := range w.Events {
		if strings.TrimSpace(strings.ToLower(event)) == eventType {
			return true
		}
	}
	return false
}

type WebhookDelivery struct {
	ID           string
	WebhookID    string
	EventType    string
	Payload      []byte
	Attempts     int
	ResponseCode int
	ResponseBody string
	DeliveredAt  *time.Time
	NextRetryAt  *time.Time
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (d WebhookDelivery) Delivered() bool {
	return d.DeliveredAt != nil
}

// Exhausted reports whether the retry budget is spent without success.
func (d WebhookDelivery) Exhausted(maxAttempts int) bool {
	if maxAttempts <= 0 {
		return false
	}
	return d.DeliveredAt == nil && d.Attempts >= maxAttempts
}

type AuditEntry struct {
	ID         string
	ActorID    string
	DocumentID string
	EventType  string
	Metadata   map[string]any
	CreatedAt  time.Time
}
