package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type documentRecord struct {
	bun.BaseModel `bun:"table:signing_documents,alias:sd"`

	ID        string     `bun:"id,pk"`
	OwnerID   string     `bun:"owner_id,notnull"`
	Title     string     `bun:"title,notnull"`
	Status    string     `bun:"status,notnull"`
	FileHash  string     `bun:"file_hash,notnull"`
	ExpiresAt *time.Time `bun:"expires_at,nullzero"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type signatureRecord struct {
	bun.BaseModel `bun:"table:signing_signatures,alias:sg"`

	ID             string     `bun:"id,pk"`
	DocumentID     string     `bun:"document_id,notnull"`
	SignerEmail    string     `bun:"signer_email,notnull"`
	SignerName     string     `bun:"signer_name"`
	Status         string     `bun:"status,notnull"`
	Token          string     `bun:"token"`
	TokenExpiresAt time.Time  `bun:"token_expires_at,nullzero"`
	SignedAt       *time.Time `bun:"signed_at,nullzero"`
	ViewedAt       *time.Time `bun:"viewed_at,nullzero"`
	SignerIP       string     `bun:"signer_ip"`
	SignerUA       string     `bun:"signer_ua"`
	DeclineReason  string     `bun:"decline_reason"`
	ReminderSentAt *time.Time `bun:"reminder_sent_at,nullzero"`
	SignOrder      int        `bun:"sign_order,notnull"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type documentFieldRecord struct {
	bun.BaseModel `bun:"table:signing_document_fields,alias:sdf"`

	ID          string    `bun:"id,pk"`
	DocumentID  string    `bun:"document_id,notnull"`
	FieldType   string    `bun:"field_type,notnull"`
	SignerEmail string    `bun:"signer_email,notnull"`
	Page        int       `bun:"page,notnull"`
	PositionX   float64   `bun:"position_x,notnull"`
	PositionY   float64   `bun:"position_y,notnull"`
	Width       float64   `bun:"width,notnull"`
	Height      float64   `bun:"height,notnull"`
	Required    bool      `bun:"required,notnull"`
	FieldOrder  int       `bun:"field_order,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type fieldValueRecord struct {
	bun.BaseModel `bun:"table:signing_field_values,alias:sfv"`

	ID          string    `bun:"id,pk"`
	FieldID     string    `bun:"field_id,notnull"`
	SignatureID string    `bun:"signature_id,notnull"`
	Value       string    `bun:"value,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type webhookRecord struct {
	bun.BaseModel `bun:"table:signing_webhooks,alias:sw"`

	ID        string    `bun:"id,pk"`
	OwnerID   string    `bun:"owner_id,notnull"`
	URL       string    `bun:"url,notnull"`
	Secret    string    `bun:"secret,notnull"`
	Events    []string  `bun:"events,type:jsonb,notnull"`
	IsActive  bool      `bun:"is_active,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type webhookDeliveryRecord struct {
	bun.BaseModel `bun:"table:signing_webhook_deliveries,alias:swd"`

	ID           string     `bun:"id,pk"`
	WebhookID    string     `bun:"webhook_id,notnull"`
	EventType    string     `bun:"event_type,notnull"`
	Payload      []byte     `bun:"payload,notnull"`
	Attempts     int        `bun:"attempts,notnull"`
	ResponseCode int        `bun:"response_code"`
	ResponseBody string     `bun:"response_body"`
	DeliveredAt  *time.Time `bun:"delivered_at,nullzero"`
	NextRetryAt  *time.Time `bun:"next_retry_at,nullzero"`
	ClaimedAt    *time.Time `bun:"claimed_at,nullzero"`
	Parked       bool       `bun:"parked,notnull,default:false"`
	LastError    string     `bun:"last_error"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type auditEntryRecord struct {
	bun.BaseModel `bun:"table:signing_audit_log,alias:sal"`

	ID         string         `bun:"id,pk"`
	ActorID    string         `bun:"actor_id"`
	DocumentID string         `bun:"document_id"`
	EventType  string         `bun:"event_type,notnull"`
	Metadata   map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
