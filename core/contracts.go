package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type CreateDocumentInput struct {
	OwnerID  string
	Title    string
	FileHash string
}

type CreateSignatureInput struct {
	DocumentID     string
	SignerEmail    string
	SignerName     string
	Token          string
	TokenExpiresAt time.Time
	SignOrder      int
}

type DocumentStore interface {
	Create(ctx context.Context, in CreateDocumentInput) (Document, error)
	Get(ctx context.Context, id string) (Document, error)
	UpdateStatus(ctx context.Context, id string, status DocumentStatus) error
	SetExpiry(ctx context.Context, id string, expiresAt *time.Time) error
	ListExpired(ctx context.Context, asOf time.Time, limit int) ([]Document, error)
	// ExpireWithCascade performs the transactional expiration: document to
	// expired, still-pending signatures to declined, one audit row. Returns
	// the signatures that were cascaded.
	ExpireWithCascade(ctx context.Context, documentID string, asOf time.Time) ([]Signature, error)
}

type SignatureStore interface {
	CreateBatch(ctx context.Context, inputs []CreateSignatureInput) ([]Signature, error)
	// BindTokens stores the minted capability tokens on freshly created
	// signatures; tokens embed the signature id so minting happens after
	// creation.
	BindTokens(ctx context.Context, signatures []Signature) error
	Get(ctx context.Context, id string) (Signature, error)
	GetByToken(ctx context.Context, token string) (Signature, error)
	ListByDocument(ctx context.Context, documentID string) ([]Signature, error)
	// CompleteSubmission persists field values, marks the signature signed,
	// and promotes the document to signed when it was the last pending
	// signature, all in one transaction. Reports whether the document
	// completed on this submission.
	CompleteSubmission(ctx context.Context, in CompleteSubmissionInput) (SubmissionOutcome, error)
	Decline(ctx context.Context, signatureID string, reason string) (Signature, error)
	ExtendTokenExpiry(ctx context.Context, signatureID string, tokenExpiresAt time.Time) error
	// MarkViewed stamps viewed_at when it is still unset. Reports whether
	// this call was the first view.
	MarkViewed(ctx context.Context, signatureID string, at time.Time) (bool, error)
	MarkReminderSent(ctx context.Context, signatureID string, at time.Time) (bool, error)
	ListDueForReminder(ctx context.Context, window ReminderWindow, limit int) ([]Signature, error)
}

type CompleteSubmissionInput struct {
	SignatureID string
	Values      []FieldValue
	SignedAt    time.Time
	SignerIP    string
	SignerUA    string
}

type SubmissionOutcome struct {
	Signature         Signature
	Document          Document
	DocumentCompleted bool
}

// ReminderWindow bounds the pre-deadline period in which a single reminder
// may go out: documents pending with expires_at in (From, To].
type ReminderWindow struct {
	From time.Time
	To   time.Time
}

type FieldStore interface {
	CreateBatch(ctx context.Context, documentID string, fields []DocumentField) ([]DocumentField, error)
	ListByDocument(ctx context.Context, documentID string) ([]DocumentField, error)
	ListForSigner(ctx context.Context, documentID string, signerEmail string) ([]DocumentField, error)
	ListValues(ctx context.Context, signatureID string) ([]FieldValue, error)
}

type CreateWebhookInput struct {
	OwnerID string
	URL     string
	Secret  string
	Events  []string
}

type WebhookStore interface {
	Create(ctx context.Context, in CreateWebhookInput) (Webhook, error)
	Get(ctx context.Context, id string) (Webhook, error)
	ListActiveForEvent(ctx context.Context, ownerID string, eventType string) ([]Webhook, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type CreateDeliveryInput struct {
	WebhookID string
	EventType string
	Payload   []byte
}

type DeliveryAttemptResult struct {
	ResponseCode int
	ResponseBody string
	Err          string
	DeliveredAt  *time.Time
	NextRetryAt  *time.Time
}

type DeliveryStore interface {
	Create(ctx context.Context, in CreateDeliveryInput) (WebhookDelivery, error)
	Get(ctx context.Context, id string) (WebhookDelivery, error)
	ListByWebhook(ctx context.Context, webhookID string, limit int) ([]WebhookDelivery, error)
	// ClaimDue atomically selects and marks due retryable deliveries,
	// oldest next_retry_at first, so concurrent worker replicas never pick
	// up the same row.
	ClaimDue(ctx context.Context, asOf time.Time, maxAttempts int, limit int) ([]WebhookDelivery, error)
	RecordAttempt(ctx context.Context, deliveryID string, result DeliveryAttemptResult) (WebhookDelivery, error)
	// Park stops retrying without consuming an attempt (deactivated webhook).
	Park(ctx context.Context, deliveryID string, note string) error
}

type AuditStore interface {
	Record(ctx context.Context, entry AuditEntry) error
	ListByDocument(ctx context.Context, documentID string) ([]AuditEntry, error)
}

// Mailer is the outbound notification collaborator. All sends are
// fire-and-forget from the engine's point of view; failures are logged,
// never returned to the triggering operation.
type Mailer interface {
	SendSignatureRequestEmail(ctx context.Context, msg SignatureRequestEmail) error
	SendReminderEmail(ctx context.Context, msg ReminderEmail) error
	SendExpirationNoticeEmail(ctx context.Context, msg ExpirationNoticeEmail) error
	SendDocumentCompletedEmail(ctx context.Context, msg DocumentCompletedEmail) error
}

type SignatureRequestEmail struct {
	To            string
	RecipientName string
	DocumentTitle string
	SigningToken  string
	ExpiresAt     time.Time
}

type ReminderEmail struct {
	To            string
	RecipientName string
	DocumentTitle string
	SigningToken  string
	ExpiresAt     time.Time
}

type ExpirationNoticeEmail struct {
	To            string
	RecipientName string
	DocumentTitle string
}

type DocumentCompletedEmail struct {
	To            string
	RecipientName string
	DocumentTitle string
}

// BlobResolver resolves a document's stored bytes. Storage backend selection
// lives outside this module.
type BlobResolver interface {
	Resolve(ctx context.Context, fileHash string) ([]byte, error)
}

// EventDispatcher receives domain events after the emitting transaction has
// committed. Implementations must not block the caller on delivery outcome.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ownerID string, eventType string, documentID string, payload map[string]any)
}

type JobExecutionMessage struct {
	JobID          string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

type StoreProvider interface {
	DocumentStore() DocumentStore
	SignatureStore() SignatureStore
	FieldStore() FieldStore
	WebhookStore() WebhookStore
	DeliveryStore() DeliveryStore
	AuditStore() AuditStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}
