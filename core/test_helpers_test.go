package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

// memoryStores is a linked in-memory store bundle. CompleteSubmission and
// ExpireWithCascade span aggregates, so the stores hold references to each
// other the way the SQL implementations share one transaction.
type memoryStores struct {
	documents  *memoryDocumentStore
	signatures *memorySignatureStore
	fields     *memoryFieldStore
	webhooks   *memoryWebhookStore
	deliveries *memoryDeliveryStore
	audit      *memoryAuditStore
}

func newMemoryStores() *memoryStores {
	stores := &memoryStores{
		documents:  &memoryDocumentStore{byID: map[string]Document{}},
		signatures: &memorySignatureStore{byID: map[string]Signature{}},
		fields:     &memoryFieldStore{},
		webhooks:   &memoryWebhookStore{byID: map[string]Webhook{}},
		deliveries: &memoryDeliveryStore{byID: map[string]WebhookDelivery{}},
		audit:      &memoryAuditStore{},
	}
	stores.documents.stores = stores
	stores.signatures.stores = stores
	return stores
}

func newTestService(t *testing.T, stores *memoryStores, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithDocumentStore(stores.documents),
		WithSignatureStore(stores.signatures),
		WithFieldStore(stores.fields),
		WithWebhookStore(stores.webhooks),
		WithDeliveryStore(stores.deliveries),
		WithAuditStore(stores.audit),
		WithTokenService(stubTokenService{}),
	}
	svc, err := NewService(DefaultConfig(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("new test service: %v", err)
	}
	return svc
}

type memoryDocumentStore struct {
	mu     sync.Mutex
	next   int
	byID   map[string]Document
	stores *memoryStores
}

func (s *memoryDocumentStore) Create(_ context.Context, in CreateDocumentInput) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	now := time.Now().UTC()
	document := Document{
		ID:        fmt.Sprintf("doc_%d", s.next),
		OwnerID:   in.OwnerID,
		Title:     in.Title,
		Status:    DocumentStatusDraft,
		FileHash:  in.FileHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byID[document.ID] = document
	return document, nil
}

func (s *memoryDocumentStore) Get(_ context.Context, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	document, ok := s.byID[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return document, nil
}

func (s *memoryDocumentStore) UpdateStatus(_ context.Context, id string, status DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	document, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	document.Status = status
	document.UpdatedAt = time.Now().UTC()
	s.byID[id] = document
	return nil
}

func (s *memoryDocumentStore) SetExpiry(_ context.Context, id string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	document, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	document.ExpiresAt = expiresAt
	s.byID[id] = document
	return nil
}

func (s *memoryDocumentStore) ListExpired(_ context.Context, asOf time.Time, limit int) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Document{}
	for _, document := range s.byID {
		if document.ExpiredBy(asOf) {
			out = append(out, document)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(*out[j].ExpiresAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryDocumentStore) ExpireWithCascade(ctx context.Context, documentID string, asOf time.Time) ([]Signature, error) {
	s.mu.Lock()
	document, ok := s.byID[documentID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}
	if !document.ExpiredBy(asOf) {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: document %s is not expirable", ErrInvalidDocumentStatusTransition, documentID)
	}
	document.Status = DocumentStatusExpired
	document.UpdatedAt = asOf
	s.byID[documentID] = document
	s.mu.Unlock()

	cascaded := s.stores.signatures.declinePendingForDocument(documentID, asOf)
	_ = s.stores.audit.Record(ctx, AuditEntry{
		DocumentID: documentID,
		EventType:  EventDocumentExpired,
		Metadata:   map[string]any{"cascaded_signatures": len(cascaded)},
		CreatedAt:  asOf,
	})
	return cascaded, nil
}

type memorySignatureStore struct {
	mu     sync.Mutex
	next   int
	byID   map[string]Signature
	stores *memoryStores
}

func (s *memorySignatureStore) CreateBatch(_ context.Context, inputs []CreateSignatureInput) ([]Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	out := make([]Signature, 0, len(inputs))
	for _, in := range inputs {
		s.next++
		signature := Signature{
			ID:             fmt.Sprintf("sig_%d", s.next),
			DocumentID:     in.DocumentID,
			SignerEmail:    in.SignerEmail,
			SignerName:     in.SignerName,
			Status:         SignatureStatusPending,
			Token:          in.Token,
			TokenExpiresAt: in.TokenExpiresAt,
			SignOrder:      in.SignOrder,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		s.byID[signature.ID] = signature
		out = append(out, signature)
	}
	return out, nil
}

func (s *memorySignatureStore) BindTokens(_ context.Context, signatures []Signature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, signature := range signatures {
		stored, ok := s.byID[signature.ID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrSignatureNotFound, signature.ID)
		}
		stored.Token = signature.Token
		stored.TokenExpiresAt = signature.TokenExpiresAt
		s.byID[signature.ID] = stored
	}
	return nil
}

func (s *memorySignatureStore) Get(_ context.Context, id string) (Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	signature, ok := s.byID[id]
	if !ok {
		return Signature{}, fmt.Errorf("%w: %s", ErrSignatureNotFound, id)
	}
	return signature, nil
}

func (s *memorySignatureStore) GetByToken(_ context.Context, token string) (Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, signature := range s.byID {
		if signature.Token == token {
			return signature, nil
		}
	}
	return Signature{}, fmt.Errorf("%w: token", ErrSignatureNotFound)
}

func (s *memorySignatureStore) ListByDocument(_ context.Context, documentID string) ([]Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Signature{}
	for _, signature := range s.byID {
		if signature.DocumentID == documentID {
			out = append(out, signature)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignOrder < out[j].SignOrder })
	return out, nil
}

func (s *memorySignatureStore) CompleteSubmission(ctx context.Context, in CompleteSubmissionInput) (SubmissionOutcome, error) {
	s.mu.Lock()
	signature, ok := s.byID[in.SignatureID]
	if !ok {
		s.mu.Unlock()
		return SubmissionOutcome{}, fmt.Errorf("%w: %s", ErrSignatureNotFound, in.SignatureID)
	}
	if signature.Status != SignatureStatusPending {
		s.mu.Unlock()
		return SubmissionOutcome{}, fmt.Errorf(
			"%w: signature %s is not pending",
			ErrInvalidSignatureStatusTransition,
			in.SignatureID,
		)
	}
	signedAt := in.SignedAt
	signature.Status = SignatureStatusSigned
	signature.SignedAt = &signedAt
	signature.UpdatedAt = signedAt
	s.byID[signature.ID] = signature

	remaining := 0
	for _, other := range s.byID {
		if other.DocumentID == signature.DocumentID && other.Status == SignatureStatusPending {
			remaining++
		}
	}
	s.mu.Unlock()

	s.stores.fields.storeValues(in.Values, signature.ID)

	outcome := SubmissionOutcome{Signature: signature}
	document, err := s.stores.documents.Get(ctx, signature.DocumentID)
	if err != nil {
		return SubmissionOutcome{}, err
	}
	if remaining == 0 && document.Status == DocumentStatusPending {
		if err := s.stores.documents.UpdateStatus(ctx, document.ID, DocumentStatusSigned); err != nil {
			return SubmissionOutcome{}, err
		}
		document, err = s.stores.documents.Get(ctx, document.ID)
		if err != nil {
			return SubmissionOutcome{}, err
		}
		outcome.DocumentCompleted = true
	}
	outcome.Document = document
	return outcome, nil
}

func (s *memorySignatureStore) Decline(_ context.Context, signatureID string, reason string) (Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	signature, ok := s.byID[signatureID]
	if !ok {
		return Signature{}, fmt.Errorf("%w: %s", ErrSignatureNotFound, signatureID)
	}
	if signature.Status != SignatureStatusPending {
		return Signature{}, fmt.Errorf(
			"%w: signature %s is not pending",
			ErrInvalidSignatureStatusTransition,
			signatureID,
		)
	}
	signature.Status = SignatureStatusDeclined
	signature.DeclineReason = reason
	signature.UpdatedAt = time.Now().UTC()
	s.byID[signatureID] = signature
	return signature, nil
}

func (s *memorySignatureStore) ExtendTokenExpiry(_ context.Context, signatureID string, tokenExpiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	signature, ok := s.byID[signatureID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSignatureNotFound, signatureID)
	}
	signature.TokenExpiresAt = tokenExpiresAt
	s.byID[signatureID] = signature
	return nil
}

func (s *memorySignatureStore) MarkViewed(_ context.Context, signatureID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	signature, ok := s.byID[signatureID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrSignatureNotFound, signatureID)
	}
	if signature.ViewedAt != nil {
		return false, nil
	}
	signature.ViewedAt = &at
	s.byID[signatureID] = signature
	return true, nil
}

func (s *memorySignatureStore) MarkReminderSent(_ context.Context, signatureID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	signature, ok := s.byID[signatureID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrSignatureNotFound, signatureID)
	}
	if signature.ReminderSentAt != nil {
		return false, nil
	}
	signature.ReminderSentAt = &at
	s.byID[signatureID] = signature
	return true, nil
}

func (s *memorySignatureStore) ListDueForReminder(ctx context.Context, window ReminderWindow, limit int) ([]Signature, error) {
	s.mu.Lock()
	candidates := []Signature{}
	for _, signature := range s.byID {
		if signature.Status == SignatureStatusPending && signature.ReminderSentAt == nil {
			candidates = append(candidates, signature)
		}
	}
	s.mu.Unlock()

	out := []Signature{}
	for _, signature := range candidates {
		document, err := s.stores.documents.Get(ctx, signature.DocumentID)
		if err != nil {
			continue
		}
		if document.Status != DocumentStatusPending || document.ExpiresAt == nil {
			continue
		}
		if document.ExpiresAt.After(window.From) && !document.ExpiresAt.After(window.To) {
			out = append(out, signature)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memorySignatureStore) declinePendingForDocument(documentID string, at time.Time) []Signature {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Signature{}
	for id, signature := range s.byID {
		if signature.DocumentID != documentID || signature.Status != SignatureStatusPending {
			continue
		}
		signature.Status = SignatureStatusDeclined
		signature.UpdatedAt = at
		s.byID[id] = signature
		out = append(out, signature)
	}
	return out
}

type memoryFieldStore struct {
	mu     sync.Mutex
	next   int
	fields []DocumentField
	values []FieldValue
}

func (s *memoryFieldStore) CreateBatch(_ context.Context, documentID string, fields []DocumentField) ([]DocumentField, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	out := make([]DocumentField, 0, len(fields))
	for _, field := range fields {
		s.next++
		field.ID = fmt.Sprintf("fld_%d", s.next)
		field.DocumentID = documentID
		field.SignerEmail = strings.ToLower(strings.TrimSpace(field.SignerEmail))
		field.CreatedAt = now
		s.fields = append(s.fields, field)
		out = append(out, field)
	}
	return out, nil
}

func (s *memoryFieldStore) ListByDocument(_ context.Context, documentID string) ([]DocumentField, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []DocumentField{}
	for _, field := range s.fields {
		if field.DocumentID == documentID {
			out = append(out, field)
		}
	}
	return out, nil
}

func (s *memoryFieldStore) ListForSigner(_ context.Context, documentID string, signerEmail string) ([]DocumentField, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	signerEmail = strings.ToLower(strings.TrimSpace(signerEmail))
	out := []DocumentField{}
	for _, field := range s.fields {
		if field.DocumentID == documentID && field.SignerEmail == signerEmail {
			out = append(out, field)
		}
	}
	return out, nil
}

func (s *memoryFieldStore) ListValues(_ context.Context, signatureID string) ([]FieldValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []FieldValue{}
	for _, value := range s.values {
		if value.SignatureID == signatureID {
			out = append(out, value)
		}
	}
	return out, nil
}

func (s *memoryFieldStore) storeValues(values []FieldValue, signatureID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, value := range values {
		s.next++
		value.ID = fmt.Sprintf("fv_%d", s.next)
		value.SignatureID = signatureID
		value.CreatedAt = now
		s.values = append(s.values, value)
	}
}

type memoryWebhookStore struct {
	mu   sync.Mutex
	next int
	byID map[string]Webhook
}

func (s *memoryWebhookStore) Create(_ context.Context, in CreateWebhookInput) (Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	now := time.Now().UTC()
	webhook := Webhook{
		ID:        fmt.Sprintf("wh_%d", s.next),
		OwnerID:   in.OwnerID,
		URL:       in.URL,
		Secret:    in.Secret,
		Events:    append([]string(nil), in.Events...),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byID[webhook.ID] = webhook
	return webhook, nil
}

func (s *memoryWebhookStore) Get(_ context.Context, id string) (Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	webhook, ok := s.byID[id]
	if !ok {
		return Webhook{}, fmt.Errorf("%w: %s", ErrWebhookNotFound, id)
	}
	return webhook, nil
}

func (s *memoryWebhookStore) ListActiveForEvent(_ context.Context, ownerID string, eventType string) ([]Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Webhook{}
	for _, webhook := range s.byID {
		if webhook.OwnerID == ownerID && webhook.IsActive && webhook.SubscribedTo(eventType) {
			out = append(out, webhook)
		}
	}
	return out, nil
}

func (s *memoryWebhookStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	webhook, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWebhookNotFound, id)
	}
	webhook.IsActive = active
	webhook.UpdatedAt = time.Now().UTC()
	s.byID[id] = webhook
	return nil
}

type memoryDeliveryStore struct {
	mu     sync.Mutex
	next   int
	byID   map[string]WebhookDelivery
	parked map[string]bool
}

func (s *memoryDeliveryStore) Create(_ context.Context, in CreateDeliveryInput) (WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	now := time.Now().UTC()
	delivery := WebhookDelivery{
		ID:        fmt.Sprintf("del_%d", s.next),
		WebhookID: in.WebhookID,
		EventType: in.EventType,
		Payload:   append([]byte(nil), in.Payload...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byID[delivery.ID] = delivery
	return delivery, nil
}

func (s *memoryDeliveryStore) Get(_ context.Context, id string) (WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivery, ok := s.byID[id]
	if !ok {
		return WebhookDelivery{}, fmt.Errorf("%w: %s", ErrDeliveryNotFound, id)
	}
	return delivery, nil
}

func (s *memoryDeliveryStore) ListByWebhook(_ context.Context, webhookID string, limit int) ([]WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []WebhookDelivery{}
	for _, delivery := range s.byID {
		if delivery.WebhookID == webhookID {
			out = append(out, delivery)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryDeliveryStore) ClaimDue(_ context.Context, asOf time.Time, maxAttempts int, limit int) ([]WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []WebhookDelivery{}
	for id, delivery := range s.byID {
		if delivery.DeliveredAt != nil || s.parked[id] || delivery.NextRetryAt == nil {
			continue
		}
		if delivery.NextRetryAt.After(asOf) || delivery.Attempts >= maxAttempts {
			continue
		}
		delivery.NextRetryAt = nil
		delivery.UpdatedAt = asOf
		s.byID[id] = delivery
		out = append(out, delivery)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memoryDeliveryStore) RecordAttempt(_ context.Context, deliveryID string, result DeliveryAttemptResult) (WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivery, ok := s.byID[deliveryID]
	if !ok {
		return WebhookDelivery{}, fmt.Errorf("%w: %s", ErrDeliveryNotFound, deliveryID)
	}
	delivery.Attempts++
	delivery.ResponseCode = result.ResponseCode
	delivery.ResponseBody = result.ResponseBody
	delivery.LastError = result.Err
	delivery.DeliveredAt = result.DeliveredAt
	delivery.NextRetryAt = result.NextRetryAt
	delivery.UpdatedAt = time.Now().UTC()
	s.byID[deliveryID] = delivery
	return delivery, nil
}

func (s *memoryDeliveryStore) Park(_ context.Context, deliveryID string, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivery, ok := s.byID[deliveryID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeliveryNotFound, deliveryID)
	}
	if s.parked == nil {
		s.parked = map[string]bool{}
	}
	s.parked[deliveryID] = true
	delivery.NextRetryAt = nil
	delivery.LastError = note
	s.byID[deliveryID] = delivery
	return nil
}

type memoryAuditStore struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (s *memoryAuditStore) Record(_ context.Context, entry AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = fmt.Sprintf("aud_%d", len(s.entries)+1)
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memoryAuditStore) ListByDocument(_ context.Context, documentID string) ([]AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []AuditEntry{}
	for _, entry := range s.entries {
		if entry.DocumentID == documentID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// stubTokenService packs the claims into the token string so tests can
// verify binding checks without real HS256 signing.
type stubTokenService struct{}

func (stubTokenService) Issue(documentID, signatureID, signerEmail string, expiresInDays int) (string, error) {
	if expiresInDays < MinTokenExpiryDays || expiresInDays > MaxTokenExpiryDays {
		return "", fmt.Errorf("stub token service: invalid expiry %d", expiresInDays)
	}
	return strings.Join([]string{"tok", documentID, signatureID, signerEmail}, "|"), nil
}

func (stubTokenService) Verify(token string) (TokenClaims, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 4 || parts[0] != "tok" {
		return TokenClaims{}, fmt.Errorf("core: malformed token")
	}
	return TokenClaims{
		DocumentID:  parts[1],
		SignatureID: parts[2],
		SignerEmail: parts[3],
	}, nil
}

type capturedEvent struct {
	OwnerID    string
	EventType  string
	DocumentID string
	Payload    map[string]any
}

type captureDispatcher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (d *captureDispatcher) Dispatch(_ context.Context, ownerID string, eventType string, documentID string, payload map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, capturedEvent{
		OwnerID:    ownerID,
		EventType:  eventType,
		DocumentID: documentID,
		Payload:    payload,
	})
}

func (d *captureDispatcher) byType(eventType string) []capturedEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []capturedEvent{}
	for _, event := range d.events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

type captureMailer struct {
	mu        sync.Mutex
	requests  []SignatureRequestEmail
	reminders []ReminderEmail
	notices   []ExpirationNoticeEmail
	completed []DocumentCompletedEmail
	fail      bool
}

func (m *captureMailer) SendSignatureRequestEmail(_ context.Context, msg SignatureRequestEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("capture mailer: send failed")
	}
	m.requests = append(m.requests, msg)
	return nil
}

func (m *captureMailer) SendReminderEmail(_ context.Context, msg ReminderEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("capture mailer: send failed")
	}
	m.reminders = append(m.reminders, msg)
	return nil
}

func (m *captureMailer) SendExpirationNoticeEmail(_ context.Context, msg ExpirationNoticeEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("capture mailer: send failed")
	}
	m.notices = append(m.notices, msg)
	return nil
}

func (m *captureMailer) SendDocumentCompletedEmail(_ context.Context, msg DocumentCompletedEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("capture mailer: send failed")
	}
	m.completed = append(m.completed, msg)
	return nil
}

type stubBlobResolver struct {
	blobs map[string][]byte
}

func (r stubBlobResolver) Resolve(_ context.Context, fileHash string) ([]byte, error) {
	data, ok := r.blobs[fileHash]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", fileHash)
	}
	return data, nil
}

var (
	_ DocumentStore   = (*memoryDocumentStore)(nil)
	_ SignatureStore  = (*memorySignatureStore)(nil)
	_ FieldStore      = (*memoryFieldStore)(nil)
	_ WebhookStore    = (*memoryWebhookStore)(nil)
	_ DeliveryStore   = (*memoryDeliveryStore)(nil)
	_ AuditStore      = (*memoryAuditStore)(nil)
	_ TokenService    = stubTokenService{}
	_ EventDispatcher = (*captureDispatcher)(nil)
	_ Mailer          = (*captureMailer)(nil)
	_ BlobResolver    = stubBlobResolver{}
)
