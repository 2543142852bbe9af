package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type SignerInput struct {
	Email string
	Name  string
	Order int
}

type SendForSigningRequest struct {
	DocumentID    string
	ActorID       string
	Signers       []SignerInput
	ExpiresInDays int
}

type SendForSigningResult struct {
	Document   Document
	Signatures []Signature
}

// CreateDocument registers a draft. Fields and signers come later; the
// document stays fully editable until it is sent.
func (s *Service) CreateDocument(ctx context.Context, in CreateDocumentInput) (Document, error) {
	if s == nil || s.documentStore == nil {
		return Document{}, s.mapError(fmt.Errorf("core: document store is required"))
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return Document{}, s.mapError(fmt.Errorf("core: document owner is required"))
	}
	if strings.TrimSpace(in.FileHash) == "" {
		return Document{}, s.mapError(fmt.Errorf("core: document file hash is required"))
	}
	document, err := s.documentStore.Create(ctx, in)
	if err != nil {
		return Document{}, s.mapError(err)
	}
	return document, nil
}

// AddFields places input requirements on a draft or pending document.
func (s *Service) AddFields(ctx context.Context, documentID string, fields []DocumentField) ([]DocumentField, error) {
	if s == nil || s.documentStore == nil || s.fieldStore == nil {
		return nil, s.mapError(fmt.Errorf("core: document and field stores are required"))
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, s.mapError(fmt.Errorf("core: document id is required"))
	}
	document, err := s.documentStore.Get(ctx, documentID)
	if err != nil {
		return nil, s.mapError(err)
	}
	if !document.FieldsEditable() {
		return nil, s.mapError(fmt.Errorf("%w: %s", ErrDocumentNotEditable, document.Status))
	}
	for _, field := range fields {
		if err := field.Validate(); err != nil {
			return nil, s.mapError(err)
		}
	}
	created, err := s.fieldStore.CreateBatch(ctx, documentID, fields)
	if err != nil {
		return nil, s.mapError(err)
	}
	return created, nil
}

// SendForSigning moves a draft to pending: creates one signature per signer,
// mints a capability token for each, stamps the document expiry, then emits
// document.sent and mails the signing links.
func (s *Service) SendForSigning(ctx context.Context, req SendForSigningRequest) (result SendForSigningResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"document_id": req.DocumentID,
		"signers":     len(req.Signers),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "send_for_signing", err, fields)
	}()

	if s == nil || s.documentStore == nil || s.signatureStore == nil || s.tokenService == nil {
		err = s.mapError(fmt.Errorf("core: document store, signature store and token service are required"))
		return SendForSigningResult{}, err
	}
	documentID := strings.TrimSpace(req.DocumentID)
	if documentID == "" {
		err = s.mapError(fmt.Errorf("core: document id is required"))
		return SendForSigningResult{}, err
	}
	if len(req.Signers) == 0 {
		err = s.mapError(fmt.Errorf("core: at least one signer is required"))
		return SendForSigningResult{}, err
	}
	expiresInDays := req.ExpiresInDays
	if expiresInDays == 0 {
		expiresInDays = s.config.Tokens.DefaultExpiryDays
	}
	if expiresInDays < MinTokenExpiryDays || expiresInDays > MaxTokenExpiryDays {
		err = s.mapError(fmt.Errorf(
			"core: expires_in_days must be between %d and %d",
			MinTokenExpiryDays,
			MaxTokenExpiryDays,
		))
		return SendForSigningResult{}, err
	}

	document, getErr := s.documentStore.Get(ctx, documentID)
	if getErr != nil {
		err = s.mapError(getErr)
		return SendForSigningResult{}, err
	}
	now := s.clock()
	if transitionErr := document.TransitionTo(DocumentStatusPending, now); transitionErr != nil {
		err = s.mapError(transitionErr)
		return SendForSigningResult{}, err
	}

	expiresAt := now.Add(time.Duration(expiresInDays) * 24 * time.Hour)
	inputs := make([]CreateSignatureInput, 0, len(req.Signers))
	for i, signer := range req.Signers {
		email := strings.TrimSpace(strings.ToLower(signer.Email))
		if email == "" {
			err = s.mapError(fmt.Errorf("core: signer email is required"))
			return SendForSigningResult{}, err
		}
		order := signer.Order
		if order == 0 {
			order = i + 1
		}
		input := CreateSignatureInput{
			DocumentID:     documentID,
			SignerEmail:    email,
			SignerName:     strings.TrimSpace(signer.Name),
			TokenExpiresAt: expiresAt,
			SignOrder:      order,
		}
		inputs = append(inputs, input)
	}

	signatures, createErr := s.signatureStore.CreateBatch(ctx, inputs)
	if createErr != nil {
		err = s.mapError(createErr)
		return SendForSigningResult{}, err
	}
	for i := range signatures {
		token, issueErr := s.tokenService.Issue(documentID, signatures[i].ID, signatures[i].SignerEmail, expiresInDays)
		if issueErr != nil {
			err = s.mapError(issueErr)
			return SendForSigningResult{}, err
		}
		signatures[i].Token = token
	}
	if bindErr := s.signatureStore.BindTokens(ctx, signatures); bindErr != nil {
		err = s.mapError(bindErr)
		return SendForSigningResult{}, err
	}

	if setErr := s.documentStore.SetExpiry(ctx, documentID, &expiresAt); setErr != nil {
		err = s.mapError(setErr)
		return SendForSigningResult{}, err
	}
	if statusErr := s.documentStore.UpdateStatus(ctx, documentID, DocumentStatusPending); statusErr != nil {
		err = s.mapError(statusErr)
		return SendForSigningResult{}, err
	}
	document.ExpiresAt = &expiresAt

	s.recordAudit(ctx, AuditEntry{
		ActorID:    strings.TrimSpace(req.ActorID),
		DocumentID: documentID,
		EventType:  EventDocumentSent,
		Metadata: map[string]any{
			"signers":         len(signatures),
			"expires_in_days": expiresInDays,
		},
	})
	s.emit(ctx, document.OwnerID, EventDocumentSent, documentID, map[string]any{
		"signers": len(signatures),
	})
	for _, signature := range signatures {
		s.mailSignatureRequest(ctx, document, signature)
	}

	return SendForSigningResult{Document: document, Signatures: signatures}, nil
}

// Void terminates a draft or pending document at the owner's request.
func (s *Service) Void(ctx context.Context, documentID string, actorID string) (Document, error) {
	if s == nil || s.documentStore == nil {
		return Document{}, s.mapError(fmt.Errorf("core: document store is required"))
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return Document{}, s.mapError(fmt.Errorf("core: document id is required"))
	}
	document, err := s.documentStore.Get(ctx, documentID)
	if err != nil {
		return Document{}, s.mapError(err)
	}
	if err := document.TransitionTo(DocumentStatusVoid, s.clock()); err != nil {
		return Document{}, s.mapError(err)
	}
	if err := s.documentStore.UpdateStatus(ctx, documentID, DocumentStatusVoid); err != nil {
		return Document{}, s.mapError(err)
	}
	s.recordAudit(ctx, AuditEntry{
		ActorID:    strings.TrimSpace(actorID),
		DocumentID: documentID,
		EventType:  "document.voided",
	})
	return document, nil
}

// Resend re-extends a pending signature's business expiry without minting a
// new credential; the existing signing link keeps working.
func (s *Service) Resend(ctx context.Context, signatureID string, expiresInDays int) (Signature, error) {
	if s == nil || s.signatureStore == nil {
		return Signature{}, s.mapError(fmt.Errorf("core: signature store is required"))
	}
	signatureID = strings.TrimSpace(signatureID)
	if signatureID == "" {
		return Signature{}, s.mapError(fmt.Errorf("core: signature id is required"))
	}
	if expiresInDays == 0 {
		expiresInDays = s.config.Tokens.DefaultExpiryDays
	}
	if expiresInDays < MinTokenExpiryDays || expiresInDays > MaxTokenExpiryDays {
		return Signature{}, s.mapError(fmt.Errorf(
			"core: expires_in_days must be between %d and %d",
			MinTokenExpiryDays,
			MaxTokenExpiryDays,
		))
	}
	signature, err := s.signatureStore.Get(ctx, signatureID)
	if err != nil {
		return Signature{}, s.mapError(err)
	}
	if signature.Terminal() {
		return Signature{}, s.mapError(fmt.Errorf(
			"%w: signature %s is %s",
			ErrInvalidSignatureStatusTransition,
			signatureID,
			signature.Status,
		))
	}
	document, err := s.documentStore.Get(ctx, signature.DocumentID)
	if err != nil {
		return Signature{}, s.mapError(err)
	}
	if document.Status != DocumentStatusPending {
		return Signature{}, s.mapError(fmt.Errorf("%w: %s", ErrDocumentNotEditable, document.Status))
	}

	newExpiry := s.clock().Add(time.Duration(expiresInDays) * 24 * time.Hour)
	if err := s.signatureStore.ExtendTokenExpiry(ctx, signatureID, newExpiry); err != nil {
		return Signature{}, s.mapError(err)
	}
	signature.TokenExpiresAt = newExpiry
	s.mailSignatureRequest(ctx, document, signature)
	return signature, nil
}

// MarkViewed records the first open of a signing link and emits
// document.viewed. Repeat views are not re-emitted.
func (s *Service) MarkViewed(ctx context.Context, token string) error {
	if s == nil || s.signatureStore == nil || s.documentStore == nil {
		return s.mapError(fmt.Errorf("core: signature and document stores are required"))
	}
	signature, _, err := s.resolveSigningToken(ctx, token)
	if err != nil {
		return err
	}
	firstView, err := s.signatureStore.MarkViewed(ctx, signature.ID, s.clock())
	if err != nil {
		return s.mapError(err)
	}
	if !firstView {
		return nil
	}
	document, err := s.documentStore.Get(ctx, signature.DocumentID)
	if err != nil {
		return s.mapError(err)
	}
	s.emit(ctx, document.OwnerID, EventDocumentViewed, document.ID, map[string]any{
		"signature_id": signature.ID,
		"signer_email": signature.SignerEmail,
	})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, entry AuditEntry) {
	if s == nil || s.auditStore == nil {
		return
	}
	entry.CreatedAt = s.clock()
	if err := s.auditStore.Record(ctx, entry); err != nil {
		s.logError(ctx, "audit record failed", map[string]any{
			"document_id": entry.DocumentID,
			"event":       entry.EventType,
			"error":       err.Error(),
		})
	}
}

// emit hands a domain event to the dispatcher. Delivery outcome never
// reaches the operation that emitted the event.
func (s *Service) emit(ctx context.Context, ownerID string, eventType string, documentID string, payload map[string]any) {
	if s == nil || s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(ctx, ownerID, eventType, documentID, copyAnyMap(payload))
}

func (s *Service) mailSignatureRequest(ctx context.Context, document Document, signature Signature) {
	if s == nil || s.mailer == nil {
		return
	}
	if err := s.mailer.SendSignatureRequestEmail(ctx, SignatureRequestEmail{
		To:            signature.SignerEmail,
		RecipientName: signature.SignerName,
		DocumentTitle: document.Title,
		SigningToken:  signature.Token,
		ExpiresAt:     signature.TokenExpiresAt,
	}); err != nil {
		s.logError(ctx, "signature request email failed", map[string]any{
			"document_id":  document.ID,
			"signature_id": signature.ID,
			"error":        err.Error(),
		})
	}
}
