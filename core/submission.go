package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type SubmitSignatureRequest struct {
	Token         string
	SignatureData string
	FieldValues   map[string]string
	SignerIP      string
	SignerUA      string
}

type SubmitSignatureResult struct {
	Signature         Signature
	Document          Document
	DocumentCompleted bool
}

type DeclineSignatureRequest struct {
	Token  string
	Reason string
}

// SigningContext is what a signer sees when opening a link: the document,
// their signature row, and the fields assigned to them.
type SigningContext struct {
	Document  Document
	Signature Signature
	Fields    []DocumentField
}

// resolveSigningToken verifies the cryptographic envelope, loads the
// signature, and enforces the stored business expiry. Envelope validity and
// tokenExpiresAt are independent checks; either one failing is final.
func (s *Service) resolveSigningToken(ctx context.Context, token string) (Signature, TokenClaims, error) {
	if s == nil || s.tokenService == nil || s.signatureStore == nil {
		return Signature{}, TokenClaims{}, s.mapError(fmt.Errorf("core: token service and signature store are required"))
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Signature{}, TokenClaims{}, s.mapError(fmt.Errorf("core: malformed token: empty"))
	}
	claims, err := s.tokenService.Verify(token)
	if err != nil {
		return Signature{}, TokenClaims{}, s.mapError(err)
	}
	signature, err := s.signatureStore.Get(ctx, claims.SignatureID)
	if err != nil {
		return Signature{}, TokenClaims{}, s.mapError(err)
	}
	if signature.DocumentID != claims.DocumentID ||
		!strings.EqualFold(strings.TrimSpace(signature.SignerEmail), strings.TrimSpace(claims.SignerEmail)) {
		return Signature{}, TokenClaims{}, s.mapError(fmt.Errorf("core: token signature binding mismatch"))
	}
	if signature.TokenExpiredBy(s.clock()) {
		return Signature{}, TokenClaims{}, s.mapError(newExpiredError("core: signing link has expired"))
	}
	return signature, claims, nil
}

// GetSigningContext resolves a signing token into the signer's view.
func (s *Service) GetSigningContext(ctx context.Context, token string) (SigningContext, error) {
	signature, _, err := s.resolveSigningToken(ctx, token)
	if err != nil {
		return SigningContext{}, err
	}
	document, err := s.documentStore.Get(ctx, signature.DocumentID)
	if err != nil {
		return SigningContext{}, s.mapError(err)
	}
	var fields []DocumentField
	if s.fieldStore != nil {
		fields, err = s.fieldStore.ListForSigner(ctx, document.ID, signature.SignerEmail)
		if err != nil {
			return SigningContext{}, s.mapError(err)
		}
	}
	return SigningContext{Document: document, Signature: signature, Fields: fields}, nil
}

// SubmitSignature validates and persists a signer's submission. Field
// values, the signature transition, and (when this was the last pending
// signer) the document transition commit in one transaction; events and the
// owner notification go out only after that commit.
func (s *Service) SubmitSignature(ctx context.Context, req SubmitSignatureRequest) (result SubmitSignatureResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "submit_signature", err, fields)
	}()

	signature, _, resolveErr := s.resolveSigningToken(ctx, req.Token)
	if resolveErr != nil {
		err = resolveErr
		return SubmitSignatureResult{}, err
	}
	fields["document_id"] = signature.DocumentID
	fields["signature_id"] = signature.ID

	if signature.Terminal() {
		err = s.mapError(fmt.Errorf(
			"%w: signature %s is %s",
			ErrInvalidSignatureStatusTransition,
			signature.ID,
			signature.Status,
		))
		return SubmitSignatureResult{}, err
	}

	if strings.TrimSpace(req.SignatureData) == "" && len(req.FieldValues) == 0 {
		err = s.mapError(fmt.Errorf("core: submission requires signature data or field values"))
		return SubmitSignatureResult{}, err
	}

	values, validateErr := s.validateSubmission(ctx, signature, req)
	if validateErr != nil {
		err = validateErr
		return SubmitSignatureResult{}, err
	}

	outcome, completeErr := s.signatureStore.CompleteSubmission(ctx, CompleteSubmissionInput{
		SignatureID: signature.ID,
		Values:      values,
		SignedAt:    s.clock(),
		SignerIP:    strings.TrimSpace(req.SignerIP),
		SignerUA:    strings.TrimSpace(req.SignerUA),
	})
	if completeErr != nil {
		err = s.mapError(completeErr)
		return SubmitSignatureResult{}, err
	}

	s.recordAudit(ctx, AuditEntry{
		DocumentID: outcome.Document.ID,
		EventType:  EventDocumentSigned,
		Metadata: map[string]any{
			"signature_id": outcome.Signature.ID,
			"signer_email": outcome.Signature.SignerEmail,
			"signer_ip":    strings.TrimSpace(req.SignerIP),
		},
	})

	s.emit(ctx, outcome.Document.OwnerID, EventDocumentSigned, outcome.Document.ID, map[string]any{
		"signature_id": outcome.Signature.ID,
		"signer_email": outcome.Signature.SignerEmail,
	})
	if outcome.DocumentCompleted {
		s.emit(ctx, outcome.Document.OwnerID, EventDocumentCompleted, outcome.Document.ID, map[string]any{
			"completed_at": outcome.Document.UpdatedAt.Format(time.RFC3339),
		})
		s.mailDocumentCompleted(ctx, outcome.Document)
	}

	return SubmitSignatureResult{
		Signature:         outcome.Signature,
		Document:          outcome.Document,
		DocumentCompleted: outcome.DocumentCompleted,
	}, nil
}

// DeclineSignature records a signer's explicit decline. The document stays
// pending; other signers are unaffected.
func (s *Service) DeclineSignature(ctx context.Context, req DeclineSignatureRequest) (Signature, error) {
	signature, _, err := s.resolveSigningToken(ctx, req.Token)
	if err != nil {
		return Signature{}, err
	}
	if signature.Terminal() {
		return Signature{}, s.mapError(fmt.Errorf(
			"%w: signature %s is %s",
			ErrInvalidSignatureStatusTransition,
			signature.ID,
			signature.Status,
		))
	}
	declined, err := s.signatureStore.Decline(ctx, signature.ID, strings.TrimSpace(req.Reason))
	if err != nil {
		return Signature{}, s.mapError(err)
	}
	document, err := s.documentStore.Get(ctx, signature.DocumentID)
	if err != nil {
		return Signature{}, s.mapError(err)
	}
	s.recordAudit(ctx, AuditEntry{
		DocumentID: document.ID,
		EventType:  EventDocumentDeclined,
		Metadata: map[string]any{
			"signature_id": declined.ID,
			"signer_email": declined.SignerEmail,
			"reason":       declined.DeclineReason,
		},
	})
	s.emit(ctx, document.OwnerID, EventDocumentDeclined, document.ID, map[string]any{
		"signature_id": declined.ID,
		"signer_email": declined.SignerEmail,
		"reason":       declined.DeclineReason,
	})
	return declined, nil
}

// validateSubmission checks that every required field assigned to this
// signer has a submitted value, and maps the raw submission into rows.
func (s *Service) validateSubmission(
	ctx context.Context,
	signature Signature,
	req SubmitSignatureRequest,
) ([]FieldValue, error) {
	var assigned []DocumentField
	if s.fieldStore != nil {
		listed, err := s.fieldStore.ListForSigner(ctx, signature.DocumentID, signature.SignerEmail)
		if err != nil {
			return nil, s.mapError(err)
		}
		assigned = listed
	}

	values := make([]FieldValue, 0, len(req.FieldValues))
	for _, field := range assigned {
		submitted, ok := req.FieldValues[field.ID]
		if !ok || strings.TrimSpace(submitted) == "" {
			if field.FieldType == FieldTypeSignature && strings.TrimSpace(req.SignatureData) != "" {
				submitted = req.SignatureData
				ok = true
			}
		}
		if field.Required && (!ok || strings.TrimSpace(submitted) == "") {
			return nil, s.mapError(fmt.Errorf(
				"core: required field %s (%s) is missing a value",
				field.ID,
				field.FieldType,
			))
		}
		if !ok || strings.TrimSpace(submitted) == "" {
			continue
		}
		values = append(values, FieldValue{
			FieldID:     field.ID,
			SignatureID: signature.ID,
			Value:       submitted,
		})
	}
	return values, nil
}

func (s *Service) mailDocumentCompleted(ctx context.Context, document Document) {
	if s == nil || s.mailer == nil {
		return
	}
	if err := s.mailer.SendDocumentCompletedEmail(ctx, DocumentCompletedEmail{
		To:            document.OwnerID,
		DocumentTitle: document.Title,
	}); err != nil {
		s.logError(ctx, "document completed email failed", map[string]any{
			"document_id": document.ID,
			"error":       err.Error(),
		})
	}
}
