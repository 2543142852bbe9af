package core

import (
	"context"
	"fmt"
)

// DocumentDetail aggregates a document with its signatures and fields for
// owner-facing reads.
type DocumentDetail struct {
	Document   Document
	Signatures []Signature
	Fields     []DocumentField
}

func (s *Service) GetDocument(ctx context.Context, documentID string) (DocumentDetail, error) {
	if s == nil || s.documentStore == nil {
		return DocumentDetail{}, s.mapError(fmt.Errorf("core: document store is required"))
	}
	document, err := s.documentStore.Get(ctx, documentID)
	if err != nil {
		return DocumentDetail{}, s.mapError(err)
	}
	detail := DocumentDetail{Document: document}
	if s.signatureStore != nil {
		detail.Signatures, err = s.signatureStore.ListByDocument(ctx, document.ID)
		if err != nil {
			return DocumentDetail{}, s.mapError(err)
		}
	}
	if s.fieldStore != nil {
		detail.Fields, err = s.fieldStore.ListByDocument(ctx, document.ID)
		if err != nil {
			return DocumentDetail{}, s.mapError(err)
		}
	}
	return detail, nil
}

// DocumentFile resolves the stored bytes for a document.
func (s *Service) DocumentFile(ctx context.Context, documentID string) ([]byte, error) {
	if s == nil || s.blobResolver == nil {
		return nil, s.mapError(fmt.Errorf("core: blob resolver is required"))
	}
	document, err := s.documentStore.Get(ctx, documentID)
	if err != nil {
		return nil, s.mapError(err)
	}
	data, err := s.blobResolver.Resolve(ctx, document.FileHash)
	if err != nil {
		return nil, s.mapError(err)
	}
	return data, nil
}

// ListAuditTrail returns the recorded lifecycle entries for a document,
// oldest first.
func (s *Service) ListAuditTrail(ctx context.Context, documentID string) ([]AuditEntry, error) {
	if s == nil || s.auditStore == nil {
		return nil, s.mapError(fmt.Errorf("core: audit store is required"))
	}
	if _, err := s.documentStore.Get(ctx, documentID); err != nil {
		return nil, s.mapError(err)
	}
	entries, err := s.auditStore.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, s.mapError(err)
	}
	return entries, nil
}
