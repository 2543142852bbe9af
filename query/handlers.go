package query

import (
	"context"

	"github.com/trazahq/go-signing/core"
)

// DocumentReader resolves documents and their rendered files. *core.Service
// satisfies it.
type DocumentReader interface {
	GetDocument(ctx context.Context, documentID string) (core.DocumentDetail, error)
	DocumentFile(ctx context.Context, documentID string) ([]byte, error)
}

// SigningContextReader resolves token-scoped signing sessions.
type SigningContextReader interface {
	GetSigningContext(ctx context.Context, token string) (core.SigningContext, error)
}

// AuditTrailReader lists the append-only audit history of a document.
type AuditTrailReader interface {
	ListAuditTrail(ctx context.Context, documentID string) ([]core.AuditEntry, error)
}

// DeliveryReader lists delivery attempts for a webhook endpoint.
type DeliveryReader interface {
	ListWebhookDeliveries(ctx context.Context, webhookID string, limit int) ([]core.WebhookDelivery, error)
}

type GetDocumentQuery struct {
	reader DocumentReader
}

func NewGetDocumentQuery(reader DocumentReader) *GetDocumentQuery {
	return &GetDocumentQuery{reader: reader}
}

func (q *GetDocumentQuery) Query(ctx context.Context, msg GetDocumentMessage) (core.DocumentDetail, error) {
	if q == nil || q.reader == nil {
		return core.DocumentDetail{}, queryDependencyError("query: document reader is required")
	}
	return q.reader.GetDocument(ctx, msg.DocumentID)
}

type GetDocumentFileQuery struct {
	reader DocumentReader
}

func NewGetDocumentFileQuery(reader DocumentReader) *GetDocumentFileQuery {
	return &GetDocumentFileQuery{reader: reader}
}

func (q *GetDocumentFileQuery) Query(ctx context.Context, msg GetDocumentFileMessage) ([]byte, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: document reader is required")
	}
	return q.reader.DocumentFile(ctx, msg.DocumentID)
}

type GetSigningContextQuery struct {
	reader SigningContextReader
}

func NewGetSigningContextQuery(reader SigningContextReader) *GetSigningContextQuery {
	return &GetSigningContextQuery{reader: reader}
}

func (q *GetSigningContextQuery) Query(
	ctx context.Context,
	msg GetSigningContextMessage,
) (core.SigningContext, error) {
	if q == nil || q.reader == nil {
		return core.SigningContext{}, queryDependencyError("query: signing context reader is required")
	}
	return q.reader.GetSigningContext(ctx, msg.Token)
}

type ListAuditTrailQuery struct {
	reader AuditTrailReader
}

func NewListAuditTrailQuery(reader AuditTrailReader) *ListAuditTrailQuery {
	return &ListAuditTrailQuery{reader: reader}
}

func (q *ListAuditTrailQuery) Query(ctx context.Context, msg ListAuditTrailMessage) ([]core.AuditEntry, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: audit trail reader is required")
	}
	return q.reader.ListAuditTrail(ctx, msg.DocumentID)
}

type ListWebhookDeliveriesQuery struct {
	reader DeliveryReader
}

func NewListWebhookDeliveriesQuery(reader DeliveryReader) *ListWebhookDeliveriesQuery {
	return &ListWebhookDeliveriesQuery{reader: reader}
}

func (q *ListWebhookDeliveriesQuery) Query(
	ctx context.Context,
	msg ListWebhookDeliveriesMessage,
) ([]core.WebhookDelivery, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: delivery reader is required")
	}
	return q.reader.ListWebhookDeliveries(ctx, msg.WebhookID, msg.Limit)
}
