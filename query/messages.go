package query

import (
	"fmt"
	"strings"
)

const (
	TypeGetDocument           = "signing.query.document.get"
	TypeGetDocumentFile       = "signing.query.document.file"
	TypeGetSigningContext     = "signing.query.signing_context.get"
	TypeListAuditTrail        = "signing.query.audit_trail.list"
	TypeListWebhookDeliveries = "signing.query.webhook_deliveries.list"
)

type GetDocumentMessage struct {
	DocumentID string
}

func (GetDocumentMessage) Type() string { return TypeGetDocument }

func (m GetDocumentMessage) Validate() error {
	if strings.TrimSpace(m.DocumentID) == "" {
		return fmt.Errorf("query: document id is required")
	}
	return nil
}

type GetDocumentFileMessage struct {
	DocumentID string
}

func (GetDocumentFileMessage) Type() string { return TypeGetDocumentFile }

func (m GetDocumentFileMessage) Validate() error {
	if strings.TrimSpace(m.DocumentID) == "" {
		return fmt.Errorf("query: document id is required")
	}
	return nil
}

type GetSigningContextMessage struct {
	Token string
}

func (GetSigningContextMessage) Type() string { return TypeGetSigningContext }

func (m GetSigningContextMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return fmt.Errorf("query: signing token is required")
	}
	return nil
}

type ListAuditTrailMessage struct {
	DocumentID string
}

func (ListAuditTrailMessage) Type() string { return TypeListAuditTrail }

func (m ListAuditTrailMessage) Validate() error {
	if strings.TrimSpace(m.DocumentID) == "" {
		return fmt.Errorf("query: document id is required")
	}
	return nil
}

type ListWebhookDeliveriesMessage struct {
	WebhookID string
	Limit     int
}

func (ListWebhookDeliveriesMessage) Type() string { return TypeListWebhookDeliveries }

func (m ListWebhookDeliveriesMessage) Validate() error {
	if strings.TrimSpace(m.WebhookID) == "" {
		return fmt.Errorf("query: webhook id is required")
	}
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}
