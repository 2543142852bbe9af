package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/trazahq/go-signing/core"
)

var (
	_ gocmd.Querier[GetDocumentMessage, core.DocumentDetail]               = (*GetDocumentQuery)(nil)
	_ gocmd.Querier[GetDocumentFileMessage, []byte]                       = (*GetDocumentFileQuery)(nil)
	_ gocmd.Querier[GetSigningContextMessage, core.SigningContext]        = (*GetSigningContextQuery)(nil)
	_ gocmd.Querier[ListAuditTrailMessage, []core.AuditEntry]             = (*ListAuditTrailQuery)(nil)
	_ gocmd.Querier[ListWebhookDeliveriesMessage, []core.WebhookDelivery] = (*ListWebhookDeliveriesQuery)(nil)
)
