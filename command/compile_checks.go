package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreateDocumentMessage]    = (*CreateDocumentCommand)(nil)
	_ gocmd.Commander[AddFieldsMessage]         = (*AddFieldsCommand)(nil)
	_ gocmd.Commander[SendForSigningMessage]    = (*SendForSigningCommand)(nil)
	_ gocmd.Commander[VoidDocumentMessage]      = (*VoidDocumentCommand)(nil)
	_ gocmd.Commander[ResendSignatureMessage]   = (*ResendSignatureCommand)(nil)
	_ gocmd.Commander[MarkViewedMessage]        = (*MarkViewedCommand)(nil)
	_ gocmd.Commander[SubmitSignatureMessage]   = (*SubmitSignatureCommand)(nil)
	_ gocmd.Commander[DeclineSignatureMessage]  = (*DeclineSignatureCommand)(nil)
	_ gocmd.Commander[RegisterWebhookMessage]   = (*RegisterWebhookCommand)(nil)
	_ gocmd.Commander[DeactivateWebhookMessage] = (*DeactivateWebhookCommand)(nil)
)
