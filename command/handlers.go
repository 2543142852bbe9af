package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/trazahq/go-signing/core"
)

// MutatingService is the slice of the signing service the command handlers
// need. *core.Service satisfies it.
type MutatingService interface {
	CreateDocument(ctx context.Context, in core.CreateDocumentInput) (core.Document, error)
	AddFields(ctx context.Context, documentID string, fields []core.DocumentField) ([]core.DocumentField, error)
	SendForSigning(ctx context.Context, req core.SendForSigningRequest) (core.SendForSigningResult, error)
	Void(ctx context.Context, documentID string, actorID string) (core.Document, error)
	Resend(ctx context.Context, signatureID string, expiresInDays int) (core.Signature, error)
	MarkViewed(ctx context.Context, token string) error
	SubmitSignature(ctx context.Context, req core.SubmitSignatureRequest) (core.SubmitSignatureResult, error)
	DeclineSignature(ctx context.Context, req core.DeclineSignatureRequest) (core.Signature, error)
	RegisterWebhook(ctx context.Context, req core.RegisterWebhookRequest) (core.RegisterWebhookResult, error)
	DeactivateWebhook(ctx context.Context, webhookID string) error
}

type CreateDocumentCommand struct {
	service MutatingService
}

func NewCreateDocumentCommand(service MutatingService) *CreateDocumentCommand {
	return &CreateDocumentCommand{service: service}
}

func (c *CreateDocumentCommand) Execute(ctx context.Context, msg CreateDocumentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: document service is required")
	}
	out, err := c.service.CreateDocument(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AddFieldsCommand struct {
	service MutatingService
}

func NewAddFieldsCommand(service MutatingService) *AddFieldsCommand {
	return &AddFieldsCommand{service: service}
}

func (c *AddFieldsCommand) Execute(ctx context.Context, msg AddFieldsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: document service is required")
	}
	out, err := c.service.AddFields(ctx, msg.DocumentID, msg.Fields)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SendForSigningCommand struct {
	service MutatingService
}

func NewSendForSigningCommand(service MutatingService) *SendForSigningCommand {
	return &SendForSigningCommand{service: service}
}

func (c *SendForSigningCommand) Execute(ctx context.Context, msg SendForSigningMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: document service is required")
	}
	out, err := c.service.SendForSigning(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type VoidDocumentCommand struct {
	service MutatingService
}

func NewVoidDocumentCommand(service MutatingService) *VoidDocumentCommand {
	return &VoidDocumentCommand{service: service}
}

func (c *VoidDocumentCommand) Execute(ctx context.Context, msg VoidDocumentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: document service is required")
	}
	out, err := c.service.Void(ctx, msg.DocumentID, msg.ActorID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ResendSignatureCommand struct {
	service MutatingService
}

func NewResendSignatureCommand(service MutatingService) *ResendSignatureCommand {
	return &ResendSignatureCommand{service: service}
}

func (c *ResendSignatureCommand) Execute(ctx context.Context, msg ResendSignatureMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: signature service is required")
	}
	out, err := c.service.Resend(ctx, msg.SignatureID, msg.ExpiresInDays)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type MarkViewedCommand struct {
	service MutatingService
}

func NewMarkViewedCommand(service MutatingService) *MarkViewedCommand {
	return &MarkViewedCommand{service: service}
}

func (c *MarkViewedCommand) Execute(ctx context.Context, msg MarkViewedMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: signature service is required")
	}
	return c.service.MarkViewed(ctx, msg.Token)
}

type SubmitSignatureCommand struct {
	service MutatingService
}

func NewSubmitSignatureCommand(service MutatingService) *SubmitSignatureCommand {
	return &SubmitSignatureCommand{service: service}
}

func (c *SubmitSignatureCommand) Execute(ctx context.Context, msg SubmitSignatureMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: submission service is required")
	}
	out, err := c.service.SubmitSignature(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeclineSignatureCommand struct {
	service MutatingService
}

func NewDeclineSignatureCommand(service MutatingService) *DeclineSignatureCommand {
	return &DeclineSignatureCommand{service: service}
}

func (c *DeclineSignatureCommand) Execute(ctx context.Context, msg DeclineSignatureMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: submission service is required")
	}
	out, err := c.service.DeclineSignature(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RegisterWebhookCommand struct {
	service MutatingService
}

func NewRegisterWebhookCommand(service MutatingService) *RegisterWebhookCommand {
	return &RegisterWebhookCommand{service: service}
}

func (c *RegisterWebhookCommand) Execute(ctx context.Context, msg RegisterWebhookMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: webhook service is required")
	}
	out, err := c.service.RegisterWebhook(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeactivateWebhookCommand struct {
	service MutatingService
}

func NewDeactivateWebhookCommand(service MutatingService) *DeactivateWebhookCommand {
	return &DeactivateWebhookCommand{service: service}
}

func (c *DeactivateWebhookCommand) Execute(ctx context.Context, msg DeactivateWebhookMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: webhook service is required")
	}
	return c.service.DeactivateWebhook(ctx, msg.WebhookID)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
