package signing

import (
	"fmt"

	signingcommand "github.com/trazahq/go-signing/command"
	signingquery "github.com/trazahq/go-signing/query"
)

// CommandQueryService is every mutating and reading surface the facade wires
// command and query handlers against. *core.Service satisfies it.
type CommandQueryService interface {
	signingcommand.MutatingService
	signingquery.DocumentReader
	signingquery.SigningContextReader
	signingquery.AuditTrailReader
	signingquery.DeliveryReader
}

type Commands struct {
	CreateDocument    *signingcommand.CreateDocumentCommand
	AddFields         *signingcommand.AddFieldsCommand
	SendForSigning    *signingcommand.SendForSigningCommand
	VoidDocument      *signingcommand.VoidDocumentCommand
	ResendSignature   *signingcommand.ResendSignatureCommand
	MarkViewed        *signingcommand.MarkViewedCommand
	SubmitSignature   *signingcommand.SubmitSignatureCommand
	DeclineSignature  *signingcommand.DeclineSignatureCommand
	RegisterWebhook   *signingcommand.RegisterWebhookCommand
	DeactivateWebhook *signingcommand.DeactivateWebhookCommand
}

type Queries struct {
	GetDocument           *signingquery.GetDocumentQuery
	GetDocumentFile       *signingquery.GetDocumentFileQuery
	GetSigningContext     *signingquery.GetSigningContextQuery
	ListAuditTrail        *signingquery.ListAuditTrailQuery
	ListWebhookDeliveries *signingquery.ListWebhookDeliveriesQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	deliveryReader signingquery.DeliveryReader
}

// WithDeliveryReader swaps the delivery listing query onto a dedicated
// reader, for callers that serve delivery history from a replica or a
// store-level view instead of the service.
func WithDeliveryReader(reader signingquery.DeliveryReader) FacadeOption {
	return func(options *facadeOptions) {
		options.deliveryReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("signing: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	deliveryReader := cfg.deliveryReader
	if deliveryReader == nil {
		deliveryReader = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreateDocument:    signingcommand.NewCreateDocumentCommand(service),
		AddFields:         signingcommand.NewAddFieldsCommand(service),
		SendForSigning:    signingcommand.NewSendForSigningCommand(service),
		VoidDocument:      signingcommand.NewVoidDocumentCommand(service),
		ResendSignature:   signingcommand.NewResendSignatureCommand(service),
		MarkViewed:        signingcommand.NewMarkViewedCommand(service),
		SubmitSignature:   signingcommand.NewSubmitSignatureCommand(service),
		DeclineSignature:  signingcommand.NewDeclineSignatureCommand(service),
		RegisterWebhook:   signingcommand.NewRegisterWebhookCommand(service),
		DeactivateWebhook: signingcommand.NewDeactivateWebhookCommand(service),
	}
	facade.queries = Queries{
		GetDocument:           signingquery.NewGetDocumentQuery(service),
		GetDocumentFile:       signingquery.NewGetDocumentFileQuery(service),
		GetSigningContext:     signingquery.NewGetSigningContextQuery(service),
		ListAuditTrail:        signingquery.NewListAuditTrailQuery(service),
		ListWebhookDeliveries: signingquery.NewListWebhookDeliveriesQuery(deliveryReader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
