package signing

import "github.com/trazahq/go-signing/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type DocumentStore = core.DocumentStore
type SignatureStore = core.SignatureStore
type FieldStore = core.FieldStore
type WebhookStore = core.WebhookStore
type DeliveryStore = core.DeliveryStore
type AuditStore = core.AuditStore
type TokenService = core.TokenService
type EventDispatcher = core.EventDispatcher
type Mailer = core.Mailer
type BlobResolver = core.BlobResolver

type CreateDocumentInput = core.CreateDocumentInput
type SendForSigningRequest = core.SendForSigningRequest
type SendForSigningResult = core.SendForSigningResult

type SubmitSignatureRequest = core.SubmitSignatureRequest
type SubmitSignatureResult = core.SubmitSignatureResult
type DeclineSignatureRequest = core.DeclineSignatureRequest
type SigningContext = core.SigningContext

type RegisterWebhookRequest = core.RegisterWebhookRequest
type RegisterWebhookResult = core.RegisterWebhookResult

type Document = core.Document
type Signature = core.Signature
type DocumentField = core.DocumentField
type Webhook = core.Webhook
type WebhookDelivery = core.WebhookDelivery
type AuditEntry = core.AuditEntry

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithDocumentStore     = core.WithDocumentStore
	WithSignatureStore    = core.WithSignatureStore
	WithFieldStore        = core.WithFieldStore
	WithWebhookStore      = core.WithWebhookStore
	WithDeliveryStore     = core.WithDeliveryStore
	WithAuditStore        = core.WithAuditStore
	WithTokenService      = core.WithTokenService
	WithEventDispatcher   = core.WithEventDispatcher
	WithMailer            = core.WithMailer
	WithBlobResolver      = core.WithBlobResolver
	WithClock             = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
