package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// TokenService is the capability-token collaborator; the concrete
// implementation lives in the tokens package.
type TokenService interface {
	Issue(documentID, signatureID, signerEmail string, expiresInDays int) (string, error)
	Verify(token string) (TokenClaims, error)
}

type TokenClaims struct {
	SignatureID string
	DocumentID  string
	SignerEmail string
	ExpiresAt   time.Time
}

type serviceBuilder struct {
	runtimeConfig     Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	persistenceClient any
	repositoryFactory any
	documentStore     DocumentStore
	signatureStore    SignatureStore
	fieldStore        FieldStore
	webhookStore      WebhookStore
	deliveryStore     DeliveryStore
	auditStore        AuditStore
	tokenService      TokenService
	dispatcher        EventDispatcher
	mailer            Mailer
	blobResolver      BlobResolver
	now               func() time.Time
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *serviceBuilder) {
		b.persistenceClient = client
	}
}

func WithRepositoryFactory(factory any) Option {
	return func(b *serviceBuilder) {
		b.repositoryFactory = factory
	}
}

func WithDocumentStore(store DocumentStore) Option {
	return func(b *serviceBuilder) {
		b.documentStore = store
	}
}

func WithSignatureStore(store SignatureStore) Option {
	return func(b *serviceBuilder) {
		b.signatureStore = store
	}
}

func WithFieldStore(store FieldStore) Option {
	return func(b *serviceBuilder) {
		b.fieldStore = store
	}
}

func WithWebhookStore(store WebhookStore) Option {
	return func(b *serviceBuilder) {
		b.webhookStore = store
	}
}

func WithDeliveryStore(store DeliveryStore) Option {
	return func(b *serviceBuilder) {
		b.deliveryStore = store
	}
}

func WithAuditStore(store AuditStore) Option {
	return func(b *serviceBuilder) {
		b.auditStore = store
	}
}

func WithTokenService(service TokenService) Option {
	return func(b *serviceBuilder) {
		b.tokenService = service
	}
}

func WithEventDispatcher(dispatcher EventDispatcher) Option {
	return func(b *serviceBuilder) {
		b.dispatcher = dispatcher
	}
}

func WithMailer(mailer Mailer) Option {
	return func(b *serviceBuilder) {
		b.mailer = mailer
	}
}

func WithBlobResolver(resolver BlobResolver) Option {
	return func(b *serviceBuilder) {
		b.blobResolver = resolver
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *serviceBuilder) {
		b.now = now
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("signing", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return signingErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	tokens := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Tokens.Secret) != "" {
		tokens["secret"] = cfg.Tokens.Secret
	}
	if includeZero || cfg.Tokens.DefaultExpiryDays != 0 {
		tokens["default_expiry_days"] = cfg.Tokens.DefaultExpiryDays
	}
	if len(tokens) > 0 {
		layer["tokens"] = tokens
	}

	webhooks := map[string]any{}
	if includeZero || cfg.Webhooks.MaxAttempts != 0 {
		webhooks["max_attempts"] = cfg.Webhooks.MaxAttempts
	}
	if includeZero || cfg.Webhooks.FirstTimeout != 0 {
		webhooks["first_timeout"] = cfg.Webhooks.FirstTimeout
	}
	if includeZero || cfg.Webhooks.RetryTimeout != 0 {
		webhooks["retry_timeout"] = cfg.Webhooks.RetryTimeout
	}
	if includeZero || cfg.Webhooks.RetryBatchSize != 0 {
		webhooks["retry_batch_size"] = cfg.Webhooks.RetryBatchSize
	}
	if includeZero || cfg.Webhooks.RetryInterval != 0 {
		webhooks["retry_interval"] = cfg.Webhooks.RetryInterval
	}
	if includeZero || cfg.Webhooks.DispatchWorkers != 0 {
		webhooks["dispatch_workers"] = cfg.Webhooks.DispatchWorkers
	}
	if includeZero || cfg.Webhooks.DispatchQueueCap != 0 {
		webhooks["dispatch_queue_cap"] = cfg.Webhooks.DispatchQueueCap
	}
	if len(webhooks) > 0 {
		layer["webhooks"] = webhooks
	}

	lifecycle := map[string]any{}
	if includeZero || cfg.Lifecycle.Interval != 0 {
		lifecycle["interval"] = cfg.Lifecycle.Interval
	}
	if includeZero || cfg.Lifecycle.ReminderWindow != 0 {
		lifecycle["reminder_window"] = cfg.Lifecycle.ReminderWindow
	}
	if includeZero || cfg.Lifecycle.ReminderBatch != 0 {
		lifecycle["reminder_batch"] = cfg.Lifecycle.ReminderBatch
	}
	if includeZero || cfg.Lifecycle.ExpirationBatch != 0 {
		lifecycle["expiration_batch"] = cfg.Lifecycle.ExpirationBatch
	}
	if len(lifecycle) > 0 {
		layer["lifecycle"] = lifecycle
	}

	return layer
}
