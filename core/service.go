package core

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service is the signing workflow engine: it drives documents and signatures
// through their lifecycle and hands domain events to the webhook dispatcher
// after the owning transaction commits.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
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

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorFactory    ErrorFactory
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	DocumentStore   DocumentStore
	SignatureStore  SignatureStore
	FieldStore      FieldStore
	WebhookStore    WebhookStore
	DeliveryStore   DeliveryStore
	AuditStore      AuditStore
	TokenService    TokenService
	Dispatcher      EventDispatcher
	Mailer          Mailer
	BlobResolver    BlobResolver
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("signing", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("signing"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if missingStores(&builder) && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			storeProvider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			adoptStores(&builder, storeProvider)
		} else if storeProvider, ok := builder.repositoryFactory.(StoreProvider); ok {
			adoptStores(&builder, storeProvider)
		}
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		documentStore:     builder.documentStore,
		signatureStore:    builder.signatureStore,
		fieldStore:        builder.fieldStore,
		webhookStore:      builder.webhookStore,
		deliveryStore:     builder.deliveryStore,
		auditStore:        builder.auditStore,
		tokenService:      builder.tokenService,
		dispatcher:        builder.dispatcher,
		mailer:            builder.mailer,
		blobResolver:      builder.blobResolver,
		now:               builder.now,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func missingStores(builder *serviceBuilder) bool {
	return builder.documentStore == nil ||
		builder.signatureStore == nil ||
		builder.fieldStore == nil ||
		builder.webhookStore == nil ||
		builder.deliveryStore == nil ||
		builder.auditStore == nil
}

func adoptStores(builder *serviceBuilder, provider StoreProvider) {
	if provider == nil {
		return
	}
	if builder.documentStore == nil {
		builder.documentStore = provider.DocumentStore()
	}
	if builder.signatureStore == nil {
		builder.signatureStore = provider.SignatureStore()
	}
	if builder.fieldStore == nil {
		builder.fieldStore = provider.FieldStore()
	}
	if builder.webhookStore == nil {
		builder.webhookStore = provider.WebhookStore()
	}
	if builder.deliveryStore == nil {
		builder.deliveryStore = provider.DeliveryStore()
	}
	if builder.auditStore == nil {
		builder.auditStore = provider.AuditStore()
	}
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorFactory:    s.errorFactory,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		DocumentStore:   s.documentStore,
		SignatureStore:  s.signatureStore,
		FieldStore:      s.fieldStore,
		WebhookStore:    s.webhookStore,
		DeliveryStore:   s.deliveryStore,
		AuditStore:      s.auditStore,
		TokenService:    s.tokenService,
		Dispatcher:      s.dispatcher,
		Mailer:          s.mailer,
		BlobResolver:    s.blobResolver,
	}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) clock() time.Time {
	if s != nil && s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}
