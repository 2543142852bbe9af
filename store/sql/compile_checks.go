package sqlstore

import "github.com/trazahq/go-signing/core"

var (
	_ core.DocumentStore          = (*DocumentStore)(nil)
	_ core.SignatureStore         = (*SignatureStore)(nil)
	_ core.FieldStore             = (*FieldStore)(nil)
	_ core.WebhookStore           = (*WebhookStore)(nil)
	_ core.WebhookStore           = (*CachedWebhookStore)(nil)
	_ core.DeliveryStore          = (*DeliveryStore)(nil)
	_ core.AuditStore             = (*AuditStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
