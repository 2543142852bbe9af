package core

import (
	"fmt"
	"strings"
	"time"
)

type TokenConfig struct {
	// Secret signs capability tokens. Kept distinct from any user-session
	// signing key so a leak of one cannot forge the other.
	Secret            string `koanf:"secret" mapstructure:"secret"`
	DefaultExpiryDays int    `koanf:"default_expiry_days" mapstructure:"default_expiry_days"`
}

type WebhookConfig struct {
	MaxAttempts      int           `koanf:"max_attempts" mapstructure:"max_attempts"`
	FirstTimeout     time.Duration `koanf:"first_timeout" mapstructure:"first_timeout"`
	RetryTimeout     time.Duration `koanf:"retry_timeout" mapstructure:"retry_timeout"`
	RetryBatchSize   int           `koanf:"retry_batch_size" mapstructure:"retry_batch_size"`
	RetryInterval    time.Duration `koanf:"retry_interval" mapstructure:"retry_interval"`
	DispatchWorkers  int           `koanf:"dispatch_workers" mapstructure:"dispatch_workers"`
	DispatchQueueCap int           `koanf:"dispatch_queue_cap" mapstructure:"dispatch_queue_cap"`
}

type LifecycleConfig struct {
	Interval        time.Duration `koanf:"interval" mapstructure:"interval"`
	ReminderWindow  time.Duration `koanf:"reminder_window" mapstructure:"reminder_window"`
	ReminderBatch   int           `koanf:"reminder_batch" mapstructure:"reminder_batch"`
	ExpirationBatch int           `koanf:"expiration_batch" mapstructure:"expiration_batch"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	Tokens      TokenConfig     `koanf:"tokens" mapstructure:"tokens"`
	Webhooks    WebhookConfig   `koanf:"webhooks" mapstructure:"webhooks"`
	Lifecycle   LifecycleConfig `koanf:"lifecycle" mapstructure:"lifecycle"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "signing",
		Tokens: TokenConfig{
			DefaultExpiryDays: 7,
		},
		Webhooks: WebhookConfig{
			MaxAttempts:      5,
			FirstTimeout:     10 * time.Second,
			RetryTimeout:     15 * time.Second,
			RetryBatchSize:   50,
			RetryInterval:    time.Minute,
			DispatchWorkers:  4,
			DispatchQueueCap: 256,
		},
		Lifecycle: LifecycleConfig{
			Interval:        time.Hour,
			ReminderWindow:  48 * time.Hour,
			ReminderBatch:   100,
			ExpirationBatch: 50,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Tokens.DefaultExpiryDays < MinTokenExpiryDays || c.Tokens.DefaultExpiryDays > MaxTokenExpiryDays {
		return fmt.Errorf(
			"core: tokens.default_expiry_days must be between %d and %d",
			MinTokenExpiryDays,
			MaxTokenExpiryDays,
		)
	}
	if c.Webhooks.MaxAttempts < 1 {
		return fmt.Errorf("core: webhooks.max_attempts must be positive")
	}
	if c.Webhooks.RetryBatchSize < 1 {
		return fmt.Errorf("core: webhooks.retry_batch_size must be positive")
	}
	if c.Lifecycle.ReminderBatch < 1 || c.Lifecycle.ExpirationBatch < 1 {
		return fmt.Errorf("core: lifecycle batch sizes must be positive")
	}
	return nil
}

// Send-time expiry bounds for signing tokens, in days.
const (
	MinTokenExpiryDays = 1
	MaxTokenExpiryDays = 90
)
