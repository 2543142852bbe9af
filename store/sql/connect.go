package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// PostgresConfig is the connection configuration for the production store.
// It satisfies the persistence client's config surface.
type PostgresConfig struct {
	DSN            string        `koanf:"dsn" mapstructure:"dsn"`
	Debug          bool          `koanf:"debug" mapstructure:"debug"`
	PingTimeout    time.Duration `koanf:"ping_timeout" mapstructure:"ping_timeout"`
	OtelIdentifier string        `koanf:"otel_identifier" mapstructure:"otel_identifier"`
	MaxOpenConns   int           `koanf:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns   int           `koanf:"max_idle_conns" mapstructure:"max_idle_conns"`
}

func (c PostgresConfig) GetDebug() bool {
	return c.Debug
}

func (c PostgresConfig) GetDriver() string {
	return "postgres"
}

func (c PostgresConfig) GetServer() string {
	return c.DSN
}

func (c PostgresConfig) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.PingTimeout
}

func (c PostgresConfig) GetOtelIdentifier() string {
	if c.OtelIdentifier == "" {
		return "go-signing"
	}
	return c.OtelIdentifier
}

// NewPostgresClient opens a postgres-backed persistence client ready for
// BuildStores and migration registration.
func NewPostgresClient(cfg PostgresConfig) (*persistence.Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlstore: postgres dsn is required")
	}
	sqlDB, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	client, err := persistence.New(cfg, sqlDB, pgdialect.New())
	if err != nil {
		closeErr := sqlDB.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("sqlstore: new persistence client: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	return client, nil
}
