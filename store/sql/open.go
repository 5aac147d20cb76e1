package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/goliatone/go-hashgate/migrations"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// PersistenceConfig satisfies the go-persistence-bun config contract.
type PersistenceConfig struct {
	Driver         string
	DSN            string
	Debug          bool
	PingTimeout    time.Duration
	OtelIdentifier string
}

func (c PersistenceConfig) GetDebug() bool {
	return c.Debug
}

func (c PersistenceConfig) GetDriver() string {
	return c.Driver
}

func (c PersistenceConfig) GetServer() string {
	return c.DSN
}

func (c PersistenceConfig) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.PingTimeout
}

func (c PersistenceConfig) GetOtelIdentifier() string {
	if strings.TrimSpace(c.OtelIdentifier) == "" {
		return "go-hashgate"
	}
	return c.OtelIdentifier
}

// Open connects to the configured database, registers the activity
// migrations for its dialect and applies them.
func Open(ctx context.Context, cfg PersistenceConfig) (*persistence.Client, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}

	var (
		dialect        schema.Dialect
		migrationsName string
	)
	switch driver {
	case DriverPostgres, "pg", "postgresql":
		driver = DriverPostgres
		dialect = pgdialect.New()
		migrationsName = migrations.DialectPostgres
	case DriverSQLite, "sqlite":
		driver = DriverSQLite
		dialect = sqlitedialect.New()
		migrationsName = migrations.DialectSQLite
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}
	cfg.Driver = driver

	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: persistence client: %w", err)
	}

	_, err = migrations.Register(ctx, func(_ context.Context, dialectName string, _ string, fsys fs.FS) error {
		if dialectName != migrationsName {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, migrations.WithValidationTargets(migrationsName))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sqlstore: register migrations: %w", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return client, nil
}

// OpenActivityStore opens the database and returns a ready activity store
// together with the persistence client that owns the connection.
func OpenActivityStore(ctx context.Context, cfg PersistenceConfig) (*ActivityStore, *persistence.Client, error) {
	client, err := Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	factory, err := NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return factory.ActivityStore(), client, nil
}
