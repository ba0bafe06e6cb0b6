// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tallersoft/pos-be/internal/adapters/db"
	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/internal/core/ports"
)

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB represents a disposable Postgres instance for integration tests
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// SetupTestDB starts a PostgreSQL container and applies the schema migrations
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_pos",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_pos",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../../migrations",
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(context.Background(), migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// TruncateAllTables clears every settlement table between tests
func TruncateAllTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"sale_alerts",
		"sale_items",
		"sale_payments",
		"invoices",
		"sales",
		"ticket_notes",
		"tickets",
		"stock",
		"users",
		"branches",
	}

	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// TestRedis represents an in-memory Redis instance for tests
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// SetupTestRedis spins up a miniredis server and a client bound to it
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err, "could not start miniredis")

	client := redis.NewClient(&redis.Options{
		Addr: server.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return &TestRedis{Client: client, Server: server}
}

// ProductLine builds a valid product cart line. Options mutate the defaults.
func ProductLine(opts ...func(*domain.CartLine)) domain.CartLine {
	line := domain.CartLine{
		Kind:        domain.LineProduct,
		ReferenceID: uuid.New(),
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(1000),
		Name:        "Tempered glass screen protector",
	}
	for _, opt := range opts {
		opt(&line)
	}
	return line
}

// RepairLine builds a valid repair cart line
func RepairLine(opts ...func(*domain.CartLine)) domain.CartLine {
	line := domain.CartLine{
		Kind:        domain.LineRepair,
		ReferenceID: uuid.New(),
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(15000),
		Name:        "Screen replacement",
	}
	for _, opt := range opts {
		opt(&line)
	}
	return line
}

// WithQuantity sets the line quantity
func WithQuantity(q int) func(*domain.CartLine) {
	return func(l *domain.CartLine) { l.Quantity = q }
}

// WithUnitPrice sets the line unit price
func WithUnitPrice(price string) func(*domain.CartLine) {
	return func(l *domain.CartLine) { l.UnitPrice = decimal.RequireFromString(price) }
}

// WithOverride marks the line as price-overridden
func WithOverride(original, reason string) func(*domain.CartLine) {
	return func(l *domain.CartLine) {
		orig := decimal.RequireFromString(original)
		l.OriginalPrice = &orig
		l.PriceChangeReason = reason
	}
}

// WithVatRate pins an explicit VAT rate on the line
func WithVatRate(rate string) func(*domain.CartLine) {
	return func(l *domain.CartLine) {
		r := decimal.RequireFromString(rate)
		l.VatRate = &r
	}
}

// SettlementRequest builds a settlement request around the given lines with
// the declared total computed from them.
func SettlementRequest(lines ...domain.CartLine) ports.SettlementRequest {
	total := decimal.Zero
	for i := range lines {
		total = total.Add(lines[i].Total())
	}
	return ports.SettlementRequest{
		VendorID: uuid.New(),
		BranchID: uuid.New(),
		Lines:    lines,
		Total:    total,
	}
}

// InvoiceDetails builds a minimal consumer-final invoice request block
func InvoiceDetails() *ports.InvoiceDetails {
	return &ports.InvoiceDetails{
		SalesPoint:     3,
		Type:           "B",
		Concept:        1,
		BuyerDocType:   "DNI",
		BuyerDocNumber: "30123456",
		BuyerName:      "Juana Molina",
	}
}

// Authorization builds a fiscal authorization fixture
func Authorization(voucher int64) *ports.FiscalAuthorization {
	return &ports.FiscalAuthorization{
		AuthorizationCode:   "71234567890123",
		VoucherNumber:       voucher,
		AuthorizationExpiry: time.Now().Add(10 * 24 * time.Hour).Truncate(time.Second),
	}
}
