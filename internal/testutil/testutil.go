// Package testutil provides helpers for integration tests against the
// backing stores. Tests skip when the store is not reachable unless
// TEST_REQUIRE_INFRA is set.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	// Import sqlite driver for lookup store tests.
	_ "modernc.org/sqlite"

	"github.com/leadforge/leadscreen/internal/migrate"
)

// TestingTB is an interface that covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Skip(args ...any)
	Logf(format string, args ...any)
	Cleanup(func())
}

// TestDBConfig holds configuration for the test warehouse database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig returns default test database configuration.
// Defaults match the docker-compose test profile; CI sets the env vars.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     getEnvOrDefault("TEST_DB_HOST", "localhost"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "55432"),
		User:     getEnvOrDefault("TEST_DB_USER", "leadscreen"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "leadscreen"),
		DBName:   getEnvOrDefault("TEST_DB_NAME", "leadscreen"),
	}
}

// SetupTestDB opens the test database, applies migrations, and removes any
// leftover rows. Skips the test when the database is unreachable.
func SetupTestDB(t TestingTB) *sql.DB {
	t.Helper()

	cfg := DefaultTestDBConfig()
	hostPort := net.JoinHostPort(cfg.Host, cfg.Port)
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		cfg.User, cfg.Password, hostPort, cfg.DBName)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatal("Failed to open database:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		closeAndLog(t, "database", db)
		if requireInfra() {
			t.Fatal("Postgres not available for testing:", pingErr)
		}
		t.Skip("Postgres not available for testing")
	}

	if migrateErr := migrate.Run(ctx, db); migrateErr != nil {
		t.Fatal("Failed to run migrations:", migrateErr)
	}
	CleanupTestDB(t, db)
	return db
}

// CleanupTestDB removes all rows the screening engine writes.
func CleanupTestDB(t TestingTB, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, table := range []string{"screening_results", "processed_leads", "screening_jobs"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("Failed to clean up table %s: %v", table, err)
		}
	}
}

// WithTestDB runs fn with a fresh test database connection.
func WithTestDB(t TestingTB, fn func(*sql.DB)) {
	t.Helper()
	db := SetupTestDB(t)
	defer closeAndLog(t, "database", db)
	fn(db)
}

// SetupTestRedis connects to the test Redis, flushing the selected database.
// Skips the test when Redis is unreachable.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := getEnvOrDefault("TEST_REDIS_ADDR", "localhost:6379")
	dbIndex, _ := strconv.Atoi(getEnvOrDefault("TEST_REDIS_DB", "9"))
	client := redis.NewClient(&redis.Options{Addr: addr, DB: dbIndex})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		closeAndLog(t, "redis", client)
		if requireInfra() {
			t.Fatal("Redis not available for testing:", err)
		}
		t.Skip("Redis not available for testing")
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatal("Failed to flush test redis db:", err)
	}
	return client
}

// SetupTestLookupDB opens an in-memory sqlite database with the DNC lookup
// table created and the given keys inserted.
func SetupTestLookupDB(t TestingTB, table string, keys ...string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal("Failed to open sqlite:", err)
	}
	t.Cleanup(func() { closeAndLog(t, "sqlite", db) })

	// The in-memory database vanishes with its last connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("CREATE TABLE " + table + " (phone TEXT PRIMARY KEY)"); err != nil {
		t.Fatal("Failed to create lookup table:", err)
	}
	for _, key := range keys {
		if _, err := db.Exec("INSERT INTO "+table+" (phone) VALUES (?)", key); err != nil {
			t.Fatal("Failed to seed lookup table:", err)
		}
	}
	return db
}

func requireInfra() bool {
	v, _ := strconv.ParseBool(os.Getenv("TEST_REQUIRE_INFRA"))
	return v
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func closeAndLog(t TestingTB, name string, closer interface{ Close() error }) {
	t.Helper()
	if err := closer.Close(); err != nil {
		t.Logf("warning: failed to close %s: %v", name, err)
	}
}
