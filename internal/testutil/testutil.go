package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	// Register the pgx database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/target/deckgen/internal/migrate"
)

// Infrastructure tests skip when their service is unreachable unless one of these is truthy.
const (
	envRequireDB    = "TEST_REQUIRE_DB"
	envRequireRedis = "TEST_REQUIRE_REDIS"
	envRequireInfra = "TEST_REQUIRE_INFRA"
)

// testDSN targets the docker-compose test profile (port 55432) unless TEST_DB_* say otherwise.
func testDSN() string {
	hostPort := net.JoinHostPort(envOr("TEST_DB_HOST", "localhost"), envOr("TEST_DB_PORT", "55432"))
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		envOr("TEST_DB_USER", "deckgen"),
		envOr("TEST_DB_PASSWORD", "deckgen"),
		hostPort,
		envOr("TEST_DB_NAME", "deckgen"),
		envOr("DB_SSL_MODE", "disable"))
}

// SetupTestDB connects to the test database, applies migrations and empties the catalog.
// The catalog is emptied again and the connection closed when the test ends.
func SetupTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		skipOrFail(t, envRequireDB, "test database not available: %v", err)
	}
	if err := migrate.Run(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	truncateCatalog(t, db)

	t.Cleanup(func() {
		truncateCatalog(t, db)
		if err := db.Close(); err != nil {
			t.Logf("close test database: %v", err)
		}
	})
	return db
}

func truncateCatalog(t testing.TB, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "DELETE FROM presentations"); err != nil {
		t.Fatalf("clean presentations: %v", err)
	}
}

// SetupTestRedis returns a client on a flushed test database.
//
// The address comes from TEST_REDIS_ADDR and otherwise the first reachable of
// redis:6379, localhost:6379 and localhost:56379. TEST_REDIS_DB picks the database (default 9).
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	db := 9
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			t.Fatalf("invalid TEST_REDIS_DB=%q", v)
		}
		db = n
	}

	candidates := []string{"redis:6379", "localhost:6379", "localhost:56379"}
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		candidates = []string{addr}
	}

	var lastErr error
	for _, addr := range candidates {
		client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := client.Ping(ctx).Err()
		if err == nil {
			err = client.FlushDB(ctx).Err()
		}
		cancel()
		if err != nil {
			lastErr = err
			_ = client.Close()
			continue
		}
		t.Cleanup(func() {
			if err := client.Close(); err != nil {
				t.Logf("close test redis: %v", err)
			}
		})
		return client
	}
	skipOrFail(t, envRequireRedis, "redis not available for testing: %v", lastErr)
	return nil
}

func skipOrFail(t testing.TB, requireEnv, format string, args ...any) {
	t.Helper()
	if envBool(requireEnv) || envBool(envRequireInfra) {
		t.Fatalf(format, args...)
	}
	t.Skipf(format, args...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// FixedTimeFunc returns a clock that always reports t.
func FixedTimeFunc(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// TestTime is the reference instant shared by tests.
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
