package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/config"
	"github.com/Leganyst/service-marketplace/internal/db"
	"github.com/Leganyst/service-marketplace/internal/model"
)

// PostgresDSNEnv points integration tests at an existing database instead of
// a throwaway container. Its public schema is wiped first.
const PostgresDSNEnv = "MARKETPLACE_TEST_PG_DSN"

// OpenPostgres returns a migrated Postgres database. The test is skipped
// under -short and when no container runtime is reachable.
func OpenPostgres(t testing.TB) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in -short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn := os.Getenv(PostgresDSNEnv)
	reused := dsn != ""
	if !reused {
		pgC, err := postgres.Run(ctx,
			"postgres:16",
			postgres.WithDatabase("marketplace_test"),
			postgres.WithUsername("marketplace"),
			postgres.WithPassword("marketplace"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Skipf("postgres container unavailable: %v", err)
		}
		t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

		dsn, err = pgC.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("connection string: %v", err)
		}
	}

	gdb, err := db.NewGormDB(config.DBConfig{Driver: "postgres", DSN: dsn, LogLevel: "silent"}, nil)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if reused {
		for _, stmt := range []string{"DROP SCHEMA public CASCADE", "CREATE SCHEMA public"} {
			if err := gdb.Exec(stmt).Error; err != nil {
				t.Fatalf("reset schema: %v", err)
			}
		}
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql DB: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}
