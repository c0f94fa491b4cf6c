//go:build integration

package containers

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/medcamp/medcamp/internal/platform/db"
)

// PostgresContainer is a migrated database with a pool onto it.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	Pool      *pgxpool.Pool
}

// migrationsDir locates the repository's migrations relative to this file.
func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// NewPostgresContainer starts Postgres and applies every migration.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("medcamp"),
		tcpostgres.WithUsername("medcamp"),
		tcpostgres.WithPassword("medcamp"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{DatabaseURL: dsn, MaxConns: 10, Schema: "public"})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	if _, err := db.NewMigrator(pool, migrationsDir()).Up(ctx, "public"); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to migrate: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, Pool: pool}
}

// TruncateTables empties the given tables and resets their sequences.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", ")))
	return err
}

// Reset clears every table the tests write to. Lookup tables and roles keep
// their seed rows.
func (p *PostgresContainer) Reset(ctx context.Context) error {
	return p.TruncateTables(ctx,
		"doctor_exams", "registration_reasons", "registrations",
		"camp_opd_counters", "camps", "users")
}

// SeedCamp inserts a camp and returns its id.
func (p *PostgresContainer) SeedCamp(ctx context.Context, name string) (int64, error) {
	var id int64
	err := p.Pool.QueryRow(ctx,
		`INSERT INTO camps (camp_name, camp_date) VALUES ($1, CURRENT_DATE) RETURNING camp_id`, name,
	).Scan(&id)
	return id, err
}
