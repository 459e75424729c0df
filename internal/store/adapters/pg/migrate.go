package pg

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

// Lock key para serializar migraciones entre Hubs que arrancan juntos.
const migrationLockKey = 727_411_001

// runMigrations aplica los *_up.sql de fsys que no estén en schema_migrations.
// Cada migración corre en su propia transacción. Devuelve cuántas aplicó.
func runMigrations(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, dir string) (int, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return 0, fmt.Errorf("advisory lock: %w", err)
	}
	defer func() { _, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey) }()

	// 1. Ensure schema_migrations table exists
	if _, err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return 0, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	// 2. Get applied versions
	rows, err := conn.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return 0, fmt.Errorf("query applied migrations: %w", err)
	}
	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return 0, err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	// 3. Read and sort migration files
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return 0, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), "_up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// 4. Apply new migrations
	var count int
	for _, version := range files {
		if applied[version] {
			continue
		}
		b, err := fs.ReadFile(fsys, path.Join(dir, version))
		if err != nil {
			return count, err
		}

		tx, err := conn.Begin(ctx)
		if err != nil {
			return count, fmt.Errorf("begin tx: %w", err)
		}
		if _, err := tx.Exec(ctx, string(b)); err != nil {
			_ = tx.Rollback(ctx)
			return count, fmt.Errorf("exec %s: %w", version, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			_ = tx.Rollback(ctx)
			return count, fmt.Errorf("record version %s: %w", version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return count, fmt.Errorf("commit tx: %w", err)
		}

		logger.L().Info("migration applied", logger.Component("store.pg"), logger.String("version", version))
		count++
	}
	return count, nil
}
