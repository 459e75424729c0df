// Package sqlite implementa el registro del Hub sobre SQLite (sqlx + go-sqlite3).
//
// Adapter de un solo nodo: SQLite serializa escritores a nivel base de datos,
// así que todas las transacciones se abren como IMMEDIATE y el pool se limita
// a una conexión.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	store "github.com/dropDatabas3/fleethub/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS hub_module (
	id          TEXT PRIMARY KEY,
	slug        TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL,
	api_base    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS hub_tenant (
	id                 TEXT PRIMARY KEY,
	slug               TEXT NOT NULL UNIQUE,
	name               TEXT NOT NULL DEFAULT '',
	subscribed_modules TEXT NOT NULL DEFAULT '[]',
	last_heartbeat     TEXT,
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL
);
`

func init() {
	store.RegisterAdapter(&sqliteAdapter{}, "sqlite3")
}

type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string { return "sqlite" }

func (a *sqliteAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", normalizeDSN(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("sqlite: connect: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return &sqliteConnection{db: db}, nil
}

// normalizeDSN agrega _txlock=immediate y busy timeout si el DSN no los trae.
func normalizeDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "file:fleethub?mode=memory&cache=shared"
	}
	add := func(key, val string) {
		if strings.Contains(dsn, key+"=") {
			return
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + key + "=" + val
	}
	add("_txlock", "immediate")
	add("_busy_timeout", "5000")
	add("_foreign_keys", "1")
	return dsn
}

type sqliteConnection struct {
	db *sqlx.DB
}

func (c *sqliteConnection) Name() string { return "sqlite" }

func (c *sqliteConnection) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *sqliteConnection) Close() error { return c.db.Close() }

func (c *sqliteConnection) Tenants() repository.TenantRepository { return &tenantRepo{db: c.db} }
func (c *sqliteConnection) Modules() repository.ModuleRepository { return &moduleRepo{db: c.db} }
