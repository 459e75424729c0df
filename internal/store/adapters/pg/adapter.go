// Package pg implementa el registro del Hub sobre PostgreSQL (pgxpool).
// Las mutaciones por tenant toman la fila con SELECT ... FOR UPDATE.
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
	store "github.com/dropDatabas3/fleethub/internal/store"
	migrations "github.com/dropDatabas3/fleethub/migrations/postgres"
)

const (
	defaultMaxConns = 10
	defaultMinConns = 2
)

func init() {
	store.RegisterAdapter(&postgresAdapter{}, "pg", "postgresql")
}

type postgresAdapter struct{}

func (postgresAdapter) Name() string { return "postgres" }

func (postgresAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	pcfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}

	applied, err := prepare(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if applied > 0 {
		logger.L().Info("pg migrations applied", logger.Component("store"), logger.Count(applied))
	}
	return &pgConnection{pool: pool}, nil
}

func poolConfig(cfg store.AdapterConfig) (*pgxpool.Config, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}
	pcfg.MaxConns = defaultMaxConns
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	pcfg.MinConns = defaultMinConns
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if pcfg.MinConns > pcfg.MaxConns {
		pcfg.MinConns = pcfg.MaxConns
	}
	pcfg.HealthCheckPeriod = 30 * time.Second
	if _, ok := pcfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		pcfg.ConnConfig.RuntimeParams["application_name"] = "fleethub"
	}
	return pcfg, nil
}

// prepare verifica conectividad y aplica las migraciones embebidas pendientes.
func prepare(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	if err := pool.Ping(ctx); err != nil {
		return 0, fmt.Errorf("pg: ping: %w", err)
	}
	n, err := runMigrations(ctx, pool, migrations.FS, migrations.Dir)
	if err != nil {
		return n, fmt.Errorf("pg: migrations: %w", err)
	}
	return n, nil
}

type pgConnection struct {
	pool *pgxpool.Pool
}

func (c *pgConnection) Name() string                   { return "postgres" }
func (c *pgConnection) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

func (c *pgConnection) Close() error {
	c.pool.Close()
	return nil
}

func (c *pgConnection) Tenants() repository.TenantRepository { return &tenantRepo{pool: c.pool} }
func (c *pgConnection) Modules() repository.ModuleRepository { return &moduleRepo{pool: c.pool} }
