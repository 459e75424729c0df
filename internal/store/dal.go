package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
	"github.com/dropDatabas3/fleethub/internal/util"
)

// DataAccessLayer es el handle explícito de acceso a datos del Hub.
// Se construye una vez en main (Open) y se pasa hacia abajo; Close libera recursos.
type DataAccessLayer interface {
	Driver() string
	Tenants() repository.TenantRepository
	Modules() repository.ModuleRepository
	Ping(ctx context.Context) error
	Close() error
}

// Config configuración de alto nivel del DAL.
type Config struct {
	Driver       string
	DSN          string
	SnapshotPath string
	MaxOpenConns int
	MaxIdleConns int
}

type dal struct {
	conn AdapterConnection

	mu     sync.Mutex
	closed bool
}

// Open abre el DAL con el driver configurado ("memory" por defecto).
// Los adapters deben estar registrados (importar internal/store/adapters/dal).
func Open(ctx context.Context, cfg Config) (DataAccessLayer, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = "memory"
	}

	conn, err := OpenAdapter(ctx, AdapterConfig{
		Name:         driver,
		DSN:          cfg.DSN,
		SnapshotPath: cfg.SnapshotPath,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}

	logger.L().Info("data access layer opened",
		logger.Component("store"),
		logger.String("driver", conn.Name()),
		logger.String("dsn", util.MaskDSN(cfg.DSN)),
	)
	return &dal{conn: conn}, nil
}

// Wrap adapta una conexión ya abierta (tests, wiring manual).
func Wrap(conn AdapterConnection) DataAccessLayer {
	return &dal{conn: conn}
}

func (d *dal) Driver() string                       { return d.conn.Name() }
func (d *dal) Tenants() repository.TenantRepository { return d.conn.Tenants() }
func (d *dal) Modules() repository.ModuleRepository { return d.conn.Modules() }

func (d *dal) Ping(ctx context.Context) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return d.conn.Ping(ctx)
}

// Close es idempotente.
func (d *dal) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.conn.Close()
}
