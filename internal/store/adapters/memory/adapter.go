// Package memory implementa el registro del Hub en memoria.
//
// Cada tenant tiene su propio mutex: heartbeats y mutaciones de suscripción
// sobre el mismo tenant se serializan, tenants distintos nunca se bloquean entre sí.
// El mapa global solo se bloquea para lookup/alta/baja, jamás durante una mutación.
//
// Opcionalmente el estado se persiste en un snapshot JSON (SnapshotPath) que escribe
// un flusher en background; las operaciones nunca esperan al disco.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	store "github.com/dropDatabas3/fleethub/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	conn := New()
	if cfg.SnapshotPath == "" {
		return conn, nil
	}

	snap, err := readSnapshot(cfg.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("memory: load snapshot: %w", err)
	}
	conn.restore(snap)

	conn.flusher = newFlusher(cfg.SnapshotPath, conn.snapshot)
	conn.tenants.onChange = conn.flusher.mark
	conn.modules.onChange = conn.flusher.mark
	return conn, nil
}

// Connection es una conexión memory; también usable directamente en tests.
type Connection struct {
	tenants *tenantRepo
	modules *moduleRepo
	flusher *flusher
}

// New crea una conexión en memoria sin persistencia.
func New() *Connection {
	return &Connection{
		tenants: newTenantRepo(time.Now),
		modules: newModuleRepo(),
	}
}

// WithClock reemplaza el reloj usado para timestamps (tests).
func (c *Connection) WithClock(now func() time.Time) *Connection {
	c.tenants.now = now
	return c
}

func (c *Connection) Name() string                         { return "memory" }
func (c *Connection) Ping(ctx context.Context) error       { return nil }
func (c *Connection) Tenants() repository.TenantRepository { return c.tenants }
func (c *Connection) Modules() repository.ModuleRepository { return c.modules }

// Close detiene el flusher escribiendo el último snapshot.
func (c *Connection) Close() error {
	if c.flusher != nil {
		return c.flusher.stop()
	}
	return nil
}

func (c *Connection) snapshot() snapshot {
	tenants, _ := c.tenants.List(context.Background())
	modules, _ := c.modules.List(context.Background())
	return snapshot{Tenants: tenants, Modules: modules}
}

func (c *Connection) restore(s snapshot) {
	for i := range s.Tenants {
		t := s.Tenants[i]
		c.tenants.insert(&t)
	}
	for i := range s.Modules {
		m := s.Modules[i]
		_ = c.modules.Upsert(context.Background(), &m)
	}
}
