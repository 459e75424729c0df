// Package store provee el registry de drivers y el Data Access Layer del Hub.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
)

// Adapter es un driver de almacenamiento. Cada paquete en adapters/ registra
// el suyo en init().
type Adapter interface {
	Name() string
	Connect(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error)
}

// AdapterConnection es una conexión abierta que entrega los repositorios.
type AdapterConnection interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error

	Tenants() repository.TenantRepository
	Modules() repository.ModuleRepository
}

type AdapterConfig struct {
	Name string
	DSN  string
	// SnapshotPath sólo lo usa memory.
	SnapshotPath string

	MaxOpenConns int
	MaxIdleConns int
}

var registry = struct {
	sync.RWMutex
	byName  map[string]Adapter
	aliases map[string]string
}{
	byName:  map[string]Adapter{},
	aliases: map[string]string{},
}

// RegisterAdapter registra a bajo su nombre y los alias dados ("pg", "sqlite3").
// Un nombre repetido es un error de programación y hace panic.
func RegisterAdapter(a Adapter, aliases ...string) {
	registry.Lock()
	defer registry.Unlock()

	name := a.Name()
	if _, dup := registry.byName[name]; dup {
		panic(fmt.Sprintf("store: adapter %q registered twice", name))
	}
	registry.byName[name] = a
	for _, al := range aliases {
		registry.aliases[strings.ToLower(al)] = name
	}
}

// CanonicalDriver resuelve alias y mayúsculas; "" si no hay adapter.
func CanonicalDriver(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	registry.RLock()
	defer registry.RUnlock()
	if _, ok := registry.byName[name]; ok {
		return name
	}
	return registry.aliases[name]
}

// Drivers lista los adapters registrados.
func Drivers() []string {
	registry.RLock()
	names := make([]string, 0, len(registry.byName))
	for n := range registry.byName {
		names = append(names, n)
	}
	registry.RUnlock()
	sort.Strings(names)
	return names
}

func OpenAdapter(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error) {
	canonical := CanonicalDriver(cfg.Name)
	registry.RLock()
	a, ok := registry.byName[canonical]
	registry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownDriver, cfg.Name, strings.Join(Drivers(), ", "))
	}
	cfg.Name = canonical
	return a.Connect(ctx, cfg)
}
