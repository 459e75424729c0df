package heartbeat

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/procfs"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
)

// Collector reúne las métricas locales de un heartbeat.
type Collector interface {
	Collect(ctx context.Context) (repository.HeartbeatMetrics, error)
}

// SystemCollector lee load average y memoria de procfs.
// Fuera de Linux cpu queda en 0 y la RAM sale del runtime de Go.
type SystemCollector struct {
	procRoot string
	version  string
	started  time.Time
	now      func() time.Time
}

// NewSystemCollector; procRoot vacío usa /proc.
func NewSystemCollector(procRoot, version string) *SystemCollector {
	if procRoot == "" {
		procRoot = procfs.DefaultMountPoint
	}
	return &SystemCollector{procRoot: procRoot, version: version, started: time.Now(), now: time.Now}
}

func (c *SystemCollector) Collect(ctx context.Context) (repository.HeartbeatMetrics, error) {
	m := repository.HeartbeatMetrics{
		Version:       c.version,
		UptimeSeconds: int64(c.now().Sub(c.started) / time.Second),
	}
	if m.UptimeSeconds < 0 {
		m.UptimeSeconds = 0
	}

	fs, err := procfs.NewFS(c.procRoot)
	if err == nil {
		if la, lerr := fs.LoadAvg(); lerr == nil && la.Load1 >= 0 {
			m.CPU = la.Load1
		}
		if mi, merr := fs.Meminfo(); merr == nil && mi.MemTotal != nil && mi.MemAvailable != nil && *mi.MemTotal >= *mi.MemAvailable {
			m.RAMUsedMB = float64(*mi.MemTotal-*mi.MemAvailable) / 1024
		}
	}
	if m.RAMUsedMB == 0 {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		m.RAMUsedMB = float64(ms.Sys) / (1024 * 1024)
	}
	return m, ctx.Err()
}
