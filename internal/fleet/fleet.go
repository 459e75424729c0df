// Package fleet clasifica instancias Silo como online/offline y agrega
// métricas de la flota a partir del registro de tenants.
package fleet

import (
	"context"
	"time"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
)

// DefaultHeartbeatInterval es el intervalo esperado entre heartbeats de un Silo.
const DefaultHeartbeatInterval = 60 * time.Second

// IsOnline reports whether a tenant whose last report is hb counts as online at now.
// Tenants that never reported are offline.
func IsOnline(now time.Time, hb *repository.Heartbeat, interval time.Duration) bool {
	if hb == nil {
		return false
	}
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return now.Sub(hb.Timestamp) <= 2*interval
}

// Averages sobre tenants online.
type Averages struct {
	AvgCPU float64 `json:"avgCpu"`
	AvgRAM float64 `json:"avgRam"`
}

// Stats es el snapshot agregado de la flota.
type Stats struct {
	Total    int      `json:"total"`
	Online   int      `json:"online"`
	Offline  int      `json:"offline"`
	Averages Averages `json:"averages"`
}

// Instance es el estado de un Silo individual.
type Instance struct {
	TenantID      string                `json:"tenantId"`
	Slug          string                `json:"slug"`
	Online        bool                  `json:"online"`
	LastHeartbeat *repository.Heartbeat `json:"lastHeartbeat,omitempty"`
}

// Compute agrega stats sobre tenants. Total = Online + Offline siempre.
func Compute(now time.Time, tenants []repository.Tenant, interval time.Duration) Stats {
	var (
		s           Stats
		sumCPU, sum float64
	)
	for i := range tenants {
		s.Total++
		hb := tenants[i].LastHeartbeat
		if !IsOnline(now, hb, interval) {
			s.Offline++
			continue
		}
		s.Online++
		sumCPU += hb.Metrics.CPU
		sum += hb.Metrics.RAMUsedMB
	}
	if s.Online > 0 {
		s.Averages.AvgCPU = sumCPU / float64(s.Online)
		s.Averages.AvgRAM = sum / float64(s.Online)
	}
	return s
}

// Aggregator lee el registro en cada llamada; no cachea.
type Aggregator struct {
	tenants  repository.TenantRepository
	interval time.Duration
	now      func() time.Time
}

// NewAggregator crea un Aggregator. interval <= 0 usa DefaultHeartbeatInterval.
func NewAggregator(tenants repository.TenantRepository, interval time.Duration) *Aggregator {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &Aggregator{tenants: tenants, interval: interval, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Interval devuelve el intervalo de heartbeat configurado.
func (a *Aggregator) Interval() time.Duration { return a.interval }

// Stats escanea el registro. Aborta si ctx se cancela.
func (a *Aggregator) Stats(ctx context.Context) (Stats, error) {
	list, err := a.tenants.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	return Compute(a.now(), list, a.interval), nil
}

// Instances lista el estado por tenant, en el orden del registro (slug).
func (a *Aggregator) Instances(ctx context.Context) ([]Instance, error) {
	list, err := a.tenants.List(ctx)
	if err != nil {
		return nil, err
	}
	now := a.now()
	out := make([]Instance, 0, len(list))
	for i := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := list[i]
		out = append(out, Instance{
			TenantID:      t.ID,
			Slug:          t.Slug,
			Online:        IsOnline(now, t.LastHeartbeat, a.interval),
			LastHeartbeat: t.LastHeartbeat,
		})
	}
	return out, nil
}
