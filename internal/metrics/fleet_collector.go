package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/fleethub/internal/fleet"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

// StatsSource es lo que necesita el collector (fleet.Aggregator lo implementa).
type StatsSource interface {
	Stats(ctx context.Context) (fleet.Stats, error)
}

// fleetCollector calcula los gauges de flota en cada scrape.
type fleetCollector struct {
	src     StatsSource
	timeout time.Duration

	tenantsDesc *prometheus.Desc
	avgCPUDesc  *prometheus.Desc
	avgRAMDesc  *prometheus.Desc
}

// RegisterFleetCollector registra fleethub_fleet_* sobre reg.
func RegisterFleetCollector(reg prometheus.Registerer, src StatsSource) error {
	return registerCollector(reg, newFleetCollector(src))
}

func newFleetCollector(src StatsSource) *fleetCollector {
	return &fleetCollector{
		src:         src,
		timeout:     5 * time.Second,
		tenantsDesc: prometheus.NewDesc("fleethub_fleet_tenants", "Tenants por estado de su Silo", []string{"state"}, nil),
		avgCPUDesc:  prometheus.NewDesc("fleethub_fleet_avg_cpu", "CPU promedio de instancias online", nil, nil),
		avgRAMDesc:  prometheus.NewDesc("fleethub_fleet_avg_ram_mb", "RAM usada promedio (MB) de instancias online", nil, nil),
	}
}

func (c *fleetCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tenantsDesc
	ch <- c.avgCPUDesc
	ch <- c.avgRAMDesc
}

func (c *fleetCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	s, err := c.src.Stats(ctx)
	if err != nil {
		logger.L().Warn("fleet stats collection failed", logger.Component("metrics"), logger.Err(err))
		return
	}
	ch <- prometheus.MustNewConstMetric(c.tenantsDesc, prometheus.GaugeValue, float64(s.Online), "online")
	ch <- prometheus.MustNewConstMetric(c.tenantsDesc, prometheus.GaugeValue, float64(s.Offline), "offline")
	ch <- prometheus.MustNewConstMetric(c.avgCPUDesc, prometheus.GaugeValue, s.Averages.AvgCPU)
	ch <- prometheus.MustNewConstMetric(c.avgRAMDesc, prometheus.GaugeValue, s.Averages.AvgRAM)
}
