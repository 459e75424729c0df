// Package metrics define las métricas Prometheus del Hub.
//
// Los vectores se crean una sola vez y se registran en el Registerer que pase
// cada servidor (duplicados se ignoran), así varios Hubs en un mismo proceso
// (tests) no chocan.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInflight        *prometheus.GaugeVec

	HeartbeatsTotal          *prometheus.CounterVec
	SubscriptionChangesTotal *prometheus.CounterVec
	EntitlementDenialsTotal  *prometheus.CounterVec
)

func initVectors() {
	initOnce.Do(func() {
		HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		HTTPInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método",
		}, []string{"method"})

		HeartbeatsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleethub_heartbeats_total",
			Help: "Heartbeats recibidos por resultado",
		}, []string{"result"}) // result: ok|invalid|not_found|error

		SubscriptionChangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleethub_subscription_changes_total",
			Help: "Mutaciones de suscripción por operación y resultado",
		}, []string{"op", "result"}) // op: purchase|unsubscribe

		EntitlementDenialsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleethub_entitlement_denials_total",
			Help: "Requests a módulos rechazados por el router",
		}, []string{"module", "reason"})
	})
}

// Register registra los vectores del Hub (y los collectors de runtime) en reg.
func Register(reg prometheus.Registerer) error {
	initVectors()
	for _, c := range []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPInflight,
		HeartbeatsTotal,
		SubscriptionChangesTotal,
		EntitlementDenialsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}

// Handler expone el gatherer en formato Prometheus.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

func RecordHeartbeat(result string) {
	if HeartbeatsTotal != nil {
		HeartbeatsTotal.WithLabelValues(result).Inc()
	}
}

func RecordSubscriptionChange(op, result string) {
	if SubscriptionChangesTotal != nil {
		SubscriptionChangesTotal.WithLabelValues(op, result).Inc()
	}
}

func RecordEntitlementDenial(module, reason string) {
	if EntitlementDenialsTotal != nil {
		EntitlementDenialsTotal.WithLabelValues(module, reason).Inc()
	}
}
