// Package heartbeat contiene el service que ingiere reportes de los Silos.
package heartbeat

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	dto "github.com/dropDatabas3/fleethub/internal/http/dto/heartbeat"
	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/metrics"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

// HeartbeatService valida e ingiere heartbeats.
type HeartbeatService interface {
	Ingest(ctx context.Context, req dto.HeartbeatRequest) (*dto.HeartbeatResponse, error)
}

// Deps del service.
type Deps struct {
	Tenants repository.TenantRepository
	Now     func() time.Time // nil = time.Now
}

type heartbeatService struct {
	tenants repository.TenantRepository
	now     func() time.Time
}

func NewHeartbeatService(d Deps) HeartbeatService {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &heartbeatService{tenants: d.Tenants, now: now}
}

const componentHeartbeat = "heartbeat"

// Validate convierte el payload en métricas de dominio o devuelve INVALID_PAYLOAD.
func Validate(req dto.HeartbeatRequest) (string, repository.HeartbeatMetrics, error) {
	invalid := httperrors.ErrInvalidPayload

	if req.TenantID == nil || strings.TrimSpace(*req.TenantID) == "" {
		return "", repository.HeartbeatMetrics{}, invalid.WithDetail("tenantId requerido")
	}
	m := req.Metrics
	if m == nil {
		return "", repository.HeartbeatMetrics{}, invalid.WithDetail("metrics requerido")
	}

	checkNum := func(name string, v *float64) error {
		if v == nil {
			return invalid.WithDetailf("metrics.%s requerido", name)
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			return invalid.WithDetailf("metrics.%s debe ser >= 0", name)
		}
		return nil
	}
	if err := checkNum("cpu", m.CPU); err != nil {
		return "", repository.HeartbeatMetrics{}, err
	}
	if err := checkNum("ramUsedMb", m.RAMUsedMB); err != nil {
		return "", repository.HeartbeatMetrics{}, err
	}
	if err := checkNum("uptimeSeconds", m.UptimeSeconds); err != nil {
		return "", repository.HeartbeatMetrics{}, err
	}
	if *m.UptimeSeconds != math.Trunc(*m.UptimeSeconds) || *m.UptimeSeconds > math.MaxInt64/2 {
		return "", repository.HeartbeatMetrics{}, invalid.WithDetail("metrics.uptimeSeconds debe ser entero")
	}
	if m.Version == nil || strings.TrimSpace(*m.Version) == "" {
		return "", repository.HeartbeatMetrics{}, invalid.WithDetail("metrics.version requerido")
	}

	return strings.TrimSpace(*req.TenantID), repository.HeartbeatMetrics{
		CPU:           *m.CPU,
		RAMUsedMB:     *m.RAMUsedMB,
		UptimeSeconds: int64(*m.UptimeSeconds),
		Version:       strings.TrimSpace(*m.Version),
	}, nil
}

func (s *heartbeatService) Ingest(ctx context.Context, req dto.HeartbeatRequest) (*dto.HeartbeatResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentHeartbeat),
		logger.Op("Ingest"),
	)

	tenantID, m, err := Validate(req)
	if err != nil {
		metrics.RecordHeartbeat("invalid")
		return nil, err
	}

	hb := repository.Heartbeat{Timestamp: s.now().UTC(), Metrics: m}
	t, err := s.tenants.RecordHeartbeat(ctx, tenantID, hb)
	if repository.IsNotFound(err) && repository.ValidSlug(tenantID) {
		// el Silo puede identificarse por slug
		var bySlug *repository.Tenant
		if bySlug, err = s.tenants.GetBySlug(ctx, tenantID); err == nil {
			t, err = s.tenants.RecordHeartbeat(ctx, bySlug.ID, hb)
		}
	}
	if err != nil {
		if repository.IsNotFound(err) {
			metrics.RecordHeartbeat("not_found")
			return nil, httperrors.ErrTenantNotFound.WithDetail(tenantID)
		}
		metrics.RecordHeartbeat("error")
		log.Error("record heartbeat failed", logger.TenantID(tenantID), logger.Err(err))
		return nil, httperrors.ErrServiceUnavailable.WithCause(err)
	}

	metrics.RecordHeartbeat("ok")
	log.Debug("heartbeat recorded",
		logger.TenantID(t.ID),
		logger.String("version", m.Version),
	)

	mods := t.SubscribedModules
	if mods == nil {
		mods = []string{}
	}
	return &dto.HeartbeatResponse{SubscribedModules: mods}, nil
}
