// Package health contiene el service para /readyz.
package health

import (
	"context"
	"time"

	dto "github.com/dropDatabas3/fleethub/internal/http/dto/health"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	Version    string
	Driver     string
	DBCheck    func(ctx context.Context) error // ping del DAL
	RedisCheck func(ctx context.Context) error // opcional, limiter redis
	Timeout    time.Duration
}

type healthService struct {
	deps Deps
}

func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	resp := dto.HealthResponse{
		Status:     "ready",
		Version:    s.deps.Version,
		Driver:     s.deps.Driver,
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
	}

	probe := func(name string, fn func(ctx context.Context) error) {
		if fn == nil {
			return
		}
		cctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
		defer cancel()

		start := time.Now()
		err := fn(cctx)
		st := dto.HealthStatus{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
		if err != nil {
			st.Status = "error"
			st.Detail = err.Error()
			resp.Status = "unavailable"
			logger.From(ctx).Warn("readiness probe failed",
				logger.Component("health"),
				logger.String("probe", name),
				logger.Err(err),
			)
		}
		resp.Components[name] = st
	}

	probe("db", s.deps.DBCheck)
	probe("redis", s.deps.RedisCheck)
	return resp
}
