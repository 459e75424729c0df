// Package health expone GET /readyz.
package health

import (
	"net/http"
	"sort"

	"github.com/dropDatabas3/fleethub/internal/http/helpers"
	svc "github.com/dropDatabas3/fleethub/internal/http/services/health"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

type HealthController struct {
	service svc.HealthService
}

func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Readyz responde 200 si todos los componentes sondeados responden, 503 si no.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	res := c.service.Check(r.Context())
	if res.Version != "" {
		w.Header().Set("X-Service-Version", res.Version)
	}

	code := http.StatusOK
	if res.Status == "unavailable" {
		code = http.StatusServiceUnavailable

		var failing []string
		for name, st := range res.Components {
			if st.Status != "ok" {
				failing = append(failing, name)
			}
		}
		sort.Strings(failing)
		logger.From(r.Context()).Warn("hub not ready",
			logger.Layer("controller"),
			logger.Any("failing", failing),
		)
	}
	helpers.WriteJSON(w, code, res)
}
