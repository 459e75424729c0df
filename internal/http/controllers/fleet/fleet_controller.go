// Package fleet contiene el controller de /fleet.
package fleet

import (
	"net/http"

	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/http/helpers"
	svc "github.com/dropDatabas3/fleethub/internal/http/services/fleet"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

type FleetController struct {
	service svc.FleetService
}

func NewFleetController(service svc.FleetService) *FleetController {
	return &FleetController{service: service}
}

// Stats maneja GET /fleet/stats. Responde el objeto plano, sin envelope.
func (c *FleetController) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("FleetController.Stats"))

	st, err := c.service.Stats(ctx)
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}

	log.Debug("fleet stats computed",
		logger.Int("total", st.Total),
		logger.Int("online", st.Online),
	)
	helpers.WriteJSON(w, http.StatusOK, st)
}

// Instances maneja GET /fleet/instances
func (c *FleetController) Instances(w http.ResponseWriter, r *http.Request) {
	list, err := c.service.Instances(r.Context())
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, "", list)
}
