// Package heartbeat contiene el controller de POST /heartbeat.
package heartbeat

import (
	"net/http"

	dto "github.com/dropDatabas3/fleethub/internal/http/dto/heartbeat"
	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/http/helpers"
	svc "github.com/dropDatabas3/fleethub/internal/http/services/heartbeat"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

// HeartbeatController recibe los reportes periódicos de los Silos.
type HeartbeatController struct {
	service svc.HeartbeatService
}

func NewHeartbeatController(service svc.HeartbeatService) *HeartbeatController {
	return &HeartbeatController{service: service}
}

// Ingest maneja POST /heartbeat
func (c *HeartbeatController) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HeartbeatController.Ingest"))

	var req dto.HeartbeatRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.Ingest(ctx, req)
	if err != nil {
		log.Debug("heartbeat rejected", logger.Err(err))
		httperrors.WriteErrorCtx(w, r, err)
		return
	}

	helpers.WriteSuccess(w, http.StatusOK, "", res)
}
