// Package marketplace contiene el controller de /marketplace.
package marketplace

import (
	"net/http"

	dto "github.com/dropDatabas3/fleethub/internal/http/dto/marketplace"
	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/http/helpers"
	svc "github.com/dropDatabas3/fleethub/internal/http/services/marketplace"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

// MarketplaceController expone purchase, unsubscribe y el catálogo.
type MarketplaceController struct {
	service svc.MarketplaceService
}

func NewMarketplaceController(service svc.MarketplaceService) *MarketplaceController {
	return &MarketplaceController{service: service}
}

// Purchase maneja POST /marketplace/purchase
func (c *MarketplaceController) Purchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MarketplaceController.Purchase"))

	var req dto.SubscriptionRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	t, err := c.service.Purchase(ctx, req.TenantID, req.ProductID)
	if err != nil {
		log.Debug("purchase rejected", logger.TenantID(req.TenantID), logger.ProductID(req.ProductID), logger.Err(err))
		httperrors.WriteErrorCtx(w, r, err)
		return
	}

	helpers.WriteSuccess(w, http.StatusOK, "Module purchased", t)
}

// Unsubscribe maneja POST /marketplace/unsubscribe
func (c *MarketplaceController) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MarketplaceController.Unsubscribe"))

	var req dto.SubscriptionRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	t, err := c.service.Unsubscribe(ctx, req.TenantID, req.ProductID)
	if err != nil {
		log.Debug("unsubscribe rejected", logger.TenantID(req.TenantID), logger.ProductID(req.ProductID), logger.Err(err))
		httperrors.WriteErrorCtx(w, r, err)
		return
	}

	helpers.WriteSuccess(w, http.StatusOK, "Module unsubscribed", t)
}

// ListModules maneja GET /marketplace/modules
func (c *MarketplaceController) ListModules(w http.ResponseWriter, r *http.Request) {
	mods, err := c.service.ListModules(r.Context())
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, "", mods)
}
