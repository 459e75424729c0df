// Package tenants contiene el controller de /tenants.
package tenants

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/fleethub/internal/http/dto/tenants"
	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/http/helpers"
	svc "github.com/dropDatabas3/fleethub/internal/http/services/tenants"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

type TenantsController struct {
	service svc.TenantsService
}

func NewTenantsController(service svc.TenantsService) *TenantsController {
	return &TenantsController{service: service}
}

// List maneja GET /tenants
func (c *TenantsController) List(w http.ResponseWriter, r *http.Request) {
	list, err := c.service.List(r.Context())
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, "", list)
}

// Get maneja GET /tenants/{id}. Responde el registro plano.
func (c *TenantsController) Get(w http.ResponseWriter, r *http.Request) {
	t, err := c.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, t)
}

// Create maneja POST /tenants
func (c *TenantsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TenantsController.Create"))

	var req dto.CreateTenantRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	t, err := c.service.Create(ctx, req)
	if err != nil {
		log.Debug("create tenant rejected", logger.String("slug", req.Slug), logger.Err(err))
		httperrors.WriteErrorCtx(w, r, err)
		return
	}

	w.Header().Set("Location", "/tenants/"+t.ID)
	helpers.WriteSuccess(w, http.StatusCreated, "Tenant created", t)
}

// Delete maneja DELETE /tenants/{id}
func (c *TenantsController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
