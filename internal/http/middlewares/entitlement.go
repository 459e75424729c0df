package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	"github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/http/helpers"
	"github.com/dropDatabas3/fleethub/internal/metrics"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

// RequireEntitlement deja pasar solo tenants suscriptos a moduleSlug.
// La suscripción se lee del registro en cada request; nunca se cachea.
//
//	sin X-Tenant-ID      -> 400 BAD_REQUEST
//	tenant desconocido   -> 404 TENANT_NOT_FOUND
//	no suscripto         -> 403 MODULE_NOT_SUBSCRIBED
func RequireEntitlement(tenants repository.TenantRepository, moduleSlug string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid := helpers.ResolveTenantID(r)
			if tid == "" {
				metrics.RecordEntitlementDenial(moduleSlug, "missing_tenant")
				errors.WriteError(w, errors.ErrMissingTenantHeader)
				return
			}

			t, err := tenants.GetByID(r.Context(), tid)
			if repository.IsNotFound(err) {
				t, err = tenants.GetBySlug(r.Context(), tid)
			}
			if err != nil {
				if repository.IsNotFound(err) {
					metrics.RecordEntitlementDenial(moduleSlug, "unknown_tenant")
					errors.WriteError(w, errors.ErrTenantNotFound.WithDetail(tid))
					return
				}
				errors.WriteErrorCtx(w, r, errors.ErrServiceUnavailable.WithCause(err))
				return
			}

			if !t.HasModule(moduleSlug) {
				metrics.RecordEntitlementDenial(moduleSlug, "not_subscribed")
				logger.From(r.Context()).Debug("module access denied",
					logger.TenantID(t.ID),
					logger.ModuleSlug(moduleSlug),
				)
				errors.WriteError(w, errors.ErrModuleNotSubscribed.WithDetail(moduleSlug))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}
