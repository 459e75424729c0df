package heartbeat

import (
	"net/http"

	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/http/helpers"
)

// StatusHandler expone GET /status con el último reporte al Hub.
func (c *Client) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
			return
		}
		helpers.WriteSuccess(w, http.StatusOK, "", c.Status())
	})
}
