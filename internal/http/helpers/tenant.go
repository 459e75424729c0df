package helpers

import (
	"net/http"
	"strings"
)

// TenantHeader transporta la identidad del tenant fuera del body.
const TenantHeader = "X-Tenant-ID"

// ResolveTenantID devuelve el tenant del header X-Tenant-ID ("" si falta).
func ResolveTenantID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(TenantHeader))
}
