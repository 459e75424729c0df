// Package heartbeat contiene los DTOs del endpoint POST /heartbeat.
package heartbeat

// HeartbeatRequest usa punteros para distinguir campos ausentes de ceros.
type HeartbeatRequest struct {
	TenantID *string         `json:"tenantId"`
	Metrics  *MetricsPayload `json:"metrics"`
}

// MetricsPayload: uptimeSeconds llega como número JSON y se valida entero.
type MetricsPayload struct {
	CPU           *float64 `json:"cpu"`
	RAMUsedMB     *float64 `json:"ramUsedMb"`
	UptimeSeconds *float64 `json:"uptimeSeconds"`
	Version       *string  `json:"version"`
}

// HeartbeatResponse es el data del envelope de éxito.
type HeartbeatResponse struct {
	SubscribedModules []string `json:"subscribedModules"`
}
