// Package marketplace contiene los DTOs de /marketplace.
package marketplace

// SubscriptionRequest es el body de purchase y unsubscribe.
// productId acepta el id o el slug del módulo.
type SubscriptionRequest struct {
	TenantID  string `json:"tenantId"`
	ProductID string `json:"productId"`
}
