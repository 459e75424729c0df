// Package tenants contiene los DTOs de /tenants.
package tenants

type CreateTenantRequest struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}
