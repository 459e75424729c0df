package router

import "github.com/go-chi/chi/v5"

// registerTenantsRoutes: superficie admin mínima. {id} acepta id o slug.
func registerTenantsRoutes(r chi.Router, d Deps) {
	c := d.Controllers.Tenants
	r.Route("/tenants", func(tr chi.Router) {
		tr.Use(adminOnly(d))
		tr.Get("/", c.List)
		tr.Post("/", c.Create)
		tr.Get("/{id}", c.Get)
		tr.Delete("/{id}", c.Delete)
	})
}
