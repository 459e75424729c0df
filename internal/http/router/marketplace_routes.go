package router

import "github.com/go-chi/chi/v5"

func registerMarketplaceRoutes(r chi.Router, d Deps) {
	c := d.Controllers.Marketplace
	r.Route("/marketplace", func(mr chi.Router) {
		mr.Use(adminOnly(d))
		mr.Get("/modules", c.ListModules)
		mr.Post("/purchase", c.Purchase)
		mr.Post("/unsubscribe", c.Unsubscribe)
	})
}
