package router

import "github.com/go-chi/chi/v5"

func registerFleetRoutes(r chi.Router, d Deps) {
	c := d.Controllers.Fleet
	r.Route("/fleet", func(fr chi.Router) {
		fr.Use(adminOnly(d))
		fr.Get("/stats", c.Stats)
		fr.Get("/instances", c.Instances)
	})
}
