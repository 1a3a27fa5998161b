package routes

import (
	"dealradar/internal/api"
	"dealradar/internal/config"
	"dealradar/internal/metrics"
	"dealradar/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, cfg *config.Config, metricsReg *metrics.MetricsRegistry, deps *api.Dependencies) {
	analyticsHandlers := api.NewAnalyticsHandlers(deps.Services.Analytics)
	jobsHandler := api.NewJobsHandler(deps.Backfill, metricsReg)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))

		v1.Get("/deals", api.DealsHandler(deps.Services.Deals, metricsReg))
		v1.Get("/listings/{id}", api.ListingDetailHandler(deps.Repo.Listings, deps.Repo.Catalog, deps.Repo.Prices))

		v1.Route("/catalog", func(catalog chi.Router) {
			catalog.Get("/makers", api.MakersHandler(deps.Repo.Catalog, deps.Services.Cache))
			catalog.Get("/makers/{id}/models", api.ModelsByMakerHandler(deps.Repo.Catalog, deps.Services.Cache))
		})

		v1.Route("/analytics", func(analytics chi.Router) {
			analytics.Get("/price/distribution", analyticsHandlers.PriceDistribution())
			analytics.Get("/price/anomalies", analyticsHandlers.PriceAnomalies())
			analytics.Get("/price/evolution", analyticsHandlers.PriceEvolution())
			analytics.Get("/locations/heatmap", analyticsHandlers.LocationHeatmap())
			analytics.Get("/mileage/distribution", analyticsHandlers.MileageDistribution())
			analytics.Get("/fmv", analyticsHandlers.FairMarketValue())
		})

		// Admin-only group
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminAuthMiddleware(cfg.AdminJWTSecret))

			admin.Post("/admin/jobs/reconcile", jobsHandler.TriggerReconcile())
			admin.Get("/admin/jobs/status", jobsHandler.GetJobStatus())
		})
	})
}
