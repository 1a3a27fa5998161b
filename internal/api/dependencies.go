package api

import (
	"dealradar/internal/common"
	"dealradar/internal/config"
	"dealradar/internal/db"
	"dealradar/internal/db/repositories"
	"dealradar/internal/jobs"
	"dealradar/internal/logging"
	"dealradar/internal/metrics"
	"dealradar/internal/services"
)

type Repositories struct {
	Catalog  *repositories.CatalogRepository
	Prices   *repositories.PriceHistoryRepository
	Listings *repositories.ListingRepository
}

type Services struct {
	Cache     common.CacheInterface
	Reconcile *services.ReconcileService
	Deals     *services.DealsService
	Analytics *services.AnalyticsService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Backfill *jobs.ReconcileBackfillJob
	Metrics  *metrics.MetricsRegistry
}

func InitDependencies(cfg *config.Config, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	repos := &Repositories{
		Catalog:  repositories.NewCatalogRepository(db.DB),
		Prices:   repositories.NewPriceHistoryRepository(db.DB),
		Listings: repositories.NewListingRepository(db.DB),
	}

	cache := initCache(cfg)

	reconcileSvc := services.NewReconcileService(repos.Catalog)

	svcs := &Services{
		Cache:     cache,
		Reconcile: reconcileSvc,
		Deals:     services.NewDealsService(repos.Listings, repos.Prices),
		Analytics: services.NewAnalyticsService(repos.Listings, cache),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Backfill: jobs.NewReconcileBackfillJob(repos.Listings, reconcileSvc, metricsReg),
		Metrics:  metricsReg,
	}, nil
}

// initCache picks the cache backend. Redis failures fall back to the
// in-memory cache so a missing Redis never takes the API down.
func initCache(cfg *config.Config) common.CacheInterface {
	if cfg.CacheBackend == "redis" {
		redisCache, err := common.NewRedisCacheService(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err == nil {
			logging.Info("Using Redis cache backend", "host", cfg.RedisHost)
			return redisCache
		}
		logging.Warn("Redis unavailable, falling back to in-memory cache", "error", err.Error())
	}
	return common.NewCacheService(300, 600)
}
