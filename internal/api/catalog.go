package api

import (
	"net/http"
	"strconv"
	"time"

	"dealradar/internal/common"
	"dealradar/internal/constants"
	"dealradar/internal/db/repositories"
	"dealradar/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

const catalogCacheTTL = 10 * time.Minute

// MakersHandler handles GET /api/v1/catalog/makers, backing the
// dashboard filter dropdowns. The catalog only changes on re-seed, so
// responses are cached.
func MakersHandler(catalog *repositories.CatalogRepository, cache common.CacheInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		cacheKey := string(constants.CachePrefixCatalog) + "makers"
		var cached []dtos.MakerView
		if cache.Get(cacheKey, &cached) {
			common.RespondSuccess(w, initTime, "Makers fetched", cached)
			return
		}

		makers, err := catalog.ListMakers(r.Context())
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to load makers")
			return
		}

		views := make([]dtos.MakerView, 0, len(makers))
		for _, m := range makers {
			views = append(views, dtos.MakerView{ID: m.ID, Name: m.Name})
		}

		cache.Set(cacheKey, views, catalogCacheTTL)
		common.RespondSuccess(w, initTime, "Makers fetched", views)
	}
}

// ModelsByMakerHandler handles GET /api/v1/catalog/makers/{id}/models.
func ModelsByMakerHandler(catalog *repositories.CatalogRepository, cache common.CacheInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		makerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			common.RespondError(w, initTime, nil, "Invalid maker id", http.StatusBadRequest)
			return
		}

		cacheKey := string(constants.CachePrefixCatalog) + "models_" + strconv.FormatInt(makerID, 10)
		var cached []dtos.ModelView
		if cache.Get(cacheKey, &cached) {
			common.RespondSuccess(w, initTime, "Models fetched", cached)
			return
		}

		models, err := catalog.ListModelsByMaker(r.Context(), makerID)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to load models")
			return
		}

		views := make([]dtos.ModelView, 0, len(models))
		for _, m := range models {
			views = append(views, dtos.ModelView{
				ID:         m.ID,
				MakerID:    m.MakerID,
				Name:       m.Name,
				GenmodelID: m.GenmodelID,
			})
		}

		cache.Set(cacheKey, views, catalogCacheTTL)
		common.RespondSuccess(w, initTime, "Models fetched", views)
	}
}
