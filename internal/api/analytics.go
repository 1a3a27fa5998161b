package api

import (
	"net/http"
	"time"

	"dealradar/internal/common"
	"dealradar/internal/models/dtos"
	"dealradar/internal/services"
)

// AnalyticsHandlers groups the analytics endpoints, all read-only
// aggregations over the listings table.
type AnalyticsHandlers struct {
	svc *services.AnalyticsService
}

func NewAnalyticsHandlers(svc *services.AnalyticsService) *AnalyticsHandlers {
	return &AnalyticsHandlers{svc: svc}
}

func analyticsFilter(r *http.Request) dtos.AnalyticsFilter {
	return dtos.AnalyticsFilter{
		Make:  r.URL.Query().Get("make"),
		Model: r.URL.Query().Get("model"),
		Year:  queryInt(r, "year"),
	}
}

// PriceDistribution handles GET /api/v1/analytics/price/distribution
func (h *AnalyticsHandlers) PriceDistribution() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		stats, err := h.svc.PriceDistribution(r.Context(), analyticsFilter(r))
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to compute price distribution")
			return
		}
		common.RespondSuccess(w, initTime, "Price distribution computed", stats)
	}
}

// PriceAnomalies handles GET /api/v1/analytics/price/anomalies
func (h *AnalyticsHandlers) PriceAnomalies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		threshold := queryFloatDefault(r, "threshold", 2.0)
		limit := queryIntDefault(r, "limit", 50)

		report, err := h.svc.PriceAnomalies(r.Context(), analyticsFilter(r), threshold, limit)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to scan for anomalies")
			return
		}
		common.RespondSuccess(w, initTime, "Anomaly scan finished", report)
	}
}

// PriceEvolution handles GET /api/v1/analytics/price/evolution
func (h *AnalyticsHandlers) PriceEvolution() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		evo, err := h.svc.PriceEvolution(r.Context(), analyticsFilter(r))
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to compute price evolution")
			return
		}
		common.RespondSuccess(w, initTime, "Price evolution computed", evo)
	}
}

// LocationHeatmap handles GET /api/v1/analytics/locations/heatmap
func (h *AnalyticsHandlers) LocationHeatmap() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		hm, err := h.svc.LocationHeatmap(r.Context())
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to compute location heatmap")
			return
		}
		common.RespondSuccess(w, initTime, "Location heatmap computed", hm)
	}
}

// MileageDistribution handles GET /api/v1/analytics/mileage/distribution
func (h *AnalyticsHandlers) MileageDistribution() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		stats, err := h.svc.MileageDistribution(r.Context(), analyticsFilter(r))
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to compute mileage distribution")
			return
		}
		common.RespondSuccess(w, initTime, "Mileage distribution computed", stats)
	}
}

// FairMarketValue handles GET /api/v1/analytics/fmv
func (h *AnalyticsHandlers) FairMarketValue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		q := dtos.FMVQuery{
			AnalyticsFilter: analyticsFilter(r),
			MileageKM:       queryFloat(r, "mileage_km"),
		}

		result, err := h.svc.FairMarketValue(r.Context(), q)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to compute fair market value")
			return
		}
		if result == nil {
			common.RespondError(w, initTime, nil, "No comparable listings found", http.StatusNotFound)
			return
		}
		common.RespondSuccess(w, initTime, "Fair market value computed", result)
	}
}
