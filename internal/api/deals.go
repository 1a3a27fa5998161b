package api

import (
	"net/http"
	"time"

	"dealradar/internal/common"
	"dealradar/internal/metrics"
	"dealradar/internal/models/dtos"
	"dealradar/internal/services"
)

// DealsHandler handles GET /api/v1/deals: the paginated, delta-computed
// deals table. Positive discounts are bargains; sort with
// sort=-discount_percent for best deals first (the default), or
// sort=discount_percent for the worst.
func DealsHandler(dealsSvc *services.DealsService, metricsReg *metrics.MetricsRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		q := dtos.DealQuery{
			Maker:       r.URL.Query().Get("maker"),
			Model:       r.URL.Query().Get("model"),
			MinPrice:    queryFloat(r, "min_price"),
			MaxPrice:    queryFloat(r, "max_price"),
			MinDiscount: queryFloat(r, "min_discount"),
			MaxDiscount: queryFloat(r, "max_discount"),
			Sort:        r.URL.Query().Get("sort"),
			Limit:       queryIntDefault(r, "limit", 0),
			Offset:      queryIntDefault(r, "offset", 0),
		}

		page, err := dealsSvc.Query(r.Context(), q)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to load deals")
			return
		}

		metricsReg.DealQueriesTotal.Inc()
		common.RespondSuccess(w, initTime, "Deals fetched", page)
	}
}
