package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dealradar/internal/common"
	"dealradar/internal/db/repositories"
	"dealradar/internal/models/dtos"
	"dealradar/internal/services"

	"github.com/go-chi/chi/v5"
)

// ListingDetailHandler handles GET /api/v1/listings/{id}. The delta
// block is present only when the listing reconciled to a model with
// historical prices; its absence is rendered as a dash by the UI, not
// an error.
func ListingDetailHandler(
	listings *repositories.ListingRepository,
	catalog *repositories.CatalogRepository,
	prices *repositories.PriceHistoryRepository,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			common.RespondError(w, initTime, nil, "Invalid listing id", http.StatusBadRequest)
			return
		}

		listing, err := listings.GetByID(r.Context(), id)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to load listing")
			return
		}
		if listing == nil {
			common.RespondError(w, initTime, nil, "Listing not found", http.StatusNotFound)
			return
		}

		detail := dtos.ListingDetail{
			ID:             listing.ID,
			URL:            listing.URL,
			Title:          listing.Title,
			PriceEUR:       listing.PriceEUR,
			Currency:       listing.Currency,
			MileageKM:      listing.MileageKM,
			Year:           listing.Year,
			Location:       listing.Location,
			Description:    listing.Description,
			ExtractedMake:  listing.ExtractedMake,
			ExtractedModel: listing.ExtractedModel,
		}

		if listing.Images != nil && *listing.Images != "" {
			detail.Images = strings.Split(*listing.Images, ",")
		}
		if len(listing.Specs) > 0 {
			detail.Specs = json.RawMessage(listing.Specs)
		}

		if listing.ModelID != nil {
			if err := attachCatalog(r, catalog, prices, listing.PriceEUR, listing.Year, *listing.ModelID, &detail); err != nil {
				common.RespondError(w, initTime, err, "Failed to load catalog data")
				return
			}
		}

		common.RespondSuccess(w, initTime, "Listing fetched", detail)
	}
}

func attachCatalog(
	r *http.Request,
	catalog *repositories.CatalogRepository,
	prices *repositories.PriceHistoryRepository,
	priceEUR *float64,
	year *int,
	modelID int64,
	detail *dtos.ListingDetail,
) error {
	model, err := catalog.GetModelByID(r.Context(), modelID)
	if err != nil {
		return err
	}
	if model == nil {
		// Weak reference points nowhere; treat as unreconciled.
		return nil
	}
	detail.Model = &model.Name

	maker, err := catalog.GetMakerByID(r.Context(), model.MakerID)
	if err != nil {
		return err
	}
	if maker != nil {
		detail.Maker = &maker.Name
	}

	if priceEUR == nil {
		return nil
	}
	points, err := prices.PointsByModelID(r.Context(), modelID)
	if err != nil {
		return err
	}
	if delta := services.ComputeDelta(*priceEUR, year, points); delta != nil {
		detail.Delta = &dtos.DeltaView{
			ReferencePrice:  delta.ReferencePrice,
			ReferenceYear:   delta.ReferenceYear,
			Discount:        delta.Delta,
			DiscountPercent: delta.DeltaPercent,
		}
	}
	return nil
}
