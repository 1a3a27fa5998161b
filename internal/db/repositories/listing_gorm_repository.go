package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "dealradar/internal/models/gorm"

	"gorm.io/gorm"
)

// ListingGormRepository is the write side of the listings table, used
// by ingestion. URL is the natural key: re-ingesting the same url
// updates mutable fields in place and preserves the id.
type ListingGormRepository struct {
	db *gorm.DB
}

func NewListingGormRepository(db *gorm.DB) *ListingGormRepository {
	return &ListingGormRepository{db: db}
}

// UpsertByURL writes a listing keyed on url. Returns the row id and
// whether a new row was created.
func (r *ListingGormRepository) UpsertByURL(ctx context.Context, listing *gormModels.Listing) (int64, bool, error) {
	var existing gormModels.Listing
	err := r.db.WithContext(ctx).
		Where("url = ?", listing.URL).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
			return 0, false, fmt.Errorf("create listing %q: %w", listing.URL, err)
		}
		return listing.ID, true, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find listing %q: %w", listing.URL, err)
	}

	listing.ID = existing.ID
	if err := r.db.WithContext(ctx).
		Model(&gormModels.Listing{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"title":           listing.Title,
			"price_eur":       listing.PriceEUR,
			"currency":        listing.Currency,
			"mileage_km":      listing.MileageKM,
			"year":            listing.Year,
			"location":        listing.Location,
			"description":     listing.Description,
			"images":          listing.Images,
			"specs":           listing.Specs,
			"model_id":        listing.ModelID,
			"extracted_make":  listing.ExtractedMake,
			"extracted_model": listing.ExtractedModel,
		}).Error; err != nil {
		return 0, false, fmt.Errorf("update listing %q: %w", listing.URL, err)
	}
	return existing.ID, false, nil
}
