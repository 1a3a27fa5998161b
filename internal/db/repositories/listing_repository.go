package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dealradar/internal/constants"
	"dealradar/internal/models/dtos"
	"dealradar/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db}
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*entities.Listing, error) {
	var listing entities.Listing
	err := r.db.GetContext(ctx, &listing, constants.GetListingByID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// DealRows returns the candidate rows of the deals view: reconciled
// listings with a positive price, joined with their catalog names.
// Maker/model filters match either the raw extracted text or the
// matched catalog name, as an OR.
func (r *ListingRepository) DealRows(ctx context.Context, maker, model string) ([]entities.DealRow, error) {
	var (
		conds = []string{"l.price_eur IS NOT NULL", "l.price_eur > 0"}
		args  []interface{}
	)

	if maker != "" {
		args = append(args, maker)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(LOWER(l.extracted_make) LIKE '%%' || LOWER($%d) || '%%' OR LOWER(mk.name) LIKE '%%' || LOWER($%d) || '%%')", n, n))
	}
	if model != "" {
		args = append(args, model)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(LOWER(l.extracted_model) LIKE '%%' || LOWER($%d) || '%%' OR LOWER(m.name) LIKE '%%' || LOWER($%d) || '%%')", n, n))
	}

	query := fmt.Sprintf(`
	SELECT l.id, l.url, l.title, l.price_eur, l.currency, l.mileage_km, l.year,
	       l.location, l.model_id, l.extracted_make, l.extracted_model,
	       mk.name AS maker_name, m.name AS model_name
	FROM listings l
	JOIN models m ON m.id = l.model_id
	JOIN makers mk ON mk.id = m.maker_id
	WHERE %s
	ORDER BY l.id ASC
	`, strings.Join(conds, " AND "))

	rows := []entities.DealRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// catalogFilter builds the shared make/model/year conditions of the
// analytics queries. The make and model filters match the extracted
// text OR the reconciled catalog name, mirroring the deals view.
func catalogFilter(f dtos.AnalyticsFilter, conds []string, args []interface{}) ([]string, []interface{}) {
	if f.Make != "" {
		args = append(args, f.Make)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(LOWER(l.extracted_make) LIKE '%%' || LOWER($%d) || '%%' OR LOWER(mk.name) LIKE '%%' || LOWER($%d) || '%%')", n, n))
	}
	if f.Model != "" {
		args = append(args, f.Model)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(LOWER(l.extracted_model) LIKE '%%' || LOWER($%d) || '%%' OR LOWER(m.name) LIKE '%%' || LOWER($%d) || '%%')", n, n))
	}
	if f.Year != nil {
		args = append(args, *f.Year)
		conds = append(conds, fmt.Sprintf("l.year = $%d", len(args)))
	}
	return conds, args
}

const analyticsBase = `
	SELECT l.price_eur, l.year, l.mileage_km, l.location
	FROM listings l
	LEFT JOIN models m ON m.id = l.model_id
	LEFT JOIN makers mk ON mk.id = m.maker_id
	WHERE %s
	ORDER BY l.id ASC
	`

// PriceSamples returns priced listings matching the filter.
func (r *ListingRepository) PriceSamples(ctx context.Context, f dtos.AnalyticsFilter) ([]entities.PriceSample, error) {
	conds := []string{"l.price_eur IS NOT NULL", "l.price_eur > 0"}
	conds, args := catalogFilter(f, conds, nil)

	samples := []entities.PriceSample{}
	query := fmt.Sprintf(analyticsBase, strings.Join(conds, " AND "))
	if err := r.db.SelectContext(ctx, &samples, query, args...); err != nil {
		return nil, err
	}
	return samples, nil
}

// MileageSamples returns listings with a recorded mileage matching the
// filter. Price may be absent; mileage analytics do not require it.
func (r *ListingRepository) MileageSamples(ctx context.Context, f dtos.AnalyticsFilter) ([]entities.PriceSample, error) {
	conds := []string{"l.mileage_km IS NOT NULL", "l.mileage_km > 0"}
	conds, args := catalogFilter(f, conds, nil)

	samples := []entities.PriceSample{}
	query := fmt.Sprintf(analyticsBase, strings.Join(conds, " AND "))
	if err := r.db.SelectContext(ctx, &samples, query, args...); err != nil {
		return nil, err
	}
	return samples, nil
}

// LocationSamples returns priced listings with a non-empty location.
func (r *ListingRepository) LocationSamples(ctx context.Context) ([]entities.PriceSample, error) {
	conds := []string{
		"l.location IS NOT NULL", "l.location != ''",
		"l.price_eur IS NOT NULL", "l.price_eur > 0",
	}

	samples := []entities.PriceSample{}
	query := fmt.Sprintf(analyticsBase, strings.Join(conds, " AND "))
	if err := r.db.SelectContext(ctx, &samples, query); err != nil {
		return nil, err
	}
	return samples, nil
}

// AnomalyCandidates returns up to fetchLimit priced listings for the
// z-score scan, most expensive first, with catalog names coalesced over
// the extracted text.
func (r *ListingRepository) AnomalyCandidates(ctx context.Context, f dtos.AnalyticsFilter, fetchLimit int) ([]entities.AnomalyCandidate, error) {
	conds := []string{"l.price_eur IS NOT NULL", "l.price_eur > 0"}
	conds, args := catalogFilter(f, conds, nil)

	args = append(args, fetchLimit)
	query := fmt.Sprintf(`
	SELECT l.id, l.url, l.title, l.price_eur, l.year, l.mileage_km,
	       COALESCE(mk.name, l.extracted_make) AS make,
	       COALESCE(m.name, l.extracted_model) AS model
	FROM listings l
	LEFT JOIN models m ON m.id = l.model_id
	LEFT JOIN makers mk ON mk.id = m.maker_id
	WHERE %s
	ORDER BY l.price_eur DESC
	LIMIT $%d
	`, strings.Join(conds, " AND "), len(args))

	rows := []entities.AnomalyCandidate{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// Unmatched returns listings that ingested without a catalog match.
func (r *ListingRepository) Unmatched(ctx context.Context) ([]entities.UnmatchedListing, error) {
	rows := []entities.UnmatchedListing{}
	if err := r.db.SelectContext(ctx, &rows, constants.GetUnmatchedListings); err != nil {
		return nil, err
	}
	return rows, nil
}

// SetModelID links a listing to a catalog model.
func (r *ListingRepository) SetModelID(ctx context.Context, listingID, modelID int64) error {
	_, err := r.db.ExecContext(ctx, constants.UpdateListingModelID, modelID, listingID)
	return err
}
