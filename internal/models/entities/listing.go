package entities

import "github.com/jmoiron/sqlx/types"

// Listing is a scraped used-car advert. URL is the natural external
// key; re-ingesting the same url updates the row in place. ModelID is
// a weak reference filled by reconciliation and stays NULL when no
// catalog match was found.
type Listing struct {
	ID             int64          `db:"id"`
	URL            string         `db:"url"`
	Title          string         `db:"title"`
	PriceEUR       *float64       `db:"price_eur"`
	Currency       string         `db:"currency"`
	MileageKM      *float64       `db:"mileage_km"`
	Year           *int           `db:"year"`
	Location       *string        `db:"location"`
	Description    *string        `db:"description"`
	Images         *string        `db:"images"`
	Specs          types.JSONText `db:"specs"`
	ModelID        *int64         `db:"model_id"`
	ExtractedMake  *string        `db:"extracted_make"`
	ExtractedModel *string        `db:"extracted_model"`
}

// DealRow is a listing joined with its reconciled catalog names. Only
// reconciled listings with a price produce deal rows.
type DealRow struct {
	ID             int64    `db:"id"`
	URL            string   `db:"url"`
	Title          string   `db:"title"`
	PriceEUR       float64  `db:"price_eur"`
	Currency       string   `db:"currency"`
	MileageKM      *float64 `db:"mileage_km"`
	Year           *int     `db:"year"`
	Location       *string  `db:"location"`
	ModelID        int64    `db:"model_id"`
	ExtractedMake  *string  `db:"extracted_make"`
	ExtractedModel *string  `db:"extracted_model"`
	MakerName      string   `db:"maker_name"`
	ModelName      string   `db:"model_name"`
}

// UnmatchedListing is the slice of a listing the backfill job needs.
type UnmatchedListing struct {
	ID             int64   `db:"id"`
	Title          string  `db:"title"`
	ExtractedMake  *string `db:"extracted_make"`
	ExtractedModel *string `db:"extracted_model"`
}

// PriceSample is the row shape the analytics queries pull.
type PriceSample struct {
	PriceEUR  float64  `db:"price_eur"`
	Year      *int     `db:"year"`
	MileageKM *float64 `db:"mileage_km"`
	Location  *string  `db:"location"`
}

// AnomalyCandidate carries enough of a listing to report a price outlier.
type AnomalyCandidate struct {
	ID        int64    `db:"id"`
	URL       string   `db:"url"`
	Title     string   `db:"title"`
	PriceEUR  float64  `db:"price_eur"`
	Year      *int     `db:"year"`
	MileageKM *float64 `db:"mileage_km"`
	Make      *string  `db:"make"`
	Model     *string  `db:"model"`
}
