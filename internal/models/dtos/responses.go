package dtos

import "time"

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// ---- Deals ----

// DealView is one row of the deals table: a reconciled listing with its
// computed discount against the closest historical reference price.
// Positive discount means the listing is cheaper than the reference.
type DealView struct {
	ID              int64    `json:"id"`
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	PriceEUR        float64  `json:"price_eur"`
	Currency        string   `json:"currency,omitempty"`
	MileageKM       *float64 `json:"mileage_km,omitempty"`
	Year            *int     `json:"year,omitempty"`
	Location        *string  `json:"location,omitempty"`
	Maker           string   `json:"maker"`
	Model           string   `json:"model"`
	ExtractedMake   *string  `json:"extracted_make,omitempty"`
	ExtractedModel  *string  `json:"extracted_model,omitempty"`
	ReferencePrice  float64  `json:"reference_price"`
	ReferenceYear   int      `json:"reference_year"`
	Discount        float64  `json:"discount"`
	DiscountPercent float64  `json:"discount_percent"`
}

type DealPage struct {
	Deals  []DealView `json:"deals"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// ListingDetail is the single-listing view. Delta is nil when the
// listing has no comparable reference price; the UI renders a dash.
type ListingDetail struct {
	ID             int64      `json:"id"`
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	PriceEUR       *float64   `json:"price_eur,omitempty"`
	Currency       string     `json:"currency,omitempty"`
	MileageKM      *float64   `json:"mileage_km,omitempty"`
	Year           *int       `json:"year,omitempty"`
	Location       *string    `json:"location,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Images         []string   `json:"images,omitempty"`
	Specs          any        `json:"specs,omitempty"`
	ExtractedMake  *string    `json:"extracted_make,omitempty"`
	ExtractedModel *string    `json:"extracted_model,omitempty"`
	Maker          *string    `json:"maker,omitempty"`
	Model          *string    `json:"model,omitempty"`
	Delta          *DeltaView `json:"delta,omitempty"`
}

type DeltaView struct {
	ReferencePrice  float64 `json:"reference_price"`
	ReferenceYear   int     `json:"reference_year"`
	Discount        float64 `json:"discount"`
	DiscountPercent float64 `json:"discount_percent"`
}

// ---- Catalog ----

type MakerView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ModelView struct {
	ID         int64  `json:"id"`
	MakerID    int64  `json:"maker_id"`
	Name       string `json:"name"`
	GenmodelID string `json:"genmodel_id"`
}

// ---- Analytics ----

type DistributionStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Stddev float64 `json:"stddev"`
}

type MileageDistribution struct {
	DistributionStats
	AvgMileagePerYear *float64 `json:"avg_mileage_per_year,omitempty"`
}

type PriceAnomaly struct {
	ID          int64    `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	PriceEUR    float64  `json:"price_eur"`
	Year        *int     `json:"year,omitempty"`
	MileageKM   *float64 `json:"mileage_km,omitempty"`
	Make        *string  `json:"make,omitempty"`
	Model       *string  `json:"model,omitempty"`
	ZScore      float64  `json:"z_score"`
	AnomalyType string   `json:"anomaly_type"`
}

type AnomalyReport struct {
	Anomalies []PriceAnomaly `json:"anomalies"`
}

type YearBucket struct {
	Year         int     `json:"year"`
	ListingCount int     `json:"listing_count"`
	AvgPrice     float64 `json:"avg_price"`
	MedianPrice  float64 `json:"median_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

type PriceEvolution struct {
	Evolution    []YearBucket `json:"evolution"`
	Trend        string       `json:"trend"`
	TrendPercent float64      `json:"trend_percent"`
}

type LocationBucket struct {
	Location     string  `json:"location"`
	ListingCount int     `json:"listing_count"`
	AvgPrice     float64 `json:"avg_price"`
	MedianPrice  float64 `json:"median_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

type LocationHeatmap struct {
	HeatmapData []LocationBucket `json:"heatmap_data"`
}

type FMVResult struct {
	FairMarketValue float64 `json:"fair_market_value"`
	AveragePrice    float64 `json:"average_price"`
	MedianPrice     float64 `json:"median_price"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	SampleSize      int     `json:"sample_size"`
	Confidence      string  `json:"confidence"`
}

// ---- Jobs ----

type JobStatusView struct {
	Name       string     `json:"name"`
	State      string     `json:"state"`
	Processed  int        `json:"processed"`
	Matched    int        `json:"matched"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}
