package entities

// PricePoint is one historical new-car price for a model in a given
// year. At most one point exists per (model_id, year).
type PricePoint struct {
	ModelID       int64   `db:"model_id"`
	Year          int     `db:"year"`
	EntryPrice    float64 `db:"entry_price"`
	EntryPriceEUR float64 `db:"entry_price_eur"`
}
