package dtos

// DealQuery carries the parsed query parameters of the deals endpoint.
// Zero values mean "not filtered"; pointer fields distinguish an absent
// bound from an explicit zero.
type DealQuery struct {
	Maker       string
	Model       string
	MinPrice    *float64
	MaxPrice    *float64
	MinDiscount *float64
	MaxDiscount *float64
	Sort        string
	Limit       int
	Offset      int
}

// AnalyticsFilter is the shared filter set of the analytics endpoints.
type AnalyticsFilter struct {
	Make  string
	Model string
	Year  *int
}

// FMVQuery extends the analytics filter with the mileage used for the
// fair-market-value adjustment.
type FMVQuery struct {
	AnalyticsFilter
	MileageKM *float64
}
