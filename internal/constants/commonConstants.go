package constants

type (
	APIStatus   string
	CachePrefix string
	SortKey     string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixAnalytics CachePrefix = "ANALYTICS_"
	CachePrefixCatalog   CachePrefix = "CATALOG_"

	// Allowed sort keys for the deals endpoint. A leading "-" on the
	// request value flips the direction to descending.
	SortKeyDiscountPercent SortKey = "discount_percent"
	SortKeyDiscount        SortKey = "discount"
	SortKeyPrice           SortKey = "price"
	SortKeyOriginalPrice   SortKey = "original_price"
	SortKeyYear            SortKey = "year"
	SortKeyTitle           SortKey = "title"
)

// DefaultDealsLimit caps page sizes for the deals endpoint.
const (
	DefaultDealsLimit = 50
	MaxDealsLimit     = 200
)
