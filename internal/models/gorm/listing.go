package gorm

type Listing struct {
	ID             int64    `gorm:"column:id;primaryKey;autoIncrement"`
	URL            string   `gorm:"column:url;uniqueIndex;not null"`
	Title          string   `gorm:"column:title"`
	PriceEUR       *float64 `gorm:"column:price_eur"`
	Currency       string   `gorm:"column:currency"`
	MileageKM      *float64 `gorm:"column:mileage_km"`
	Year           *int     `gorm:"column:year"`
	Location       *string  `gorm:"column:location"`
	Description    *string  `gorm:"column:description"`
	Images         *string  `gorm:"column:images"`
	Specs          *string  `gorm:"column:specs;type:jsonb"`
	ModelID        *int64   `gorm:"column:model_id"`
	ExtractedMake  *string  `gorm:"column:extracted_make"`
	ExtractedModel *string  `gorm:"column:extracted_model"`
}

func (Listing) TableName() string {
	return "listings"
}
