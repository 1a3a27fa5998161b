package gorm

// Catalog tables. Ingestion writes through GORM so natural-key upserts
// can lean on ON CONFLICT; the query side reads the same tables via sqlx.

type Maker struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;not null"`
}

func (Maker) TableName() string {
	return "makers"
}

type Model struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	MakerID    int64  `gorm:"column:maker_id;not null;uniqueIndex:idx_models_maker_genmodel"`
	Name       string `gorm:"column:name;not null"`
	GenmodelID string `gorm:"column:genmodel_id;not null;uniqueIndex:idx_models_maker_genmodel"`

	Maker Maker `gorm:"foreignKey:MakerID"`
}

func (Model) TableName() string {
	return "models"
}

type PricePoint struct {
	ModelID       int64   `gorm:"column:model_id;primaryKey;autoIncrement:false"`
	Year          int     `gorm:"column:year;primaryKey;autoIncrement:false"`
	EntryPrice    float64 `gorm:"column:entry_price"`
	EntryPriceEUR float64 `gorm:"column:entry_price_eur"`

	Model Model `gorm:"foreignKey:ModelID"`
}

func (PricePoint) TableName() string {
	return "price_history"
}
