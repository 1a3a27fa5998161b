package repositories

import (
	"context"
	"errors"
	"fmt"

	"dealradar/internal/models/entities"
	gormModels "dealradar/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogGormRepository is the write side of the reference catalog,
// used by ingestion. Upserts are keyed on the natural keys; the unique
// constraints remain the source of truth, per-run caches only save
// round-trips.
type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

// UpsertMaker returns the id of the maker with the given name, creating
// it when absent. Uniqueness is case-insensitive; the casing of the
// first occurrence is kept.
func (r *CatalogGormRepository) UpsertMaker(ctx context.Context, name string) (int64, error) {
	var maker gormModels.Maker
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&maker).Error
	if err == nil {
		return maker.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("find maker %q: %w", name, err)
	}

	maker = gormModels.Maker{Name: name}
	if err := r.db.WithContext(ctx).Create(&maker).Error; err != nil {
		// A concurrent run may have inserted the row; re-read before
		// giving up.
		var existing gormModels.Maker
		if lookupErr := r.db.WithContext(ctx).
			Where("LOWER(name) = LOWER(?)", name).
			First(&existing).Error; lookupErr == nil {
			return existing.ID, nil
		}
		return 0, fmt.Errorf("create maker %q: %w", name, err)
	}
	return maker.ID, nil
}

// UpsertModel returns the id for (makerID, genmodelID), creating the
// model when absent and refreshing its display name when it changed.
// The id never changes across re-seeds.
func (r *CatalogGormRepository) UpsertModel(ctx context.Context, makerID int64, genmodelID, name string) (int64, error) {
	var model gormModels.Model
	err := r.db.WithContext(ctx).
		Where("maker_id = ? AND genmodel_id = ?", makerID, genmodelID).
		First(&model).Error
	if err == nil {
		if model.Name != name {
			if err := r.db.WithContext(ctx).Model(&model).Update("name", name).Error; err != nil {
				return 0, fmt.Errorf("update model %q: %w", genmodelID, err)
			}
		}
		return model.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("find model %q: %w", genmodelID, err)
	}

	model = gormModels.Model{MakerID: makerID, GenmodelID: genmodelID, Name: name}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		var existing gormModels.Model
		if lookupErr := r.db.WithContext(ctx).
			Where("maker_id = ? AND genmodel_id = ?", makerID, genmodelID).
			First(&existing).Error; lookupErr == nil {
			return existing.ID, nil
		}
		return 0, fmt.Errorf("create model %q: %w", genmodelID, err)
	}
	return model.ID, nil
}

// UpsertPricePoint writes one historical price, overwriting the values
// for an existing (model_id, year) instead of duplicating the row.
func (r *CatalogGormRepository) UpsertPricePoint(ctx context.Context, modelID int64, year int, entryPrice, entryPriceEUR float64) error {
	point := gormModels.PricePoint{
		ModelID:       modelID,
		Year:          year,
		EntryPrice:    entryPrice,
		EntryPriceEUR: entryPriceEUR,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "model_id"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"entry_price", "entry_price_eur"}),
		}).
		Create(&point).Error
}

// FindMakerByName implements the reconciliation maker lookup over GORM
// so the seed CLI (and sqlite-backed tests) can run the matcher without
// a second connection. Semantics match CatalogRepository.FindMakerByName.
func (r *CatalogGormRepository) FindMakerByName(ctx context.Context, name string) (*entities.Maker, error) {
	var maker gormModels.Maker
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE '%' || LOWER(?) || '%'", name).
		Order("id ASC").
		First(&maker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entities.Maker{ID: maker.ID, Name: maker.Name}, nil
}

// FindModelInMaker implements the reconciliation model lookup over GORM.
func (r *CatalogGormRepository) FindModelInMaker(ctx context.Context, makerID int64, term string) (*entities.Model, error) {
	var model gormModels.Model
	err := r.db.WithContext(ctx).
		Where("maker_id = ? AND LOWER(name) LIKE '%' || LOWER(?) || '%'", makerID, term).
		Order("id ASC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entities.Model{
		ID:         model.ID,
		MakerID:    model.MakerID,
		Name:       model.Name,
		GenmodelID: model.GenmodelID,
	}, nil
}
