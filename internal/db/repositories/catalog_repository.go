package repositories

import (
	"context"
	"database/sql"
	"errors"

	"dealradar/internal/constants"
	"dealradar/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// CatalogRepository is the read side of the reference catalog. The
// catalog is never mutated at request time, so these queries run
// without coordination.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db}
}

// FindMakerByName resolves a free-text make against the catalog.
// Returns (nil, nil) when nothing matches.
func (r *CatalogRepository) FindMakerByName(ctx context.Context, name string) (*entities.Maker, error) {
	var maker entities.Maker
	err := r.db.GetContext(ctx, &maker, constants.FindMakerByName, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &maker, nil
}

// FindModelInMaker resolves a model search term within a maker.
// Returns (nil, nil) when nothing matches.
func (r *CatalogRepository) FindModelInMaker(ctx context.Context, makerID int64, term string) (*entities.Model, error) {
	var model entities.Model
	err := r.db.GetContext(ctx, &model, constants.FindModelInMaker, makerID, term)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (r *CatalogRepository) GetModelByID(ctx context.Context, id int64) (*entities.Model, error) {
	var model entities.Model
	err := r.db.GetContext(ctx, &model, constants.GetModelByID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (r *CatalogRepository) GetMakerByID(ctx context.Context, id int64) (*entities.Maker, error) {
	var maker entities.Maker
	err := r.db.GetContext(ctx, &maker, constants.GetMakerByID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &maker, nil
}

func (r *CatalogRepository) ListMakers(ctx context.Context) ([]entities.Maker, error) {
	makers := []entities.Maker{}
	if err := r.db.SelectContext(ctx, &makers, constants.ListMakers); err != nil {
		return nil, err
	}
	return makers, nil
}

func (r *CatalogRepository) ListModelsByMaker(ctx context.Context, makerID int64) ([]entities.Model, error) {
	models := []entities.Model{}
	if err := r.db.SelectContext(ctx, &models, constants.ListModelsByMaker, makerID); err != nil {
		return nil, err
	}
	return models, nil
}
