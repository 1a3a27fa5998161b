package repositories

import (
	"context"

	"dealradar/internal/constants"
	"dealradar/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

type PriceHistoryRepository struct {
	db *sqlx.DB
}

func NewPriceHistoryRepository(db *sqlx.DB) *PriceHistoryRepository {
	return &PriceHistoryRepository{db}
}

// PointsByModelID returns all historical price points for one model,
// ascending by year. Gaps between years are legal.
func (r *PriceHistoryRepository) PointsByModelID(ctx context.Context, modelID int64) ([]entities.PricePoint, error) {
	points := []entities.PricePoint{}
	if err := r.db.SelectContext(ctx, &points, constants.GetPricePointsByModel, modelID); err != nil {
		return nil, err
	}
	return points, nil
}

// PointsByModelIDs batch-loads price history for a set of models,
// grouped by model id.
func (r *PriceHistoryRepository) PointsByModelIDs(ctx context.Context, modelIDs []int64) (map[int64][]entities.PricePoint, error) {
	grouped := make(map[int64][]entities.PricePoint, len(modelIDs))
	if len(modelIDs) == 0 {
		return grouped, nil
	}

	query, args, err := sqlx.In(constants.GetPricePointsByModels, modelIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	points := []entities.PricePoint{}
	if err := r.db.SelectContext(ctx, &points, query, args...); err != nil {
		return nil, err
	}

	for _, p := range points {
		grouped[p.ModelID] = append(grouped[p.ModelID], p)
	}
	return grouped, nil
}
