package services

import (
	"context"
	"strings"

	"dealradar/internal/logging"
	"dealradar/internal/models/entities"
)

// CatalogLookup is the storage contract the matcher needs. Both the
// sqlx and the GORM catalog repositories implement it.
type CatalogLookup interface {
	FindMakerByName(ctx context.Context, name string) (*entities.Maker, error)
	FindModelInMaker(ctx context.Context, makerID int64, term string) (*entities.Model, error)
}

// MatchResult is the tagged outcome of a reconciliation attempt. A
// non-match is an expected terminal state, not an error.
type MatchResult struct {
	Matched   bool
	MakerID   int64
	ModelID   int64
	MakerName string
	ModelName string
}

// ReconcileService associates free-text (make, model) candidates with
// catalog entries using case-insensitive substring matching.
type ReconcileService struct {
	catalog CatalogLookup
}

func NewReconcileService(catalog CatalogLookup) *ReconcileService {
	return &ReconcileService{catalog: catalog}
}

// Match looks up a candidate pair against the catalog. It is total:
// storage errors are logged and collapse to a non-match so a failed
// lookup never aborts ingestion of a listing. Given identical catalog
// state the result is deterministic: lookups order by ascending id, so
// "first match" means catalog insertion order.
func (s *ReconcileService) Match(ctx context.Context, make, model string) MatchResult {
	if make == "" || model == "" {
		return MatchResult{}
	}

	maker, err := s.catalog.FindMakerByName(ctx, make)
	if err != nil {
		logging.Warn("Maker lookup failed, treating as no match",
			"make", make,
			"error", err.Error(),
		)
		return MatchResult{}
	}
	if maker == nil {
		return MatchResult{}
	}

	// Only the first whitespace token of the extracted model takes part
	// in the search. Whitespace-only input has no token to search with.
	fields := strings.Fields(model)
	if len(fields) == 0 {
		return MatchResult{}
	}
	term := fields[0]

	m, err := s.catalog.FindModelInMaker(ctx, maker.ID, term)
	if err != nil {
		logging.Warn("Model lookup failed, treating as no match",
			"make", make,
			"model", model,
			"error", err.Error(),
		)
		return MatchResult{}
	}
	if m == nil {
		return MatchResult{}
	}

	return MatchResult{
		Matched:   true,
		MakerID:   maker.ID,
		ModelID:   m.ID,
		MakerName: maker.Name,
		ModelName: m.Name,
	}
}
