package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dealradar/internal/ingest"
	"dealradar/internal/logging"
)

// CatalogWriter is the storage contract of catalog ingestion. The
// storage-level uniqueness constraints are the source of truth for
// idempotency; the per-run cache only avoids repeated lookups.
type CatalogWriter interface {
	UpsertMaker(ctx context.Context, name string) (int64, error)
	UpsertModel(ctx context.Context, makerID int64, genmodelID, name string) (int64, error)
	UpsertPricePoint(ctx context.Context, modelID int64, year int, entryPrice, entryPriceEUR float64) error
}

// RunCache memoizes maker and model ids for a single ingestion run. It
// is constructed per run and passed in explicitly, so repeated or
// concurrent runs can never observe entries from a previous run.
type RunCache struct {
	makerIDs map[string]int64
	modelIDs map[string]int64
}

func NewRunCache() *RunCache {
	return &RunCache{
		makerIDs: make(map[string]int64),
		modelIDs: make(map[string]int64),
	}
}

func modelKey(makerID int64, genmodelID string) string {
	return fmt.Sprintf("%d|%s", makerID, genmodelID)
}

// CatalogIngestStats summarizes one catalog ingestion pass.
type CatalogIngestStats struct {
	Rows    int
	Skipped int
}

type CatalogIngestService struct {
	writer CatalogWriter
}

func NewCatalogIngestService(writer CatalogWriter) *CatalogIngestService {
	return &CatalogIngestService{writer: writer}
}

// IngestSales seeds makers and models from the sales reference table.
// Rows missing any natural-key field are skipped, not fatal.
func (s *CatalogIngestService) IngestSales(ctx context.Context, src *ingest.Source, cache *RunCache) (CatalogIngestStats, error) {
	var stats CatalogIngestStats

	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read sales row: %w", err)
		}
		stats.Rows++

		maker := src.Field(row, "maker")
		genmodel := src.Field(row, "genmodel")
		genmodelID := src.Field(row, "genmodel_id")
		if maker == "" || genmodel == "" || genmodelID == "" {
			stats.Skipped++
			continue
		}

		if _, err := s.ensureModel(ctx, cache, maker, genmodelID, genmodel); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// IngestPrices seeds historical price points. Rows with unparseable
// year or price are skipped with a warning; re-runs overwrite values
// for an existing (model, year) instead of duplicating.
func (s *CatalogIngestService) IngestPrices(ctx context.Context, src *ingest.Source, cache *RunCache) (CatalogIngestStats, error) {
	var stats CatalogIngestStats

	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read price row: %w", err)
		}
		stats.Rows++

		maker := src.Field(row, "maker")
		genmodel := src.Field(row, "genmodel")
		genmodelID := src.Field(row, "genmodel_id")
		if maker == "" || genmodel == "" || genmodelID == "" {
			stats.Skipped++
			continue
		}

		year, err := strconv.Atoi(src.Field(row, "year"))
		if err != nil {
			logging.Warn("Skipping price row with bad year",
				"genmodel_id", genmodelID,
				"year", src.Field(row, "year"),
			)
			stats.Skipped++
			continue
		}

		entryPrice := parsePrice(src.Field(row, "entry_price"))
		entryPriceEUR := parsePrice(src.Field(row, "entry_price_eur"))
		if entryPriceEUR == 0 {
			// Sources without a converted column carry EUR in entry_price.
			entryPriceEUR = entryPrice
		}

		modelID, err := s.ensureModel(ctx, cache, maker, genmodelID, genmodel)
		if err != nil {
			return stats, err
		}

		if err := s.writer.UpsertPricePoint(ctx, modelID, year, entryPrice, entryPriceEUR); err != nil {
			return stats, fmt.Errorf("upsert price point %s/%d: %w", genmodelID, year, err)
		}
	}
	return stats, nil
}

func (s *CatalogIngestService) ensureMaker(ctx context.Context, cache *RunCache, name string) (int64, error) {
	key := strings.ToLower(name)
	if id, ok := cache.makerIDs[key]; ok {
		return id, nil
	}
	id, err := s.writer.UpsertMaker(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("upsert maker %q: %w", name, err)
	}
	cache.makerIDs[key] = id
	return id, nil
}

func (s *CatalogIngestService) ensureModel(ctx context.Context, cache *RunCache, maker, genmodelID, name string) (int64, error) {
	makerID, err := s.ensureMaker(ctx, cache, maker)
	if err != nil {
		return 0, err
	}

	key := modelKey(makerID, genmodelID)
	if id, ok := cache.modelIDs[key]; ok {
		return id, nil
	}
	id, err := s.writer.UpsertModel(ctx, makerID, genmodelID, name)
	if err != nil {
		return 0, fmt.Errorf("upsert model %q: %w", genmodelID, err)
	}
	cache.modelIDs[key] = id
	return id, nil
}

// parsePrice tolerates currency symbols and thousands separators in the
// source price columns; unparseable values come back as 0.
func parsePrice(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
