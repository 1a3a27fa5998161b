package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"dealradar/internal/ingest"
	"dealradar/internal/logging"
	gormModels "dealradar/internal/models/gorm"
)

// ListingWriter is the storage contract of listing ingestion.
type ListingWriter interface {
	UpsertByURL(ctx context.Context, listing *gormModels.Listing) (int64, bool, error)
}

// ListingIngestStats summarizes one listing ingestion pass.
type ListingIngestStats struct {
	Rows      int
	Created   int
	Updated   int
	Matched   int
	Unmatched int
	Skipped   int
}

// ListingIngestService upserts listings keyed on url and reconciles
// each one against the catalog as it lands. Reconciliation is
// best-effort: a listing that finds no catalog match is stored with a
// NULL model_id, with its extracted make/model kept as the fallback
// identity for downstream fuzzy joins.
type ListingIngestService struct {
	writer     ListingWriter
	reconciler *ReconcileService
}

func NewListingIngestService(writer ListingWriter, reconciler *ReconcileService) *ListingIngestService {
	return &ListingIngestService{writer: writer, reconciler: reconciler}
}

// Ingest drains a listing CSV source. Rows without a url are skipped;
// every other malformation degrades to NULL fields on the stored row.
func (s *ListingIngestService) Ingest(ctx context.Context, src *ingest.Source) (ListingIngestStats, error) {
	var stats ListingIngestStats

	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read listing row: %w", err)
		}
		stats.Rows++

		url := src.Field(row, "url")
		if url == "" {
			stats.Skipped++
			continue
		}

		listing := s.buildListing(ctx, src, row, url, &stats)
		if _, created, err := s.writer.UpsertByURL(ctx, listing); err != nil {
			return stats, fmt.Errorf("upsert listing %q: %w", url, err)
		} else if created {
			stats.Created++
		} else {
			stats.Updated++
		}
	}

	logging.Info("Listing ingestion finished",
		"rows", stats.Rows,
		"created", stats.Created,
		"updated", stats.Updated,
		"matched", stats.Matched,
		"unmatched", stats.Unmatched,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

func (s *ListingIngestService) buildListing(ctx context.Context, src *ingest.Source, row []string, url string, stats *ListingIngestStats) *gormModels.Listing {
	title := src.Field(row, "title")

	listing := &gormModels.Listing{
		URL:         url,
		Title:       title,
		Currency:    src.Field(row, "currency"),
		PriceEUR:    parseOptionalFloat(src.Field(row, "price_eur")),
		MileageKM:   parseOptionalFloat(src.Field(row, "mileage_km")),
		Year:        parseOptionalInt(src.Field(row, "year")),
		Location:    optionalString(src.Field(row, "location")),
		Description: optionalString(src.Field(row, "description")),
		Images:      optionalString(src.Field(row, "images")),
		Specs:       optionalJSON(src.Field(row, "specs")),
	}

	// Extracted fields are always populated from the title heuristics,
	// even when no catalog match follows.
	parts := ExtractTitle(title)
	listing.ExtractedMake = optionalString(parts.Make)
	listing.ExtractedModel = optionalString(parts.Model)

	result := s.reconciler.Match(ctx, parts.Make, parts.Model)
	if result.Matched {
		listing.ModelID = &result.ModelID
		stats.Matched++
	} else {
		stats.Unmatched++
	}
	return listing
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// optionalJSON keeps specs opaque: valid JSON passes through, anything
// else is wrapped as a JSON string so the jsonb column accepts it.
func optionalJSON(v string) *string {
	if v == "" {
		return nil
	}
	if json.Valid([]byte(v)) {
		return &v
	}
	wrapped, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(wrapped)
	return &s
}

func parseOptionalFloat(v string) *float64 {
	if v == "" {
		return nil
	}
	f := parsePrice(v)
	if f == 0 {
		return nil
	}
	return &f
}

func parseOptionalInt(v string) *int {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
