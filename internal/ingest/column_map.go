package ingest

import (
	"fmt"
	"strings"
)

// ColumnMap maps canonical field names to CSV column indexes. It is
// resolved once from the header before any row is processed, so the
// rest of ingestion works against a fixed schema instead of branching
// on header synonyms per row.
type ColumnMap map[string]int

// Synonyms lists, per canonical field, the header spellings the source
// CSVs use for it. Matching is case-insensitive on trimmed headers; the
// first synonym found wins.
type Synonyms map[string][]string

// Source CSV schemas. The reference tables come from the DVM-CAR
// dataset exports, whose column names drifted across versions.
var (
	SalesColumns = Synonyms{
		"maker":       {"maker", "make", "automaker"},
		"genmodel":    {"genmodel", "model", "genmodel_name"},
		"genmodel_id": {"genmodel_id", "genmodel id", "model_id"},
	}

	PriceColumns = Synonyms{
		"maker":           {"maker", "make", "automaker"},
		"genmodel":        {"genmodel", "model", "genmodel_name"},
		"genmodel_id":     {"genmodel_id", "genmodel id", "model_id"},
		"year":            {"year", "reg_year"},
		"entry_price":     {"entry_price", "entry price", "price"},
		"entry_price_eur": {"entry_price_eur", "price_eur"},
	}

	ListingColumns = Synonyms{
		"url":         {"url", "link"},
		"title":       {"title", "name"},
		"price_eur":   {"price_eur", "price"},
		"currency":    {"currency"},
		"mileage_km":  {"mileage_km", "mileage", "km"},
		"year":        {"year", "reg_year", "first_registration"},
		"location":    {"location", "region", "city"},
		"description": {"description", "details"},
		"images":      {"images", "image_urls"},
		"specs":       {"specs", "specifications"},
	}
)

// ResolveColumns builds a ColumnMap from a CSV header. Fields listed in
// required must resolve or the whole source is rejected; optional
// fields are simply absent from the map.
func ResolveColumns(header []string, synonyms Synonyms, required []string) (ColumnMap, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cols := make(ColumnMap, len(synonyms))
	for field, names := range synonyms {
		for _, name := range names {
			if i, ok := index[strings.ToLower(name)]; ok {
				cols[field] = i
				break
			}
		}
	}

	for _, field := range required {
		if _, ok := cols[field]; !ok {
			return nil, fmt.Errorf("required column %q not found in header %v", field, header)
		}
	}
	return cols, nil
}

// Field returns the value of a canonical field in a row, trimmed, or ""
// when the field is unmapped or the row is short.
func (c ColumnMap) Field(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
