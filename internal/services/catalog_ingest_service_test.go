package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"dealradar/internal/ingest"
)

// fakeCatalogWriter records upserts in memory and counts calls, so the
// tests can tell cached lookups from storage round-trips.
type fakeCatalogWriter struct {
	makerIDs map[string]int64
	modelIDs map[string]int64
	points   map[string]float64

	makerCalls int
	modelCalls int
}

func newFakeCatalogWriter() *fakeCatalogWriter {
	return &fakeCatalogWriter{
		makerIDs: map[string]int64{},
		modelIDs: map[string]int64{},
		points:   map[string]float64{},
	}
}

func (f *fakeCatalogWriter) UpsertMaker(ctx context.Context, name string) (int64, error) {
	f.makerCalls++
	key := strings.ToLower(name)
	if id, ok := f.makerIDs[key]; ok {
		return id, nil
	}
	id := int64(len(f.makerIDs) + 1)
	f.makerIDs[key] = id
	return id, nil
}

func (f *fakeCatalogWriter) UpsertModel(ctx context.Context, makerID int64, genmodelID, name string) (int64, error) {
	f.modelCalls++
	key := fmt.Sprintf("%d|%s", makerID, genmodelID)
	if id, ok := f.modelIDs[key]; ok {
		return id, nil
	}
	id := int64(len(f.modelIDs) + 100)
	f.modelIDs[key] = id
	return id, nil
}

func (f *fakeCatalogWriter) UpsertPricePoint(ctx context.Context, modelID int64, year int, entryPrice, entryPriceEUR float64) error {
	f.points[fmt.Sprintf("%d|%d", modelID, year)] = entryPriceEUR
	return nil
}

func salesSource(t *testing.T, csv string) *ingest.Source {
	t.Helper()
	src, err := ingest.NewSource(strings.NewReader(csv), ingest.SalesColumns, []string{"maker", "genmodel", "genmodel_id"})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return src
}

func priceSource(t *testing.T, csv string) *ingest.Source {
	t.Helper()
	src, err := ingest.NewSource(strings.NewReader(csv), ingest.PriceColumns, []string{"maker", "genmodel", "genmodel_id", "year"})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return src
}

func TestCatalogIngestService_IngestSales(t *testing.T) {
	writer := newFakeCatalogWriter()
	svc := NewCatalogIngestService(writer)

	csv := "maker,genmodel,genmodel_id\n" +
		"Skoda,Octavia,10_3\n" +
		"Skoda,Fabia,10_1\n" +
		"BMW,3 Series,5_2\n" +
		"Skoda,,10_9\n" // missing genmodel, skipped

	stats, err := svc.IngestSales(context.Background(), salesSource(t, csv), NewRunCache())
	if err != nil {
		t.Fatalf("IngestSales: %v", err)
	}
	if stats.Rows != 4 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 4 rows / 1 skipped", stats)
	}
	if len(writer.makerIDs) != 2 {
		t.Errorf("got %d makers, want 2", len(writer.makerIDs))
	}
	if len(writer.modelIDs) != 3 {
		t.Errorf("got %d models, want 3", len(writer.modelIDs))
	}

	// The run cache absorbs repeated maker lookups: one storage call
	// per distinct maker.
	if writer.makerCalls != 2 {
		t.Errorf("maker upsert called %d times, want 2", writer.makerCalls)
	}
}

func TestCatalogIngestService_IngestPrices(t *testing.T) {
	writer := newFakeCatalogWriter()
	svc := NewCatalogIngestService(writer)

	csv := "maker,genmodel,genmodel_id,year,entry_price\n" +
		"Skoda,Octavia,10_3,2018,\"21,500\"\n" +
		"Skoda,Octavia,10_3,2019,22500\n" +
		"Skoda,Octavia,10_3,notayear,23000\n" // bad year, skipped

	stats, err := svc.IngestPrices(context.Background(), priceSource(t, csv), NewRunCache())
	if err != nil {
		t.Fatalf("IngestPrices: %v", err)
	}
	if stats.Rows != 3 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 3 rows / 1 skipped", stats)
	}
	if len(writer.points) != 2 {
		t.Fatalf("got %d price points, want 2", len(writer.points))
	}

	// No entry_price_eur column: the EUR value falls back to
	// entry_price, thousands separator stripped.
	modelID := writer.modelIDs["1|10_3"]
	if got := writer.points[fmt.Sprintf("%d|2018", modelID)]; got != 21500 {
		t.Errorf("2018 price = %v, want 21500", got)
	}
}

func TestCatalogIngestService_RunCacheSharedAcrossPasses(t *testing.T) {
	writer := newFakeCatalogWriter()
	svc := NewCatalogIngestService(writer)
	cache := NewRunCache()
	ctx := context.Background()

	sales := "maker,genmodel,genmodel_id\nSkoda,Octavia,10_3\n"
	if _, err := svc.IngestSales(ctx, salesSource(t, sales), cache); err != nil {
		t.Fatalf("IngestSales: %v", err)
	}

	prices := "maker,genmodel,genmodel_id,year,entry_price\nSkoda,Octavia,10_3,2018,21500\n"
	if _, err := svc.IngestPrices(ctx, priceSource(t, prices), cache); err != nil {
		t.Fatalf("IngestPrices: %v", err)
	}

	// The price pass reuses the ids cached during the sales pass.
	if writer.makerCalls != 1 || writer.modelCalls != 1 {
		t.Errorf("calls = %d makers / %d models, want 1 / 1", writer.makerCalls, writer.modelCalls)
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"21500", 21500},
		{"21,500", 21500},
		{"€21.500,00", 0}, // two dots after stripping, unparseable
		{"EUR 21500", 21500},
		{"21500.50", 21500.50},
		{"", 0},
		{"n/a", 0},
	}
	for _, tc := range cases {
		if got := parsePrice(tc.in); got != tc.want {
			t.Errorf("parsePrice(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
