package services

import (
	"context"
	"strings"
	"testing"

	"dealradar/internal/db/repositories"
	"dealradar/internal/ingest"
	gormModels "dealradar/internal/models/gorm"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupIngestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&gormModels.Maker{},
		&gormModels.Model{},
		&gormModels.PricePoint{},
		&gormModels.Listing{},
	); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	catalog := repositories.NewCatalogGormRepository(db)
	ctx := context.Background()

	skoda, err := catalog.UpsertMaker(ctx, "Skoda")
	if err != nil {
		t.Fatalf("seed maker: %v", err)
	}
	if _, err := catalog.UpsertModel(ctx, skoda, "10_3", "Octavia"); err != nil {
		t.Fatalf("seed model: %v", err)
	}
}

func listingSource(t *testing.T, csv string) *ingest.Source {
	t.Helper()
	src, err := ingest.NewSource(strings.NewReader(csv), ingest.ListingColumns, []string{"url", "title"})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return src
}

func newListingPipeline(t *testing.T) (*gorm.DB, *ListingIngestService) {
	db := setupIngestDB(t)
	seedCatalog(t, db)

	reconciler := NewReconcileService(repositories.NewCatalogGormRepository(db))
	svc := NewListingIngestService(repositories.NewListingGormRepository(db), reconciler)
	return db, svc
}

func TestListingIngestService_Ingest(t *testing.T) {
	db, svc := newListingPipeline(t)

	csv := "url,title,price,mileage_km,year,location\n" +
		"https://cars.example/1,Skoda Octavia Combi 2.0 TSI,15000,120000,2018,Wien\n" +
		"https://cars.example/2,Renault Clio,8000,90000,2016,Graz\n" +
		",No URL Car,1000,,,\n"

	stats, err := svc.Ingest(context.Background(), listingSource(t, csv))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if stats.Rows != 3 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 3 rows / 1 skipped", stats)
	}
	if stats.Created != 2 || stats.Matched != 1 || stats.Unmatched != 1 {
		t.Errorf("stats = %+v, want 2 created / 1 matched / 1 unmatched", stats)
	}

	var octavia gormModels.Listing
	if err := db.Where("url = ?", "https://cars.example/1").First(&octavia).Error; err != nil {
		t.Fatalf("load octavia: %v", err)
	}
	if octavia.ModelID == nil {
		t.Error("octavia should be reconciled")
	}
	if octavia.ExtractedMake == nil || *octavia.ExtractedMake != "Skoda" {
		t.Errorf("ExtractedMake = %v, want Skoda", octavia.ExtractedMake)
	}
	if octavia.ExtractedModel == nil || *octavia.ExtractedModel != "Octavia Combi" {
		t.Errorf("ExtractedModel = %v, want Octavia Combi", octavia.ExtractedModel)
	}
	if octavia.PriceEUR == nil || *octavia.PriceEUR != 15000 {
		t.Errorf("PriceEUR = %v, want 15000", octavia.PriceEUR)
	}
	if octavia.Year == nil || *octavia.Year != 2018 {
		t.Errorf("Year = %v, want 2018", octavia.Year)
	}

	// No catalog match, but the extracted fields survive as fallback
	// identity.
	var clio gormModels.Listing
	if err := db.Where("url = ?", "https://cars.example/2").First(&clio).Error; err != nil {
		t.Fatalf("load clio: %v", err)
	}
	if clio.ModelID != nil {
		t.Errorf("clio ModelID = %v, want NULL", *clio.ModelID)
	}
	if clio.ExtractedMake == nil || *clio.ExtractedMake != "Renault" {
		t.Errorf("clio ExtractedMake = %v, want Renault", clio.ExtractedMake)
	}
}

func TestListingIngestService_ReingestUpdatesInPlace(t *testing.T) {
	db, svc := newListingPipeline(t)
	ctx := context.Background()

	first := "url,title,price\nhttps://cars.example/1,Skoda Octavia,15000\n"
	if _, err := svc.Ingest(ctx, listingSource(t, first)); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	var before gormModels.Listing
	if err := db.Where("url = ?", "https://cars.example/1").First(&before).Error; err != nil {
		t.Fatalf("load: %v", err)
	}

	second := "url,title,price\nhttps://cars.example/1,Skoda Octavia,14000\n"
	stats, err := svc.Ingest(ctx, listingSource(t, second))
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if stats.Created != 0 || stats.Updated != 1 {
		t.Errorf("stats = %+v, want 0 created / 1 updated", stats)
	}

	var after gormModels.Listing
	if err := db.Where("url = ?", "https://cars.example/1").First(&after).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.ID != before.ID {
		t.Errorf("id changed on re-ingest: %d vs %d", after.ID, before.ID)
	}
	if after.PriceEUR == nil || *after.PriceEUR != 14000 {
		t.Errorf("PriceEUR = %v, want updated 14000", after.PriceEUR)
	}

	var count int64
	db.Model(&gormModels.Listing{}).Count(&count)
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}
}

func TestListingIngestService_SpecsHandling(t *testing.T) {
	db, svc := newListingPipeline(t)

	csv := "url,title,specs\n" +
		`https://cars.example/1,Skoda Octavia,"{""fuel"":""diesel""}"` + "\n" +
		"https://cars.example/2,Skoda Fabia,not json at all\n"

	if _, err := svc.Ingest(context.Background(), listingSource(t, csv)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	var withJSON gormModels.Listing
	if err := db.Where("url = ?", "https://cars.example/1").First(&withJSON).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if withJSON.Specs == nil || *withJSON.Specs != `{"fuel":"diesel"}` {
		t.Errorf("Specs = %v, want raw JSON object", withJSON.Specs)
	}

	var wrapped gormModels.Listing
	if err := db.Where("url = ?", "https://cars.example/2").First(&wrapped).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if wrapped.Specs == nil || *wrapped.Specs != `"not json at all"` {
		t.Errorf("Specs = %v, want JSON-wrapped string", wrapped.Specs)
	}
}

func TestOptionalParsers(t *testing.T) {
	if got := parseOptionalFloat(""); got != nil {
		t.Errorf("parseOptionalFloat(\"\") = %v, want nil", got)
	}
	if got := parseOptionalFloat("abc"); got != nil {
		t.Errorf("parseOptionalFloat(abc) = %v, want nil", got)
	}
	if got := parseOptionalFloat("120,000"); got == nil || *got != 120000 {
		t.Errorf("parseOptionalFloat(120,000) = %v, want 120000", got)
	}
	if got := parseOptionalInt("2018"); got == nil || *got != 2018 {
		t.Errorf("parseOptionalInt(2018) = %v, want 2018", got)
	}
	if got := parseOptionalInt("soon"); got != nil {
		t.Errorf("parseOptionalInt(soon) = %v, want nil", got)
	}
	if got := optionalString(""); got != nil {
		t.Errorf("optionalString(\"\") = %v, want nil", got)
	}
}
